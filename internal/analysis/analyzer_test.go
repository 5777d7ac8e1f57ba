package analysis

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"cogscreen/internal/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newAnalyzer(t *testing.T) (*Analyzer, *clock.Fake) {
	t.Helper()
	fc := clock.NewFake(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	return New(DefaultSettings(), fc, rand.New(rand.NewPCG(11, 13)), zaptest.NewLogger(t)), fc
}

func TestHandwritingWaitsForLatency(t *testing.T) {
	a, fc := newAnalyzer(t)

	type out struct {
		percent  int
		detected bool
		err      error
	}
	results := make(chan out, 1)
	go func() {
		res, err := a.Handwriting(context.Background(), []byte("sample"))
		if err != nil {
			results <- out{err: err}
			return
		}
		results <- out{percent: res.Percent, detected: res.Detected}
	}()

	require.Eventually(t, func() bool { return fc.Pending() == 1 }, time.Second, time.Millisecond)
	fc.Advance(2 * time.Second)
	select {
	case <-results:
		t.Fatal("result returned before the latency elapsed")
	case <-time.After(10 * time.Millisecond):
	}

	fc.Advance(500 * time.Millisecond)
	r := <-results
	require.NoError(t, r.err)
	assert.GreaterOrEqual(t, r.percent, 35)
	assert.LessOrEqual(t, r.percent, 65)
	assert.Equal(t, r.percent >= 50, r.detected)
}

func TestSpeechCancelled(t *testing.T) {
	a, fc := newAnalyzer(t)
	ctx, cancel := context.WithCancel(context.Background())

	errs := make(chan error, 1)
	go func() {
		_, err := a.Speech(ctx, []byte("audio"))
		errs <- err
	}()

	require.Eventually(t, func() bool { return fc.Pending() == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errs, context.Canceled)
	assert.Zero(t, fc.Pending())
}

func TestEmptySampleRejected(t *testing.T) {
	a, fc := newAnalyzer(t)

	_, err := a.Handwriting(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptySample)
	_, err = a.Speech(context.Background(), []byte{})
	assert.ErrorIs(t, err, ErrEmptySample)
	assert.Zero(t, fc.Pending())
}

func TestZeroLatencyReturnsImmediately(t *testing.T) {
	a := New(Settings{}, nil, nil, nil)
	for i := 0; i < 100; i++ {
		res, err := a.Speech(context.Background(), []byte{1})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.FluencyScore, 7)
		assert.LessOrEqual(t, res.FluencyScore, 9)
		assert.Equal(t, 1, res.SampleBytes)
	}
}
