package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeStore struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (f *fakeStore) Sweep(idle time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, idle)
	return 1
}

func (f *fakeStore) Len() int { return 0 }

func (f *fakeStore) sweeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.calls...)
}

func TestSchedulerSweepsUntilCancelled(t *testing.T) {
	store := &fakeStore{}
	idle := 5 * time.Minute
	var idleMu sync.Mutex
	s := NewScheduler(zaptest.NewLogger(t), store, 5*time.Millisecond, func() time.Duration {
		idleMu.Lock()
		defer idleMu.Unlock()
		return idle
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return len(store.sweeps()) >= 2 }, 2*time.Second, time.Millisecond)
	idleMu.Lock()
	idle = time.Minute
	idleMu.Unlock()
	require.Eventually(t, func() bool {
		calls := store.sweeps()
		return calls[len(calls)-1] == time.Minute
	}, 2*time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	calls := store.sweeps()
	assert.Equal(t, 5*time.Minute, calls[0])
	assert.Equal(t, time.Minute, calls[len(calls)-1])
}
