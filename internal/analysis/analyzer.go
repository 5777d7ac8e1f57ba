// Package analysis simulates the handwriting and speech analysers. Results are
// drawn at random after a fixed processing delay; nothing is inspected beyond
// the sample size.
package analysis

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"cogscreen/internal/clock"
	"cogscreen/internal/metrics"
	"cogscreen/internal/models"

	"go.uber.org/zap"
)

var ErrEmptySample = errors.New("sample is empty")

type Settings struct {
	HandwritingLatency time.Duration
	SpeechLatency      time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		HandwritingLatency: 2500 * time.Millisecond,
		SpeechLatency:      3 * time.Second,
	}
}

type Analyzer struct {
	settings Settings
	clock    clock.Clock
	log      *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New returns an Analyzer. A nil clock means the real clock, a nil rng a
// randomly seeded one.
func New(settings Settings, clk clock.Clock, rng *rand.Rand, log *zap.Logger) *Analyzer {
	if clk == nil {
		clk = clock.Real()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{settings: settings, clock: clk, rng: rng, log: log}
}

func (a *Analyzer) Handwriting(ctx context.Context, sample []byte) (*models.HandwritingResult, error) {
	if len(sample) == 0 {
		return nil, ErrEmptySample
	}
	if err := a.wait(ctx, a.settings.HandwritingLatency); err != nil {
		return nil, err
	}

	a.mu.Lock()
	percent, detected := metrics.HandwritingPercent(a.rng)
	a.mu.Unlock()

	a.log.Debug("Handwriting sample analyzed",
		zap.Int("bytes", len(sample)),
		zap.Int("percent", percent),
	)
	return &models.HandwritingResult{
		Percent:     percent,
		Detected:    detected,
		SampleBytes: len(sample),
		AnalyzedAt:  a.clock.Now(),
	}, nil
}

func (a *Analyzer) Speech(ctx context.Context, sample []byte) (*models.SpeechResult, error) {
	if len(sample) == 0 {
		return nil, ErrEmptySample
	}
	if err := a.wait(ctx, a.settings.SpeechLatency); err != nil {
		return nil, err
	}

	a.mu.Lock()
	score := metrics.SpeechFluency(a.rng)
	a.mu.Unlock()

	a.log.Debug("Speech sample analyzed",
		zap.Int("bytes", len(sample)),
		zap.Int("fluency", score),
	)
	return &models.SpeechResult{
		FluencyScore: score,
		SampleBytes:  len(sample),
		AnalyzedAt:   a.clock.Now(),
	}, nil
}

// wait blocks for d on the analyzer clock or until ctx is done.
func (a *Analyzer) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	done := make(chan struct{})
	t := a.clock.AfterFunc(d, func() { close(done) })
	defer t.Stop()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
