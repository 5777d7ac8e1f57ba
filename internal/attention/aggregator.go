package attention

import (
	"errors"
	"fmt"

	"cogscreen/internal/metrics"
	"cogscreen/internal/models"
)

var (
	ErrNegativeReaction  = errors.New("reaction time must not be negative")
	ErrSessionFull       = errors.New("all trials already recorded")
	ErrPrematureFinalize = errors.New("finalize called before all trials concluded")
)

// Aggregator collects trial outcomes of the active session.
type Aggregator struct {
	total         int
	hits          int
	misses        int
	reactionTimes []int
}

func NewAggregator(total int) *Aggregator {
	return &Aggregator{total: total}
}

func (a *Aggregator) Recorded() int { return a.hits + a.misses }

func (a *Aggregator) RecordHit(reactionTimeMs int) error {
	if reactionTimeMs < 0 {
		return ErrNegativeReaction
	}
	if a.Recorded() >= a.total {
		return ErrSessionFull
	}
	a.hits++
	a.reactionTimes = append(a.reactionTimes, reactionTimeMs)
	return nil
}

func (a *Aggregator) RecordMiss() error {
	if a.Recorded() >= a.total {
		return ErrSessionFull
	}
	a.misses++
	return nil
}

// Finalize returns the summary once exactly total trials were recorded.
func (a *Aggregator) Finalize() (models.AttentionSummary, error) {
	if a.Recorded() != a.total {
		return models.AttentionSummary{}, fmt.Errorf("%w: %d of %d", ErrPrematureFinalize, a.Recorded(), a.total)
	}

	return models.AttentionSummary{
		Hits:                  a.hits,
		Misses:                a.misses,
		TotalTargets:          a.total,
		AverageReactionTimeMs: metrics.AverageReactionTime(a.reactionTimes),
		ReactionTimeSDMs:      metrics.ReactionTimeSD(a.reactionTimes),
		ReactionTimesMs:       append([]int(nil), a.reactionTimes...),
	}, nil
}
