package metrics

import (
	"math"
	"sync"

	"cogscreen/internal/models"
)

// Indicator bounds applied after combining sessions.
const (
	IndicatorFloor   = 10.0
	IndicatorCeiling = 90.0
)

// Band is the coarse reading of an indicator value.
type Band string

const (
	BandLow      Band = "low"
	BandModerate Band = "moderate"
	BandHigh     Band = "high"
)

// AttentionIndicator maps attention statistics onto the heuristic indicator.
// The thresholds are hand-tuned constants.
func AttentionIndicator(s models.AttentionSummary) float64 {
	return math.Max(0, 100-HitRate(s))*0.3 + ReactionPenalty(s.AverageReactionTimeMs)
}

// HitRate is hits over targets as a percentage; 0 when nothing was shown.
func HitRate(s models.AttentionSummary) float64 {
	if s.TotalTargets == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.TotalTargets) * 100
}

func ReactionPenalty(averageMs int) float64 {
	switch {
	case averageMs > 500:
		return 30
	case averageMs > 350:
		return 20
	default:
		return 10
	}
}

// CombineIndicator averages the current value with the prior one, when there
// is a prior, and clamps the result to [IndicatorFloor, IndicatorCeiling].
// It is a running average of two, not a weighted history.
func CombineIndicator(prior *float64, current float64) float64 {
	v := current
	if prior != nil {
		v = (*prior + current) / 2
	}
	return Clamp(v, IndicatorFloor, IndicatorCeiling)
}

func Clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// BandFor classifies an indicator value the way the results bar colours it.
func BandFor(indicator float64) Band {
	switch {
	case indicator > 65:
		return BandHigh
	case indicator > 35:
		return BandModerate
	default:
		return BandLow
	}
}

// IndicatorTracker keeps the previous indicator for one subject so the next
// test result can be combined with it.
type IndicatorTracker struct {
	mu    sync.Mutex
	prior *float64
}

// Update combines raw with the stored prior, stores and returns the result.
func (t *IndicatorTracker) Update(raw float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	v := CombineIndicator(t.prior, raw)
	t.prior = &v
	return v
}

// Current returns the last combined value, if any.
func (t *IndicatorTracker) Current() (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.prior == nil {
		return 0, false
	}
	return *t.prior, true
}

func (t *IndicatorTracker) Reset() {
	t.mu.Lock()
	t.prior = nil
	t.mu.Unlock()
}
