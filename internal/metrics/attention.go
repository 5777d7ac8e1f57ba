package metrics

import (
	"math"

	"cogscreen/internal/models"
)

// AverageReactionTime returns the floored mean of the reaction times, 0 for
// an empty slice.
func AverageReactionTime(reactionTimesMs []int) int {
	if len(reactionTimesMs) == 0 {
		return 0
	}

	sum := 0
	for _, rt := range reactionTimesMs {
		sum += rt
	}
	return sum / len(reactionTimesMs)
}

// ReactionTimeSD is the population standard deviation of the reaction times.
func ReactionTimeSD(reactionTimesMs []int) float64 {
	if len(reactionTimesMs) <= 1 {
		return 0
	}

	var sum float64
	for _, rt := range reactionTimesMs {
		sum += float64(rt)
	}
	avg := sum / float64(len(reactionTimesMs))

	var sumSquaredDiff float64
	for _, rt := range reactionTimesMs {
		diff := float64(rt) - avg
		sumSquaredDiff += diff * diff
	}

	variance := sumSquaredDiff / float64(len(reactionTimesMs))
	return math.Sqrt(variance)
}

// AttentionResultFrom builds the renderer record from a summary and the
// indicator values computed for it.
func AttentionResultFrom(sessionID string, s models.AttentionSummary, raw, indicator float64) models.AttentionResult {
	return models.AttentionResult{
		SessionID:             sessionID,
		HitRate:               HitRate(s),
		Hits:                  s.Hits,
		TotalTargets:          s.TotalTargets,
		Misses:                s.Misses,
		AverageReactionTimeMs: s.AverageReactionTimeMs,
		ReactionTimeSDMs:      s.ReactionTimeSDMs,
		ReactionTimesMs:       append([]int(nil), s.ReactionTimesMs...),
		RawIndicator:          raw,
		Indicator:             indicator,
	}
}
