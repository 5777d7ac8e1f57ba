// internal/repository/charts.go
package repository

import (
	"time"
)

type TimelineDataPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Attention metric keys accepted by AttentionTimeline.
const (
	MetricReactionTime = "reaction_time"
	MetricHitRate      = "hit_rate"
	MetricIndicator    = "indicator"
)

// AttentionTimeline returns one point per completed attention session for the
// given metric key. Unknown keys yield no points.
func AttentionTimeline(subj *Subject, metricKey string) []TimelineDataPoint {
	var data []TimelineDataPoint
	for _, r := range subj.AttentionHistory() {
		var v float64
		switch metricKey {
		case MetricReactionTime:
			v = float64(r.AverageReactionTimeMs)
		case MetricHitRate:
			v = r.HitRate
		case MetricIndicator:
			v = r.Indicator
		default:
			return nil
		}
		data = append(data, TimelineDataPoint{Date: r.CompletedAt, Value: v})
	}
	return data
}

// LastReactionTimes returns the per-trial reaction times of the latest
// completed attention session.
func LastReactionTimes(subj *Subject) []int {
	res, ok := subj.Attention.Last()
	if !ok {
		return nil
	}
	return res.ReactionTimesMs
}
