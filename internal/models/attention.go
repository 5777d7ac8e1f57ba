package models

import "time"

// AttentionSummary holds the statistics derived from a finished attention
// session. It is never stored on its own.
type AttentionSummary struct {
	Hits                  int     `json:"hits"`
	Misses                int     `json:"misses"`
	TotalTargets          int     `json:"totalTargets"`
	AverageReactionTimeMs int     `json:"averageReactionTimeMs"`
	ReactionTimeSDMs      float64 `json:"reactionTimeSdMs"`
	ReactionTimesMs       []int   `json:"reactionTimesMs"`
}

// AttentionResult is the record handed to the report renderer once an
// attention session completes.
type AttentionResult struct {
	SessionID             string    `json:"sessionId"`
	HitRate               float64   `json:"hitRate"`
	Hits                  int       `json:"hits"`
	TotalTargets          int       `json:"totalTargets"`
	Misses                int       `json:"misses"`
	AverageReactionTimeMs int       `json:"averageReactionTimeMs"`
	ReactionTimeSDMs      float64   `json:"reactionTimeSdMs"`
	ReactionTimesMs       []int     `json:"reactionTimesMs"`
	RawIndicator          float64   `json:"rawIndicator"`
	Indicator             float64   `json:"indicator"`
	CompletedAt           time.Time `json:"completedAt"`
}
