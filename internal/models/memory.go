package models

import "time"

// MemoryResult holds the processed outcome of a colour sequence recall test.
type MemoryResult struct {
	Sequence     []string  `json:"sequence"`
	Answer       []string  `json:"answer"`
	Correct      int       `json:"correct"`
	Total        int       `json:"total"`
	Accuracy     int       `json:"accuracy"`
	RawIndicator float64   `json:"rawIndicator"`
	Indicator    float64   `json:"indicator"`
	CompletedAt  time.Time `json:"completedAt"`
}
