package models

import "time"

// HiddenCell marks the grid cell the subject has to fill in.
const HiddenCell = -1

// Pattern is a single 3x3 completion puzzle.
type Pattern struct {
	Grid     [3][3]int `json:"grid"`
	Options  []int     `json:"options"`
	Solution int       `json:"-"`
}

// PatternAnswer records one answered puzzle.
type PatternAnswer struct {
	Selected int           `json:"selected"`
	Solution int           `json:"solution"`
	Correct  bool          `json:"correct"`
	Elapsed  time.Duration `json:"elapsed"`
}

// ProblemSolvingResult holds the processed outcome of a pattern quiz.
type ProblemSolvingResult struct {
	CorrectPatterns int             `json:"correctPatterns"`
	TotalPatterns   int             `json:"totalPatterns"`
	SuccessRate     float64         `json:"successRate"`
	AverageTimeSec  float64         `json:"averageTime"`
	ErrorRate       float64         `json:"errorRate"`
	Answers         []PatternAnswer `json:"answers"`
	RawIndicator    float64         `json:"rawIndicator"`
	Indicator       float64         `json:"indicator"`
	CompletedAt     time.Time       `json:"completedAt"`
}
