package models

import "time"

// HandwritingResult is the outcome of the simulated handwriting analysis.
type HandwritingResult struct {
	Percent     int       `json:"percent"`
	Detected    bool      `json:"detected"`
	SampleBytes int       `json:"sampleBytes"`
	AnalyzedAt  time.Time `json:"analyzedAt"`
}

// SpeechResult is the outcome of the simulated speech analysis.
type SpeechResult struct {
	FluencyScore int       `json:"fluencyScore"`
	SampleBytes  int       `json:"sampleBytes"`
	AnalyzedAt   time.Time `json:"analyzedAt"`
}
