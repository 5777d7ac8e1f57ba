package models

// Results is the latest outcome of each test for one subject. Nil fields are
// tests that were not completed yet.
type Results struct {
	Attention      *AttentionResult      `json:"attention,omitempty"`
	Memory         *MemoryResult         `json:"memory,omitempty"`
	ProblemSolving *ProblemSolvingResult `json:"problemSolving,omitempty"`
	Handwriting    *HandwritingResult    `json:"handwriting,omitempty"`
	Speech         *SpeechResult         `json:"speech,omitempty"`
	Indicator      *float64              `json:"indicator,omitempty"`
}
