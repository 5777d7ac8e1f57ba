package metrics

import (
	"errors"
	"math"

	"cogscreen/internal/models"
)

var ErrLengthMismatch = errors.New("answer length does not match sequence length")

// ScoreMemory compares a recalled colour sequence position by position.
func ScoreMemory(sequence, answer []string) (*models.MemoryResult, error) {
	if len(sequence) == 0 || len(sequence) != len(answer) {
		return nil, ErrLengthMismatch
	}

	correct := 0
	for i := range sequence {
		if answer[i] == sequence[i] {
			correct++
		}
	}

	accuracy := correct * 100 / len(sequence)
	return &models.MemoryResult{
		Sequence:     append([]string(nil), sequence...),
		Answer:       append([]string(nil), answer...),
		Correct:      correct,
		Total:        len(sequence),
		Accuracy:     accuracy,
		RawIndicator: MemoryIndicator(accuracy),
	}, nil
}

func MemoryIndicator(accuracy int) float64 {
	return math.Max(0, float64(70-accuracy))
}
