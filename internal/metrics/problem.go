package metrics

import (
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"cogscreen/internal/models"
)

var ErrNoAnswers = errors.New("no answers recorded")

// GeneratePattern builds a 3x3 grid where each cell is base+row+col and the
// bottom-right cell is hidden. The four options always contain the solution
// and are pairwise distinct.
func GeneratePattern(rng *rand.Rand) models.Pattern {
	base := rng.IntN(5) + 1

	var p models.Pattern
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == 2 && j == 2 {
				p.Grid[i][j] = models.HiddenCell
				continue
			}
			p.Grid[i][j] = base + i + j
		}
	}

	solution := base + 4
	above := solution + rng.IntN(3) + 1
	below := solution - rng.IntN(3) - 1
	far := solution + rng.IntN(5) + 3
	for far == above {
		far = solution + rng.IntN(5) + 3
	}

	p.Solution = solution
	p.Options = []int{solution, above, below, far}
	rng.Shuffle(len(p.Options), func(i, j int) {
		p.Options[i], p.Options[j] = p.Options[j], p.Options[i]
	})
	return p
}

// ScoreProblemSolving summarises a finished quiz.
func ScoreProblemSolving(answers []models.PatternAnswer) (*models.ProblemSolvingResult, error) {
	if len(answers) == 0 {
		return nil, ErrNoAnswers
	}

	correct := 0
	var elapsed time.Duration
	for _, a := range answers {
		if a.Correct {
			correct++
		}
		elapsed += a.Elapsed
	}

	total := len(answers)
	avgTime := round(elapsed.Seconds()/float64(total), 1)
	errorRate := round(float64(total-correct)/float64(total), 2)
	successRate := float64(correct) / float64(total) * 100

	return &models.ProblemSolvingResult{
		CorrectPatterns: correct,
		TotalPatterns:   total,
		SuccessRate:     successRate,
		AverageTimeSec:  avgTime,
		ErrorRate:       errorRate,
		Answers:         append([]models.PatternAnswer(nil), answers...),
		RawIndicator:    ProblemSolvingIndicator(successRate, avgTime),
	}, nil
}

func ProblemSolvingIndicator(successRate, averageTimeSec float64) float64 {
	timePenalty := 10.0
	switch {
	case averageTimeSec > 20:
		timePenalty = 30
	case averageTimeSec > 15:
		timePenalty = 20
	}
	return math.Max(0, 100-successRate)*0.4 + timePenalty
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
