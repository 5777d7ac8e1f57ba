package metrics

import (
	"math/rand/v2"
	"testing"
	"time"

	"cogscreen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreMemory(t *testing.T) {
	seq := []string{"red", "blue", "green", "yellow", "purple"}

	res, err := ScoreMemory(seq, []string{"red", "blue", "green", "orange", "orange"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Correct)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 60, res.Accuracy)
	assert.Equal(t, 10.0, res.RawIndicator)

	res, err = ScoreMemory(seq, seq)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Accuracy)
	assert.Zero(t, res.RawIndicator)

	_, err = ScoreMemory(seq, seq[:4])
	assert.ErrorIs(t, err, ErrLengthMismatch)
	_, err = ScoreMemory(nil, nil)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestMemoryAccuracyIsFloored(t *testing.T) {
	res, err := ScoreMemory([]string{"a", "b", "c"}, []string{"a", "x", "x"})
	require.NoError(t, err)
	assert.Equal(t, 33, res.Accuracy)
	assert.Equal(t, 37.0, res.RawIndicator)
}

func TestGeneratePatternInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		p := GeneratePattern(rng)

		base := p.Grid[0][0]
		require.GreaterOrEqual(t, base, 1)
		require.LessOrEqual(t, base, 5)
		require.Equal(t, models.HiddenCell, p.Grid[2][2])
		require.Equal(t, base+4, p.Solution)
		require.Equal(t, base+3, p.Grid[2][1])
		require.Equal(t, base+3, p.Grid[1][2])

		require.Len(t, p.Options, 4)
		require.Contains(t, p.Options, p.Solution)
		seen := map[int]bool{}
		for _, o := range p.Options {
			require.False(t, seen[o], "duplicate option %d in %v", o, p.Options)
			seen[o] = true
		}
	}
}

func TestScoreProblemSolving(t *testing.T) {
	answers := []models.PatternAnswer{
		{Correct: true, Elapsed: 10 * time.Second},
		{Correct: true, Elapsed: 10 * time.Second},
		{Correct: true, Elapsed: 10 * time.Second},
		{Correct: false, Elapsed: 10 * time.Second},
		{Correct: false, Elapsed: 10 * time.Second},
	}

	res, err := ScoreProblemSolving(answers)
	require.NoError(t, err)
	assert.Equal(t, 3, res.CorrectPatterns)
	assert.Equal(t, 5, res.TotalPatterns)
	assert.InDelta(t, 60.0, res.SuccessRate, 1e-9)
	assert.InDelta(t, 10.0, res.AverageTimeSec, 1e-9)
	assert.InDelta(t, 0.4, res.ErrorRate, 1e-9)
	assert.InDelta(t, 26.0, res.RawIndicator, 1e-9)
}

func TestProblemSolvingTimePenalty(t *testing.T) {
	assert.InDelta(t, 10.0, ProblemSolvingIndicator(100, 15), 1e-9)
	assert.InDelta(t, 20.0, ProblemSolvingIndicator(100, 15.1), 1e-9)
	assert.InDelta(t, 30.0, ProblemSolvingIndicator(100, 20.1), 1e-9)
	assert.InDelta(t, 70.0, ProblemSolvingIndicator(0, 21), 1e-9)
}

func TestScoreProblemSolvingRounds(t *testing.T) {
	answers := []models.PatternAnswer{
		{Correct: true, Elapsed: 1200 * time.Millisecond},
		{Correct: false, Elapsed: 2300 * time.Millisecond},
		{Correct: false, Elapsed: 3500 * time.Millisecond},
	}
	res, err := ScoreProblemSolving(answers)
	require.NoError(t, err)
	assert.InDelta(t, 2.3, res.AverageTimeSec, 1e-9)
	assert.InDelta(t, 0.67, res.ErrorRate, 1e-9)

	_, err = ScoreProblemSolving(nil)
	assert.ErrorIs(t, err, ErrNoAnswers)
}

func TestMockAnalysisRanges(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 1000; i++ {
		p, detected := HandwritingPercent(rng)
		require.GreaterOrEqual(t, p, 35)
		require.LessOrEqual(t, p, 65)
		require.Equal(t, p >= 50, detected)

		f := SpeechFluency(rng)
		require.GreaterOrEqual(t, f, 7)
		require.LessOrEqual(t, f, 9)
	}
}
