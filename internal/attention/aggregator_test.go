package attention

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatorFinalize(t *testing.T) {
	a := NewAggregator(4)
	require.NoError(t, a.RecordHit(300))
	require.NoError(t, a.RecordMiss())
	require.NoError(t, a.RecordHit(300))
	require.NoError(t, a.RecordHit(400))

	s, err := a.Finalize()
	require.NoError(t, err)
	assert.Equal(t, 3, s.Hits)
	assert.Equal(t, 1, s.Misses)
	assert.Equal(t, 4, s.TotalTargets)
	assert.Equal(t, 333, s.AverageReactionTimeMs)
	assert.Equal(t, []int{300, 300, 400}, s.ReactionTimesMs)
}

func TestAggregatorRejectsOverflowAndNegative(t *testing.T) {
	a := NewAggregator(1)
	assert.ErrorIs(t, a.RecordHit(-1), ErrNegativeReaction)
	require.NoError(t, a.RecordMiss())
	assert.ErrorIs(t, a.RecordHit(100), ErrSessionFull)
	assert.ErrorIs(t, a.RecordMiss(), ErrSessionFull)
	assert.Equal(t, 1, a.Recorded())
}

func TestAggregatorFinalizeEarly(t *testing.T) {
	a := NewAggregator(3)
	require.NoError(t, a.RecordHit(100))
	_, err := a.Finalize()
	assert.ErrorIs(t, err, ErrPrematureFinalize)
}

func TestAggregatorNoHits(t *testing.T) {
	a := NewAggregator(2)
	require.NoError(t, a.RecordMiss())
	require.NoError(t, a.RecordMiss())
	s, err := a.Finalize()
	require.NoError(t, err)
	assert.Zero(t, s.AverageReactionTimeMs)
	assert.Zero(t, s.ReactionTimeSDMs)
	assert.Empty(t, s.ReactionTimesMs)
}
