package repository

import (
	"sync"
	"testing"
	"time"

	"cogscreen/internal/attention"
	"cogscreen/internal/clock"
	"cogscreen/internal/memory"
	"cogscreen/internal/models"
	"cogscreen/internal/problem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testSettings() Settings {
	return Settings{
		Attention: attention.Settings{
			Trials:        2,
			SpawnDelayMin: time.Second,
			SpawnDelayMax: time.Second,
			ExpireAfter:   time.Second,
			MarginPercent: 10,
		},
		Memory:  memory.DefaultSettings(),
		Problem: problem.DefaultSettings(),
	}
}

func newStore(t *testing.T, observer ObserverFunc) (*Store, *clock.Fake) {
	t.Helper()
	fc := clock.NewFake(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	return NewStore(StoreOptions{
		Settings: testSettings(),
		Clock:    fc,
		Observer: observer,
		Log:      zaptest.NewLogger(t),
	}), fc
}

func TestGetOrCreate(t *testing.T) {
	s, _ := newStore(t, nil)

	_, err := s.Get("abc")
	assert.ErrorIs(t, err, ErrSubjectNotFound)
	_, err = s.GetOrCreate("")
	assert.ErrorIs(t, err, ErrEmptySubjectID)

	a, err := s.GetOrCreate("abc")
	require.NoError(t, err)
	b, err := s.GetOrCreate("abc")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, s.Len())
}

func TestGetOrCreateConcurrent(t *testing.T) {
	s, _ := newStore(t, nil)

	var wg sync.WaitGroup
	got := make([]*Subject, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			subj, err := s.GetOrCreate("same")
			assert.NoError(t, err)
			got[i] = subj
		}(i)
	}
	wg.Wait()

	for _, subj := range got {
		assert.Same(t, got[0], subj)
	}
}

func TestSweepEvictsIdleSubjectsAndStopsGames(t *testing.T) {
	s, fc := newStore(t, nil)

	idle, err := s.GetOrCreate("idle")
	require.NoError(t, err)
	require.NoError(t, idle.Attention.Start())

	fc.Advance(20 * time.Minute)
	_, err = s.GetOrCreate("fresh")
	require.NoError(t, err)

	// The first session ran to completion while the clock advanced.
	require.False(t, idle.Attention.Running())
	require.NoError(t, idle.Attention.Start())

	assert.Equal(t, 1, s.Sweep(15*time.Minute))
	assert.Equal(t, 1, s.Len())
	assert.False(t, idle.Attention.Running())
	assert.Zero(t, fc.Pending())

	_, err = s.Get("idle")
	assert.ErrorIs(t, err, ErrSubjectNotFound)
	_, err = s.Get("fresh")
	assert.NoError(t, err)
}

func TestGetKeepsSubjectAlive(t *testing.T) {
	s, fc := newStore(t, nil)
	_, err := s.GetOrCreate("a")
	require.NoError(t, err)

	fc.Advance(10 * time.Minute)
	_, err = s.Get("a")
	require.NoError(t, err)
	fc.Advance(10 * time.Minute)

	assert.Zero(t, s.Sweep(15*time.Minute))
	assert.Equal(t, 1, s.Len())
}

func TestDelete(t *testing.T) {
	s, fc := newStore(t, nil)
	subj, err := s.GetOrCreate("a")
	require.NoError(t, err)
	_, err = subj.Memory.Start()
	require.NoError(t, err)

	assert.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"))
	assert.Equal(t, memory.Idle, subj.Memory.State().Phase)
	assert.Zero(t, fc.Pending())
}

func TestClearStopsEverything(t *testing.T) {
	s, fc := newStore(t, nil)
	a, err := s.GetOrCreate("a")
	require.NoError(t, err)
	_, err = s.GetOrCreate("b")
	require.NoError(t, err)
	require.NoError(t, a.Attention.Start())
	require.Equal(t, 1, fc.Pending())

	assert.Equal(t, 2, s.Clear())
	assert.Zero(t, s.Len())
	assert.Zero(t, fc.Pending())
	assert.False(t, a.Attention.Running())
}

func TestObserverAndHistory(t *testing.T) {
	var mu sync.Mutex
	seen := map[string][]attention.EventType{}
	s, fc := newStore(t, func(id string) attention.Observer {
		return func(e attention.Event) {
			mu.Lock()
			seen[id] = append(seen[id], e.Type)
			mu.Unlock()
		}
	})

	subj, err := s.GetOrCreate("a")
	require.NoError(t, err)
	for run := 0; run < 2; run++ {
		require.NoError(t, subj.Attention.Start())
		for subj.Attention.Running() {
			fc.Advance(500 * time.Millisecond)
		}
	}

	history := subj.AttentionHistory()
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].Misses)

	mu.Lock()
	assert.Contains(t, seen["a"], attention.EventSessionCompleted)
	mu.Unlock()

	points := AttentionTimeline(subj, MetricIndicator)
	require.Len(t, points, 2)
	assert.InDelta(t, history[1].Indicator, points[1].Value, 1e-9)
	assert.Nil(t, AttentionTimeline(subj, "unknown"))
	assert.Empty(t, LastReactionTimes(subj))
}

func TestResultsAggregatesLatest(t *testing.T) {
	s, _ := newStore(t, nil)
	subj, err := s.GetOrCreate("a")
	require.NoError(t, err)

	r := subj.Results()
	assert.Nil(t, r.Attention)
	assert.Nil(t, r.Indicator)

	subj.SaveHandwriting(&models.HandwritingResult{Percent: 40})
	subj.SaveSpeech(&models.SpeechResult{FluencyScore: 8})
	subj.Tracker.Update(30)

	r = subj.Results()
	require.NotNil(t, r.Handwriting)
	assert.Equal(t, 40, r.Handwriting.Percent)
	require.NotNil(t, r.Speech)
	require.NotNil(t, r.Indicator)
	assert.InDelta(t, 30.0, *r.Indicator, 1e-9)
}

func TestInvalidSettingsFailCreation(t *testing.T) {
	s, _ := newStore(t, nil)
	bad := testSettings()
	bad.Attention.Trials = 0
	s.SetSettings(bad)

	_, err := s.GetOrCreate("a")
	assert.ErrorIs(t, err, attention.ErrInvalidSettings)
	assert.Zero(t, s.Len())
}
