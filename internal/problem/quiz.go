// Package problem implements the pattern-completion quiz. Each pattern is a
// 3x3 grid with the bottom-right cell hidden; the subject picks the missing
// value from four options.
package problem

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"cogscreen/internal/clock"
	"cogscreen/internal/metrics"
	"cogscreen/internal/models"

	"go.uber.org/zap"
)

var (
	ErrAlreadyRunning  = errors.New("quiz already running")
	ErrNotRunning      = errors.New("no quiz running")
	ErrUnknownOption   = errors.New("value is not one of the offered options")
	ErrInvalidSettings = errors.New("invalid quiz settings")
)

type Settings struct {
	Patterns int
}

func DefaultSettings() Settings {
	return Settings{Patterns: 5}
}

func (s Settings) Validate() error {
	if s.Patterns <= 0 {
		return fmt.Errorf("%w: pattern count must be positive", ErrInvalidSettings)
	}
	return nil
}

type Options struct {
	Settings Settings
	Clock    clock.Clock
	Rand     *rand.Rand
	Tracker  *metrics.IndicatorTracker
	Log      *zap.Logger
}

// State is the client view of the quiz. The solution of the current pattern
// is never part of it.
type State struct {
	Active   bool                         `json:"active"`
	Pattern  *models.Pattern              `json:"pattern,omitempty"`
	Number   int                          `json:"number"`
	Total    int                          `json:"total"`
	Correct  int                          `json:"correct"`
	Feedback *models.PatternAnswer        `json:"feedback,omitempty"`
	Last     *models.ProblemSolvingResult `json:"last,omitempty"`
}

type Quiz struct {
	mu       sync.Mutex
	settings Settings
	clock    clock.Clock
	rng      *rand.Rand
	tracker  *metrics.IndicatorTracker
	log      *zap.Logger

	active  bool
	current models.Pattern
	shownAt time.Time
	answers []models.PatternAnswer
	last    *models.ProblemSolvingResult
}

func NewQuiz(opts Options) (*Quiz, error) {
	if err := opts.Settings.Validate(); err != nil {
		return nil, err
	}
	q := &Quiz{
		settings: opts.Settings,
		clock:    opts.Clock,
		rng:      opts.Rand,
		tracker:  opts.Tracker,
		log:      opts.Log,
	}
	if q.clock == nil {
		q.clock = clock.Real()
	}
	if q.rng == nil {
		q.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if q.log == nil {
		q.log = zap.NewNop()
	}
	return q, nil
}

// Start resets the quiz and shows the first pattern.
func (q *Quiz) Start() (State, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.active {
		return q.stateLocked(nil), ErrAlreadyRunning
	}
	q.active = true
	q.answers = nil
	q.nextLocked()

	q.log.Info("Quiz started", zap.Int("patterns", q.settings.Patterns))
	return q.stateLocked(nil), nil
}

// Answer records the chosen value for the current pattern together with the
// time since it was shown. After the last pattern the quiz completes and the
// returned state carries the result.
func (q *Quiz) Answer(value int) (State, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.active {
		return q.stateLocked(nil), ErrNotRunning
	}
	if !slices.Contains(q.current.Options, value) {
		return q.stateLocked(nil), fmt.Errorf("%w: %d", ErrUnknownOption, value)
	}

	now := q.clock.Now()
	answer := models.PatternAnswer{
		Selected: value,
		Solution: q.current.Solution,
		Correct:  value == q.current.Solution,
		Elapsed:  now.Sub(q.shownAt),
	}
	q.answers = append(q.answers, answer)

	if len(q.answers) < q.settings.Patterns {
		q.nextLocked()
		return q.stateLocked(&answer), nil
	}

	res, err := metrics.ScoreProblemSolving(q.answers)
	if err != nil {
		return q.stateLocked(&answer), err
	}
	if q.tracker != nil {
		res.Indicator = q.tracker.Update(res.RawIndicator)
	} else {
		res.Indicator = metrics.CombineIndicator(nil, res.RawIndicator)
	}
	res.CompletedAt = now
	q.last = res
	q.active = false

	q.log.Info("Quiz completed",
		zap.Int("correct", res.CorrectPatterns),
		zap.Int("total", res.TotalPatterns),
		zap.Float64("avg_time_sec", res.AverageTimeSec),
		zap.Float64("indicator", res.Indicator),
	)
	return q.stateLocked(&answer), nil
}

func (q *Quiz) Stop() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.active {
		return false
	}
	q.active = false
	q.answers = nil
	return true
}

func (q *Quiz) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stateLocked(nil)
}

func (q *Quiz) Last() (models.ProblemSolvingResult, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.last == nil {
		return models.ProblemSolvingResult{}, false
	}
	return *q.last, true
}

func (q *Quiz) nextLocked() {
	q.current = metrics.GeneratePattern(q.rng)
	q.shownAt = q.clock.Now()
}

func (q *Quiz) stateLocked(feedback *models.PatternAnswer) State {
	s := State{
		Active:   q.active,
		Total:    q.settings.Patterns,
		Feedback: feedback,
	}
	for _, a := range q.answers {
		if a.Correct {
			s.Correct++
		}
	}
	if q.active {
		p := q.current
		p.Options = slices.Clone(q.current.Options)
		p.Solution = 0
		s.Pattern = &p
		s.Number = len(q.answers) + 1
	}
	if q.last != nil {
		last := *q.last
		s.Last = &last
	}
	return s
}
