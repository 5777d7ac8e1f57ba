// internal/repository/subjects.go
package repository

import (
	"errors"
	"sync"
	"time"

	"cogscreen/internal/attention"
	"cogscreen/internal/clock"
	"cogscreen/internal/memory"
	"cogscreen/internal/metrics"
	"cogscreen/internal/models"
	"cogscreen/internal/problem"

	"go.uber.org/zap"
)

// maxHistory bounds the completed attention sessions kept per subject.
const maxHistory = 20

var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrEmptySubjectID  = errors.New("subject id is empty")
)

// Settings are applied to the games of subjects created after the call.
type Settings struct {
	Attention attention.Settings
	Memory    memory.Settings
	Problem   problem.Settings
}

// ObserverFunc builds the attention observer for one subject.
type ObserverFunc func(subjectID string) attention.Observer

type StoreOptions struct {
	Settings Settings
	Clock    clock.Clock
	Observer ObserverFunc
	Log      *zap.Logger
}

// Subject is everything kept for one anonymous test taker. The games are safe
// for concurrent use on their own.
type Subject struct {
	ID        string
	Attention *attention.Controller
	Memory    *memory.Game
	Quiz      *problem.Quiz
	Tracker   *metrics.IndicatorTracker

	mu          sync.Mutex
	createdAt   time.Time
	lastSeen    time.Time
	history     []models.AttentionResult
	handwriting *models.HandwritingResult
	speech      *models.SpeechResult
}

// Store holds subjects in memory. Nothing survives a restart.
type Store struct {
	clock    clock.Clock
	observer ObserverFunc
	log      *zap.Logger

	mu       sync.RWMutex
	settings Settings
	subjects map[string]*Subject
}

func NewStore(opts StoreOptions) *Store {
	s := &Store{
		clock:    opts.Clock,
		observer: opts.Observer,
		log:      opts.Log,
		settings: opts.Settings,
		subjects: make(map[string]*Subject),
	}
	if s.clock == nil {
		s.clock = clock.Real()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

func (s *Store) SetSettings(settings Settings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}

// Get returns the subject and marks it as seen.
func (s *Store) Get(id string) (*Subject, error) {
	s.mu.RLock()
	subj, ok := s.subjects[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSubjectNotFound
	}
	subj.touch(s.clock.Now())
	return subj, nil
}

// GetOrCreate returns the subject for id, creating it with the current
// settings when it does not exist yet.
func (s *Store) GetOrCreate(id string) (*Subject, error) {
	if id == "" {
		return nil, ErrEmptySubjectID
	}
	if subj, err := s.Get(id); err == nil {
		return subj, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if subj, ok := s.subjects[id]; ok {
		subj.touch(s.clock.Now())
		return subj, nil
	}

	subj, err := s.newSubjectLocked(id)
	if err != nil {
		return nil, err
	}
	s.subjects[id] = subj
	s.log.Debug("Subject created", zap.String("subject", id))
	return subj, nil
}

func (s *Store) newSubjectLocked(id string) (*Subject, error) {
	now := s.clock.Now()
	subj := &Subject{
		ID:        id,
		Tracker:   &metrics.IndicatorTracker{},
		createdAt: now,
		lastSeen:  now,
	}
	log := s.log.With(zap.String("subject", id))

	observer := attention.Observer(subj.recordAttention)
	if s.observer != nil {
		observer = attention.Observers(subj.recordAttention, s.observer(id))
	}

	var err error
	subj.Attention, err = attention.NewController(attention.Options{
		Settings: s.settings.Attention,
		Clock:    s.clock,
		Observer: observer,
		Tracker:  subj.Tracker,
		Log:      log,
	})
	if err != nil {
		return nil, err
	}
	subj.Memory, err = memory.NewGame(memory.Options{
		Settings: s.settings.Memory,
		Clock:    s.clock,
		Tracker:  subj.Tracker,
		Log:      log,
	})
	if err != nil {
		return nil, err
	}
	subj.Quiz, err = problem.NewQuiz(problem.Options{
		Settings: s.settings.Problem,
		Clock:    s.clock,
		Tracker:  subj.Tracker,
		Log:      log,
	})
	if err != nil {
		return nil, err
	}
	return subj, nil
}

// Delete removes the subject and stops its running games.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	subj, ok := s.subjects[id]
	delete(s.subjects, id)
	s.mu.Unlock()

	if ok {
		subj.stop()
	}
	return ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subjects)
}

// Sweep evicts subjects not seen for longer than idle and stops their games.
// It returns the number of evicted subjects.
func (s *Store) Sweep(idle time.Duration) int {
	cutoff := s.clock.Now().Add(-idle)

	s.mu.Lock()
	var evicted []*Subject
	for id, subj := range s.subjects {
		if subj.LastSeen().Before(cutoff) {
			evicted = append(evicted, subj)
			delete(s.subjects, id)
		}
	}
	s.mu.Unlock()

	for _, subj := range evicted {
		subj.stop()
	}
	return len(evicted)
}

// Clear removes every subject and stops their games. It is used on shutdown.
func (s *Store) Clear() int {
	s.mu.Lock()
	subjects := s.subjects
	s.subjects = make(map[string]*Subject)
	s.mu.Unlock()

	for _, subj := range subjects {
		subj.stop()
	}
	return len(subjects)
}

func (subj *Subject) touch(now time.Time) {
	subj.mu.Lock()
	if now.After(subj.lastSeen) {
		subj.lastSeen = now
	}
	subj.mu.Unlock()
}

func (subj *Subject) LastSeen() time.Time {
	subj.mu.Lock()
	defer subj.mu.Unlock()
	return subj.lastSeen
}

func (subj *Subject) CreatedAt() time.Time {
	subj.mu.Lock()
	defer subj.mu.Unlock()
	return subj.createdAt
}

func (subj *Subject) stop() {
	subj.Attention.Stop()
	subj.Memory.Stop()
	subj.Quiz.Stop()
}

func (subj *Subject) recordAttention(e attention.Event) {
	if e.Type != attention.EventSessionCompleted || e.Result == nil {
		return
	}
	subj.mu.Lock()
	defer subj.mu.Unlock()

	subj.history = append(subj.history, *e.Result)
	if len(subj.history) > maxHistory {
		subj.history = subj.history[len(subj.history)-maxHistory:]
	}
}

// AttentionHistory returns completed attention sessions, oldest first.
func (subj *Subject) AttentionHistory() []models.AttentionResult {
	subj.mu.Lock()
	defer subj.mu.Unlock()
	return append([]models.AttentionResult(nil), subj.history...)
}

func (subj *Subject) SaveHandwriting(res *models.HandwritingResult) {
	subj.mu.Lock()
	subj.handwriting = res
	subj.mu.Unlock()
}

func (subj *Subject) Handwriting() *models.HandwritingResult {
	subj.mu.Lock()
	defer subj.mu.Unlock()
	return subj.handwriting
}

func (subj *Subject) SaveSpeech(res *models.SpeechResult) {
	subj.mu.Lock()
	subj.speech = res
	subj.mu.Unlock()
}

func (subj *Subject) Speech() *models.SpeechResult {
	subj.mu.Lock()
	defer subj.mu.Unlock()
	return subj.speech
}

// Results collects the latest result of every test the subject finished.
func (subj *Subject) Results() models.Results {
	var r models.Results
	if res, ok := subj.Attention.Last(); ok {
		r.Attention = &res
	}
	if res, ok := subj.Memory.Last(); ok {
		r.Memory = &res
	}
	if res, ok := subj.Quiz.Last(); ok {
		r.ProblemSolving = &res
	}
	r.Handwriting = subj.Handwriting()
	r.Speech = subj.Speech()
	if v, ok := subj.Tracker.Current(); ok {
		r.Indicator = &v
	}
	return r
}
