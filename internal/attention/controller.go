// Package attention runs the reaction-time target test: targets spawn after a
// random delay, are clicked (hit) or time out (miss), and the session
// completes after a fixed number of trials.
//
// Every timer callback carries the generation it was scheduled for. Any
// transition bumps the generation, so a callback that lost a race with a
// click, a stop, or another timer finds a newer generation and does nothing.
package attention

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"cogscreen/internal/clock"
	"cogscreen/internal/metrics"
	"cogscreen/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrAlreadyRunning = errors.New("attention session already running")
	ErrNotRunning     = errors.New("no attention session running")
	ErrNoTarget       = errors.New("no target is visible")
	ErrStaleTarget    = errors.New("target is no longer open")
)

// Options configure a Controller. Zero values fall back to the real clock, a
// randomly seeded source, a no-op logger and uuid session ids.
type Options struct {
	Settings Settings
	Clock    clock.Clock
	Rand     *rand.Rand
	Observer Observer
	Tracker  *metrics.IndicatorTracker
	NewID    func() string
	Log      *zap.Logger
}

// Controller owns the target lifecycle of one subject's attention sessions.
type Controller struct {
	mu       sync.Mutex
	settings Settings
	clock    clock.Clock
	rng      *rand.Rand
	observer Observer
	tracker  *metrics.IndicatorTracker
	newID    func() string
	log      *zap.Logger

	phase       Phase
	generation  uint64
	session     *Session
	agg         *Aggregator
	spawnTimer  clock.Timer
	expireTimer clock.Timer
	last        *models.AttentionResult
}

func NewController(opts Options) (*Controller, error) {
	if err := opts.Settings.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		settings: opts.Settings,
		clock:    opts.Clock,
		rng:      opts.Rand,
		observer: opts.Observer,
		tracker:  opts.Tracker,
		newID:    opts.NewID,
		log:      opts.Log,
	}
	if c.clock == nil {
		c.clock = clock.Real()
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c, nil
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	Phase     Phase                   `json:"phase"`
	Session   *Session                `json:"session,omitempty"`
	Target    *Trial                  `json:"target,omitempty"`
	Remaining int                     `json:"remaining"`
	Last      *models.AttentionResult `json:"last,omitempty"`
}

// Start begins a new session. A completed or stopped session is replaced.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.phase != PhaseIdle {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}

	now := c.clock.Now()
	c.session = &Session{ID: c.newID(), State: Running, StartedAt: now}
	c.agg = NewAggregator(c.settings.Trials)
	c.generation++
	c.scheduleSpawnLocked()
	events := []Event{c.eventLocked(EventSessionStarted, nil, now)}
	c.log.Info("Attention session started",
		zap.String("session", c.session.ID),
		zap.Int("trials", c.settings.Trials),
	)
	c.mu.Unlock()

	c.emit(events)
	return nil
}

// Click resolves the visible target as a hit. trial must be the index of the
// open trial; clicks for an earlier, already resolved trial change nothing.
func (c *Controller) Click(trial int) (Trial, error) {
	c.mu.Lock()
	switch c.phase {
	case PhaseIdle, PhaseCompleting:
		c.mu.Unlock()
		return Trial{}, ErrNotRunning
	case PhaseSpawning:
		c.mu.Unlock()
		return Trial{}, ErrNoTarget
	}

	open := c.session.open()
	if open == nil || open.Index != trial {
		c.mu.Unlock()
		return Trial{}, ErrStaleTarget
	}

	now := c.clock.Now()
	reaction := int(now.Sub(open.SpawnedAt).Milliseconds())
	if reaction < 0 {
		reaction = 0
	}
	if err := c.agg.RecordHit(reaction); err != nil {
		c.log.Error("Failed to record hit", zap.String("session", c.session.ID), zap.Error(err))
	}

	c.cancelExpireLocked()
	open.Outcome = Hit
	open.ReactionTimeMs = reaction
	c.generation++
	resolved := *open

	events := []Event{c.eventLocked(EventTargetHit, &resolved, now)}
	events = append(events, c.advanceLocked(now)...)
	c.mu.Unlock()

	c.emit(events)
	return resolved, nil
}

// Stop aborts the running session. Both timers are cancelled and no callback
// scheduled before the call mutates state afterwards. It reports whether a
// session was running.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	if c.phase == PhaseIdle {
		c.mu.Unlock()
		return false
	}

	now := c.clock.Now()
	c.cancelSpawnLocked()
	c.cancelExpireLocked()
	c.generation++
	c.phase = PhaseIdle
	c.session.State = Idle
	c.session.Aborted = true
	c.session.FinishedAt = now
	events := []Event{c.eventLocked(EventSessionStopped, nil, now)}
	c.log.Info("Attention session stopped",
		zap.String("session", c.session.ID),
		zap.Int("resolved", c.agg.Recorded()),
	)
	c.mu.Unlock()

	c.emit(events)
	return true
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Phase:   c.phase,
		Session: c.session.clone(),
	}
	if c.session != nil {
		s.Remaining = c.settings.Trials - c.agg.Recorded()
		if c.phase == PhaseVisible {
			if open := c.session.open(); open != nil {
				t := *open
				s.Target = &t
			}
		}
	}
	if c.last != nil {
		last := *c.last
		s.Last = &last
	}
	return s
}

// Last returns the result of the most recent completed session.
func (c *Controller) Last() (models.AttentionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last == nil {
		return models.AttentionResult{}, false
	}
	return *c.last, true
}

func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase != PhaseIdle
}

func (c *Controller) onSpawn(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.phase != PhaseSpawning {
		c.mu.Unlock()
		return
	}
	c.spawnTimer = nil

	now := c.clock.Now()
	c.generation++
	trial := Trial{
		Index:      len(c.session.Trials),
		Generation: c.generation,
		SpawnedAt:  now,
		Position:   c.position(),
		Outcome:    Pending,
	}
	c.session.Trials = append(c.session.Trials, trial)
	c.phase = PhaseVisible

	c.cancelExpireLocked()
	expireGen := c.generation
	c.expireTimer = c.clock.AfterFunc(c.settings.ExpireAfter, func() { c.onExpire(expireGen) })

	events := []Event{c.eventLocked(EventTargetShown, &trial, now)}
	c.log.Debug("Target shown",
		zap.String("session", c.session.ID),
		zap.Int("trial", trial.Index),
		zap.Int("x", trial.Position.X),
		zap.Int("y", trial.Position.Y),
	)
	c.mu.Unlock()

	c.emit(events)
}

func (c *Controller) onExpire(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.phase != PhaseVisible {
		c.mu.Unlock()
		return
	}
	c.expireTimer = nil

	open := c.session.open()
	if open == nil {
		c.mu.Unlock()
		return
	}

	now := c.clock.Now()
	if err := c.agg.RecordMiss(); err != nil {
		c.log.Error("Failed to record miss", zap.String("session", c.session.ID), zap.Error(err))
	}
	open.Outcome = Miss
	c.generation++
	resolved := *open

	events := []Event{c.eventLocked(EventTargetMissed, &resolved, now)}
	events = append(events, c.advanceLocked(now)...)
	c.mu.Unlock()

	c.emit(events)
}

// advanceLocked spawns the next target or, once every trial is resolved,
// completes the session.
func (c *Controller) advanceLocked(now time.Time) []Event {
	if len(c.session.Trials) < c.settings.Trials {
		c.scheduleSpawnLocked()
		return nil
	}
	return c.completeLocked(now)
}

func (c *Controller) completeLocked(now time.Time) []Event {
	c.phase = PhaseCompleting
	c.cancelSpawnLocked()
	c.cancelExpireLocked()

	summary, err := c.agg.Finalize()
	if err != nil {
		c.log.Error("Attention session finalized early", zap.String("session", c.session.ID), zap.Error(err))
		c.phase = PhaseIdle
		return nil
	}

	raw := metrics.AttentionIndicator(summary)
	indicator := metrics.CombineIndicator(nil, raw)
	if c.tracker != nil {
		indicator = c.tracker.Update(raw)
	}
	result := metrics.AttentionResultFrom(c.session.ID, summary, raw, indicator)
	result.CompletedAt = now

	c.session.State = Completed
	c.session.FinishedAt = now
	c.last = &result
	c.generation++
	c.phase = PhaseIdle

	c.log.Info("Attention session completed",
		zap.String("session", c.session.ID),
		zap.Int("hits", result.Hits),
		zap.Int("misses", result.Misses),
		zap.Int("avg_reaction_ms", result.AverageReactionTimeMs),
		zap.Float64("indicator", result.Indicator),
	)

	e := c.eventLocked(EventSessionCompleted, nil, now)
	out := result
	e.Result = &out
	return []Event{e}
}

// scheduleSpawnLocked replaces any pending spawn timer with a fresh one
// tagged with the current generation.
func (c *Controller) scheduleSpawnLocked() {
	c.cancelSpawnLocked()
	c.phase = PhaseSpawning
	gen := c.generation
	c.spawnTimer = c.clock.AfterFunc(c.spawnDelay(), func() { c.onSpawn(gen) })
}

func (c *Controller) cancelSpawnLocked() {
	if c.spawnTimer != nil {
		c.spawnTimer.Stop()
		c.spawnTimer = nil
	}
}

func (c *Controller) cancelExpireLocked() {
	if c.expireTimer != nil {
		c.expireTimer.Stop()
		c.expireTimer = nil
	}
}

func (c *Controller) spawnDelay() time.Duration {
	span := c.settings.SpawnDelayMax - c.settings.SpawnDelayMin
	if span <= 0 {
		return c.settings.SpawnDelayMin
	}
	return c.settings.SpawnDelayMin + time.Duration(c.rng.Int64N(int64(span)+1))
}

func (c *Controller) position() Position {
	m := c.settings.MarginPercent
	return Position{
		X: m + c.rng.IntN(100-2*m),
		Y: m + c.rng.IntN(100-2*m),
	}
}

func (c *Controller) eventLocked(t EventType, trial *Trial, now time.Time) Event {
	return Event{
		Type:      t,
		SessionID: c.session.ID,
		Trial:     trial,
		Remaining: c.settings.Trials - c.agg.Recorded(),
		At:        now,
	}
}

func (c *Controller) emit(events []Event) {
	if c.observer == nil {
		return
	}
	for _, e := range events {
		c.observer(e)
	}
}
