// Package memory implements the colour-sequence recall test.
package memory

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

// Palette is the set of colours a sequence is drawn from.
var Palette = []string{"red", "blue", "green", "yellow", "purple", "orange"}

var (
	ErrAlreadyRunning  = errors.New("memory game already running")
	ErrNotRecalling    = errors.New("memory game is not accepting selections")
	ErrUnknownColour   = errors.New("colour is not in the palette")
	ErrInvalidSettings = errors.New("invalid memory settings")
)

type Phase int

const (
	Idle Phase = iota
	Showing
	Recall
	Completed
)

func (p Phase) String() string {
	switch p {
	case Showing:
		return "showing"
	case Recall:
		return "recall"
	case Completed:
		return "completed"
	default:
		return "idle"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

type Settings struct {
	SequenceLength int
	RevealDuration time.Duration
}

func DefaultSettings() Settings {
	return Settings{SequenceLength: 5, RevealDuration: 3 * time.Second}
}

func (s Settings) Validate() error {
	if s.SequenceLength <= 0 {
		return fmt.Errorf("%w: sequence length must be positive", ErrInvalidSettings)
	}
	if s.RevealDuration <= 0 {
		return fmt.Errorf("%w: reveal duration must be positive", ErrInvalidSettings)
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

// State is what a client may see. The sequence is only disclosed while it is
// shown and after the game completed.
type State struct {
	Phase     Phase                `json:"phase"`
	Palette   []string             `json:"palette"`
	Sequence  []string             `json:"sequence,omitempty"`
	Selected  []string             `json:"selected"`
	Remaining int                  `json:"remaining"`
	RevealEnd time.Time            `json:"revealEnd,omitzero"`
	Last      *models.MemoryResult `json:"last,omitempty"`
}

// Game runs one subject's memory rounds.
type Game struct {
	mu       sync.Mutex
	settings Settings
	clock    clock.Clock
	rng      *rand.Rand
	tracker  *metrics.IndicatorTracker
	log      *zap.Logger

	phase      Phase
	generation uint64
	sequence   []string
	selected   []string
	revealEnd  time.Time
	timer      clock.Timer
	last       *models.MemoryResult
}

func NewGame(opts Options) (*Game, error) {
	if err := opts.Settings.Validate(); err != nil {
		return nil, err
	}
	g := &Game{
		settings: opts.Settings,
		clock:    opts.Clock,
		rng:      opts.Rand,
		tracker:  opts.Tracker,
		log:      opts.Log,
	}
	if g.clock == nil {
		g.clock = clock.Real()
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if g.log == nil {
		g.log = zap.NewNop()
	}
	return g, nil
}

// Start draws a new sequence and shows it for the reveal duration. A
// completed game may be restarted.
func (g *Game) Start() (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase == Showing || g.phase == Recall {
		return g.stateLocked(), ErrAlreadyRunning
	}

	g.sequence = make([]string, g.settings.SequenceLength)
	for i := range g.sequence {
		g.sequence[i] = Palette[g.rng.IntN(len(Palette))]
	}
	g.selected = g.selected[:0]
	g.phase = Showing
	g.generation++
	g.revealEnd = g.clock.Now().Add(g.settings.RevealDuration)

	gen := g.generation
	g.stopTimerLocked()
	g.timer = g.clock.AfterFunc(g.settings.RevealDuration, func() { g.onRevealEnd(gen) })

	g.log.Info("Memory game started", zap.Int("length", len(g.sequence)))
	return g.stateLocked(), nil
}

// Select appends one colour to the recalled sequence. The game completes when
// the recalled sequence is as long as the shown one.
func (g *Game) Select(colour string) (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != Recall {
		return g.stateLocked(), ErrNotRecalling
	}
	if !slices.Contains(Palette, colour) {
		return g.stateLocked(), fmt.Errorf("%w: %q", ErrUnknownColour, colour)
	}

	g.selected = append(g.selected, colour)
	if len(g.selected) == len(g.sequence) {
		if err := g.completeLocked(); err != nil {
			return g.stateLocked(), err
		}
	}
	return g.stateLocked(), nil
}

// Stop abandons a running round without producing a result.
func (g *Game) Stop() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != Showing && g.phase != Recall {
		return false
	}
	g.stopTimerLocked()
	g.generation++
	g.phase = Idle
	g.sequence = nil
	g.selected = nil
	return true
}

func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

func (g *Game) Last() (models.MemoryResult, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last == nil {
		return models.MemoryResult{}, false
	}
	return *g.last, true
}

func (g *Game) onRevealEnd(gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if gen != g.generation || g.phase != Showing {
		return
	}
	g.timer = nil
	g.generation++
	g.phase = Recall
}

func (g *Game) completeLocked() error {
	res, err := metrics.ScoreMemory(g.sequence, g.selected)
	if err != nil {
		return err
	}
	if g.tracker != nil {
		res.Indicator = g.tracker.Update(res.RawIndicator)
	} else {
		res.Indicator = metrics.CombineIndicator(nil, res.RawIndicator)
	}
	res.CompletedAt = g.clock.Now()

	g.last = res
	g.generation++
	g.phase = Completed

	g.log.Info("Memory game completed",
		zap.Int("correct", res.Correct),
		zap.Int("total", res.Total),
		zap.Float64("indicator", res.Indicator),
	)
	return nil
}

func (g *Game) stopTimerLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

func (g *Game) stateLocked() State {
	s := State{
		Phase:     g.phase,
		Palette:   Palette,
		Selected:  append([]string{}, g.selected...),
		Remaining: len(g.sequence) - len(g.selected),
	}
	if g.phase == Showing || g.phase == Completed {
		s.Sequence = append([]string(nil), g.sequence...)
	}
	if g.phase == Showing {
		s.RevealEnd = g.revealEnd
	}
	if g.last != nil {
		last := *g.last
		s.Last = &last
	}
	return s
}
