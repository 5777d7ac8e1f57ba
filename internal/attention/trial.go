package attention

import (
	"encoding/json"
	"time"
)

// Outcome is how a trial was resolved.
type Outcome int

const (
	Pending Outcome = iota
	Hit
	Miss
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	default:
		return "pending"
	}
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// SessionState is the lifecycle of a whole test run.
type SessionState int

const (
	Idle SessionState = iota
	Running
	Completed
)

func (s SessionState) String() string {
	switch s {
	case Running:
		return "running"
	case Completed:
		return "completed"
	default:
		return "idle"
	}
}

func (s SessionState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Phase is the controller's position in the target lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSpawning
	PhaseVisible
	PhaseCompleting
)

func (p Phase) String() string {
	switch p {
	case PhaseSpawning:
		return "spawning"
	case PhaseVisible:
		return "visible"
	case PhaseCompleting:
		return "completing"
	default:
		return "idle"
	}
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// Position is a target location in percent of the display area.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Trial is one spawn-to-resolution cycle. Outcome moves from Pending to Hit
// or Miss exactly once.
type Trial struct {
	Index          int       `json:"index"`
	Generation     uint64    `json:"generation"`
	SpawnedAt      time.Time `json:"spawnedAt"`
	Position       Position  `json:"position"`
	Outcome        Outcome   `json:"outcome"`
	ReactionTimeMs int       `json:"reactionTimeMs,omitempty"`
}

// Session is the ordered, append-only list of trials of one test run.
type Session struct {
	ID         string       `json:"id"`
	Trials     []Trial      `json:"trials"`
	State      SessionState `json:"state"`
	Aborted    bool         `json:"aborted,omitempty"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt,omitzero"`
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Trials = append([]Trial(nil), s.Trials...)
	return &c
}

// open returns the trial still awaiting an outcome, if any.
func (s *Session) open() *Trial {
	if len(s.Trials) == 0 {
		return nil
	}
	last := &s.Trials[len(s.Trials)-1]
	if last.Outcome != Pending {
		return nil
	}
	return last
}
