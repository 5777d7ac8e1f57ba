package attention

import (
	"time"

	"cogscreen/internal/models"
)

type EventType string

const (
	EventSessionStarted   EventType = "session_started"
	EventTargetShown      EventType = "target_shown"
	EventTargetHit        EventType = "target_hit"
	EventTargetMissed     EventType = "target_missed"
	EventSessionCompleted EventType = "session_completed"
	EventSessionStopped   EventType = "session_stopped"
)

// Event describes one lifecycle transition.
type Event struct {
	Type      EventType               `json:"type"`
	SessionID string                  `json:"sessionId"`
	Trial     *Trial                  `json:"trial,omitempty"`
	Remaining int                     `json:"remaining"`
	Result    *models.AttentionResult `json:"result,omitempty"`
	At        time.Time               `json:"at"`
}

// Observer receives events after the controller has released its lock, in
// the order the transitions happened on that goroutine.
type Observer func(Event)

// Observers fans an event out to several observers.
func Observers(obs ...Observer) Observer {
	return func(e Event) {
		for _, o := range obs {
			if o != nil {
				o(e)
			}
		}
	}
}
