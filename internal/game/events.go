package game

import "time"

// EventKind tags the Event union emitted by the lifecycle controller.
type EventKind string

const (
	EventMatchStarted   EventKind = "match_started"
	EventSetupCompleted EventKind = "setup_completed"
	EventTurnResolved   EventKind = "turn_resolved"
	EventMatchCompleted EventKind = "match_completed"
)

// Feedback is what the last resolved turn produced, rendered by the
// glue layer. For Connect-Four Row/Column carry the landed disc; for
// Guess-the-Number ExactHits/ValueHits carry the A/B score.
type Feedback struct {
	Seat      Seat   `json:"seat"`
	Row       int    `json:"row,omitempty"`
	Column    int    `json:"column,omitempty"`
	Guess     string `json:"guess,omitempty"`
	ExactHits int    `json:"exact_hits,omitempty"`
	ValueHits int    `json:"value_hits,omitempty"`
}

// Event is a value the core hands to the notifier. It carries no
// references back into core state.
type Event struct {
	Kind     EventKind `json:"kind"`
	MatchID  string    `json:"match_id"`
	GameType Type      `json:"game_type"`
	At       time.Time `json:"at"`

	Feedback *Feedback `json:"feedback,omitempty"` // turn_resolved

	// match_completed only
	Winner       string `json:"winner,omitempty"` // empty on draw
	Draw         bool   `json:"draw,omitempty"`
	WagerSettled int64  `json:"wager_settled,omitempty"`
}

// Notifier receives controller events. Implementations must treat calls
// as fire-and-forget: the controller mutates state first, notifies
// second, and does not roll back when a notification fails.
type Notifier interface {
	Notify(ev Event)
}

// Rooms opens and tears down the dedicated communication context a
// match is played in (a thread, in the chat-platform layer). Both calls
// are best-effort from the core's point of view.
type Rooms interface {
	Open(matchID string) error
	Close(matchID string) error
}

// NopNotifier discards events. Used when no glue layer is attached.
type NopNotifier struct{}

func (NopNotifier) Notify(Event) {}

// NopRooms ignores room management.
type NopRooms struct{}

func (NopRooms) Open(string) error  { return nil }
func (NopRooms) Close(string) error { return nil }
