// Package game holds the shared match model used by the engines,
// the lifecycle controller and the storage layer.
package game

import "time"

type Type string

const (
	TypeConnectFour Type = "connect4"
	TypeGuessNumber Type = "guessnumber"
)

func (t Type) Valid() bool {
	return t == TypeConnectFour || t == TypeGuessNumber
}

type Status string

const (
	StatusAwaitingSetup Status = "awaiting_setup"
	StatusInProgress    Status = "in_progress"
	StatusCompleted     Status = "completed"
)

// Seat identifies one of the two players of a match. PlayerOne is
// always the initiator of the challenge.
type Seat uint8

const (
	NoSeat    Seat = 0
	PlayerOne Seat = 1
	PlayerTwo Seat = 2
)

func (s Seat) Opponent() Seat {
	switch s {
	case PlayerOne:
		return PlayerTwo
	case PlayerTwo:
		return PlayerOne
	}
	return NoSeat
}

func (s Seat) String() string {
	switch s {
	case PlayerOne:
		return "player_one"
	case PlayerTwo:
		return "player_two"
	}
	return "none"
}

// Match is the envelope stored per hosting channel. Exactly one of the
// engine state pointers is set, matching Type.
type Match struct {
	ID        string    `json:"id"` // hosting channel/thread ID
	Type      Type      `json:"type"`
	Status    Status    `json:"status"`
	PlayerOne string    `json:"player_one"`
	PlayerTwo string    `json:"player_two"`
	Wager     int64     `json:"wager"`
	CreatedAt time.Time `json:"created_at"`

	ConnectFour *ConnectFourState `json:"connect_four,omitempty"`
	GuessNumber *GuessNumberState `json:"guess_number,omitempty"`
}

// SeatOf maps a player ID to a seat, or NoSeat for strangers.
func (m *Match) SeatOf(playerID string) Seat {
	switch playerID {
	case m.PlayerOne:
		return PlayerOne
	case m.PlayerTwo:
		return PlayerTwo
	}
	return NoSeat
}

// PlayerAt is the inverse of SeatOf.
func (m *Match) PlayerAt(seat Seat) string {
	switch seat {
	case PlayerOne:
		return m.PlayerOne
	case PlayerTwo:
		return m.PlayerTwo
	}
	return ""
}
