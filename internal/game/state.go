package game

const (
	BoardRows = 6
	BoardCols = 7
)

// Cell is one slot of a Connect-Four board.
type Cell uint8

const (
	Empty Cell = 0
	One   Cell = 1 // PlayerOne disc
	Two   Cell = 2 // PlayerTwo disc
)

// Color is the seat token picked during Connect-Four setup.
// Red always moves first.
type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
)

func (c Color) Valid() bool {
	return c == ColorRed || c == ColorYellow
}

// ConnectFourState is the per-match payload of a Connect-Four game.
// Rows run 0 (top) to 5 (bottom), columns 0 to 6; gravity pulls discs
// to the highest-indexed empty row.
type ConnectFourState struct {
	Board    [BoardRows][BoardCols]Cell `json:"board"`
	Turn     Seat                       `json:"turn"`
	ColorOne Color                      `json:"color_one,omitempty"`
	ColorTwo Color                      `json:"color_two,omitempty"`
	Moves    int                        `json:"moves"`
}

// ColorOf returns the color the given seat picked during setup.
func (s *ConnectFourState) ColorOf(seat Seat) Color {
	if seat == PlayerOne {
		return s.ColorOne
	}
	return s.ColorTwo
}

// GuessNumberState is the per-match payload of a Guess-the-Number game.
// NextToAct is toggled exactly once per accepted guess; guess counters
// are kept for reporting only and never drive the turn gate.
type GuessNumberState struct {
	SecretOne  string `json:"secret_one"`
	SecretTwo  string `json:"secret_two"`
	GuessesOne int    `json:"guesses_one"`
	GuessesTwo int    `json:"guesses_two"`
	NextToAct  Seat   `json:"next_to_act"`
}

// Secret returns the stored secret of the given seat.
func (s *GuessNumberState) Secret(seat Seat) string {
	if seat == PlayerOne {
		return s.SecretOne
	}
	return s.SecretTwo
}

// Ready reports whether both secrets have been set.
func (s *GuessNumberState) Ready() bool {
	return s.SecretOne != "" && s.SecretTwo != ""
}
