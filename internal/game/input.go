package game

// InputKind tags the Input union.
type InputKind string

const (
	InputDropColumn   InputKind = "drop_column"
	InputSubmitGuess  InputKind = "submit_guess"
	InputSubmitSecret InputKind = "submit_secret"
	InputSelectSeat   InputKind = "select_seat"
)

// Input is the tagged union every player action is expressed as. The
// controller dispatches on Kind; exactly one payload field is relevant
// per kind. Inputs travel by value, the presentation layer never hands
// the core callbacks or object references.
type Input struct {
	Kind   InputKind `json:"kind"`
	Column int       `json:"column,omitempty"` // drop_column
	Digits string    `json:"digits,omitempty"` // submit_guess, submit_secret
	Color  Color     `json:"color,omitempty"`  // select_seat
}

func DropColumn(col int) Input {
	return Input{Kind: InputDropColumn, Column: col}
}

func SubmitGuess(digits string) Input {
	return Input{Kind: InputSubmitGuess, Digits: digits}
}

func SubmitSecret(digits string) Input {
	return Input{Kind: InputSubmitSecret, Digits: digits}
}

func SelectSeat(color Color) Input {
	return Input{Kind: InputSelectSeat, Color: color}
}
