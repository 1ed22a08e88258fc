package game

import "errors"

// Validation errors: the input itself is malformed. Rejected before any
// state is touched.
var (
	ErrUnknownGameType = errors.New("unknown game type")
	ErrSelfChallenge   = errors.New("you cannot challenge yourself")
	ErrInvalidOpponent = errors.New("opponent cannot take part in matches")
	ErrInvalidWager    = errors.New("wager must be zero or positive")
	ErrInvalidSecret   = errors.New("secret must be 4 distinct digits")
	ErrInvalidColumn   = errors.New("column must be between 0 and 6")
	ErrInvalidColor    = errors.New("pick red or yellow")
	ErrNotParticipant  = errors.New("you are not part of this match")
	ErrUnexpectedInput = errors.New("that input does not belong to this game")
)

// State errors: well-formed input arriving in the wrong phase or out of
// turn. The match is left exactly as it was.
var (
	ErrNotYourTurn      = errors.New("not your turn")
	ErrColumnFull       = errors.New("column is full")
	ErrSetupIncomplete  = errors.New("match setup is not finished")
	ErrSetupDone        = errors.New("setup is already finished")
	ErrSecretAlreadySet = errors.New("your secret is already set")
	ErrColorTaken       = errors.New("that color is already taken")
	ErrMatchCompleted   = errors.New("match is already completed")
	ErrIgnoredGuess     = errors.New("guess ignored, send 4 distinct digits")
)
