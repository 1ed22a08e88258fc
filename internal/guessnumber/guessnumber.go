// Package guessnumber implements the Mastermind-style number game:
// secret validation, A/B scoring and strict turn alternation.
package guessnumber

import (
	"server-arcade/internal/game"
)

func NewState() *game.GuessNumberState {
	return &game.GuessNumberState{}
}

// ValidateSecret checks a candidate secret: exactly 4 characters, all
// ASCII digits, all distinct.
func ValidateSecret(candidate string) error {
	if len(candidate) != 4 {
		return game.ErrInvalidSecret
	}
	var seen [10]bool
	for i := 0; i < 4; i++ {
		ch := candidate[i]
		if ch < '0' || ch > '9' {
			return game.ErrInvalidSecret
		}
		d := ch - '0'
		if seen[d] {
			return game.ErrInvalidSecret
		}
		seen[d] = true
	}
	return nil
}

// SetSecret stores seat's secret. Reports done=true once both secrets
// are in, at which point PlayerOne is set to act first.
func SetSecret(s *game.GuessNumberState, seat game.Seat, secret string) (done bool, err error) {
	if err := ValidateSecret(secret); err != nil {
		return false, err
	}
	if s.Secret(seat) != "" {
		return false, game.ErrSecretAlreadySet
	}

	if seat == game.PlayerOne {
		s.SecretOne = secret
	} else {
		s.SecretTwo = secret
	}

	if !s.Ready() {
		return false, nil
	}
	s.NextToAct = game.PlayerOne
	return true, nil
}

// Score compares a guess against a secret. A counts digits in the right
// position, B counts digits present but misplaced. Secrets have no
// repeated digits so each secret position contributes at most once.
func Score(secret, guess string) (a, b int) {
	for i := 0; i < len(secret); i++ {
		ch := secret[i]
		if i < len(guess) && guess[i] == ch {
			a++
			continue
		}
		for j := 0; j < len(guess); j++ {
			if guess[j] == ch {
				b++
				break
			}
		}
	}
	return a, b
}

// Guess applies seat's guess against the opponent's secret. Inputs that
// are not 4 distinct digits are ignored without consuming the turn
// (ErrIgnoredGuess). Turn order alternates strictly, PlayerOne leads;
// the seat to act is toggled exactly once per accepted guess.
func Guess(s *game.GuessNumberState, seat game.Seat, digits string) (a, b int, won bool, err error) {
	if !s.Ready() {
		return 0, 0, false, game.ErrSetupIncomplete
	}
	if s.NextToAct != seat {
		return 0, 0, false, game.ErrNotYourTurn
	}
	if ValidateSecret(digits) != nil {
		return 0, 0, false, game.ErrIgnoredGuess
	}

	a, b = Score(s.Secret(seat.Opponent()), digits)

	if seat == game.PlayerOne {
		s.GuessesOne++
	} else {
		s.GuessesTwo++
	}
	s.NextToAct = seat.Opponent()

	return a, b, a == 4, nil
}
