// Package connectfour implements the Connect-Four rules: gravity drops,
// win and draw detection, seat setup and turn order.
package connectfour

import (
	"server-arcade/internal/game"
)

// NewState returns an empty board with no colors picked. Turn stays
// unset until setup resolves who plays red.
func NewState() *game.ConnectFourState {
	return &game.ConnectFourState{}
}

// PickColor records a seat's color choice. The second picker must take
// the remaining color. Reports done=true once both seats have picked,
// at which point Turn is set to the red seat.
func PickColor(s *game.ConnectFourState, seat game.Seat, color game.Color) (done bool, err error) {
	if !color.Valid() {
		return false, game.ErrInvalidColor
	}
	if s.ColorOf(seat) != "" {
		return false, game.ErrSetupDone
	}
	if s.ColorOf(seat.Opponent()) == color {
		return false, game.ErrColorTaken
	}

	if seat == game.PlayerOne {
		s.ColorOne = color
	} else {
		s.ColorTwo = color
	}

	if s.ColorOne == "" || s.ColorTwo == "" {
		return false, nil
	}

	// Red opens the game.
	if s.ColorOne == game.ColorRed {
		s.Turn = game.PlayerOne
	} else {
		s.Turn = game.PlayerTwo
	}
	return true, nil
}

// Drop places seat's disc into column, pulling it down to the lowest
// empty cell. The board is left untouched on any error.
func Drop(s *game.ConnectFourState, column int, seat game.Seat) (row int, err error) {
	if column < 0 || column >= game.BoardCols {
		return 0, game.ErrInvalidColumn
	}
	if s.Turn != seat {
		return 0, game.ErrNotYourTurn
	}

	for r := game.BoardRows - 1; r >= 0; r-- {
		if s.Board[r][column] == game.Empty {
			s.Board[r][column] = game.Cell(seat)
			s.Moves++
			s.Turn = seat.Opponent()
			return r, nil
		}
	}
	return 0, game.ErrColumnFull
}

// Wins reports whether the disc at (row, column) completes a line of
// four. Each of the four axes is scanned in both directions from the
// placed cell, so wins are found no matter which cell of the line was
// played last.
func Wins(s *game.ConnectFourState, row, column int) bool {
	mark := s.Board[row][column]
	if mark == game.Empty {
		return false
	}

	dirs := [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}
	for _, d := range dirs {
		count := 1

		r, c := row+d[0], column+d[1]
		for r >= 0 && r < game.BoardRows && c >= 0 && c < game.BoardCols && s.Board[r][c] == mark {
			count++
			r += d[0]
			c += d[1]
		}

		r, c = row-d[0], column-d[1]
		for r >= 0 && r < game.BoardRows && c >= 0 && c < game.BoardCols && s.Board[r][c] == mark {
			count++
			r -= d[0]
			c -= d[1]
		}

		if count >= 4 {
			return true
		}
	}
	return false
}

// Full reports a draw board: every cell occupied. Only meaningful after
// a non-winning placement.
func Full(s *game.ConnectFourState) bool {
	for c := 0; c < game.BoardCols; c++ {
		if s.Board[0][c] == game.Empty {
			return false
		}
	}
	return true
}
