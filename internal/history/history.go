// Package history records completed matches and cumulative win/loss
// counters per player and game.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"server-arcade/internal/game"
)

// MatchRecord is one completed match. Append-only; a nil WinnerID means
// the match ended in a draw, a nil Wager means the match was played for
// nothing.
type MatchRecord struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	GameType  game.Type `gorm:"index;not null" json:"game_type"`
	PlayerOne string    `gorm:"index;not null" json:"player_one"`
	PlayerTwo string    `gorm:"index;not null" json:"player_two"`
	WinnerID  *string   `json:"winner_id,omitempty"`
	Wager     *int64    `json:"wager,omitempty"`
	PlayedAt  time.Time `gorm:"index;not null" json:"played_at"`
}

// WinLossRecord accumulates per player per game type. Two rows are
// touched per decided match, none on a draw.
type WinLossRecord struct {
	PlayerID string    `gorm:"primaryKey" json:"player_id"`
	GameType game.Type `gorm:"primaryKey" json:"game_type"`
	Wins     int64     `gorm:"not null;default:0" json:"wins"`
	Losses   int64     `gorm:"not null;default:0" json:"losses"`
}

type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// RecordMatch appends one history row for a completed match.
func (r *Recorder) RecordMatch(ctx context.Context, gameType game.Type, playerOne, playerTwo string, winnerID *string, wager *int64) error {
	rec := MatchRecord{
		ID:        uuid.NewString(),
		GameType:  gameType,
		PlayerOne: playerOne,
		PlayerTwo: playerTwo,
		WinnerID:  winnerID,
		Wager:     wager,
		PlayedAt:  time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("append match record: %w", err)
	}
	return nil
}

// BumpWinLoss upserts the player's counter row, incrementing wins or
// losses atomically in the database.
func (r *Recorder) BumpWinLoss(ctx context.Context, playerID string, gameType game.Type, won bool) error {
	rec := WinLossRecord{PlayerID: playerID, GameType: gameType}
	if won {
		rec.Wins = 1
	} else {
		rec.Losses = 1
	}

	column := "losses"
	if won {
		column = "wins"
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player_id"}, {Name: "game_type"}},
		DoUpdates: clause.Assignments(map[string]any{
			column: gorm.Expr(column + " + 1"),
		}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("bump win/loss for %s: %w", playerID, err)
	}
	return nil
}

// Stats returns the player's counters for one game type. A player with
// no finished matches gets zeroed counters, not an error.
func (r *Recorder) Stats(ctx context.Context, playerID string, gameType game.Type) (WinLossRecord, error) {
	var rec WinLossRecord
	err := r.db.WithContext(ctx).
		Where("player_id = ? AND game_type = ?", playerID, gameType).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return WinLossRecord{PlayerID: playerID, GameType: gameType}, nil
	}
	if err != nil {
		return rec, fmt.Errorf("fetch stats for %s: %w", playerID, err)
	}
	return rec, nil
}

// RecentMatches lists the newest history rows, newest first.
func (r *Recorder) RecentMatches(ctx context.Context, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var recs []MatchRecord
	err := r.db.WithContext(ctx).
		Order("played_at DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("fetch recent matches: %w", err)
	}
	return recs, nil
}
