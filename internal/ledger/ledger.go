// Package ledger is the virtual-currency subsystem: player accounts, a
// central bank account, and atomic balance transfers between them.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// BankID is the reserved account the inverse leg of every transfer is
// booked against. Conservation: sum of all balances, bank included, is
// constant across transfers.
const BankID = "bank"

var ErrInsufficientFunds = errors.New("insufficient funds")

// Account is one balance row. Player IDs come from the hosting
// platform; the bank uses the reserved BankID.
type Account struct {
	ID       string    `gorm:"primaryKey" json:"id"`
	Balance  int64     `gorm:"not null;default:0;check:balance >= 0" json:"balance"`
	LastTxAt time.Time `gorm:"not null" json:"last_tx_at"`
}

type Ledger struct {
	db       *gorm.DB
	starting int64
}

// New wires the ledger to its database and seeds the bank account with
// the given reserve if it does not exist yet. startingBalance is what a
// freshly auto-created player account opens with; it is moved out of
// the bank so conservation holds from the first sight of a player.
func New(db *gorm.DB, bankReserve, startingBalance int64) (*Ledger, error) {
	if startingBalance < 0 {
		return nil, fmt.Errorf("negative starting balance %d", startingBalance)
	}
	l := &Ledger{db: db, starting: startingBalance}

	bank := Account{ID: BankID, Balance: bankReserve, LastTxAt: sentinelTime()}
	if err := db.Where(Account{ID: BankID}).FirstOrCreate(&bank).Error; err != nil {
		return nil, fmt.Errorf("seed bank account: %w", err)
	}
	return l, nil
}

// sentinelTime marks accounts that were auto-created and never traded.
func sentinelTime() time.Time {
	return time.Unix(0, 0).UTC()
}

// Balance returns the account balance, creating the account on first
// sight. New player accounts open with the configured starting balance,
// funded out of the bank.
func (l *Ledger) Balance(ctx context.Context, accountID string) (int64, error) {
	var acc Account
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := l.ensure(tx, accountID); err != nil {
			return err
		}
		return tx.First(&acc, "id = ?", accountID).Error
	})
	if err != nil {
		return 0, fmt.Errorf("fetch account %s: %w", accountID, err)
	}
	return acc.Balance, nil
}

// apply moves delta onto one account row with a non-negative guard in
// the statement itself, so concurrent transfers cannot race the check.
func apply(tx *gorm.DB, accountID string, delta int64, now time.Time) error {
	res := tx.Model(&Account{}).
		Where("id = ? AND balance + ? >= 0", accountID, delta).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance + ?", delta),
			"last_tx_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

// ensure creates the account row if it is missing. A newly created
// player account is seeded with the starting balance, debiting the bank
// in the same transaction so the ledger total stays constant. The bank
// itself never gets seeded.
func (l *Ledger) ensure(tx *gorm.DB, accountID string) error {
	acc := Account{ID: accountID, LastTxAt: sentinelTime()}
	res := tx.Where(Account{ID: accountID}).FirstOrCreate(&acc)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 || l.starting == 0 || accountID == BankID {
		return nil
	}
	now := time.Now().UTC()
	if err := apply(tx, BankID, -l.starting, now); err != nil {
		return err
	}
	return apply(tx, accountID, l.starting, now)
}

// Transfer applies delta to the account and the inverse to the bank in
// a single transaction. A negative delta that would drive the account
// below zero fails with ErrInsufficientFunds; same for a positive delta
// the bank cannot cover.
func (l *Ledger) Transfer(ctx context.Context, accountID string, delta int64) error {
	if accountID == BankID {
		return fmt.Errorf("bank is not a transfer target")
	}
	now := time.Now().UTC()
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := l.ensure(tx, accountID); err != nil {
			return err
		}
		if err := apply(tx, accountID, delta, now); err != nil {
			return err
		}
		return apply(tx, BankID, -delta, now)
	})
}

// SettleWager moves the wager from loser to winner in one transaction.
// Both legs commit or neither does; the bank nets to zero so it is not
// touched. Callers pre-check funds at match start, the guard here is
// the last line of defence.
func (l *Ledger) SettleWager(ctx context.Context, winnerID, loserID string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("negative wager %d", amount)
	}
	if amount == 0 {
		return nil
	}
	now := time.Now().UTC()
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := l.ensure(tx, winnerID); err != nil {
			return err
		}
		if err := l.ensure(tx, loserID); err != nil {
			return err
		}
		if err := apply(tx, loserID, -amount, now); err != nil {
			return err
		}
		return apply(tx, winnerID, amount, now)
	})
}
