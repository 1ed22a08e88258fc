package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Account{}))
	return db
}

func totalBalance(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var total int64
	require.NoError(t, db.Model(&Account{}).Select("COALESCE(SUM(balance), 0)").Scan(&total).Error)
	return total
}

func TestBalanceAutoCreates(t *testing.T) {
	db := testDB(t)
	l, err := New(db, 1000, 0)
	require.NoError(t, err)

	balance, err := l.Balance(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	var acc Account
	require.NoError(t, db.First(&acc, "id = ?", "alice").Error)
	assert.Equal(t, sentinelTime(), acc.LastTxAt.UTC())
}

func TestStartingBalanceSeedsNewAccounts(t *testing.T) {
	db := testDB(t)
	l, err := New(db, 1000, 100)
	require.NoError(t, err)
	ctx := context.Background()

	balance, err := l.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	// The seed came out of the bank, not out of thin air.
	bank, err := l.Balance(ctx, BankID)
	require.NoError(t, err)
	assert.Equal(t, int64(900), bank)
	assert.Equal(t, int64(1000), totalBalance(t, db))

	// Seeding happens once, on first sight only.
	balance, err = l.Balance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	// Accounts created implicitly by a settlement get seeded too.
	require.NoError(t, l.SettleWager(ctx, "bob", "alice", 30))
	b, _ := l.Balance(ctx, "bob")
	assert.Equal(t, int64(130), b)
	assert.Equal(t, int64(1000), totalBalance(t, db))
}

func TestStartingBalanceExceedsBankReserve(t *testing.T) {
	db := testDB(t)
	l, err := New(db, 50, 100)
	require.NoError(t, err)

	_, err = l.Balance(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestTransfer(t *testing.T) {
	db := testDB(t)
	l, err := New(db, 1000, 0)
	require.NoError(t, err)

	require.NoError(t, l.Transfer(context.Background(), "alice", 100))

	balance, err := l.Balance(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	bank, err := l.Balance(context.Background(), BankID)
	require.NoError(t, err)
	assert.Equal(t, int64(900), bank)

	err = l.Transfer(context.Background(), "alice", -150)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// The rejected transfer left both rows alone.
	balance, _ = l.Balance(context.Background(), "alice")
	assert.Equal(t, int64(100), balance)
	bank, _ = l.Balance(context.Background(), BankID)
	assert.Equal(t, int64(900), bank)
}

func TestTransferToBankRejected(t *testing.T) {
	db := testDB(t)
	l, err := New(db, 1000, 0)
	require.NoError(t, err)
	assert.Error(t, l.Transfer(context.Background(), BankID, 10))
}

func TestConservation(t *testing.T) {
	db := testDB(t)
	l, err := New(db, 5000, 0)
	require.NoError(t, err)
	ctx := context.Background()

	moves := []struct {
		account string
		delta   int64
	}{
		{"alice", 200}, {"bob", 300}, {"alice", -50},
		{"carol", 120}, {"bob", -300}, {"alice", 75},
	}
	for _, m := range moves {
		require.NoError(t, l.Transfer(ctx, m.account, m.delta))
		assert.Equal(t, int64(5000), totalBalance(t, db))
	}
}

func TestSettleWager(t *testing.T) {
	db := testDB(t)
	l, err := New(db, 10000, 0)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, l.Transfer(ctx, "p1", 100))
	require.NoError(t, l.Transfer(ctx, "p2", 100))

	require.NoError(t, l.SettleWager(ctx, "p1", "p2", 30))

	b1, _ := l.Balance(ctx, "p1")
	b2, _ := l.Balance(ctx, "p2")
	assert.Equal(t, int64(130), b1)
	assert.Equal(t, int64(70), b2)
	assert.Equal(t, int64(10000), totalBalance(t, db))
}

func TestSettleWagerZeroIsNoop(t *testing.T) {
	db := testDB(t)
	l, err := New(db, 10000, 0)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, l.Transfer(ctx, "p1", 100))
	require.NoError(t, l.SettleWager(ctx, "p1", "p2", 0))

	b1, _ := l.Balance(ctx, "p1")
	assert.Equal(t, int64(100), b1)
}

// A loser whose balance no longer covers the wager must fail the whole
// settlement, winner leg included.
func TestSettleWagerAtomic(t *testing.T) {
	db := testDB(t)
	l, err := New(db, 10000, 0)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, l.Transfer(ctx, "p1", 100))
	require.NoError(t, l.Transfer(ctx, "p2", 10))

	err = l.SettleWager(ctx, "p1", "p2", 30)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	b1, _ := l.Balance(ctx, "p1")
	b2, _ := l.Balance(ctx, "p2")
	assert.Equal(t, int64(100), b1)
	assert.Equal(t, int64(10), b2)
	assert.Equal(t, int64(10000), totalBalance(t, db))
}
