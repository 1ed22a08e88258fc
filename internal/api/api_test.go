package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"server-arcade/internal/arcade"
	"server-arcade/internal/game"
	"server-arcade/internal/history"
	"server-arcade/internal/ledger"
	"server-arcade/internal/matchstore"
)

func testServer(t *testing.T) (*Server, *ledger.Ledger) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ledger.Account{}, &history.MatchRecord{}, &history.WinLossRecord{}))

	store, err := matchstore.New(filepath.Join(t.TempDir(), "matches.json"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	bank, err := ledger.New(db, 100000, 0)
	require.NoError(t, err)

	recorder := history.NewRecorder(db)
	ctrl, err := arcade.New(arcade.Config{RoomCleanupDelay: time.Hour}, store, bank, recorder, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ctrl.Close() })

	return New(ctrl, bank, recorder), bank
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func TestStartMatchEndpoint(t *testing.T) {
	s, _ := testServer(t)

	resp := doJSON(t, s, "POST", "/matches", map[string]any{
		"game_type": "guessnumber", "channel_id": "chan", "player_one": "p1", "player_two": "p2",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var match game.Match
	decode(t, resp, &match)
	assert.Equal(t, "chan", match.ID)
	assert.Equal(t, game.StatusAwaitingSetup, match.Status)

	// Same channel again: conflict.
	resp = doJSON(t, s, "POST", "/matches", map[string]any{
		"game_type": "guessnumber", "channel_id": "chan", "player_one": "p3", "player_two": "p4",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestStartMatchRejectsBadInput(t *testing.T) {
	s, _ := testServer(t)

	resp := doJSON(t, s, "POST", "/matches", map[string]any{
		"game_type": "poker", "channel_id": "chan", "player_one": "p1", "player_two": "p2",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, s, "POST", "/matches", map[string]any{
		"game_type": "connect4", "channel_id": "chan", "player_one": "p1", "player_two": "p1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, s, "POST", "/matches", map[string]any{
		"game_type": "connect4", "channel_id": "chan", "player_one": "p1", "player_two": "p2", "wager": 10,
	})
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
}

func TestGetMissingMatch(t *testing.T) {
	s, _ := testServer(t)
	resp := doJSON(t, s, "GET", "/matches/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFullGameOverHTTP(t *testing.T) {
	s, bank := testServer(t)
	require.NoError(t, bank.Transfer(context.Background(), "p1", 100))
	require.NoError(t, bank.Transfer(context.Background(), "p2", 100))

	resp := doJSON(t, s, "POST", "/matches", map[string]any{
		"game_type": "guessnumber", "channel_id": "chan", "player_one": "p1", "player_two": "p2", "wager": 30,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	for player, secret := range map[string]string{"p1": "1234", "p2": "5678"} {
		resp = doJSON(t, s, "POST", "/matches/chan/setup", map[string]any{
			"player_id": player,
			"input":     map[string]any{"kind": "submit_secret", "digits": secret},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, "setup for %s", player)
	}

	// Out of turn: conflict, not a state change.
	resp = doJSON(t, s, "POST", "/matches/chan/turns", map[string]any{
		"player_id": "p2",
		"input":     map[string]any{"kind": "submit_guess", "digits": "1234"},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, s, "POST", "/matches/chan/turns", map[string]any{
		"player_id": "p1",
		"input":     map[string]any{"kind": "submit_guess", "digits": "5678"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result arcade.TurnResult
	decode(t, resp, &result)
	assert.True(t, result.Completed)
	assert.Equal(t, "p1", result.Winner)

	var balance struct {
		Balance int64 `json:"balance"`
	}
	resp = doJSON(t, s, "GET", "/players/p1/balance", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &balance)
	assert.Equal(t, int64(130), balance.Balance)

	var recs []history.MatchRecord
	resp = doJSON(t, s, "GET", "/history", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &recs)
	assert.Len(t, recs, 1)

	var stats history.WinLossRecord
	resp = doJSON(t, s, "GET", "/players/p1/stats?game_type=guessnumber", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &stats)
	assert.Equal(t, int64(1), stats.Wins)
}

func TestGrantEndpoint(t *testing.T) {
	s, _ := testServer(t)

	resp := doJSON(t, s, "POST", "/players/p1/grant", map[string]any{"amount": 250})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Balance int64 `json:"balance"`
	}
	decode(t, resp, &out)
	assert.Equal(t, int64(250), out.Balance)

	// Taking more than the player has fails cleanly.
	resp = doJSON(t, s, "POST", "/players/p1/grant", map[string]any{"amount": -500})
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
}
