// Package arcade is the match lifecycle controller. It owns every match
// from challenge to settlement: setup sequencing, turn dispatch into
// the engines, wager settlement through the ledger, and history
// recording.
package arcade

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"server-arcade/internal/connectfour"
	"server-arcade/internal/game"
	"server-arcade/internal/guessnumber"
	"server-arcade/internal/history"
	"server-arcade/internal/ledger"
	"server-arcade/internal/matchstore"
)

var ErrInsufficientWagerFunds = errors.New("not enough funds to cover the wager")

// lockSweepInterval is how often the lock table is reconciled against
// the store, so abandoned matches do not pin a mutex forever.
const lockSweepInterval = 10 * time.Minute

// Config is passed in explicitly; the controller holds no ambient
// bot-wide state.
type Config struct {
	// RestrictedPlayers cannot be challenged (bots, blocked accounts).
	RestrictedPlayers []string

	// RoomCleanupDelay is how long a finished match's room lingers
	// before the best-effort teardown runs.
	RoomCleanupDelay time.Duration
}

type Controller struct {
	cfg      Config
	store    *matchstore.Store
	bank     *ledger.Ledger
	recorder *history.Recorder
	notifier game.Notifier
	rooms    game.Rooms
	sched    gocron.Scheduler

	// One mutex per active match so two near-simultaneous inputs can
	// never both pass the turn gate.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(cfg Config, store *matchstore.Store, bank *ledger.Ledger, recorder *history.Recorder, notifier game.Notifier, rooms game.Rooms) (*Controller, error) {
	if notifier == nil {
		notifier = game.NopNotifier{}
	}
	if rooms == nil {
		rooms = game.NopRooms{}
	}
	if cfg.RoomCleanupDelay <= 0 {
		cfg.RoomCleanupDelay = 5 * time.Minute
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	c := &Controller{
		cfg:      cfg,
		store:    store,
		bank:     bank,
		recorder: recorder,
		notifier: notifier,
		rooms:    rooms,
		sched:    sched,
		locks:    map[string]*sync.Mutex{},
	}
	if _, err := sched.NewJob(gocron.DurationJob(lockSweepInterval), gocron.NewTask(c.sweepLocks)); err != nil {
		return nil, fmt.Errorf("schedule lock sweep: %w", err)
	}
	sched.Start()
	return c, nil
}

// Close stops the cleanup scheduler. The match store is owned by the
// caller and closed separately.
func (c *Controller) Close() error {
	return c.sched.Shutdown()
}

func (c *Controller) matchLock(matchID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[matchID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[matchID] = l
	}
	return l
}

func (c *Controller) dropLock(matchID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.locks, matchID)
}

// sweepLocks drops lock-table entries whose match is gone from the
// store. A finished match drops its own lock; this catches matches
// abandoned or deleted out-of-band.
func (c *Controller) sweepLocks() {
	c.mu.Lock()
	ids := make([]string, 0, len(c.locks))
	for id := range c.locks {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	for _, id := range ids {
		if _, err := c.store.Get(id); errors.Is(err, matchstore.ErrMatchNotFound) {
			c.dropLock(id)
		}
	}
}

func (c *Controller) restricted(playerID string) bool {
	for _, id := range c.cfg.RestrictedPlayers {
		if id == playerID {
			return true
		}
	}
	return false
}

// StartMatch validates the challenge and creates the match in
// AwaitingSetup. The initiator becomes player one. A wagered challenge
// requires the initiator's balance to cover the stake up front; the
// ledger re-checks at settlement time anyway.
func (c *Controller) StartMatch(ctx context.Context, gameType game.Type, channelID, playerOne, playerTwo string, wager int64) (*game.Match, error) {
	if !gameType.Valid() {
		return nil, game.ErrUnknownGameType
	}
	if playerOne == playerTwo {
		return nil, game.ErrSelfChallenge
	}
	if c.restricted(playerTwo) {
		return nil, game.ErrInvalidOpponent
	}
	if wager < 0 {
		return nil, game.ErrInvalidWager
	}
	if wager > 0 {
		balance, err := c.bank.Balance(ctx, playerOne)
		if err != nil {
			return nil, err
		}
		if balance < wager {
			return nil, ErrInsufficientWagerFunds
		}
	}

	match := &game.Match{
		ID:        channelID,
		Type:      gameType,
		Status:    game.StatusAwaitingSetup,
		PlayerOne: playerOne,
		PlayerTwo: playerTwo,
		Wager:     wager,
		CreatedAt: time.Now().UTC(),
	}
	switch gameType {
	case game.TypeConnectFour:
		match.ConnectFour = connectfour.NewState()
	case game.TypeGuessNumber:
		match.GuessNumber = guessnumber.NewState()
	}

	if err := c.store.Create(match); err != nil {
		return nil, err
	}

	c.notifier.Notify(game.Event{
		Kind:     game.EventMatchStarted,
		MatchID:  match.ID,
		GameType: gameType,
		At:       time.Now().UTC(),
	})
	return match, nil
}

// SubmitSetup feeds a setup input (secret entry, seat selection) into
// the match. When the second side finishes, the match flips to
// InProgress and a room is opened for it, best-effort.
func (c *Controller) SubmitSetup(ctx context.Context, matchID, playerID string, input game.Input) (*game.Match, error) {
	l := c.matchLock(matchID)
	l.Lock()
	defer l.Unlock()

	setupDone := false
	match, err := c.store.Update(matchID, func(m *game.Match) error {
		switch m.Status {
		case game.StatusCompleted:
			return game.ErrMatchCompleted
		case game.StatusInProgress:
			return game.ErrSetupDone
		}

		seat := m.SeatOf(playerID)
		if seat == game.NoSeat {
			return game.ErrNotParticipant
		}

		switch {
		case m.Type == game.TypeConnectFour && input.Kind == game.InputSelectSeat:
			done, err := connectfour.PickColor(m.ConnectFour, seat, input.Color)
			if err != nil {
				return err
			}
			setupDone = done
		case m.Type == game.TypeGuessNumber && input.Kind == game.InputSubmitSecret:
			done, err := guessnumber.SetSecret(m.GuessNumber, seat, input.Digits)
			if err != nil {
				return err
			}
			setupDone = done
		default:
			return game.ErrUnexpectedInput
		}

		if setupDone {
			m.Status = game.StatusInProgress
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if setupDone {
		c.notifier.Notify(game.Event{
			Kind:     game.EventSetupCompleted,
			MatchID:  matchID,
			GameType: match.Type,
			At:       time.Now().UTC(),
		})
		if err := c.rooms.Open(matchID); err != nil {
			log.Printf("[WARN] arcade: open room for %s: %v", matchID, err)
		}
	}
	return match, nil
}

// TurnResult is what a single accepted turn produced.
type TurnResult struct {
	Match     *game.Match   `json:"match"`
	Feedback  game.Feedback `json:"feedback"`
	Completed bool          `json:"completed"`
	Winner    string        `json:"winner,omitempty"` // empty on draw
	Draw      bool          `json:"draw,omitempty"`
}

// SubmitTurn feeds a turn input (column drop, digit guess) into the
// match. Engine rejections surface unchanged and leave no trace on the
// match. A terminal turn settles the wager, records history and removes
// the match from active storage before anyone is notified.
func (c *Controller) SubmitTurn(ctx context.Context, matchID, playerID string, input game.Input) (*TurnResult, error) {
	l := c.matchLock(matchID)
	l.Lock()
	defer l.Unlock()

	var (
		feedback   game.Feedback
		completed  bool
		draw       bool
		winnerSeat game.Seat
	)

	match, err := c.store.Update(matchID, func(m *game.Match) error {
		switch m.Status {
		case game.StatusCompleted:
			return game.ErrMatchCompleted
		case game.StatusAwaitingSetup:
			return game.ErrSetupIncomplete
		}

		seat := m.SeatOf(playerID)
		if seat == game.NoSeat {
			return game.ErrNotParticipant
		}

		switch {
		case m.Type == game.TypeConnectFour && input.Kind == game.InputDropColumn:
			row, err := connectfour.Drop(m.ConnectFour, input.Column, seat)
			if err != nil {
				return err
			}
			feedback = game.Feedback{Seat: seat, Row: row, Column: input.Column}
			if connectfour.Wins(m.ConnectFour, row, input.Column) {
				completed, winnerSeat = true, seat
			} else if connectfour.Full(m.ConnectFour) {
				completed, draw = true, true
			}
		case m.Type == game.TypeGuessNumber && input.Kind == game.InputSubmitGuess:
			a, b, won, err := guessnumber.Guess(m.GuessNumber, seat, input.Digits)
			if err != nil {
				return err
			}
			feedback = game.Feedback{Seat: seat, Guess: input.Digits, ExactHits: a, ValueHits: b}
			if won {
				completed, winnerSeat = true, seat
			}
		default:
			return game.ErrUnexpectedInput
		}

		if completed {
			m.Status = game.StatusCompleted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &TurnResult{
		Match:     match,
		Feedback:  feedback,
		Completed: completed,
		Draw:      draw,
		Winner:    match.PlayerAt(winnerSeat),
	}

	now := time.Now().UTC()
	c.notifier.Notify(game.Event{
		Kind:     game.EventTurnResolved,
		MatchID:  matchID,
		GameType: match.Type,
		At:       now,
		Feedback: &feedback,
	})

	if completed {
		c.finish(ctx, match, result)
	}
	return result, nil
}

// finish settles, records and retires a completed match. The game
// outcome is already committed; failures past this point are logged
// loudly and never undo the result.
func (c *Controller) finish(ctx context.Context, match *game.Match, result *TurnResult) {
	settled := int64(0)
	if match.Wager > 0 && !result.Draw {
		loser := match.PlayerOne
		if loser == result.Winner {
			loser = match.PlayerTwo
		}
		err := c.bank.SettleWager(ctx, result.Winner, loser, match.Wager)
		switch {
		case errors.Is(err, ledger.ErrInsufficientFunds):
			// Should be impossible when the start-time check held.
			log.Printf("[ERROR] arcade: ledger inconsistency settling match %s: %v", match.ID, err)
		case err != nil:
			log.Printf("[ERROR] arcade: settle wager for match %s: %v", match.ID, err)
		default:
			settled = match.Wager
		}
	}

	var winnerID *string
	if !result.Draw {
		w := result.Winner
		winnerID = &w
	}
	var wager *int64
	if match.Wager > 0 {
		w := match.Wager
		wager = &w
	}
	if err := c.recorder.RecordMatch(ctx, match.Type, match.PlayerOne, match.PlayerTwo, winnerID, wager); err != nil {
		log.Printf("[ERROR] arcade: record match %s: %v", match.ID, err)
	}
	if !result.Draw {
		loser := match.PlayerOne
		if loser == result.Winner {
			loser = match.PlayerTwo
		}
		if err := c.recorder.BumpWinLoss(ctx, result.Winner, match.Type, true); err != nil {
			log.Printf("[ERROR] arcade: bump winner stats for %s: %v", match.ID, err)
		}
		if err := c.recorder.BumpWinLoss(ctx, loser, match.Type, false); err != nil {
			log.Printf("[ERROR] arcade: bump loser stats for %s: %v", match.ID, err)
		}
	}

	c.store.Delete(match.ID)
	c.dropLock(match.ID)

	c.notifier.Notify(game.Event{
		Kind:         game.EventMatchCompleted,
		MatchID:      match.ID,
		GameType:     match.Type,
		At:           time.Now().UTC(),
		Winner:       result.Winner,
		Draw:         result.Draw,
		WagerSettled: settled,
	})

	c.scheduleRoomCleanup(match.ID)
}

// scheduleRoomCleanup tears the match room down after the configured
// delay. Strictly best-effort, off the state-mutation path.
func (c *Controller) scheduleRoomCleanup(matchID string) {
	_, err := c.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(c.cfg.RoomCleanupDelay))),
		gocron.NewTask(func() {
			if err := c.rooms.Close(matchID); err != nil {
				log.Printf("[WARN] arcade: close room for %s: %v", matchID, err)
			}
		}),
	)
	if err != nil {
		log.Printf("[WARN] arcade: schedule room cleanup for %s: %v", matchID, err)
	}
}

// Match returns the active match hosted on a channel.
func (c *Controller) Match(ctx context.Context, matchID string) (*game.Match, error) {
	return c.store.Get(matchID)
}
