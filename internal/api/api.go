// Package api is the HTTP facade the command dispatcher talks to. It
// translates requests into controller calls and error classes into
// status codes; it holds no game state of its own.
package api

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"server-arcade/internal/arcade"
	"server-arcade/internal/game"
	"server-arcade/internal/history"
	"server-arcade/internal/ledger"
	"server-arcade/internal/matchstore"
)

type Server struct {
	app      *fiber.App
	ctrl     *arcade.Controller
	bank     *ledger.Ledger
	recorder *history.Recorder
}

func New(ctrl *arcade.Controller, bank *ledger.Ledger, recorder *history.Recorder) *Server {
	s := &Server{
		app:      fiber.New(fiber.Config{DisableStartupMessage: true}),
		ctrl:     ctrl,
		bank:     bank,
		recorder: recorder,
	}

	s.app.Post("/matches", s.startMatch)
	s.app.Get("/matches/:id", s.getMatch)
	s.app.Post("/matches/:id/setup", s.submitSetup)
	s.app.Post("/matches/:id/turns", perClientLimit(), s.submitTurn)
	s.app.Get("/players/:id/balance", s.getBalance)
	s.app.Post("/players/:id/grant", s.grant)
	s.app.Get("/players/:id/stats", s.getStats)
	s.app.Get("/history", s.getHistory)

	return s
}

func (s *Server) Listen(addr string) error {
	log.Printf("[INFO] api: listening on %s", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// fail maps an error to its taxonomy class: malformed input 400, wrong
// phase or turn 409, missing match 404, money problems 402.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrUnknownGameType),
		errors.Is(err, game.ErrSelfChallenge),
		errors.Is(err, game.ErrInvalidOpponent),
		errors.Is(err, game.ErrInvalidWager),
		errors.Is(err, game.ErrInvalidSecret),
		errors.Is(err, game.ErrInvalidColumn),
		errors.Is(err, game.ErrInvalidColor),
		errors.Is(err, game.ErrNotParticipant),
		errors.Is(err, game.ErrUnexpectedInput),
		errors.Is(err, game.ErrIgnoredGuess):
		status = fiber.StatusBadRequest
	case errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrColumnFull),
		errors.Is(err, game.ErrSetupIncomplete),
		errors.Is(err, game.ErrSetupDone),
		errors.Is(err, game.ErrSecretAlreadySet),
		errors.Is(err, game.ErrColorTaken),
		errors.Is(err, game.ErrMatchCompleted),
		errors.Is(err, matchstore.ErrDuplicateMatch):
		status = fiber.StatusConflict
	case errors.Is(err, matchstore.ErrMatchNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, arcade.ErrInsufficientWagerFunds),
		errors.Is(err, ledger.ErrInsufficientFunds):
		status = fiber.StatusPaymentRequired
	default:
		log.Printf("[ERROR] api: %v", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) startMatch(c *fiber.Ctx) error {
	var req struct {
		GameType  game.Type `json:"game_type"`
		ChannelID string    `json:"channel_id"`
		PlayerOne string    `json:"player_one"`
		PlayerTwo string    `json:"player_two"`
		Wager     int64     `json:"wager"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.ChannelID == "" || req.PlayerOne == "" || req.PlayerTwo == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "channel_id, player_one and player_two are required"})
	}

	match, err := s.ctrl.StartMatch(c.Context(), req.GameType, req.ChannelID, req.PlayerOne, req.PlayerTwo, req.Wager)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(match)
}

func (s *Server) getMatch(c *fiber.Ctx) error {
	match, err := s.ctrl.Match(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(match)
}

func (s *Server) submitSetup(c *fiber.Ctx) error {
	var req struct {
		PlayerID string     `json:"player_id"`
		Input    game.Input `json:"input"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	match, err := s.ctrl.SubmitSetup(c.Context(), c.Params("id"), req.PlayerID, req.Input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(match)
}

func (s *Server) submitTurn(c *fiber.Ctx) error {
	var req struct {
		PlayerID string     `json:"player_id"`
		Input    game.Input `json:"input"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := s.ctrl.SubmitTurn(c.Context(), c.Params("id"), req.PlayerID, req.Input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

func (s *Server) getBalance(c *fiber.Ctx) error {
	balance, err := s.bank.Balance(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"player_id": c.Params("id"), "balance": balance})
}

// grant credits (or with a negative amount debits) a player from the
// bank. The economy's admin entry point; how callers are authorized is
// the gateway's concern, not ours.
func (s *Server) grant(c *fiber.Ctx) error {
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.bank.Transfer(c.Context(), c.Params("id"), req.Amount); err != nil {
		return fail(c, err)
	}
	balance, err := s.bank.Balance(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"player_id": c.Params("id"), "balance": balance})
}

func (s *Server) getStats(c *fiber.Ctx) error {
	gameType := game.Type(c.Query("game_type"))
	if !gameType.Valid() {
		return fail(c, game.ErrUnknownGameType)
	}
	stats, err := s.recorder.Stats(c.Context(), c.Params("id"), gameType)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(stats)
}

func (s *Server) getHistory(c *fiber.Ctx) error {
	recs, err := s.recorder.RecentMatches(c.Context(), c.QueryInt("limit", 20))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(recs)
}
