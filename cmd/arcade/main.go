// cmd/arcade/main.go
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"server-arcade/internal/api"
	"server-arcade/internal/arcade"
	"server-arcade/internal/config"
	"server-arcade/internal/history"
	"server-arcade/internal/ledger"
	"server-arcade/internal/matchstore"
	v "server-arcade/internal/version"
)

func main() {
	log.Printf("[INFO] Starting %v...", v.AppName)

	cfg, err := config.New()
	if err != nil {
		log.Fatal(err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("[ERROR] Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&ledger.Account{}, &history.MatchRecord{}, &history.WinLossRecord{}); err != nil {
		log.Fatalf("[ERROR] Failed to migrate database: %v", err)
	}

	store, err := matchstore.New(cfg.MatchStorePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	bank, err := ledger.New(db, cfg.BankReserve, cfg.StartingBalance)
	if err != nil {
		log.Fatal(err)
	}

	recorder := history.NewRecorder(db)

	ctrl, err := arcade.New(arcade.Config{
		RestrictedPlayers: cfg.RestrictedPlayers,
		RoomCleanupDelay:  cfg.RoomCleanupDelay,
	}, store, bank, recorder, nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer ctrl.Close()

	server := api.New(ctrl, bank, recorder)
	go func() {
		if err := server.Listen(cfg.ListenAddr); err != nil {
			log.Fatalf("[ERROR] API server stopped: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("[INFO] Shutting down...")
	if err := server.Shutdown(); err != nil {
		log.Printf("[WARN] API shutdown: %v", err)
	}
}
