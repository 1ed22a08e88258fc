// /internal/config/config.go
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	ListenAddr        string        `env:"LISTEN_ADDR" envDefault:":8080"`
	DatabaseDSN       string        `env:"DATABASE_DSN,required"`
	MatchStorePath    string        `env:"MATCH_STORE_PATH" envDefault:"matches.json"`
	BankReserve       int64         `env:"BANK_RESERVE" envDefault:"1000000"`
	StartingBalance   int64         `env:"STARTING_BALANCE" envDefault:"0"`
	RestrictedPlayers []string      `env:"RESTRICTED_PLAYERS" envSeparator:","`
	RoomCleanupDelay  time.Duration `env:"ROOM_CLEANUP_DELAY" envDefault:"5m"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
