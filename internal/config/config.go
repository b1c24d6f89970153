package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string `env:"ADDR" envDefault:":8080"`
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"host=localhost user=postgres password=postgres dbname=golfdraft port=5432 sslmode=disable"`

	// Upstream player feeds; empty values fall back to the built-in
	// pool.
	RankingsURL string `env:"RANKINGS_URL"`
	FieldURL    string `env:"FIELD_URL"`

	// Backup mirror; empty disables syncing entirely.
	MirrorURL         string        `env:"MIRROR_URL"`
	MirrorMinInterval time.Duration `env:"MIRROR_MIN_INTERVAL" envDefault:"30s"`

	Debug bool `env:"DEBUG" envDefault:"false"`
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
