// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// ClientEnv holds the game-server client settings shared by every command.
type ClientEnv struct {
	BaseURL        string        `env:"GD_BASE_URL" envDefault:"http://www.boomlings.com/database/"`
	RequestTimeout time.Duration `env:"GD_REQUEST_TIMEOUT" envDefault:"10s"`
	Retries        int           `env:"GD_RETRIES" envDefault:"2"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// SaveEnv locates the local save files. An empty Dir selects the
// platform default.
type SaveEnv struct {
	Dir string `env:"GD_SAVE_DIR"`
	// Mac selects the AES-encrypted macOS save format.
	Mac bool `env:"GD_SAVE_MAC"`
}

// LoadSaveEnv parses SaveEnv.
func LoadSaveEnv() (SaveEnv, error) {
	var cfg SaveEnv
	if err := ParseEnv(&cfg); err != nil {
		return SaveEnv{}, err
	}
	cfg.Dir = strings.TrimSpace(cfg.Dir)
	return cfg, nil
}
