// Package server parses REST server flags and launches the server.
package server

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/geometrydash/internal/client"
	"github.com/louisbranch/geometrydash/internal/newgrounds"
	entrypoint "github.com/louisbranch/geometrydash/internal/platform/cmd"
	"github.com/louisbranch/geometrydash/internal/platform/config"
	api "github.com/louisbranch/geometrydash/internal/server"
	"github.com/louisbranch/geometrydash/internal/storage/sqlite"
)

// Config holds REST server command configuration.
type Config struct {
	HTTPAddr    string        `env:"GD_SERVER_HTTP_ADDR" envDefault:":8000"`
	HealthAddr  string        `env:"GD_SERVER_HEALTH_ADDR" envDefault:":8001"`
	DBPath      string        `env:"GD_SERVER_DB_PATH" envDefault:"data/gd.db"`
	CacheTTL    time.Duration `env:"GD_SERVER_CACHE_TTL" envDefault:"5m"`
	TokenSecret string        `env:"GD_SERVER_TOKEN_SECRET"`
	TokenTTL    time.Duration `env:"GD_SERVER_TOKEN_TTL" envDefault:"24h"`

	Client config.ClientEnv
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.HealthAddr, "health-addr", cfg.HealthAddr, "gRPC health listen address; empty disables it")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "How long upstream lookups stay cached")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "Session token lifetime")
	fs.StringVar(&cfg.Client.BaseURL, "base-url", cfg.Client.BaseURL, "Game server database root")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return Config{}, errors.New("db path is required")
	}
	return cfg, nil
}

// Run starts the REST server and blocks until ctx is canceled.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(ctx context.Context) error {
		return serve(ctx, cfg)
	})
}

func serve(ctx context.Context, cfg Config) error {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	secret, err := tokenSecret(cfg.TokenSecret)
	if err != nil {
		return err
	}
	tokens, err := api.NewTokenIssuer(secret, time.Now)
	if err != nil {
		return err
	}

	clientCfg := client.Config{
		BaseURL: cfg.Client.BaseURL,
		Timeout: cfg.Client.RequestTimeout,
		Retries: cfg.Client.Retries,
		Logf:    log.Printf,
	}
	srv, err := api.New(api.Config{
		HTTPAddr:   cfg.HTTPAddr,
		HealthAddr: cfg.HealthAddr,
		CacheTTL:   cfg.CacheTTL,
		TokenTTL:   cfg.TokenTTL,
	}, api.Deps{
		Game:       client.New(clientCfg),
		NewAccount: func() api.AccountAPI { return client.New(clientCfg) },
		Songs:      newgrounds.New(),
		Cache:      store,
		Sessions:   store,
		Tokens:     tokens,
	})
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

// tokenSecret returns the configured secret or, when none is set, a random
// one that invalidates every token on restart.
func tokenSecret(configured string) ([]byte, error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		return []byte(configured), nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate token secret: %w", err)
	}
	log.Printf("GD_SERVER_TOKEN_SECRET is unset; tokens will not survive a restart")
	return secret, nil
}
