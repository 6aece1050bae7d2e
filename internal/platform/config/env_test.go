package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port int `env:"GD_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("GD_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestClientEnvDefaults(t *testing.T) {
	var cfg ClientEnv
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.BaseURL != "http://www.boomlings.com/database/" {
		t.Fatalf("base url = %q", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("timeout = %v, want 10s", cfg.RequestTimeout)
	}
	if cfg.Retries != 2 {
		t.Fatalf("retries = %d, want 2", cfg.Retries)
	}
}

func TestLoadSaveEnv(t *testing.T) {
	t.Setenv("GD_SAVE_DIR", " /tmp/gd ")
	t.Setenv("GD_SAVE_MAC", "true")

	cfg, err := LoadSaveEnv()
	if err != nil {
		t.Fatalf("load save env: %v", err)
	}
	if cfg.Dir != "/tmp/gd" || !cfg.Mac {
		t.Fatalf("cfg = %+v", cfg)
	}
}
