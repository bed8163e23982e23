package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Port  int      `env:"TEST_PORT" envDefault:"123"`
	Fonts []string `env:"TEST_FONTS" envSeparator:","`
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

func TestParseEnvUsesPrefix(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("TEST_PORT", "7")
	t.Setenv("NOIS_TEST_PORT", "9")
	t.Setenv("NOIS_TEST_FONTS", "a.ttf,b.otf")

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 9 {
		t.Fatalf("Port = %d, want 9", cfg.Port)
	}
	if len(cfg.Fonts) != 2 || cfg.Fonts[1] != "b.otf" {
		t.Fatalf("Fonts = %v, want [a.ttf b.otf]", cfg.Fonts)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("NOIS_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
