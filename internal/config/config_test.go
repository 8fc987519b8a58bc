package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != "4000" {
		t.Errorf("expected default port 4000, got %q", cfg.ServerPort)
	}
	if cfg.BackendURL != "http://localhost:8000" {
		t.Errorf("unexpected default backend URL %q", cfg.BackendURL)
	}
	if cfg.PollIntervalOperational != 5*time.Second {
		t.Errorf("expected 5s operational interval, got %v", cfg.PollIntervalOperational)
	}
	if cfg.PollIntervalAnalytics != 10*time.Second {
		t.Errorf("expected 10s analytics interval, got %v", cfg.PollIntervalAnalytics)
	}
	if cfg.MessageTTL != 4*time.Second {
		t.Errorf("expected 4s message TTL, got %v", cfg.MessageTTL)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("expected archive disabled by default, got %q", cfg.DatabaseURL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("POLL_INTERVAL_OPERATIONAL", "2s")
	t.Setenv("MESSAGE_TTL", "500ms")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.ServerPort)
	}
	if cfg.PollIntervalOperational != 2*time.Second {
		t.Errorf("expected 2s interval, got %v", cfg.PollIntervalOperational)
	}
	if cfg.MessageTTL != 500*time.Millisecond {
		t.Errorf("expected 500ms TTL, got %v", cfg.MessageTTL)
	}
	if !cfg.Debug {
		t.Error("expected debug enabled")
	}
}

func TestGetEnvDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("POLL_INTERVAL_OPERATIONAL", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PollIntervalOperational != 5*time.Second {
		t.Errorf("expected fallback to 5s, got %v", cfg.PollIntervalOperational)
	}
}
