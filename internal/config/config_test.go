package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr: got %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost: got %d, want 12", cfg.BcryptCost)
	}
	if cfg.MaxConcurrentSessions != 5 {
		t.Errorf("MaxConcurrentSessions: got %d, want 5", cfg.MaxConcurrentSessions)
	}
	if got := cfg.AccessTTL(); got != time.Hour {
		t.Errorf("AccessTTL: got %v, want 1h", got)
	}
	if got := cfg.RefreshTTL(); got != 168*time.Hour {
		t.Errorf("RefreshTTL: got %v, want 168h", got)
	}
	if got := cfg.TravelWindow(); got != 10*time.Minute {
		t.Errorf("TravelWindow: got %v, want 10m", got)
	}
	if got := cfg.PersistenceTimeout(); got != 5*time.Second {
		t.Errorf("PersistenceTimeout: got %v, want 5s", got)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load: want error when JWT_SECRET is empty")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("HTTP_ADDR", ":9191")
	t.Setenv("JWT_ACCESS_TTL", "30m")
	t.Setenv("MAX_CONCURRENT_SESSIONS", "3")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9191" {
		t.Errorf("HTTPAddr: got %q, want :9191", cfg.HTTPAddr)
	}
	if got := cfg.AccessTTL(); got != 30*time.Minute {
		t.Errorf("AccessTTL: got %v, want 30m", got)
	}
	if cfg.MaxConcurrentSessions != 3 {
		t.Errorf("MaxConcurrentSessions: got %d, want 3", cfg.MaxConcurrentSessions)
	}
}

func TestLoad_InvalidBcryptCost(t *testing.T) {
	setRequired(t)
	t.Setenv("BCRYPT_COST", "99")
	if _, err := Load(); err == nil {
		t.Fatal("Load: want error for BCRYPT_COST out of range")
	}
}

func TestTTLFallbacks(t *testing.T) {
	cfg := &Config{JWTAccessTTL: "garbage", JWTRefreshTTL: "-1h"}
	if got := cfg.AccessTTL(); got != time.Hour {
		t.Errorf("AccessTTL fallback: got %v, want 1h", got)
	}
	if got := cfg.RefreshTTL(); got != 168*time.Hour {
		t.Errorf("RefreshTTL fallback: got %v, want 168h", got)
	}
	if got := cfg.MaxLifetime(); got != 720*time.Hour {
		t.Errorf("MaxLifetime fallback: got %v, want 720h", got)
	}
}
