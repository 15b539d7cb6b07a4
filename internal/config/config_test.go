package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "FEE_RATE", "DAY_EXPIRE_INTERVAL", "SESSION_CLOSE",
		"READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if !cfg.FeeRate.Equal(decimal.RequireFromString("0.00015")) {
		t.Errorf("FeeRate = %s, want 0.00015", cfg.FeeRate)
	}
	if cfg.DayExpireInterval != time.Minute {
		t.Errorf("DayExpireInterval = %v, want 1m", cfg.DayExpireInterval)
	}
	if cfg.SessionClose != 15*time.Hour+40*time.Minute {
		t.Errorf("SessionClose = %v, want 15h40m", cfg.SessionClose)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v, want 10s", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout != 60*time.Second {
		t.Errorf("IdleTimeout = %v, want 60s", cfg.IdleTimeout)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FEE_RATE", "0.001")
	t.Setenv("DAY_EXPIRE_INTERVAL", "8h")
	t.Setenv("SESSION_CLOSE", "16:30")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if !cfg.FeeRate.Equal(decimal.RequireFromString("0.001")) {
		t.Errorf("FeeRate = %s, want 0.001", cfg.FeeRate)
	}
	if cfg.DayExpireInterval != 8*time.Hour {
		t.Errorf("DayExpireInterval = %v, want 8h", cfg.DayExpireInterval)
	}
	if cfg.SessionClose != 16*time.Hour+30*time.Minute {
		t.Errorf("SessionClose = %v, want 16h30m", cfg.SessionClose)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", "PORT", "not-a-port"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"non-decimal fee rate", "FEE_RATE", "cheap"},
		{"malformed interval", "DAY_EXPIRE_INTERVAL", "tomorrow"},
		{"malformed session close", "SESSION_CLOSE", "half past three"},
		{"out-of-range session close", "SESSION_CLOSE", "25:99"},
		{"malformed read timeout", "READ_TIMEOUT", "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
