package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Port:                  "8000",
		Env:                   "development",
		DatabaseURL:           "postgres://localhost:5432/medbook",
		JWTSecret:             strings.Repeat("s", 32),
		TokenTTLMinutes:       60,
		RequestTimeoutSeconds: 30,
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing DATABASE_URL")
	}
}

func TestValidate_MissingSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing JWT_SECRET")
	}
}

func TestValidate_ShortSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = "too-short"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for short JWT_SECRET")
	}
}

func TestValidate_BadTokenTTL(t *testing.T) {
	cfg := validConfig()
	cfg.TokenTTLMinutes = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero TOKEN_TTL_MINUTES")
	}
}

func TestValidate_BadRequestTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.RequestTimeoutSeconds = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative REQUEST_TIMEOUT_SECONDS")
	}
}

func TestIsDev(t *testing.T) {
	cfg := validConfig()
	if !cfg.IsDev() {
		t.Error("expected development env to report IsDev")
	}
	cfg.Env = "production"
	if cfg.IsDev() {
		t.Error("expected production env to not report IsDev")
	}
}
