package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}

	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}

	if !cfg.Cart.UsesRedis() {
		t.Fatalf("expected redis backend by default, got %q", cfg.Cart.Backend)
	}

	if got := cfg.Cart.SnapshotTTL; got != 720*time.Hour {
		t.Fatalf("expected snapshot ttl 720h, got %v", got)
	}

	if got := cfg.Cart.IdleTTL; got != 30*time.Minute {
		t.Fatalf("expected idle ttl 30m, got %v", got)
	}

	if !cfg.Cart.ShippingFeeAmount().Equal(decimal.RequireFromString("15.00")) {
		t.Fatalf("expected default shipping fee 15.00, got %s", cfg.Cart.ShippingFeeAmount())
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsUnknownCartBackend(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCartBackend, "filesystem")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown cart backend to be rejected")
	}
}

func TestLoad_RejectsNegativeShippingFee(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCartShippingFee, "-1")

	if _, err := Load(); err == nil {
		t.Fatal("expected negative shipping fee to be rejected")
	}
}

func TestLoad_RejectsNegativeIdleTTL(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCartIdleTTL, "-1m")

	if _, err := Load(); err == nil {
		t.Fatal("expected negative idle ttl to be rejected")
	}
}

func TestLoad_IdleTTLCanBeDisabled(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCartIdleTTL, "0s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Cart.IdleTTL != 0 {
		t.Fatalf("expected eviction disabled, got %v", cfg.Cart.IdleTTL)
	}
}

func TestLoad_DBBackendBuildsLegacyDSN(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCartBackend, "db")
	t.Setenv(EnvDBHost, "db.local")
	t.Setenv(EnvDBUser, "eco")
	t.Setenv(EnvDBName, "ecofinds")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.DB.DSN != "postgres://eco@db.local:5432/ecofinds?sslmode=disable" {
		t.Fatalf("unexpected dsn %q", cfg.DB.DSN)
	}
}

func TestLoad_DBBackendRequiresConnectionInfo(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvCartBackend, "db")

	if _, err := Load(); err == nil {
		t.Fatal("expected db backend without dsn to fail")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "production")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvJWTSecret, "secret")
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}

func TestShippingFeeAmountFallsBackToZero(t *testing.T) {
	cfg := CartConfig{ShippingFee: "not-a-number"}
	if !cfg.ShippingFeeAmount().IsZero() {
		t.Fatalf("expected zero fee for unparsable input, got %s", cfg.ShippingFeeAmount())
	}
}
