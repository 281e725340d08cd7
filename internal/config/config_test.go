package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hasangumus0707/spendsmart/internal/config"
)

// clearEnv unsets every variable Load reads so host settings cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "STORAGE_DRIVER", "DATABASE_PATH", "DATABASE_URL", "LOG_LEVEL",
		"REQUEST_TIMEOUT", "RATE_LIMIT_PER_SECOND", "RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.StorageDriver != config.DriverSQLite {
		t.Fatalf("expected sqlite driver, got %q", cfg.StorageDriver)
	}
	if cfg.DatabasePath != "spendsmart.db" {
		t.Fatalf("expected default database path, got %q", cfg.DatabasePath)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %s", cfg.RequestTimeout)
	}
	if !cfg.RateLimitEnabled() {
		t.Fatal("expected rate limiting to be enabled by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/spendsmart?sslmode=disable")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_BURST", "0")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Port)
	}
	if cfg.StorageDriver != config.DriverPostgres {
		t.Fatalf("expected postgres driver, got %q", cfg.StorageDriver)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %s", cfg.RequestTimeout)
	}
	if cfg.RateLimitEnabled() {
		t.Fatal("expected rate limiting to be disabled with burst 0")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: \"7000\"\nstorage_driver: memory\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7000" || cfg.StorageDriver != config.DriverMemory {
		t.Fatalf("expected file values, got port=%q driver=%q", cfg.Port, cfg.StorageDriver)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected env to override file log level, got %q", cfg.LogLevel)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Port:           "8080",
			StorageDriver:  config.DriverSQLite,
			DatabasePath:   "x.db",
			RequestTimeout: time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"unknown driver", func(c *config.Config) { c.StorageDriver = "mysql" }, "unknown STORAGE_DRIVER"},
		{"postgres without url", func(c *config.Config) { c.StorageDriver = config.DriverPostgres }, "DATABASE_URL"},
		{"sqlite without path", func(c *config.Config) { c.DatabasePath = "" }, "DATABASE_PATH"},
		{"memory", func(c *config.Config) { c.StorageDriver = config.DriverMemory; c.DatabasePath = "" }, ""},
		{"zero timeout", func(c *config.Config) { c.RequestTimeout = 0 }, "REQUEST_TIMEOUT"},
		{"negative rate", func(c *config.Config) { c.RateLimitPerSecond = -1 }, "rate limits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	if got := (&config.Config{Port: "8080"}).Addr(); got != ":8080" {
		t.Fatalf("expected :8080, got %q", got)
	}
	if got := (&config.Config{Port: ":9000"}).Addr(); got != ":9000" {
		t.Fatalf("expected :9000, got %q", got)
	}
}
