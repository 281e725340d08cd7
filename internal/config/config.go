package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds process-level settings used for wiring the service.
type Config struct {
	Port               string        `mapstructure:"port"`
	StorageDriver      string        `mapstructure:"storage_driver"`
	DatabasePath       string        `mapstructure:"database_path"`
	DatabaseURL        string        `mapstructure:"database_url"`
	LogLevel           string        `mapstructure:"log_level"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	RateLimitPerSecond float64       `mapstructure:"rate_limit_per_second"`
	RateLimitBurst     float64       `mapstructure:"rate_limit_burst"`
}

var defaults = map[string]any{
	"port":                  "8080",
	"storage_driver":        DriverSQLite,
	"database_path":         "spendsmart.db",
	"database_url":          "",
	"log_level":             "info",
	"request_timeout":       "10s",
	"rate_limit_per_second": 5.0,
	"rate_limit_burst":      20.0,
}

// Load reads configuration. Variables from a .env file in the working
// directory are exported first when the file exists. If path is non-empty
// the file it names (yaml, json or toml) is read as well; environment
// variables such as STORAGE_DRIVER always take precedence.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the process cannot start with.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverSQLite:
		if c.DatabasePath == "" {
			return errors.New("config: DATABASE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.Port == "" {
		return errors.New("config: PORT must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.RateLimitPerSecond < 0 || c.RateLimitBurst < 0 {
		return errors.New("config: rate limits must not be negative")
	}
	return nil
}

// RateLimitEnabled reports whether write requests are rate limited.
func (c *Config) RateLimitEnabled() bool {
	return c.RateLimitBurst > 0
}

// Addr returns an http listen address, ensuring it includes ":" prefix.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
