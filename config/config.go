/*
config.go - Server configuration

PURPOSE:
  Loads the server's settings from defaults, an optional YAML file and
  HOLIDAY_* environment variables, in increasing order of precedence.

ENVIRONMENT:
  Keys map to variables by upper-casing and replacing dots with
  underscores: store.driver -> HOLIDAY_STORE_DRIVER.

STORE DRIVERS:
  sqlite    file at store.sqlite_path (":memory:" for a throwaway database)
  postgres  store.postgres_url
  memory    in-process map, lost on exit

SEE ALSO:
  - cmd/server/main.go: consumes the Config
  - logger/logger.go: builds the logger from LogConfig
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Log     LogConfig     `mapstructure:"log"`
	Session SessionConfig `mapstructure:"session"`
	Planner PlannerConfig `mapstructure:"planner"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type StoreConfig struct {
	Driver      string `mapstructure:"driver"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresURL string `mapstructure:"postgres_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// PlannerConfig seeds the system config of an empty store.
type PlannerConfig struct {
	DefaultAllowance int   `mapstructure:"default_allowance"`
	PrimeTimeMonths  []int `mapstructure:"prime_time_months"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Load reads configuration. An empty path searches ./config.yaml and
// ./config/config.yaml; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173", "http://localhost:8080"})

	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.sqlite_path", "holiday.db")
	v.SetDefault("store.postgres_url", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("session.ttl", "12h")
	v.SetDefault("session.sweep_interval", "10m")

	v.SetDefault("planner.default_allowance", 28)
	v.SetDefault("planner.prime_time_months", []int{6, 7, 11})

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("HOLIDAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port must be between 1 and 65535")
	}
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("config: store.sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Store.PostgresURL == "" {
			return fmt.Errorf("config: store.postgres_url is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: session.ttl must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("config: session.sweep_interval must be positive")
	}
	if c.Planner.DefaultAllowance < 0 {
		return fmt.Errorf("config: planner.default_allowance must not be negative")
	}
	for _, m := range c.Planner.PrimeTimeMonths {
		if m < 0 || m > 11 {
			return fmt.Errorf("config: planner.prime_time_months entry %d is outside 0-11", m)
		}
	}
	return nil
}
