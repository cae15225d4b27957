// Package config loads server and storage settings from a .env file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config is the root application configuration.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Redis   RedisConfig
	Auth    AuthConfig
	CORS    CORSConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server settings. An empty StaticDir serves no
// frontend files.
type ServerConfig struct {
	Port            string        `env:"PORT"                    env-default:"3001"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT"     env-default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT"    env-default:"15s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	StaticDir       string        `env:"STATIC_DIR"`
}

// StorageConfig selects the medium the board is persisted to.
type StorageConfig struct {
	Driver     string `env:"STORAGE_DRIVER" env-default:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH"    env-default:"./zenboard.db"`
}

// RedisConfig is used when Storage.Driver is "redis".
type RedisConfig struct {
	Addr      string        `env:"REDIS_ADDR"      env-default:"localhost:6379"`
	Password  string        `env:"REDIS_PASSWORD"`
	DB        int           `env:"REDIS_DB"        env-default:"0"`
	Namespace string        `env:"REDIS_NAMESPACE" env-default:"default"`
	Timeout   time.Duration `env:"REDIS_TIMEOUT"   env-default:"2s"`
}

// AuthConfig protects the API. An empty passphrase turns authentication off.
type AuthConfig struct {
	Passphrase string        `env:"BOARD_PASSPHRASE"`
	JWTSecret  string        `env:"JWT_SECRET"`
	TokenTTL   time.Duration `env:"JWT_TTL" env-default:"168h"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"*" env-separator:","`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"text"`
}

// Enabled reports whether the API requires a token.
func (a AuthConfig) Enabled() bool { return a.Passphrase != "" }

// Load reads configuration from the .env file at path and the environment.
// Entries of the file are exported into the process environment before it is
// read, so they override variables of the same name. A missing file is only
// an error when explicit is true.
func Load(path string, explicit bool) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate checks values that cleanenv cannot.
func (c *Config) Validate() error {
	var errs []error

	drivers := []string{DriverSQLite, DriverRedis, DriverMemory}
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if !slices.Contains(drivers, c.Storage.Driver) {
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be one of %s, got %q", strings.Join(drivers, ", "), c.Storage.Driver))
	}
	if c.Storage.Driver == DriverSQLite && c.Storage.SQLitePath == "" {
		errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
	}
	if c.Storage.Driver == DriverRedis && c.Redis.Addr == "" {
		errs = append(errs, errors.New("REDIS_ADDR is required for the redis driver"))
	}
	if c.Auth.Enabled() && len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters when BOARD_PASSPHRASE is set"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}

	return errors.Join(errs...)
}
