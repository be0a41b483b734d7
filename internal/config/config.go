// Package config reads shopfloor settings from the environment. A .env file
// in the working directory, when present, seeds variables that are not
// already set.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath          string
	HTTPAddr        string
	RedisAddr       string
	LockTTL         time.Duration
	LogLevel        slog.Level
	LogFormat       string
	EnforceSequence bool
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	dbPath := "shopfloor.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".shopfloor", "shopfloor.db")
	}
	return Config{
		DBPath:    dbPath,
		HTTPAddr:  ":8080",
		LockTTL:   30 * time.Second,
		LogLevel:  slog.LevelInfo,
		LogFormat: "text",
	}
}

// Load reads the optional dotenv file and then the environment. Malformed
// values are errors rather than silently ignored.
func Load(dotenvPath string) (Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", dotenvPath, err)
		}
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("SHOPFLOOR_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("SHOPFLOOR_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	cfg.RedisAddr = os.Getenv("SHOPFLOOR_REDIS_ADDR")

	if v := os.Getenv("SHOPFLOOR_LOCK_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("SHOPFLOOR_LOCK_TTL: invalid duration %q", v)
		}
		cfg.LockTTL = d
	}
	if v := os.Getenv("SHOPFLOOR_LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("SHOPFLOOR_LOG_LEVEL: %w", err)
		}
	}
	if v := os.Getenv("SHOPFLOOR_LOG_FORMAT"); v != "" {
		switch f := strings.ToLower(v); f {
		case "text", "json":
			cfg.LogFormat = f
		default:
			return Config{}, fmt.Errorf("SHOPFLOOR_LOG_FORMAT: want text or json, got %q", v)
		}
	}
	if v := os.Getenv("SHOPFLOOR_ENFORCE_SEQUENCE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("SHOPFLOOR_ENFORCE_SEQUENCE: %w", err)
		}
		cfg.EnforceSequence = b
	}
	return cfg, nil
}

// NewLogger builds the process logger for the configured level and format.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
