package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read by LoadEnv.
const EnvPrefix = "FINSTAT"

// Env holds process-level settings read from the environment.
type Env struct {
	ConfigPath string `envconfig:"CONFIG" default:"finstat.yaml"`
	LogFormat  string `envconfig:"LOG_FORMAT" default:"text"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadEnv reads FINSTAT_* variables.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &env, nil
}

// LoadDotEnv loads variables from a .env file without overriding those
// already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// NewLogger returns a text or JSON logger writing to w. Unknown levels fall
// back to info.
func NewLogger(w io.Writer, env *Env) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	format := "text"
	if env != nil {
		var level slog.Level
		if err := level.UnmarshalText([]byte(env.LogLevel)); err == nil {
			opts.Level = level
		}
		format = strings.ToLower(env.LogFormat)
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
