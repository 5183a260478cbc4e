package app

import (
	"errors"
	"fmt"
)

// Config holds what an App needs before the settings file is read. Empty
// log fields leave the settings file in charge.
type Config struct {
	SourceRoot   string
	SettingsPath string

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.SourceRoot == "" {
		return nil, errors.New("SourceRoot is a required configuration field and cannot be empty")
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	return &cfg, nil
}
