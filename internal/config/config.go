// Package config handles application configuration and setup
package config

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/config"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, trace, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case trace:
		cfg.Level = log.TraceLevel
	case debug:
		cfg.Level = log.DebugLevel
	case quiet:
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// LoadSettings reads the settings from the given configuration file.
func LoadSettings(path string) (options.Settings, error) {
	var settings options.Settings

	document, err := config.Open(path, config.Options{InlineComments: true})
	if err != nil {
		return settings, fmt.Errorf("opening config file '%s': %w", path, err)
	}
	if err := document.Unmarshal(&settings); err != nil {
		return settings, fmt.Errorf("parsing config file '%s': %w", path, err)
	}
	return settings, nil
}
