// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultNgramsDir returns the default directory holding ngram frequency files.
func DefaultNgramsDir() string {
	return filepath.Join(XDGConfigHome(), "layscore", "ngrams")
}

// DefaultLayoutDir returns the default directory for layout files.
func DefaultLayoutDir() string {
	return filepath.Join(XDGConfigHome(), "layscore", "layouts")
}

// DefaultParamsPath returns the default evaluation parameters path.
func DefaultParamsPath() string {
	return filepath.Join(XDGConfigHome(), "layscore", "params.yml")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), "layscore", "layscore.db")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "layscore", "config.toml")
}
