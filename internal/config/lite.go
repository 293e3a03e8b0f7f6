// Package config provides configuration management for the risk service.
// This file contains the lightweight configuration for standalone operation.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// LiteConfig is a simplified configuration for standalone operation over
// stdio. It requires no external services and uses sensible defaults.
type LiteConfig struct {
	// Data storage
	DataDir string // Base directory for data files

	// Memoization settings
	MemoSize int           // Maximum entries in the in-memory result memo
	MemoTTL  time.Duration // TTL for expirable cache entries

	// History settings
	HistoryEnabled bool // Record assessments to the local SQLite database

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".bcrat")

	return &LiteConfig{
		DataDir:        dataDir,
		MemoSize:       1024,
		MemoTTL:        24 * time.Hour,
		HistoryEnabled: false,
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	if v := os.Getenv("BCRAT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if v := os.Getenv("BCRAT_MEMO_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MemoSize = n
		}
	}
	if v := os.Getenv("BCRAT_MEMO_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.MemoTTL = d
		}
	}

	if v := os.Getenv("BCRAT_HISTORY_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.HistoryEnabled = b
		}
	}

	if v := os.Getenv("BCRAT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BCRAT_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// HistoryDBPath returns the path to the assessment history SQLite database.
func (c *LiteConfig) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}
