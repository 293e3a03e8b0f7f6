package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 1024, cfg.MemoSize)
	assert.Equal(t, 24*time.Hour, cfg.MemoTTL)
	assert.False(t, cfg.HistoryEnabled)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 1024, cfg.MemoSize)
	assert.False(t, cfg.HistoryEnabled)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("BCRAT_DATA_DIR", "/tmp/test-bcrat")
	os.Setenv("BCRAT_MEMO_SIZE", "500")
	os.Setenv("BCRAT_MEMO_TTL", "12h")
	os.Setenv("BCRAT_HISTORY_ENABLED", "true")
	os.Setenv("BCRAT_LOG_LEVEL", "debug")

	defer clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, "/tmp/test-bcrat", cfg.DataDir)
	assert.Equal(t, 500, cfg.MemoSize)
	assert.Equal(t, 12*time.Hour, cfg.MemoTTL)
	assert.True(t, cfg.HistoryEnabled)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadLiteConfig_IgnoresInvalidValues(t *testing.T) {
	clearEnvVars(t)

	os.Setenv("BCRAT_MEMO_SIZE", "not-a-number")
	os.Setenv("BCRAT_MEMO_TTL", "soon")
	os.Setenv("BCRAT_HISTORY_ENABLED", "maybe")

	defer clearEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, 1024, cfg.MemoSize)
	assert.Equal(t, 24*time.Hour, cfg.MemoTTL)
	assert.False(t, cfg.HistoryEnabled)
}

func TestLiteConfig_HistoryDBPath(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.bcrat"}

	path := cfg.HistoryDBPath()

	assert.Equal(t, "/home/user/.bcrat/history.db", path)
}

func TestLiteConfig_EnsureDataDir(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &LiteConfig{DataDir: filepath.Join(tmpDir, "bcrat")}

	require.NoError(t, cfg.EnsureDataDir())

	_, err := os.Stat(cfg.DataDir)
	assert.NoError(t, err)
}

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"BCRAT_DATA_DIR",
		"BCRAT_MEMO_SIZE",
		"BCRAT_MEMO_TTL",
		"BCRAT_HISTORY_ENABLED",
		"BCRAT_LOG_LEVEL",
		"BCRAT_LOG_FORMAT",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
