package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultFileOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "farmcore.json", cfg.Storage.FilePath)
	assert.Equal(t, "fs", cfg.Backup.Driver)
	assert.Equal(t, "info", cfg.LogLevel)

	_, err = os.Stat(filepath.Join(dir, "config.yaml"))
	assert.NoError(t, err, "first run must create config.yaml")
}

func TestLoadReadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `storage:
  driver: sqlite
  sqlite_path: /var/lib/farmcore/farm.db
log_level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/farmcore/farm.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched sections keep defaults.
	assert.Equal(t, "fs", cfg.Backup.Driver)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "storage:\n  driver: file\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	t.Setenv("FARMCORE_STORAGE_DRIVER", "postgres")
	t.Setenv("FARMCORE_STORAGE_POSTGRES_DSN", "postgres://db/farm")
	t.Setenv("FARMCORE_LOG_LEVEL", "warn")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://db/farm", cfg.Storage.PostgresDSN)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadDoesNotOverwriteExistingFile(t *testing.T) {
	dir := t.TempDir()
	original := "log_level: trace\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(original), 0o600))

	_, err := Load(dir)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data), "existing config must be left alone")
}
