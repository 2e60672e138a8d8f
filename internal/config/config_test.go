package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JOURNAL_DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("PORT", "")
	t.Setenv("IMPORT_BATCH_SIZE", "")
	t.Setenv("R2_ACCOUNT_ID", "")
	t.Setenv("MAINTENANCE_SCHEDULE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(cfg.DataDir))
	assert.DirExists(t, cfg.DataDir)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, DefaultImportBatchSize, cfg.ImportBatchSize)
	assert.Equal(t, "0 2 * * *", cfg.Backup.Schedule)
	assert.Equal(t, "30 3 * * *", cfg.MaintenanceSchedule)
	assert.False(t, cfg.Backup.Enabled())
	assert.Equal(t, filepath.Join(cfg.DataDir, "journal.db"), cfg.DatabasePath())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JOURNAL_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("IMPORT_BATCH_SIZE", "25")
	t.Setenv("R2_ACCOUNT_ID", "acct")
	t.Setenv("R2_ACCESS_KEY_ID", "key")
	t.Setenv("R2_SECRET_ACCESS_KEY", "secret")
	t.Setenv("R2_BUCKET", "journal-backups")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 25, cfg.ImportBatchSize)
	assert.True(t, cfg.Backup.Enabled())
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com", cfg.Backup.Endpoint())
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("JOURNAL_DATA_DIR", t.TempDir())
	t.Setenv("IMPORT_BATCH_SIZE", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMPORT_BATCH_SIZE")
}

func TestGetEnvHelpers_IgnoreGarbage(t *testing.T) {
	t.Setenv("JOURNAL_TEST_INT", "abc")
	t.Setenv("JOURNAL_TEST_BOOL", "maybe")

	assert.Equal(t, 7, getEnvAsInt("JOURNAL_TEST_INT", 7))
	assert.True(t, getEnvAsBool("JOURNAL_TEST_BOOL", true))
	assert.Equal(t, "fallback", getEnv("JOURNAL_TEST_MISSING", "fallback"))
}
