// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultImportBatchSize is the number of rows the importer maps per call
const DefaultImportBatchSize = 50

// Config holds application configuration
type Config struct {
	DataDir             string // Base directory for the journal database (always absolute)
	LogLevel            string
	LogPretty           bool
	Port                int
	DevMode             bool
	ImportBatchSize     int
	MaxUploadBytes      int64
	MaintenanceSchedule string // cron expression for the database maintenance job
	Backup              *BackupConfig
}

// BackupConfig holds Cloudflare R2 backup configuration
type BackupConfig struct {
	Schedule        string // cron expression
	RetentionDays   int    // 0 = keep forever
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// Enabled reports whether every R2 credential is present
func (b *BackupConfig) Enabled() bool {
	return b != nil &&
		b.AccountID != "" &&
		b.AccessKeyID != "" &&
		b.SecretAccessKey != "" &&
		b.Bucket != ""
}

// Endpoint returns the S3-compatible R2 endpoint for the account
func (b *BackupConfig) Endpoint() string {
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", b.AccountID)
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("JOURNAL_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		Port:                getEnvAsInt("PORT", 8001),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogPretty:           getEnvAsBool("LOG_PRETTY", true),
		ImportBatchSize:     getEnvAsInt("IMPORT_BATCH_SIZE", DefaultImportBatchSize),
		MaxUploadBytes:      int64(getEnvAsInt("MAX_UPLOAD_BYTES", 10<<20)),
		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "30 3 * * *"),
		Backup: &BackupConfig{
			Schedule:        getEnv("BACKUP_SCHEDULE", "0 2 * * *"),
			RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
			AccountID:       getEnv("R2_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("R2_BUCKET", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DatabasePath returns the location of the journal database
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "journal.db")
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ImportBatchSize < 1 || c.ImportBatchSize > 1000 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be between 1 and 1000, got %d", c.ImportBatchSize)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if c.Backup != nil && c.Backup.RetentionDays < 0 {
		return fmt.Errorf("BACKUP_RETENTION_DAYS must not be negative")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
