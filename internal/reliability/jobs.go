package reliability

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aristath/tradejournal/internal/database"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
)

const (
	backupJobTimeout      = 30 * time.Minute
	maintenanceJobTimeout = 5 * time.Minute
	defaultMinFreeBytes   = 500 << 20
)

// BackupJob uploads a backup and rotates old ones on the backup schedule
type BackupJob struct {
	service       *R2BackupService
	retentionDays int
	log           zerolog.Logger
}

// NewBackupJob creates a new backup job
func NewBackupJob(service *R2BackupService, retentionDays int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service:       service,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "r2_backup").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *BackupJob) Name() string {
	return "r2_backup"
}

// Run executes the backup job
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), backupJobTimeout)
	defer cancel()

	run, err := j.service.RunBackup(ctx, j.retentionDays)
	if err != nil {
		return err
	}

	j.log.Info().
		Str("archive", run.Backup.Filename).
		Int("rotated", run.Rotated).
		Float64("duration_s", run.DurationS).
		Msg("Scheduled backup finished")
	return nil
}

// MaintenanceJob keeps the journal database healthy: integrity check,
// WAL checkpoint, disk space and size reporting
type MaintenanceJob struct {
	db           *database.DB
	minFreeBytes uint64
	log          zerolog.Logger
}

// NewMaintenanceJob creates a new maintenance job
func NewMaintenanceJob(db *database.DB, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:           db,
		minFreeBytes: defaultMinFreeBytes,
		log:          log.With().Str("job", "maintenance").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Run executes the maintenance job
func (j *MaintenanceJob) Run() error {
	j.log.Info().Msg("Starting maintenance")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), maintenanceJobTimeout)
	defer cancel()

	if err := j.db.HealthCheck(ctx); err != nil {
		j.log.Error().Err(err).Msg("CRITICAL: journal database failed its health check")
		return fmt.Errorf("health check failed: %w", err)
	}

	// A failed checkpoint only means WAL growth, not data loss
	if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		j.log.Warn().Err(err).Msg("WAL checkpoint failed")
	}

	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	if stats, err := j.db.GetStats(); err != nil {
		j.log.Warn().Err(err).Msg("Failed to read database stats")
	} else {
		j.log.Info().
			Float64("size_mb", float64(stats.SizeBytes)/1024/1024).
			Float64("wal_size_mb", float64(stats.WALSizeBytes)/1024/1024).
			Int64("freelist_pages", stats.FreelistCount).
			Msg("Database metrics")
	}

	j.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Msg("Maintenance completed successfully")
	return nil
}

func (j *MaintenanceJob) checkDiskSpace() error {
	path := j.db.Path()
	usage, err := disk.Usage(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("failed to stat filesystem: %w", err)
	}

	j.log.Debug().Uint64("free_bytes", usage.Free).Msg("Disk space check")

	if usage.Free < j.minFreeBytes {
		j.log.Error().
			Uint64("free_bytes", usage.Free).
			Msg("CRITICAL: Insufficient disk space for the journal")
		return fmt.Errorf("only %d MB free next to %s", usage.Free>>20, path)
	}
	return nil
}
