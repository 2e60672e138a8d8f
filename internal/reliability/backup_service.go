// Package reliability keeps the journal safe: local snapshots, offsite
// backups to Cloudflare R2 and their rotation.
package reliability

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/aristath/tradejournal/internal/database"
	"github.com/rs/zerolog"
)

// BackupService takes consistent snapshots of the journal database
type BackupService struct {
	db  *database.DB
	log zerolog.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, log zerolog.Logger) *BackupService {
	return &BackupService{
		db:  db,
		log: log.With().Str("service", "backup").Logger(),
	}
}

// DatabaseName returns the name of the database being backed up
func (s *BackupService) DatabaseName() string {
	return s.db.Name()
}

// Snapshot writes a verified copy of the database to dest.
// A copy that fails the integrity check is removed again.
func (s *BackupService) Snapshot(ctx context.Context, dest string) error {
	s.log.Debug().
		Str("database", s.db.Name()).
		Str("backup_path", dest).
		Msg("Backing up database")

	if err := s.db.SnapshotTo(ctx, dest); err != nil {
		return err
	}

	if err := verifySnapshot(ctx, dest); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("backup verification failed: %w", err)
	}

	if info, err := os.Stat(dest); err == nil {
		s.log.Debug().
			Str("database", s.db.Name()).
			Float64("size_mb", float64(info.Size())/1024/1024).
			Msg("Backup created")
	}
	return nil
}

// verifySnapshot runs an integrity check against a snapshot file
func verifySnapshot(ctx context.Context, path string) error {
	snapshot, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer snapshot.Close()

	var result string
	if err := snapshot.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}
