// Package di provides dependency injection type definitions.
//
// The Container holds every long-lived dependency of the service and is the
// single place main and the tests get them from.
package di

import (
	"errors"

	"github.com/aristath/tradejournal/internal/database"
	"github.com/aristath/tradejournal/internal/events"
	"github.com/aristath/tradejournal/internal/modules/analytics"
	"github.com/aristath/tradejournal/internal/modules/imports"
	"github.com/aristath/tradejournal/internal/modules/journal"
	"github.com/aristath/tradejournal/internal/reliability"
	"github.com/aristath/tradejournal/internal/scheduler"
)

// Container holds all dependencies for the application
type Container struct {
	// Database
	JournalDB *database.DB

	// Repositories
	TradeRepo *journal.TradeRepository
	BatchRepo *journal.BatchRepository

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Services
	Importer         *imports.Importer
	ImportService    *imports.Service
	AnalyticsService *analytics.Service
	BackupService    *reliability.BackupService

	// R2 backups, nil unless every R2 credential is configured
	R2Client        *reliability.R2Client
	R2BackupService *reliability.R2BackupService

	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered jobs for manual triggering
type JobInstances struct {
	Backup      *reliability.BackupJob // nil when backups are disabled
	Maintenance *reliability.MaintenanceJob
}

// Close releases the resources held by the container
func (c *Container) Close() error {
	var errs []error
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.JournalDB != nil {
		errs = append(errs, c.JournalDB.Close())
	}
	return errors.Join(errs...)
}
