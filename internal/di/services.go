package di

import (
	"context"
	"fmt"

	"github.com/aristath/tradejournal/internal/config"
	"github.com/aristath/tradejournal/internal/events"
	"github.com/aristath/tradejournal/internal/modules/analytics"
	"github.com/aristath/tradejournal/internal/modules/imports"
	"github.com/aristath/tradejournal/internal/reliability"
	"github.com/aristath/tradejournal/internal/scheduler"
	"github.com/rs/zerolog"
)

// InitializeServices creates all services and stores them in the container
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.TradeRepo == nil {
		return fmt.Errorf("repositories must be initialized before services")
	}

	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)

	container.Importer = imports.NewImporter(imports.Options{BatchSize: cfg.ImportBatchSize}, log)
	container.ImportService = imports.NewService(
		container.Importer,
		container.TradeRepo,
		container.BatchRepo,
		container.EventManager,
		log,
	)
	container.AnalyticsService = analytics.NewService(container.TradeRepo, log)

	container.BackupService = reliability.NewBackupService(container.JournalDB, log)

	if cfg.Backup.Enabled() {
		r2Client, err := reliability.NewR2Client(ctx, cfg.Backup, log)
		if err != nil {
			return fmt.Errorf("failed to create R2 client: %w", err)
		}
		container.R2Client = r2Client
		container.R2BackupService = reliability.NewR2BackupService(
			r2Client,
			container.BackupService,
			cfg.DataDir,
			container.EventManager,
			log,
		)
		log.Info().Str("bucket", r2Client.Bucket()).Msg("R2 backups enabled")
	} else {
		log.Info().Msg("R2 backups disabled, credentials not configured")
	}

	container.Scheduler = scheduler.New(log)

	return nil
}
