package di

import (
	"github.com/aristath/tradejournal/internal/config"
	analyticshandlers "github.com/aristath/tradejournal/internal/modules/analytics/handlers"
	importshandlers "github.com/aristath/tradejournal/internal/modules/imports/handlers"
	journalhandlers "github.com/aristath/tradejournal/internal/modules/journal/handlers"
	"github.com/aristath/tradejournal/internal/server"
	"github.com/rs/zerolog"
)

// ServerConfig builds the HTTP server configuration from the container
func ServerConfig(container *Container, cfg *config.Config, log zerolog.Logger) server.Config {
	serverCfg := server.Config{
		Log:                 log,
		Port:                cfg.Port,
		DevMode:             cfg.DevMode,
		DB:                  container.JournalDB,
		Bus:                 container.EventBus,
		Trades:              container.TradeRepo,
		BackupRetentionDays: cfg.Backup.RetentionDays,
		Handlers: []server.RouteRegistrar{
			journalhandlers.NewHandler(container.TradeRepo, container.EventManager, log),
			importshandlers.NewHandler(container.ImportService, cfg.MaxUploadBytes, log),
			analyticshandlers.NewHandler(container.AnalyticsService, log),
		},
	}

	// Leave the interface nil so the backup endpoints report 503
	if container.R2BackupService != nil {
		serverCfg.Backups = container.R2BackupService
	}

	return serverCfg
}
