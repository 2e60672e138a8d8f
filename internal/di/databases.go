package di

import (
	"fmt"

	"github.com/aristath/tradejournal/internal/config"
	"github.com/aristath/tradejournal/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the journal database and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	journalDB, err := database.New(database.Config{
		Path:    cfg.DatabasePath(),
		Profile: database.ProfileJournal, // the journal is the only copy of the user's trades
		Name:    "journal",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize journal database: %w", err)
	}

	if err := journalDB.Migrate(); err != nil {
		_ = journalDB.Close()
		return nil, fmt.Errorf("failed to migrate journal database: %w", err)
	}

	log.Info().Str("path", journalDB.Path()).Msg("Journal database ready")

	return &Container{JournalDB: journalDB}, nil
}
