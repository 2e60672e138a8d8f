package di

import (
	"fmt"

	"github.com/aristath/tradejournal/internal/modules/journal"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates all repositories and stores them in the container
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.JournalDB == nil {
		return fmt.Errorf("container has no journal database")
	}

	container.TradeRepo = journal.NewTradeRepository(container.JournalDB.Conn(), log)
	container.BatchRepo = journal.NewBatchRepository(container.JournalDB.Conn(), log)

	return nil
}
