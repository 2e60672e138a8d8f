package testing

import (
	"github.com/aristath/tradejournal/internal/domain"
)

// NewTradeFixtures returns a chronological set of journal entries:
// three wins, two losses, then four wins, across two symbols and three setups.
func NewTradeFixtures() []domain.TradeRecord {
	return []domain.TradeRecord{
		{Symbol: "ES", Setup: "Breakout", EntryType: "Long", Location: "Premium", RRAchieved: 2, RRPotential: 3, ProfitLoss: 200, IsWin: true, Date: "2024-03-04T14:30:00Z"},
		{Symbol: "ES", Setup: "Breakout", EntryType: "Long", Location: "Premium", RRAchieved: 1.5, RRPotential: 2, ProfitLoss: 150, IsWin: true, Date: "2024-03-05T15:00:00Z"},
		{Symbol: "NQ", Setup: "Pullback", EntryType: "Short", Location: "Discount", RRAchieved: 1, RRPotential: 2, ProfitLoss: 100, IsWin: true, Date: "2024-03-06T09:15:00Z"},
		{Symbol: "NQ", Setup: "Pullback", EntryType: "Short", Location: "Discount", RRAchieved: 1, RRPotential: 2, ProfitLoss: -100, IsWin: false, Date: "2024-03-07T10:00:00Z"},
		{Symbol: "ES", Setup: "", EntryType: "Long", Location: "", RRAchieved: 1, RRPotential: 1.5, ProfitLoss: -50, IsWin: false, Date: "2024-03-08T16:45:00Z"},
		{Symbol: "ES", Setup: "Breakout", EntryType: "Long", Location: "Premium", RRAchieved: 3, RRPotential: 3, ProfitLoss: 300, IsWin: true, Date: "2024-03-11T14:30:00Z"},
		{Symbol: "NQ", Setup: "Reversal", EntryType: "Short", Location: "Premium", RRAchieved: 2, RRPotential: 4, ProfitLoss: 200, IsWin: true, Date: "2024-03-12T14:30:00Z"},
		{Symbol: "NQ", Setup: "", EntryType: "Long", Location: "Discount", RRAchieved: 0.5, RRPotential: 2, ProfitLoss: 50, IsWin: true, Date: "2024-03-13T11:00:00Z"},
		{Symbol: "ES", Setup: "Reversal", EntryType: "Short", Location: "Discount", RRAchieved: 1, RRPotential: 1, ProfitLoss: 100, IsWin: true, Date: "2024-03-14T14:30:00Z"},
	}
}
