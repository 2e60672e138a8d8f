// Package journal stores trades and import batches.
package journal

import (
	"errors"
	"strings"
	"time"

	"github.com/aristath/tradejournal/internal/domain"
)

// ErrTradeNotFound is returned when no trade has the requested id
var ErrTradeNotFound = errors.New("trade not found")

// ErrBatchNotFound is returned when no import batch has the requested id
var ErrBatchNotFound = errors.New("import batch not found")

// Trade is a stored TradeRecord
type Trade struct {
	ID int64 `json:"id" msgpack:"id"`
	domain.TradeRecord
	BatchID   string    `json:"batchId,omitempty" msgpack:"batchId,omitempty"`
	CreatedAt time.Time `json:"createdAt" msgpack:"createdAt"`
}

// ImportBatch records one CSV upload
type ImportBatch struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	TotalRows   int       `json:"totalRows"`
	Imported    int       `json:"imported"`
	Skipped     int       `json:"skipped"`
	Tradovate   int       `json:"tradovateRows"`
	TradingView int       `json:"tradingviewRows"`
	Unknown     int       `json:"unknownRows"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Normalize prepares a hand-entered record for storage: strings are trimmed,
// the symbol is upper-cased and the date is rewritten as RFC3339 UTC
// (blank → now, unparsable → kept as given).
func Normalize(record domain.TradeRecord, now time.Time) domain.TradeRecord {
	record.Symbol = normalizeSymbol(record.Symbol)
	record.Setup = strings.TrimSpace(record.Setup)
	record.MainTrendM15 = strings.TrimSpace(record.MainTrendM15)
	record.InternalTrendM5 = strings.TrimSpace(record.InternalTrendM5)
	record.EntryType = strings.TrimSpace(record.EntryType)
	record.EntryLevel = strings.TrimSpace(record.EntryLevel)
	record.Liquidation = strings.TrimSpace(record.Liquidation)
	record.Location = strings.TrimSpace(record.Location)
	record.Date = domain.NormalizeDate(record.Date, now)
	return record
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
