package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/aristath/tradejournal/internal/domain"
)

// ExportHeader is the header row written by WriteCSV.
// The names match the record's JSON fields, which the importer accepts as
// aliases, so an export re-imports into identical records.
var ExportHeader = []string{
	"date",
	"symbol",
	"setup",
	"mainTrendM15",
	"internalTrendM5",
	"entryType",
	"entryLevel",
	"liquidation",
	"location",
	"rrAchieved",
	"rrPotential",
	"profitLoss",
	"isWin",
}

// WriteCSV writes records as CSV with ExportHeader
func WriteCSV(w io.Writer, records []domain.TradeRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, r := range records {
		line := []string{
			r.Date,
			r.Symbol,
			r.Setup,
			r.MainTrendM15,
			r.InternalTrendM5,
			r.EntryType,
			r.EntryLevel,
			r.Liquidation,
			r.Location,
			formatFloat(r.RRAchieved),
			formatFloat(r.RRPotential),
			formatFloat(r.ProfitLoss),
			strconv.FormatBool(r.IsWin),
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
