package imports

import (
	"github.com/aristath/tradejournal/internal/domain"
)

// DetectFormat classifies a row by the headers it carries.
// Tradovate headers are checked first, so a row with both kinds is Tradovate.
// Unknown rows are still importable; Import maps them like TradingView rows.
func DetectFormat(row domain.RawRow) domain.Format {
	if hasAnyHeader(row, tradovateHeaders) {
		return domain.FormatTradovate
	}
	if hasAnyHeader(row, tradingViewHeaders) {
		return domain.FormatTradingView
	}
	return domain.FormatUnknown
}

func hasAnyHeader(row domain.RawRow, headers []string) bool {
	for _, h := range headers {
		if _, ok := row[h]; ok {
			return true
		}
	}
	return false
}
