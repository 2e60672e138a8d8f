package imports

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/tradejournal/internal/domain"
)

// MapTradovate maps a Tradovate performance row.
// Tradovate has no result column, so IsWin is always the sign of P/L.
// RRAchieved is |P/L / Initial Risk|; a missing risk column counts as 1 and a
// risk of 0 yields 0 instead of dividing.
func MapTradovate(row domain.RawRow, now time.Time) domain.TradeRecord {
	pl := ParseNumber(lookup(row, tradovateProfitHeader))

	risk := 1.0
	if raw := lookup(row, tradovateRiskHeader); raw != "" {
		risk = ParseNumber(raw)
	}
	rr := 0.0
	if risk != 0 {
		rr = math.Abs(pl / risk)
	}

	return domain.TradeRecord{
		Symbol:          lookup(row, tradovateSymbolAliases...),
		Setup:           lookup(row, setupAliases...),
		MainTrendM15:    lookup(row, mainTrendM15Aliases...),
		InternalTrendM5: lookup(row, internalTrendM5Aliases...),
		EntryType:       lookup(row, tradovateEntryTypeAliases...),
		EntryLevel:      lookup(row, tradovateEntryLevelAliases...),
		Liquidation:     lookup(row, tradovateLiquidationAliases...),
		Location:        lookup(row, locationAliases...),
		RRAchieved:      rr,
		RRPotential:     ParseNumber(lookup(row, rrPotentialAliases...)),
		ProfitLoss:      pl,
		IsWin:           pl > 0,
		Date:            domain.NormalizeDate(lookup(row, tradovateDateAliases...), now),
	}
}

// MapTradingView maps a TradingView or hand-made journal row; it is also the
// mapper for rows whose format could not be detected.
// Every field comes from the first alias holding a non-blank value, with
// surrounding whitespace trimmed; inner text such as "1.0850 / 1.0800" is kept as written.
func MapTradingView(row domain.RawRow, now time.Time) domain.TradeRecord {
	pl := ParseNumber(lookup(row, profitLossAliases...))

	return domain.TradeRecord{
		Symbol:          lookup(row, symbolAliases...),
		Setup:           lookup(row, setupAliases...),
		MainTrendM15:    lookup(row, mainTrendM15Aliases...),
		InternalTrendM5: lookup(row, internalTrendM5Aliases...),
		EntryType:       lookup(row, entryTypeAliases...),
		EntryLevel:      lookup(row, entryLevelAliases...),
		Liquidation:     lookup(row, liquidationAliases...),
		Location:        lookup(row, locationAliases...),
		RRAchieved:      ParseNumber(lookup(row, rrAchievedAliases...)),
		RRPotential:     ParseNumber(lookup(row, rrPotentialAliases...)),
		ProfitLoss:      pl,
		IsWin:           resolveWin(lookup(row, isWinAliases...), pl),
		Date:            domain.NormalizeDate(lookup(row, dateAliases...), now),
	}
}

// resolveWin reads an explicit result cell. An explicit value always beats the
// sign of the profit; only a blank or unrecognised cell falls back to pl > 0.
func resolveWin(raw string, pl float64) bool {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return pl > 0
	}
	if winWords[v] {
		return true
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	if lossWords[v] {
		return false
	}
	return pl > 0
}

// lookup returns the trimmed value of the first alias present with a non-blank value.
// A blank cell under an earlier alias falls through to the next alias.
func lookup(row domain.RawRow, aliases ...string) string {
	for _, alias := range aliases {
		if v, ok := row[alias]; ok {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
