// Package domain provides the canonical trade journal types shared by the
// importer, the aggregator and the persistence layer.
package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// RawRow is one parsed CSV line keyed by its column header.
// Headers are whatever the exporting platform wrote; nothing here controls them.
type RawRow map[string]string

// Format identifies the platform a RawRow was exported from
type Format int

const (
	// FormatUnknown rows are mapped with the TradingView aliases
	FormatUnknown Format = iota
	// FormatTradovate rows come from a Tradovate performance export
	FormatTradovate
	// FormatTradingView rows come from a TradingView (or hand-made) journal export
	FormatTradingView
)

// String returns the lower-case format name used in logs and API responses
func (f Format) String() string {
	switch f {
	case FormatTradovate:
		return "tradovate"
	case FormatTradingView:
		return "tradingview"
	default:
		return "unknown"
	}
}

// MarshalText encodes the format as its name
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ErrInvalidNumber is returned when a numeric field holds NaN or an infinity
var ErrInvalidNumber = errors.New("numeric field must be finite")

// ErrFieldTooLong is returned when a string field exceeds MaxFieldLength
var ErrFieldTooLong = errors.New("field too long")

// MaxFieldLength bounds free-form string fields on write
const MaxFieldLength = 512

// TradeRecord is the canonical journal entry.
// Every field is always populated: unknown strings are "" and unknown numbers are 0,
// so the aggregator never needs nil checks.
type TradeRecord struct {
	Symbol          string  `json:"symbol" msgpack:"symbol"`
	Setup           string  `json:"setup" msgpack:"setup"`
	MainTrendM15    string  `json:"mainTrendM15" msgpack:"mainTrendM15"`
	InternalTrendM5 string  `json:"internalTrendM5" msgpack:"internalTrendM5"`
	EntryType       string  `json:"entryType" msgpack:"entryType"`
	EntryLevel      string  `json:"entryLevel" msgpack:"entryLevel"`
	Liquidation     string  `json:"liquidation" msgpack:"liquidation"`
	Location        string  `json:"location" msgpack:"location"`
	RRAchieved      float64 `json:"rrAchieved" msgpack:"rrAchieved"`
	RRPotential     float64 `json:"rrPotential" msgpack:"rrPotential"`
	ProfitLoss      float64 `json:"profitLoss" msgpack:"profitLoss"`
	IsWin           bool    `json:"isWin" msgpack:"isWin"`
	Date            string  `json:"date" msgpack:"date"` // ISO 8601
}

// Validate checks a record before it is written to storage
func (r TradeRecord) Validate() error {
	numbers := map[string]float64{
		"rrAchieved":  r.RRAchieved,
		"rrPotential": r.RRPotential,
		"profitLoss":  r.ProfitLoss,
	}
	for name, v := range numbers {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s: %w", name, ErrInvalidNumber)
		}
	}

	texts := map[string]string{
		"symbol":          r.Symbol,
		"setup":           r.Setup,
		"mainTrendM15":    r.MainTrendM15,
		"internalTrendM5": r.InternalTrendM5,
		"entryType":       r.EntryType,
		"entryLevel":      r.EntryLevel,
		"liquidation":     r.Liquidation,
		"location":        r.Location,
		"date":            r.Date,
	}
	for name, v := range texts {
		if len(v) > MaxFieldLength {
			return fmt.Errorf("%s: %w (max %d characters)", name, ErrFieldTooLong, MaxFieldLength)
		}
	}

	return nil
}

// Truncated returns a copy with every string field cut to at most MaxFieldLength
// bytes, never splitting a UTF-8 sequence. The importer applies it before Validate.
func (r TradeRecord) Truncated() TradeRecord {
	for _, field := range []*string{
		&r.Symbol, &r.Setup, &r.MainTrendM15, &r.InternalTrendM5, &r.EntryType,
		&r.EntryLevel, &r.Liquidation, &r.Location, &r.Date,
	} {
		*field = truncateUTF8(*field, MaxFieldLength)
	}
	return r
}

func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Time parses the record date. ok is false when the date is empty or unparsable.
func (r TradeRecord) Time() (t time.Time, ok bool) {
	return ParseTime(r.Date)
}

// Timestamp returns the record date as unix seconds, 0 when unparsable.
// Records without a usable date therefore sort as the earliest.
func (r TradeRecord) Timestamp() int64 {
	t, ok := r.Time()
	if !ok {
		return 0
	}
	return t.Unix()
}

// timeLayouts are tried in order by ParseTime.
// Covers ISO 8601 variants plus the US and European layouts the platforms export.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ParseTime parses a date string in any of the supported layouts.
// Layouts without a zone are read as UTC.
func ParseTime(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatTime renders t the way TradeRecord.Date is stored
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// NormalizeDate renders raw as RFC3339 UTC when it parses in a known layout.
// Unparsable input is kept verbatim so nothing the user wrote is lost;
// blank input becomes now.
func NormalizeDate(raw string, now time.Time) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return FormatTime(now)
	}
	if t, ok := ParseTime(s); ok {
		return FormatTime(t)
	}
	return s
}
