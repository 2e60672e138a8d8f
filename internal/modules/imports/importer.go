// Package imports turns CSV exports from trading platforms into canonical
// journal records.
package imports

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/tradejournal/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultBatchSize caps how many rows one Import call processes
const DefaultBatchSize = 50

// ErrEmptyRow marks a row with no non-blank cell
var ErrEmptyRow = errors.New("row has no values")

// Options configures an Importer
type Options struct {
	BatchSize int              // rows per call, DefaultBatchSize when <= 0
	Now       func() time.Time // clock for rows without a date, time.Now when nil
}

// RowError describes a row that was dropped
type RowError struct {
	Row    int    `json:"row"` // index into the rows passed to Import
	Format string `json:"format"`
	Reason string `json:"reason"`
}

// FormatCounts tallies mapped rows per detected format
type FormatCounts struct {
	Tradovate   int `json:"tradovate"`
	TradingView int `json:"tradingview"`
	Unknown     int `json:"unknown"`
}

func (c *FormatCounts) add(f domain.Format) {
	switch f {
	case domain.FormatTradovate:
		c.Tradovate++
	case domain.FormatTradingView:
		c.TradingView++
	default:
		c.Unknown++
	}
}

// Result is the outcome of one Import call
type Result struct {
	Records   []domain.TradeRecord `json:"records"`
	RowErrors []RowError           `json:"rowErrors"`
	Formats   FormatCounts         `json:"formats"`
	Processed int                  `json:"processed"` // rows looked at, at most the batch size
	Truncated bool                 `json:"truncated"` // rows beyond the batch size were not looked at
	Remaining int                  `json:"remaining"` // rows left for the next call
}

// Importer detects the format of each row and maps it to a TradeRecord
type Importer struct {
	batchSize int
	now       func() time.Time
	log       zerolog.Logger
}

// NewImporter creates a new importer
func NewImporter(opts Options, log zerolog.Logger) *Importer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Importer{
		batchSize: opts.BatchSize,
		now:       opts.Now,
		log:       log.With().Str("component", "importer").Logger(),
	}
}

// BatchSize returns the per-call row cap
func (imp *Importer) BatchSize() int {
	return imp.batchSize
}

// ImportRows maps rows and returns only the records that mapped.
// The slice is never nil; an empty slice means nothing was importable.
func (imp *Importer) ImportRows(rows []domain.RawRow) []domain.TradeRecord {
	return imp.Import(rows).Records
}

// Import maps up to BatchSize rows. A row that fails is recorded in RowErrors
// and skipped; the rest of the batch still maps.
func (imp *Importer) Import(rows []domain.RawRow) Result {
	n := len(rows)
	if n > imp.batchSize {
		n = imp.batchSize
	}

	result := Result{
		Records:   make([]domain.TradeRecord, 0, n),
		RowErrors: make([]RowError, 0),
		Processed: n,
		Truncated: len(rows) > n,
		Remaining: len(rows) - n,
	}

	// One clock reading per batch keeps every dateless row in it identical
	now := imp.now()

	for i := 0; i < n; i++ {
		format := DetectFormat(rows[i])
		record, err := mapRow(rows[i], format, now)
		if err != nil {
			imp.log.Warn().
				Err(err).
				Int("row", i).
				Str("format", format.String()).
				Msg("Dropping row that could not be mapped")
			result.RowErrors = append(result.RowErrors, RowError{
				Row:    i,
				Format: format.String(),
				Reason: err.Error(),
			})
			continue
		}
		result.Formats.add(format)
		result.Records = append(result.Records, record)
	}

	if result.Truncated {
		imp.log.Debug().
			Int("processed", n).
			Int("remaining", result.Remaining).
			Msg("Import batch truncated")
	}

	return result
}

// mapRow maps one row, turning a panic in a mapper into an error for that row
func mapRow(row domain.RawRow, format domain.Format, now time.Time) (record domain.TradeRecord, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic while mapping row: %v", p)
		}
	}()

	if isBlank(row) {
		return domain.TradeRecord{}, ErrEmptyRow
	}

	switch format {
	case domain.FormatTradovate:
		record = MapTradovate(row, now)
	default:
		record = MapTradingView(row, now)
	}

	record = record.Truncated()
	if err := record.Validate(); err != nil {
		return domain.TradeRecord{}, fmt.Errorf("invalid record: %w", err)
	}
	return record, nil
}

func isBlank(row domain.RawRow) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
