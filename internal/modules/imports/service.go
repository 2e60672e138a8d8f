package imports

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aristath/tradejournal/internal/domain"
	"github.com/aristath/tradejournal/internal/events"
	"github.com/aristath/tradejournal/internal/metrics"
	"github.com/aristath/tradejournal/internal/modules/journal"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrNothingImportable is returned when an upload produced no records
var ErrNothingImportable = errors.New("no importable rows")

// TradeWriter persists imported records
type TradeWriter interface {
	CreateBatch(ctx context.Context, batchID string, records []domain.TradeRecord) (int, error)
	DeleteByBatch(ctx context.Context, batchID string) (int, error)
}

// BatchStore records import history
type BatchStore interface {
	Create(ctx context.Context, batch *journal.ImportBatch) error
	GetByID(ctx context.Context, id string) (*journal.ImportBatch, error)
	List(ctx context.Context, limit int) ([]journal.ImportBatch, error)
	Delete(ctx context.Context, id string) error
}

// ImportSummary is what an upload reports back to the user
type ImportSummary struct {
	BatchID   string       `json:"batchId,omitempty"`
	Filename  string       `json:"filename,omitempty"`
	TotalRows int          `json:"totalRows"`
	Imported  int          `json:"imported"`
	Skipped   int          `json:"skipped"`
	Formats   FormatCounts `json:"formats"`
	// RowErrors carry 1-based data row numbers (the header is not counted)
	RowErrors []RowError           `json:"rowErrors"`
	Message   string               `json:"message"`
	Records   []domain.TradeRecord `json:"records,omitempty"` // preview only
}

// Service reads CSV uploads, feeds them through the importer one batch at a
// time and stores the result
type Service struct {
	importer     *Importer
	trades       TradeWriter
	batches      BatchStore
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewService creates a new import service; eventManager may be nil
func NewService(importer *Importer, trades TradeWriter, batches BatchStore, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		importer:     importer,
		trades:       trades,
		batches:      batches,
		eventManager: eventManager,
		log:          log.With().Str("service", "imports").Logger(),
	}
}

// ImportCSV imports an uploaded file. Every chunk of BatchSize rows is written
// in its own transaction; if a later chunk fails the chunks already written
// are removed again, so an upload lands completely or not at all.
// Returns ErrNothingImportable, together with the summary, when no row mapped.
func (s *Service) ImportCSV(ctx context.Context, filename string, r io.Reader) (*ImportSummary, error) {
	rows, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	summary := s.mapAll(rows, func(records []domain.TradeRecord) error {
		if _, err := s.trades.CreateBatch(ctx, batchID, records); err != nil {
			return err
		}
		return nil
	})
	summary.Filename = filename

	if summary.err != nil {
		s.rollback(ctx, batchID)
		return nil, fmt.Errorf("failed to store imported trades: %w", summary.err)
	}
	s.recordMetrics(summary.ImportSummary)

	if summary.Imported == 0 {
		s.log.Warn().
			Str("filename", filename).
			Int("total_rows", summary.TotalRows).
			Msg("Upload contained no importable rows")
		return &summary.ImportSummary, ErrNothingImportable
	}

	summary.BatchID = batchID
	batch := &journal.ImportBatch{
		ID:          batchID,
		Filename:    filename,
		TotalRows:   summary.TotalRows,
		Imported:    summary.Imported,
		Skipped:     summary.Skipped,
		Tradovate:   summary.Formats.Tradovate,
		TradingView: summary.Formats.TradingView,
		Unknown:     summary.Formats.Unknown,
	}
	if err := s.batches.Create(ctx, batch); err != nil {
		s.rollback(ctx, batchID)
		return nil, fmt.Errorf("failed to record import batch: %w", err)
	}
	metrics.ImportBatches.Inc()

	s.log.Info().
		Str("batch_id", batchID).
		Str("filename", filename).
		Int("imported", summary.Imported).
		Int("skipped", summary.Skipped).
		Msg(summary.Message)

	if s.eventManager != nil {
		s.eventManager.EmitTyped(events.TradesImported, "imports", &events.TradesImportedData{
			BatchID:     batchID,
			Filename:    filename,
			TotalRows:   summary.TotalRows,
			Imported:    summary.Imported,
			Skipped:     summary.Skipped,
			Tradovate:   summary.Formats.Tradovate,
			TradingView: summary.Formats.TradingView,
		})
	}

	return &summary.ImportSummary, nil
}

// Preview maps an upload without storing anything
func (s *Service) Preview(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	rows, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}

	var records []domain.TradeRecord
	summary := s.mapAll(rows, func(batch []domain.TradeRecord) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		records = append(records, batch...)
		return nil
	})
	if summary.err != nil {
		return nil, summary.err
	}

	summary.Records = records
	if summary.Records == nil {
		summary.Records = make([]domain.TradeRecord, 0)
	}
	return &summary.ImportSummary, nil
}

// History lists recent uploads
func (s *Service) History(ctx context.Context, limit int) ([]journal.ImportBatch, error) {
	return s.batches.List(ctx, limit)
}

// Revert deletes every trade an upload created and the upload record itself
func (s *Service) Revert(ctx context.Context, batchID string) (int, error) {
	if _, err := s.batches.GetByID(ctx, batchID); err != nil {
		return 0, err
	}

	deleted, err := s.trades.DeleteByBatch(ctx, batchID)
	if err != nil {
		return 0, fmt.Errorf("failed to revert import: %w", err)
	}
	if err := s.batches.Delete(ctx, batchID); err != nil {
		return deleted, fmt.Errorf("failed to delete import batch: %w", err)
	}

	s.log.Info().Str("batch_id", batchID).Int("deleted", deleted).Msg("Import reverted")

	if s.eventManager != nil {
		s.eventManager.EmitTyped(events.ImportReverted, "imports", &events.ImportRevertedData{
			BatchID: batchID,
			Deleted: deleted,
		})
	}
	return deleted, nil
}

type mapOutcome struct {
	ImportSummary
	err error
}

// mapAll runs every row through the importer, BatchSize rows per call, and
// hands each non-empty chunk of records to sink. It stops at the first sink error.
func (s *Service) mapAll(rows []domain.RawRow, sink func([]domain.TradeRecord) error) mapOutcome {
	out := mapOutcome{ImportSummary: ImportSummary{
		TotalRows: len(rows),
		RowErrors: make([]RowError, 0),
	}}

	for offset := 0; offset < len(rows); {
		result := s.importer.Import(rows[offset:])

		for _, rowErr := range result.RowErrors {
			rowErr.Row += offset + 1
			out.RowErrors = append(out.RowErrors, rowErr)
		}
		out.Formats.Tradovate += result.Formats.Tradovate
		out.Formats.TradingView += result.Formats.TradingView
		out.Formats.Unknown += result.Formats.Unknown

		if len(result.Records) > 0 {
			if err := sink(result.Records); err != nil {
				out.err = err
				return out
			}
			out.Imported += len(result.Records)
		}

		offset += result.Processed
	}

	out.Skipped = out.TotalRows - out.Imported
	out.Message = fmt.Sprintf("%d of %d rows imported", out.Imported, out.TotalRows)
	return out
}

func (s *Service) rollback(ctx context.Context, batchID string) {
	// The request context may already be cancelled; cleanup must still run
	if _, err := s.trades.DeleteByBatch(context.WithoutCancel(ctx), batchID); err != nil {
		s.log.Error().Err(err).Str("batch_id", batchID).Msg("Failed to roll back partial import")
	}
}

func (s *Service) recordMetrics(summary ImportSummary) {
	metrics.ImportRows.WithLabelValues("imported", domain.FormatTradovate.String()).Add(float64(summary.Formats.Tradovate))
	metrics.ImportRows.WithLabelValues("imported", domain.FormatTradingView.String()).Add(float64(summary.Formats.TradingView))
	metrics.ImportRows.WithLabelValues("imported", domain.FormatUnknown.String()).Add(float64(summary.Formats.Unknown))
	for _, rowErr := range summary.RowErrors {
		metrics.ImportRows.WithLabelValues("skipped", rowErr.Format).Inc()
	}
}
