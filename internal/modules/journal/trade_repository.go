package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/tradejournal/internal/database"
	"github.com/aristath/tradejournal/internal/domain"
	"github.com/rs/zerolog"
)

// tradeColumns is the list of columns for the trades table
// Column order must match scanTrade()
const tradeColumns = `id, symbol, setup, main_trend_m15, internal_trend_m5, entry_type, entry_level,
liquidation, location, rr_achieved, rr_potential, profit_loss, is_win, date, batch_id, created_at`

const insertTradeSQL = `
	INSERT INTO trades
	(symbol, setup, main_trend_m15, internal_trend_m5, entry_type, entry_level,
	 liquidation, location, rr_achieved, rr_potential, profit_loss, is_win,
	 date, traded_at, batch_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// TradeRepository handles trade database operations
type TradeRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(db *sql.DB, log zerolog.Logger) *TradeRepository {
	return &TradeRepository{
		db:  db,
		log: log.With().Str("repo", "trade").Logger(),
	}
}

// Create stores a single trade
func (r *TradeRepository) Create(ctx context.Context, record domain.TradeRecord) (*Trade, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}
	record.Symbol = normalizeSymbol(record.Symbol)
	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, insertTradeSQL, insertArgs(record, "", now)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	r.log.Info().
		Int64("id", id).
		Str("symbol", record.Symbol).
		Float64("profit_loss", record.ProfitLoss).
		Msg("Trade created")

	return &Trade{
		ID:          id,
		TradeRecord: record,
		CreatedAt:   time.Unix(now.Unix(), 0).UTC(),
	}, nil
}

// CreateBatch stores records in one transaction tagged with batchID.
// Either every record is written or none is.
func (r *TradeRepository) CreateBatch(ctx context.Context, batchID string, records []domain.TradeRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
	}

	now := time.Now().UTC()
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertTradeSQL)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, record := range records {
			record.Symbol = normalizeSymbol(record.Symbol)
			if _, err := stmt.ExecContext(ctx, insertArgs(record, batchID, now)...); err != nil {
				return fmt.Errorf("failed to insert trade: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create trade batch: %w", err)
	}

	r.log.Info().
		Str("batch_id", batchID).
		Int("count", len(records)).
		Msg("Trade batch created")

	return len(records), nil
}

// GetByID retrieves a trade by ID
func (r *TradeRepository) GetByID(ctx context.Context, id int64) (*Trade, error) {
	query := "SELECT " + tradeColumns + " FROM trades WHERE id = ?"

	trade, err := scanTrade(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTradeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade by ID: %w", err)
	}
	return &trade, nil
}

// Update replaces every field of an existing trade
func (r *TradeRepository) Update(ctx context.Context, id int64, record domain.TradeRecord) (*Trade, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}
	record.Symbol = normalizeSymbol(record.Symbol)

	query := `
		UPDATE trades SET
			symbol = ?, setup = ?, main_trend_m15 = ?, internal_trend_m5 = ?,
			entry_type = ?, entry_level = ?, liquidation = ?, location = ?,
			rr_achieved = ?, rr_potential = ?, profit_loss = ?, is_win = ?,
			date = ?, traded_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		record.Symbol,
		record.Setup,
		record.MainTrendM15,
		record.InternalTrendM5,
		record.EntryType,
		record.EntryLevel,
		record.Liquidation,
		record.Location,
		record.RRAchieved,
		record.RRPotential,
		record.ProfitLoss,
		boolToInt(record.IsWin),
		record.Date,
		record.Timestamp(),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update trade: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrTradeNotFound
	}

	r.log.Info().Int64("id", id).Msg("Trade updated")
	return r.GetByID(ctx, id)
}

// Delete removes a trade
func (r *TradeRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrTradeNotFound
	}

	r.log.Info().Int64("id", id).Msg("Trade deleted")
	return nil
}

// DeleteByBatch removes every trade written by one import and returns how many went
func (r *TradeRepository) DeleteByBatch(ctx context.Context, batchID string) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM trades WHERE batch_id = ?", batchID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete trades for batch: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	r.log.Info().Str("batch_id", batchID).Int64("count", affected).Msg("Batch trades deleted")
	return int(affected), nil
}

// List returns trades matching the filter in chronological order.
// Trades with unparsable dates sort first.
func (r *TradeRepository) List(ctx context.Context, f Filter) ([]Trade, error) {
	where, args := f.where()
	query := "SELECT " + tradeColumns + " FROM trades" + where + " ORDER BY traded_at ASC, id ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	trades := make([]Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}

// ListRecords returns the TradeRecords of List, for the aggregator
func (r *TradeRepository) ListRecords(ctx context.Context, f Filter) ([]domain.TradeRecord, error) {
	trades, err := r.List(ctx, f)
	if err != nil {
		return nil, err
	}

	records := make([]domain.TradeRecord, len(trades))
	for i := range trades {
		records[i] = trades[i].TradeRecord
	}
	return records, nil
}

// Count returns the number of stored trades
func (r *TradeRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trades").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row rowScanner) (Trade, error) {
	var t Trade
	var isWin int
	var createdAt int64

	err := row.Scan(
		&t.ID,
		&t.Symbol,
		&t.Setup,
		&t.MainTrendM15,
		&t.InternalTrendM5,
		&t.EntryType,
		&t.EntryLevel,
		&t.Liquidation,
		&t.Location,
		&t.RRAchieved,
		&t.RRPotential,
		&t.ProfitLoss,
		&isWin,
		&t.Date,
		&t.BatchID,
		&createdAt,
	)
	if err != nil {
		return Trade{}, err
	}

	t.IsWin = isWin != 0
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	return t, nil
}

func insertArgs(record domain.TradeRecord, batchID string, now time.Time) []interface{} {
	return []interface{}{
		record.Symbol,
		record.Setup,
		record.MainTrendM15,
		record.InternalTrendM5,
		record.EntryType,
		record.EntryLevel,
		record.Liquidation,
		record.Location,
		record.RRAchieved,
		record.RRPotential,
		record.ProfitLoss,
		boolToInt(record.IsWin),
		record.Date,
		record.Timestamp(),
		batchID,
		now.Unix(),
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
