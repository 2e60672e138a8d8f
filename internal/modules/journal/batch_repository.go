package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const importBatchColumns = `id, filename, total_rows, imported, skipped,
tradovate_rows, tradingview_rows, unknown_rows, created_at`

// BatchRepository handles import batch history
type BatchRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewBatchRepository creates a new import batch repository
func NewBatchRepository(db *sql.DB, log zerolog.Logger) *BatchRepository {
	return &BatchRepository{
		db:  db,
		log: log.With().Str("repo", "import_batch").Logger(),
	}
}

// Create records a finished import. CreatedAt is set when zero.
func (r *BatchRepository) Create(ctx context.Context, batch *ImportBatch) error {
	if batch.ID == "" {
		return fmt.Errorf("import batch id is required")
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}

	query := "INSERT INTO import_batches (" + importBatchColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, query,
		batch.ID,
		batch.Filename,
		batch.TotalRows,
		batch.Imported,
		batch.Skipped,
		batch.Tradovate,
		batch.TradingView,
		batch.Unknown,
		batch.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to create import batch: %w", err)
	}

	r.log.Info().
		Str("batch_id", batch.ID).
		Int("imported", batch.Imported).
		Int("skipped", batch.Skipped).
		Msg("Import batch recorded")
	return nil
}

// GetByID retrieves an import batch
func (r *BatchRepository) GetByID(ctx context.Context, id string) (*ImportBatch, error) {
	query := "SELECT " + importBatchColumns + " FROM import_batches WHERE id = ?"

	batch, err := scanBatch(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import batch: %w", err)
	}
	return &batch, nil
}

// List returns the most recent import batches first; limit <= 0 means all
func (r *BatchRepository) List(ctx context.Context, limit int) ([]ImportBatch, error) {
	query := "SELECT " + importBatchColumns + " FROM import_batches ORDER BY created_at DESC, rowid DESC"
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list import batches: %w", err)
	}
	defer rows.Close()

	batches := make([]ImportBatch, 0)
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import batch: %w", err)
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating import batches: %w", err)
	}
	return batches, nil
}

// Delete removes an import batch record
func (r *BatchRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM import_batches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete import batch: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrBatchNotFound
	}
	return nil
}

func scanBatch(row rowScanner) (ImportBatch, error) {
	var b ImportBatch
	var createdAt int64

	err := row.Scan(
		&b.ID,
		&b.Filename,
		&b.TotalRows,
		&b.Imported,
		&b.Skipped,
		&b.Tradovate,
		&b.TradingView,
		&b.Unknown,
		&createdAt,
	)
	if err != nil {
		return ImportBatch{}, err
	}

	b.CreatedAt = time.Unix(createdAt, 0).UTC()
	return b, nil
}
