package analytics

import (
	"context"
	"errors"
	"fmt"

	"github.com/aristath/tradejournal/internal/domain"
	"github.com/aristath/tradejournal/internal/modules/journal"
	"github.com/rs/zerolog"
)

// ErrUnknownDimension is returned for a breakdown dimension without a key function
var ErrUnknownDimension = errors.New("unknown breakdown dimension")

// TradeLister fetches journal records in chronological order
type TradeLister interface {
	ListRecords(ctx context.Context, f journal.Filter) ([]domain.TradeRecord, error)
}

// Service loads filtered records and turns them into view-models
type Service struct {
	trades TradeLister
	log    zerolog.Logger
}

// NewService creates a new analytics service
func NewService(trades TradeLister, log zerolog.Logger) *Service {
	return &Service{
		trades: trades,
		log:    log.With().Str("service", "analytics").Logger(),
	}
}

func (s *Service) records(ctx context.Context, f journal.Filter) ([]domain.TradeRecord, error) {
	records, err := s.trades.ListRecords(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	s.log.Debug().Int("records", len(records)).Msg("Loaded trades for analytics")
	return records, nil
}

// Summary returns the full dashboard summary
func (s *Service) Summary(ctx context.Context, f journal.Filter) (*Summary, error) {
	records, err := s.records(ctx, f)
	if err != nil {
		return nil, err
	}
	summary := Summarize(records)
	return &summary, nil
}

// Equity returns the cumulative profit curve
func (s *Service) Equity(ctx context.Context, f journal.Filter) ([]EquityPoint, error) {
	records, err := s.records(ctx, f)
	if err != nil {
		return nil, err
	}
	return EquityCurve(chronological(records)), nil
}

// Drawdown returns the drawdown series of the equity curve
func (s *Service) Drawdown(ctx context.Context, f journal.Filter) ([]DrawdownPoint, error) {
	curve, err := s.Equity(ctx, f)
	if err != nil {
		return nil, err
	}
	return Drawdown(curve), nil
}

// Streaks returns the longest win and loss runs and the current one
func (s *Service) Streaks(ctx context.Context, f journal.Filter) (*Streaks, error) {
	records, err := s.records(ctx, f)
	if err != nil {
		return nil, err
	}
	streaks := StreaksOf(records)
	return &streaks, nil
}

// Heatmap returns the weekday × hour grid
func (s *Service) Heatmap(ctx context.Context, f journal.Filter) ([]HeatmapCell, error) {
	records, err := s.records(ctx, f)
	if err != nil {
		return nil, err
	}
	return Heatmap(records), nil
}

// Breakdown groups records by one of the Dimensions
func (s *Service) Breakdown(ctx context.Context, f journal.Filter, dimension string) ([]NamedBucket, error) {
	keyFn, ok := Dimensions[dimension]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDimension, dimension)
	}

	records, err := s.records(ctx, f)
	if err != nil {
		return nil, err
	}
	return SortedBuckets(GroupBy(records, keyFn)), nil
}
