package imports

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aristath/tradejournal/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImporter(batchSize int) *Importer {
	return NewImporter(Options{
		BatchSize: batchSize,
		Now:       func() time.Time { return testNow },
	}, zerolog.New(nil).Level(zerolog.Disabled))
}

func makeRows(n int) []domain.RawRow {
	rows := make([]domain.RawRow, n)
	for i := range rows {
		rows[i] = domain.RawRow{"Symbol": fmt.Sprintf("S%d", i), "Profit": "1"}
	}
	return rows
}

func TestNewImporter_Defaults(t *testing.T) {
	imp := NewImporter(Options{}, zerolog.New(nil).Level(zerolog.Disabled))
	assert.Equal(t, DefaultBatchSize, imp.BatchSize())
	assert.Equal(t, 50, DefaultBatchSize)
}

func TestImporter_EmptyInput(t *testing.T) {
	imp := newTestImporter(0)

	for _, rows := range [][]domain.RawRow{nil, {}} {
		records := imp.ImportRows(rows)
		assert.NotNil(t, records)
		assert.Empty(t, records)

		result := imp.Import(rows)
		assert.False(t, result.Truncated)
		assert.Equal(t, 0, result.Remaining)
		assert.Empty(t, result.RowErrors)
	}
}

func TestImporter_BatchCap(t *testing.T) {
	imp := newTestImporter(0)

	result := imp.Import(makeRows(120))
	assert.Len(t, result.Records, 50)
	assert.Equal(t, 50, result.Processed)
	assert.True(t, result.Truncated)
	assert.Equal(t, 70, result.Remaining)
	assert.Equal(t, "S0", result.Records[0].Symbol)
	assert.Equal(t, "S49", result.Records[49].Symbol)

	exact := imp.Import(makeRows(50))
	assert.Len(t, exact.Records, 50)
	assert.False(t, exact.Truncated)
}

func TestImporter_CustomBatchSize(t *testing.T) {
	imp := newTestImporter(3)

	result := imp.Import(makeRows(5))
	assert.Len(t, result.Records, 3)
	assert.Equal(t, 2, result.Remaining)
}

func TestImporter_MixedFormatsAndDrops(t *testing.T) {
	imp := newTestImporter(0)

	rows := []domain.RawRow{
		{"Contract": "ES", "P/L": "$125.50", "Initial Risk": "50"},
		{"Symbol": "EURUSD", "Result": "Loss", "Profit": "-40"},
		{"Symbol": "", "Profit": "  "},
		{"Ticker": "GC", "Profit": "10"},
		{},
	}

	result := imp.Import(rows)
	require.Len(t, result.Records, 3)
	assert.Equal(t, "ES", result.Records[0].Symbol)
	assert.InDelta(t, 2.51, result.Records[0].RRAchieved, 1e-12)
	assert.False(t, result.Records[1].IsWin)
	assert.Equal(t, "GC", result.Records[2].Symbol, "unknown rows map like TradingView")

	assert.Equal(t, FormatCounts{Tradovate: 1, TradingView: 1, Unknown: 1}, result.Formats)

	require.Len(t, result.RowErrors, 2)
	assert.Equal(t, 2, result.RowErrors[0].Row)
	assert.Equal(t, ErrEmptyRow.Error(), result.RowErrors[0].Reason)
	assert.Equal(t, 4, result.RowErrors[1].Row)
	assert.Equal(t, ErrEmptyRow.Error(), result.RowErrors[1].Reason)
}

func TestImporter_OverLongCellsAreTruncated(t *testing.T) {
	imp := newTestImporter(0)

	result := imp.Import([]domain.RawRow{
		{"Symbol": "ES", "Profit": "100", "Location": strings.Repeat("x", 600)},
	})

	require.Len(t, result.Records, 1)
	assert.Empty(t, result.RowErrors)
	assert.Equal(t, 100.0, result.Records[0].ProfitLoss)
	assert.True(t, result.Records[0].IsWin)
	assert.Len(t, result.Records[0].Location, domain.MaxFieldLength)
}

func TestImporter_AllRowsFail(t *testing.T) {
	imp := newTestImporter(0)

	records := imp.ImportRows([]domain.RawRow{{}, {"Symbol": " "}})
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestImporter_InjectedClock(t *testing.T) {
	calls := 0
	imp := NewImporter(Options{Now: func() time.Time {
		calls++
		return testNow.Add(time.Duration(calls) * time.Hour)
	}}, zerolog.New(nil).Level(zerolog.Disabled))

	records := imp.ImportRows(makeRows(3))
	require.Len(t, records, 3)
	for _, r := range records {
		assert.Equal(t, "2024-06-01T13:00:00Z", r.Date, "one clock reading per batch")
	}
	assert.Equal(t, 1, calls)
}

func TestMapRow(t *testing.T) {
	_, err := mapRow(domain.RawRow{"Symbol": "ES"}, domain.FormatTradingView, testNow)
	require.NoError(t, err)

	_, err = mapRow(nil, domain.FormatTradovate, testNow)
	assert.ErrorIs(t, err, ErrEmptyRow)
}
