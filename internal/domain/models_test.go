package domain

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_String(t *testing.T) {
	assert.Equal(t, "tradovate", FormatTradovate.String())
	assert.Equal(t, "tradingview", FormatTradingView.String())
	assert.Equal(t, "unknown", FormatUnknown.String())

	text, err := FormatTradovate.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "tradovate", string(text))
}

func TestTradeRecord_Validate(t *testing.T) {
	tests := []struct {
		name    string
		record  TradeRecord
		wantErr error
	}{
		{
			name:   "zero record is valid",
			record: TradeRecord{},
		},
		{
			name:    "NaN profit",
			record:  TradeRecord{ProfitLoss: math.NaN()},
			wantErr: ErrInvalidNumber,
		},
		{
			name:    "infinite rr",
			record:  TradeRecord{RRAchieved: math.Inf(1)},
			wantErr: ErrInvalidNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTradeRecord_ValidateLength(t *testing.T) {
	record := TradeRecord{Setup: strings.Repeat("x", MaxFieldLength+1)}
	err := record.Validate()
	require.ErrorIs(t, err, ErrFieldTooLong)
	assert.Contains(t, err.Error(), "setup")
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want time.Time
		ok   bool
	}{
		{"rfc3339", "2024-03-15T14:30:00Z", want, true},
		{"rfc3339 with offset", "2024-03-15T16:30:00+02:00", want, true},
		{"space separated", "2024-03-15 14:30:00", want, true},
		{"us layout", "03/15/2024 14:30:00", want, true},
		{"european layout", "15.03.2024 14:30", want, true},
		{"date only", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"blank", "   ", time.Time{}, false},
		{"garbage", "yesterday", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTime(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestTradeRecord_Timestamp(t *testing.T) {
	assert.Equal(t, int64(0), TradeRecord{Date: "not a date"}.Timestamp())
	assert.Equal(t, int64(1710513000), TradeRecord{Date: "2024-03-15T14:30:00Z"}.Timestamp())
}

func TestFormatTime(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	assert.Equal(t, "2024-03-15T13:30:00Z", FormatTime(time.Date(2024, 3, 15, 14, 30, 0, 0, loc)))
}

func TestNormalizeDate(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"blank uses now", "  ", "2024-06-01T12:00:00Z"},
		{"iso kept as utc", "2024-03-15T16:30:00+02:00", "2024-03-15T14:30:00Z"},
		{"us layout", "03/15/2024 14:30:00", "2024-03-15T14:30:00Z"},
		{"unparsable kept verbatim", "last tuesday", "last tuesday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDate(tt.raw, now))
		})
	}
}

func TestTradeRecord_Truncated(t *testing.T) {
	record := TradeRecord{
		Symbol:     "ES",
		Location:   strings.Repeat("x", MaxFieldLength+88),
		Setup:      strings.Repeat("x", MaxFieldLength-1) + "€", // 3-byte rune straddles the limit
		ProfitLoss: 100,
	}

	got := record.Truncated()
	assert.Equal(t, "ES", got.Symbol)
	assert.Len(t, got.Location, MaxFieldLength)
	assert.Equal(t, strings.Repeat("x", MaxFieldLength-1), got.Setup)
	assert.Equal(t, 100.0, got.ProfitLoss)
	assert.NoError(t, got.Validate())

	// The receiver is untouched
	assert.Len(t, record.Location, MaxFieldLength+88)
}
