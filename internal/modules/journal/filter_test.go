package journal

import (
	"net/url"
	"testing"
	"time"

	"github.com/aristath/tradejournal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    Filter
		wantErr bool
	}{
		{name: "empty", query: "", want: Filter{}},
		{
			name:  "date only range covers the last day",
			query: "from=2024-03-01&to=2024-03-31",
			want: Filter{
				From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
			},
		},
		{
			name:  "rfc3339 and text filters",
			query: "from=2024-03-01T10:00:00%2B01:00&setup=+Breakout+&symbol=es&limit=20",
			want: Filter{
				From:   time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
				Setup:  "Breakout",
				Symbol: "ES",
				Limit:  20,
			},
		},
		{name: "limit capped", query: "limit=999999", want: Filter{Limit: MaxListLimit}},
		{name: "bad from", query: "from=yesterday", wantErr: true},
		{name: "bad limit", query: "limit=-1", wantErr: true},
		{name: "inverted range", query: "from=2024-04-01&to=2024-03-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := ParseFilter(q)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.From.Equal(got.From), "from: got %v", got.From)
			assert.True(t, tt.want.To.Equal(got.To), "to: got %v", got.To)
			assert.Equal(t, tt.want.Setup, got.Setup)
			assert.Equal(t, tt.want.Symbol, got.Symbol)
			assert.Equal(t, tt.want.Limit, got.Limit)
		})
	}
}

func TestNormalize(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	got := Normalize(domain.TradeRecord{
		Symbol:   " nq ",
		Setup:    " Breakout ",
		Location: "Premium ",
		Date:     "",
	}, now)

	assert.Equal(t, "NQ", got.Symbol)
	assert.Equal(t, "Breakout", got.Setup)
	assert.Equal(t, "Premium", got.Location)
	assert.Equal(t, "2024-06-01T08:00:00Z", got.Date)

	kept := Normalize(domain.TradeRecord{Date: "15.03.2024 14:30"}, now)
	assert.Equal(t, "2024-03-15T14:30:00Z", kept.Date)
}
