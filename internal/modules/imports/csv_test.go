package imports

import (
	"errors"
	"strings"
	"testing"

	"github.com/aristath/tradejournal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []domain.RawRow
	}{
		{
			name:  "comma separated",
			input: "Contract,P/L,Initial Risk\nES,$125.50,50\n",
			want:  []domain.RawRow{{"Contract": "ES", "P/L": "$125.50", "Initial Risk": "50"}},
		},
		{
			name:  "bom and padded headers",
			input: "\ufeff Symbol , Result \nEURUSD,Loss\n",
			want:  []domain.RawRow{{"Symbol": "EURUSD", "Result": "Loss"}},
		},
		{
			name:  "semicolon delimiter",
			input: "Symbol;Profit;Date\nDAX;1.234,56;15.03.2024\n",
			want:  []domain.RawRow{{"Symbol": "DAX", "Profit": "1.234,56", "Date": "15.03.2024"}},
		},
		{
			name:  "quoted comma",
			input: "Symbol,P/L\nES,\"$1,234.56\"\n",
			want:  []domain.RawRow{{"Symbol": "ES", "P/L": "$1,234.56"}},
		},
		{
			name:  "ragged rows",
			input: "Symbol,Setup,Profit\nES\nNQ,Pullback,10,extra\n",
			want: []domain.RawRow{
				{"Symbol": "ES"},
				{"Symbol": "NQ", "Setup": "Pullback", "Profit": "10"},
			},
		},
		{
			name:  "duplicate and empty headers",
			input: "Symbol,,Symbol\nES,x,NQ\n",
			want:  []domain.RawRow{{"Symbol": "ES"}},
		},
		{
			name:  "crlf line endings",
			input: "Symbol,Profit\r\nES,5\r\n",
			want:  []domain.RawRow{{"Symbol": "ES", "Profit": "5"}},
		},
		{
			name:  "header only",
			input: "Symbol,Profit\n",
			want:  []domain.RawRow{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ReadCSV(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = ReadCSV(failingReader{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedCSV)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestReadCSV_ThenImport(t *testing.T) {
	input := "Contract,P/L,Initial Risk\nES,$125.50,50\n"

	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	records := newTestImporter(0).ImportRows(rows)
	require.Len(t, records, 1)
	assert.Equal(t, "ES", records[0].Symbol)
	assert.Equal(t, 125.5, records[0].ProfitLoss)
	assert.True(t, records[0].IsWin)
	assert.InDelta(t, 2.51, records[0].RRAchieved, 1e-12)
}
