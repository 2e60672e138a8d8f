package imports

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"125.50", 125.5},
		{"$125.50", 125.5},
		{"$1,234.56", 1234.56},
		{"-40", -40},
		{"-$40.00 USD", -40},
		{"12 €", 12},
		{"2.5R", 2.5},
		{"", 0},
		{"   ", 0},
		{"n/a", 0},
		{"1.2.3", 0},
		{"5-", 0},
		{"--5", 0},
		{"-", 0},
		{".", 0},
		{"1e5", 15}, // the exponent letter is stripped like any other noise
		{"NaN", 0},
		{"Infinity", 0},
		{strings.Repeat("9", 400), 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, ParseNumber(tt.raw))
			})
		})
	}
}
