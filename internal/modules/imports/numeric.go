package imports

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNumber is the one place numeric cells are read.
// Every rune that is not a digit, '.' or '-' is dropped, so "$1,234.56" reads
// as 1234.56 and trailing currency symbols vanish. Anything that still does
// not parse as a decimal (empty, "1.2.3", "5-") degrades to 0. It never panics.
func ParseNumber(raw string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return 0
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}

	f, _ := d.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
