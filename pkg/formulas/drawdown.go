package formulas

// DrawdownPercent returns how far value sits below peak, as a percentage of peak.
//
// Drawdown Formula:
//
//	Drawdown = (Peak - Value) / Peak * 100
//
// A non-positive peak has no meaningful percentage decline, so 0 is returned.
// Values above the peak also yield 0.
func DrawdownPercent(peak, value float64) float64 {
	if !(peak > 0) {
		return 0
	}
	dd := (peak - value) / peak * 100
	if dd < 0 {
		return 0
	}
	return dd
}

// MaxDrawdownPercent scans a cumulative equity series and returns the largest
// percentage decline from a running peak. Empty input yields 0.
func MaxDrawdownPercent(equity []float64) float64 {
	if len(equity) == 0 {
		return 0
	}

	maxDrawdown := 0.0
	peak := equity[0]
	for _, value := range equity {
		if value > peak {
			peak = value
		}
		if dd := DrawdownPercent(peak, value); dd > maxDrawdown {
			maxDrawdown = dd
		}
	}
	return maxDrawdown
}
