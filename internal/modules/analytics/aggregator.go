// Package analytics derives dashboard statistics from journal records.
//
// Every function here is pure: records are read, never modified, and the
// same input always yields the same output. Division by zero resolves to 0.
package analytics

import (
	"math"
	"sort"

	"github.com/aristath/tradejournal/internal/domain"
	"github.com/aristath/tradejournal/pkg/formulas"
)

// Bucket aggregates the records sharing one group key
type Bucket struct {
	Count       int     `json:"count"`
	TotalProfit float64 `json:"totalProfit"`
	Wins        int     `json:"wins"`
}

// EquityPoint is one step of the cumulative profit curve
type EquityPoint struct {
	Index                int     `json:"index"`
	CumulativeProfitLoss float64 `json:"cumulativeProfitLoss"`
}

// DrawdownPoint is the decline from the running equity peak, in percent
type DrawdownPoint struct {
	Drawdown         float64 `json:"drawdown"`
	MaxDrawdownSoFar float64 `json:"maxDrawdownSoFar"`
}

// Streak is a run of consecutive wins or losses
type Streak struct {
	IsWin  bool `json:"isWin"`
	Length int  `json:"length"`
}

// WinRate returns the percentage of winning records, 0 for empty input
func WinRate(records []domain.TradeRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	wins := 0
	for _, r := range records {
		if r.IsWin {
			wins++
		}
	}
	return 100 * float64(wins) / float64(len(records))
}

// AverageWin returns the mean profit of winning records
func AverageWin(records []domain.TradeRecord) float64 {
	profits := make([]float64, 0, len(records))
	for _, r := range records {
		if r.IsWin {
			profits = append(profits, r.ProfitLoss)
		}
	}
	return formulas.Mean(profits)
}

// AverageLoss returns the mean absolute profit of losing records
func AverageLoss(records []domain.TradeRecord) float64 {
	losses := make([]float64, 0, len(records))
	for _, r := range records {
		if !r.IsWin {
			losses = append(losses, math.Abs(r.ProfitLoss))
		}
	}
	return formulas.Mean(losses)
}

// ProfitFactor returns AverageWin / AverageLoss.
// It is 0 when there are no losing records, which means undefined rather than no edge.
func ProfitFactor(records []domain.TradeRecord) float64 {
	avgLoss := AverageLoss(records)
	if avgLoss == 0 {
		return 0
	}
	return AverageWin(records) / avgLoss
}

// AverageRR returns the mean achieved risk-reward, 0 for empty input
func AverageRR(records []domain.TradeRecord) float64 {
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.RRAchieved
	}
	return formulas.Mean(values)
}

// AverageRRPotential returns the mean planned risk-reward, 0 for empty input
func AverageRRPotential(records []domain.TradeRecord) float64 {
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.RRPotential
	}
	return formulas.Mean(values)
}

// TotalProfitLoss sums profitLoss over all records
func TotalProfitLoss(records []domain.TradeRecord) float64 {
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.ProfitLoss
	}
	return formulas.Sum(values)
}

// chronological returns a stably sorted copy, oldest first.
// Records without a parsable date have timestamp 0 and come first.
func chronological(records []domain.TradeRecord) []domain.TradeRecord {
	sorted := make([]domain.TradeRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp() < sorted[j].Timestamp()
	})
	return sorted
}

// MaxConsecutive returns the longest chronological run of records whose
// IsWin equals isWin. The input slice is not reordered.
func MaxConsecutive(records []domain.TradeRecord, isWin bool) int {
	longest, current := 0, 0
	for _, r := range chronological(records) {
		if r.IsWin != isWin {
			current = 0
			continue
		}
		current++
		if current > longest {
			longest = current
		}
	}
	return longest
}

// CurrentStreak returns the run the most recent records form
func CurrentStreak(records []domain.TradeRecord) Streak {
	sorted := chronological(records)
	if len(sorted) == 0 {
		return Streak{}
	}

	last := sorted[len(sorted)-1].IsWin
	streak := Streak{IsWin: last}
	for i := len(sorted) - 1; i >= 0 && sorted[i].IsWin == last; i-- {
		streak.Length++
	}
	return streak
}

// EquityCurve returns the running profit sum in the order given.
// Callers sort chronologically first when they want a time series.
func EquityCurve(records []domain.TradeRecord) []EquityPoint {
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.ProfitLoss
	}

	curve := make([]EquityPoint, len(records))
	for i, cum := range formulas.CumulativeSum(values) {
		curve[i] = EquityPoint{Index: i, CumulativeProfitLoss: cum}
	}
	return curve
}

// Drawdown returns, per curve point, the percentage below the running peak
// (the point itself included) and the worst such value so far.
// While the peak is not positive the drawdown is 0.
func Drawdown(curve []EquityPoint) []DrawdownPoint {
	points := make([]DrawdownPoint, len(curve))
	if len(curve) == 0 {
		return points
	}

	peak := curve[0].CumulativeProfitLoss
	worst := 0.0
	for i, p := range curve {
		if p.CumulativeProfitLoss > peak {
			peak = p.CumulativeProfitLoss
		}
		dd := formulas.DrawdownPercent(peak, p.CumulativeProfitLoss)
		if math.IsNaN(dd) {
			dd = 0
		}
		if dd > worst {
			worst = dd
		}
		points[i] = DrawdownPoint{Drawdown: dd, MaxDrawdownSoFar: worst}
	}
	return points
}
