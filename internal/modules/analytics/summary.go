package analytics

import (
	"math"

	"github.com/aristath/tradejournal/internal/domain"
	"github.com/aristath/tradejournal/pkg/formulas"
)

// Summary is the dashboard view-model
type Summary struct {
	TotalTrades        int     `json:"totalTrades"`
	Wins               int     `json:"wins"`
	Losses             int     `json:"losses"`
	WinRate            float64 `json:"winRate"`
	ProfitFactor       float64 `json:"profitFactor"`
	AverageRR          float64 `json:"averageRR"`
	AverageRRPotential float64 `json:"averageRRPotential"`
	AverageWin         float64 `json:"averageWin"`
	AverageLoss        float64 `json:"averageLoss"`
	TotalProfitLoss    float64 `json:"totalProfitLoss"`
	MaxDrawdown        float64 `json:"maxDrawdown"`
	Streaks            Streaks `json:"streaks"`

	EquityCurve []EquityPoint `json:"equityCurve"`
	BySymbol    []NamedBucket `json:"bySymbol"`
	BySetup     []NamedBucket `json:"bySetup"`
	ByWeekday   []NamedBucket `json:"byWeekday"`
	ByHour      []NamedBucket `json:"byHour"`
}

// Streaks collects the streak widgets
type Streaks struct {
	MaxWin  int    `json:"maxWin"`
	MaxLoss int    `json:"maxLoss"`
	Current Streak `json:"current"`
}

// StreaksOf computes the longest and the current streaks
func StreaksOf(records []domain.TradeRecord) Streaks {
	return Streaks{
		MaxWin:  MaxConsecutive(records, true),
		MaxLoss: MaxConsecutive(records, false),
		Current: CurrentStreak(records),
	}
}

// Summarize computes every dashboard statistic at once. The equity curve is
// built over the records in chronological order. Scalar statistics that came
// out NaN or infinite are reported as 0 so the rest of the summary still renders.
func Summarize(records []domain.TradeRecord) Summary {
	sorted := chronological(records)
	curve := EquityCurve(sorted)

	equity := make([]float64, len(curve))
	for i, p := range curve {
		equity[i] = p.CumulativeProfitLoss
	}
	maxDrawdown := formulas.MaxDrawdownPercent(equity)

	wins := 0
	for _, r := range records {
		if r.IsWin {
			wins++
		}
	}

	return Summary{
		TotalTrades:        len(records),
		Wins:               wins,
		Losses:             len(records) - wins,
		WinRate:            finite(WinRate(records)),
		ProfitFactor:       finite(ProfitFactor(records)),
		AverageRR:          finite(AverageRR(records)),
		AverageRRPotential: finite(AverageRRPotential(records)),
		AverageWin:         finite(AverageWin(records)),
		AverageLoss:        finite(AverageLoss(records)),
		TotalProfitLoss:    finite(TotalProfitLoss(records)),
		MaxDrawdown:        finite(maxDrawdown),
		Streaks:            StreaksOf(records),
		EquityCurve:        curve,
		BySymbol:           SortedBuckets(GroupBy(records, BySymbol)),
		BySetup:            SortedBuckets(GroupBy(records, BySetup)),
		ByWeekday:          SortedBuckets(GroupBy(records, ByWeekday)),
		ByHour:             SortedBuckets(GroupBy(records, ByHour)),
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
