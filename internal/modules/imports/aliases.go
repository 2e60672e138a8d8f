package imports

// Ordered header aliases per canonical field. The first alias whose cell holds
// a non-blank value wins. Lists end with the service's own export headers so
// an exported journal re-imports unchanged.
var (
	symbolAliases          = []string{"Symbol", "symbol", "Ticker", "Instrument", "Contract"}
	setupAliases           = []string{"Setup", "setup", "Strategy", "strategy", "Pattern"}
	mainTrendM15Aliases    = []string{"Main Trend M15", "Main Trend (M15)", "M15 Trend", "Trend M15", "mainTrendM15", "main_trend_m15"}
	internalTrendM5Aliases = []string{"Internal Trend M5", "Internal Trend (M5)", "M5 Trend", "Trend M5", "internalTrendM5", "internal_trend_m5"}
	entryTypeAliases       = []string{"Entry Type", "Type", "Side", "Direction", "entryType", "entry_type"}
	entryLevelAliases      = []string{"Entry Level", "Entry", "Entry Price", "entryLevel", "entry_level"}
	liquidationAliases     = []string{"Liquidation", "Liquidation Level", "Exit", "Exit Price", "liquidation"}
	locationAliases        = []string{"Location", "Zone", "Entry Zone", "location"}
	rrAchievedAliases      = []string{"RR Achieved", "R:R", "Risk/Reward Achieved", "rrAchieved", "rr_achieved", "Actual R:R", "Real R:R"}
	rrPotentialAliases     = []string{"RR Potential", "Potential R:R", "Risk/Reward Potential", "Planned R:R", "Target R:R", "rrPotential", "rr_potential"}
	profitLossAliases      = []string{"P/L", "PL", "Profit", "Profit/Loss", "Net P/L", "profitLoss", "profit_loss"}
	isWinAliases           = []string{"Result", "Win", "Win/Loss", "Outcome", "isWin", "is_win"}
	dateAliases            = []string{"Date", "date", "Time", "time"}
)

// Tradovate exports name a few columns differently; fields not listed here
// fall back to the shared lists above.
var (
	tradovateSymbolAliases      = []string{"Contract", "Symbol", "Product"}
	tradovateEntryTypeAliases   = []string{"B/S", "Side", "Entry Type", "Direction"}
	tradovateEntryLevelAliases  = []string{"Avg Fill Price", "Entry Price", "Buy Price", "Entry Level"}
	tradovateLiquidationAliases = []string{"Exit Price", "Sell Price", "Liquidation"}
	tradovateDateAliases        = []string{"Timestamp", "Fill Time", "Bought Timestamp", "Date", "Time"}
)

const (
	tradovateProfitHeader = "P/L"
	tradovateRiskHeader   = "Initial Risk"
)

// Detection headers, matched exactly
var (
	tradovateHeaders   = []string{"Contract", "Account ID", "P/L", "Commission"}
	tradingViewHeaders = []string{"Symbol", "Setup", "Strategy"}
)

// Result words, compared lower-cased
var (
	winWords  = map[string]bool{"true": true, "win": true, "yes": true, "profit": true}
	lossWords = map[string]bool{"loss": true, "lose": true, "lost": true, "no": true}
)
