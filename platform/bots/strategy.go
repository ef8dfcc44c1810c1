// Package bots makes the decisions a human player would: buying, bidding,
// trading, loan repayment and development, plus the weighted random economic
// events bots inject into the game. Strategies are plain data rows dispatched
// through one function table; there is no inheritance.
package bots

// Strategy kinds.
const (
	Conservative  = "conservative"
	Aggressive    = "aggressive"
	Strategic     = "strategic"
	Opportunistic = "opportunistic"
	Shark         = "shark"
	Investor      = "investor"
)

// Difficulty tiers.
const (
	Easy   = "easy"
	Normal = "normal"
	Hard   = "hard"
)

// StrategyParams is the full behavior row for one strategy kind.
type StrategyParams struct {
	Kind string

	// Buying.
	ReserveFloor int     // minimum cash kept after a purchase
	BuyThreshold float64 // value/price ratio required to buy

	// Auctions.
	MaxBidFrac      float64 // of own valuation
	BidIncrementPct float64 // of current bid; zero means fixed increments
	BidIncrement    int     // fixed increment when pct is zero

	// Valuation bias.
	ValueBias      float64 // flat multiplier on evaluated value
	MonopolyWeight float64 // strategic scaling cap for group completion
	ROIHorizon     int     // investor rent-multiple horizon, zero = unused

	// Trades and loans.
	TradeMargin float64 // required value gain ratio to accept a trade
	RepayAggro  float64 // eagerness to repay loans, 0..1

	// Event-kind weight multipliers (events.go); missing kind = 1.0.
	EventWeights map[string]float64
}

// strategyTable keys every strategy kind to its parameter row. This is the
// single dispatch point; decision functions read the row, never the kind.
var strategyTable = map[string]StrategyParams{
	Conservative: {
		Kind: Conservative, ReserveFloor: 400, BuyThreshold: 1.15,
		MaxBidFrac: 0.85, BidIncrement: 10,
		ValueBias: 0.9, TradeMargin: 0.25, RepayAggro: 0.9,
		EventWeights: map[string]float64{EventMarketCrash: 0.5, EventEconomicBoom: 0.5, EventBotChallenge: 0.3},
	},
	Aggressive: {
		Kind: Aggressive, ReserveFloor: 100, BuyThreshold: 0.9,
		MaxBidFrac: 1.2, BidIncrementPct: 0.15,
		ValueBias: 1.15, TradeMargin: 0.05, RepayAggro: 0.3,
		EventWeights: map[string]float64{EventMarketCrash: 1.5, EventBotChallenge: 2.0},
	},
	Strategic: {
		Kind: Strategic, ReserveFloor: 250, BuyThreshold: 1.0,
		MaxBidFrac: 1.05, BidIncrementPct: 0.10,
		ValueBias: 1.0, MonopolyWeight: 2.0, TradeMargin: 0.10, RepayAggro: 0.6,
		EventWeights: map[string]float64{EventTradeProposal: 2.0},
	},
	Opportunistic: {
		Kind: Opportunistic, ReserveFloor: 150, BuyThreshold: 0.95,
		MaxBidFrac: 1.1, BidIncrementPct: 0.12,
		ValueBias: 1.0, TradeMargin: 0.08, RepayAggro: 0.4,
		EventWeights: map[string]float64{EventMarketTiming: 3.0},
	},
	Shark: {
		Kind: Shark, ReserveFloor: 150, BuyThreshold: 0.95,
		MaxBidFrac: 1.25, BidIncrementPct: 0.20,
		ValueBias: 1.1, TradeMargin: 0.15, RepayAggro: 0.2,
		EventWeights: map[string]float64{EventPropertyAuction: 2.0, EventBotChallenge: 2.5},
	},
	Investor: {
		Kind: Investor, ReserveFloor: 300, BuyThreshold: 1.05,
		MaxBidFrac: 1.0, BidIncrement: 25,
		ValueBias: 1.0, ROIHorizon: 10, TradeMargin: 0.12, RepayAggro: 0.7,
		EventWeights: map[string]float64{EventTradeProposal: 1.5, EventEconomicBoom: 1.5},
	},
}

// DifficultyParams tune how well a strategy is executed.
type DifficultyParams struct {
	DecisionAccuracy float64 // chance the computed decision is followed
	ValuationError   float64 // max relative valuation noise
	RiskTolerance    float64 // scales reserve floors down as risk rises
	PlanningHorizon  int     // turns of lookahead for development/loans
}

var difficultyTable = map[string]DifficultyParams{
	Easy:   {DecisionAccuracy: 0.70, ValuationError: 0.30, RiskTolerance: 0.8, PlanningHorizon: 1},
	Normal: {DecisionAccuracy: 0.88, ValuationError: 0.15, RiskTolerance: 1.0, PlanningHorizon: 3},
	Hard:   {DecisionAccuracy: 0.98, ValuationError: 0.05, RiskTolerance: 1.2, PlanningHorizon: 5},
}

// ParamsFor resolves a strategy tag, defaulting unknown tags to conservative.
func ParamsFor(kind string) StrategyParams {
	if p, ok := strategyTable[kind]; ok {
		return p
	}
	return strategyTable[Conservative]
}

// DifficultyFor resolves a difficulty tag, defaulting to normal.
func DifficultyFor(tier string) DifficultyParams {
	if d, ok := difficultyTable[tier]; ok {
		return d
	}
	return difficultyTable[Normal]
}

// Strategies lists every known strategy kind.
func Strategies() []string {
	return []string{Conservative, Aggressive, Strategic, Opportunistic, Shark, Investor}
}
