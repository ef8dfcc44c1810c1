package bots

import (
	"fmt"
	"math/rand"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/platform/bank"
	"github.com/boardwalk-games/boardwalk-backend/platform/economy"
	"github.com/boardwalk-games/boardwalk-backend/platform/rules"
)

// DecisionMaker binds one bot player to its strategy row and difficulty
// tier. It holds no game state of its own; every call takes a fresh
// snapshot.
type DecisionMaker struct {
	Player *models.Player
	Params StrategyParams
	Diff   DifficultyParams
	Rand   *rand.Rand
}

func NewDecisionMaker(player *models.Player, r *rand.Rand) *DecisionMaker {
	return &DecisionMaker{
		Player: player,
		Params: ParamsFor(player.BotStrategy),
		Diff:   DifficultyFor(player.Difficulty),
		Rand:   r,
	}
}

// noisy applies the difficulty tier's valuation error to a computed value.
func (d *DecisionMaker) noisy(v float64) float64 {
	if d.Diff.ValuationError == 0 {
		return v
	}
	noise := (d.Rand.Float64()*2 - 1) * d.Diff.ValuationError
	return v * (1 + noise)
}

// lapse reports whether the bot fumbles and inverts a computed decision.
func (d *DecisionMaker) lapse() bool {
	return d.Rand.Float64() > d.Diff.DecisionAccuracy
}

// reserve is the strategy's cash floor scaled by risk tolerance: the bolder
// the tier, the thinner the cushion.
func (d *DecisionMaker) reserve() int {
	if d.Diff.RiskTolerance == 0 {
		return d.Params.ReserveFloor
	}
	return int(float64(d.Params.ReserveFloor) / d.Diff.RiskTolerance)
}

// EvaluatePropertyValue prices a property through the strategy's eyes.
func (d *DecisionMaker) EvaluatePropertyValue(p models.Property, snapshot []models.Property, gs *models.GameState) float64 {
	value := float64(p.CurrentPrice)

	if d.Params.ROIHorizon > 0 {
		// Investor: substitute a rent-multiple ROI estimate for sticker
		// price. Average dice total stands in for utility rolls.
		rent := rules.Rent(withOwner(p, d.Player.Id), 7, snapshot)
		if rent == 0 && len(p.RentSchedule) > 0 {
			rent = p.RentSchedule[0]
		}
		value = float64(rent) * float64(d.Params.ROIHorizon) * 2.5
	}

	if d.Params.ValueBias != 0 {
		value *= d.Params.ValueBias
	}

	if d.Params.MonopolyWeight > 0 {
		// Strategic: scale by how close the purchase brings a monopoly,
		// capped at MonopolyWeight.
		owned, total := groupCount(d.Player.Id, p.Group, snapshot)
		if total > 0 {
			completion := float64(owned+1) / float64(total)
			mult := 1 + completion*(d.Params.MonopolyWeight-1)
			if mult > d.Params.MonopolyWeight {
				mult = d.Params.MonopolyWeight
			}
			value *= mult
		}
	}

	// Crash discounts read as opportunity for everyone; opportunists lean in
	// through their event weights rather than a special case here.
	if p.DiscountPct > 0 {
		value *= 1 + p.DiscountPct/200
	}

	return d.noisy(value)
}

// BuyDecision is the structured outcome of a purchase evaluation.
type BuyDecision struct {
	Buy    bool   `json:"buy"`
	Reason string `json:"reason"`
}

// DecideBuy gates a purchase on affordability, the post-purchase reserve and
// the strategy's value-ratio threshold shifted by the economic phase.
func (d *DecisionMaker) DecideBuy(p models.Property, snapshot []models.Property, gs *models.GameState) BuyDecision {
	price := p.CurrentPrice
	if d.Player.Balance < price {
		return BuyDecision{Buy: false, Reason: "cannot afford"}
	}
	if d.Player.Balance-price < d.reserve() {
		return BuyDecision{Buy: false, Reason: "would breach cash reserve"}
	}

	value := d.EvaluatePropertyValue(p, snapshot, gs)
	threshold := d.Params.BuyThreshold + economy.BuyThresholdShift(gs.EconomicPhase)
	ratio := value / float64(price)

	decision := ratio >= threshold
	if d.lapse() {
		decision = !decision
	}
	if decision {
		return BuyDecision{Buy: true, Reason: fmt.Sprintf("value ratio %.2f meets threshold %.2f", ratio, threshold)}
	}
	return BuyDecision{Buy: false, Reason: fmt.Sprintf("value ratio %.2f below threshold %.2f", ratio, threshold)}
}

// BidDecision is one increment of auction participation.
type BidDecision struct {
	Bid        bool   `json:"bid"`
	Amount     int    `json:"amount"`
	MaxWilling int    `json:"max_willing"`
	Reason     string `json:"reason"`
}

// DecideAuctionBid computes the bound and the next increment for an open
// auction. The increment policy is the strategy's; the bound never exceeds
// what the reserve allows.
func (d *DecisionMaker) DecideAuctionBid(a *bank.Auction, p models.Property, snapshot []models.Property, gs *models.GameState) BidDecision {
	value := d.EvaluatePropertyValue(p, snapshot, gs)
	maxWilling := int(value * d.Params.MaxBidFrac)

	// Recessions embolden bargain hunting, booms tighten it.
	maxWilling = int(float64(maxWilling) * (1 - economy.BuyThresholdShift(gs.EconomicPhase)))

	affordable := d.Player.Balance - d.reserve()/2
	if maxWilling > affordable {
		maxWilling = affordable
	}

	current := a.CurrentBid
	if current < a.MinimumBid {
		current = a.MinimumBid - 1
	}
	var next int
	if d.Params.BidIncrementPct > 0 {
		next = current + int(float64(current)*d.Params.BidIncrementPct)
		if next <= current {
			next = current + 1
		}
	} else {
		increment := d.Params.BidIncrement
		if increment == 0 {
			increment = 10
		}
		next = current + increment
	}
	if next < a.MinimumBid {
		next = a.MinimumBid
	}

	if a.CurrentBidder == d.Player.Id {
		return BidDecision{Bid: false, MaxWilling: maxWilling, Reason: "already holding the high bid"}
	}
	if next > maxWilling {
		return BidDecision{Bid: false, MaxWilling: maxWilling, Reason: "next increment exceeds maximum willing"}
	}
	return BidDecision{Bid: true, Amount: next, MaxWilling: maxWilling, Reason: "within bound"}
}

// TradeOffer is a proposed swap: the receiver gives Requested and takes
// Offered plus Cash (negative Cash means the receiver pays).
type TradeOffer struct {
	FromPlayer string `json:"from_player"`
	Offered    string `json:"offered_property"`
	Requested  string `json:"requested_property"`
	Cash       int    `json:"cash"`
}

// TradeDecision carries accept/decline plus an optional counter.
type TradeDecision struct {
	Accept  bool        `json:"accept"`
	Reason  string      `json:"reason"`
	Counter *TradeOffer `json:"counter_offer,omitempty"`
}

// DecideTradeOffer weighs the incoming swap by strategy valuation. A near
// miss produces a counter offer asking for more cash.
func (d *DecisionMaker) DecideTradeOffer(offer TradeOffer, snapshot []models.Property, gs *models.GameState) TradeDecision {
	offered, okO := findProperty(offer.Offered, snapshot)
	requested, okR := findProperty(offer.Requested, snapshot)
	if !okO || !okR {
		return TradeDecision{Reason: "referenced property not found"}
	}

	gain := d.EvaluatePropertyValue(offered, snapshot, gs) + float64(offer.Cash)
	cost := d.EvaluatePropertyValue(requested, snapshot, gs)
	if cost <= 0 {
		return TradeDecision{Reason: "nothing requested"}
	}
	ratio := gain/cost - 1

	accept := ratio >= d.Params.TradeMargin
	if d.lapse() {
		accept = !accept
	}
	if accept {
		return TradeDecision{Accept: true, Reason: fmt.Sprintf("gain ratio %.2f meets margin %.2f", ratio, d.Params.TradeMargin)}
	}
	if ratio > 0 {
		// Close enough to haggle: ask for the shortfall in cash.
		shortfall := int(cost*(1+d.Params.TradeMargin) - gain)
		return TradeDecision{
			Reason: "insufficient gain, countering",
			Counter: &TradeOffer{
				FromPlayer: d.Player.Id,
				Offered:    offer.Requested,
				Requested:  offer.Offered,
				Cash:       -(offer.Cash + shortfall),
			},
		}
	}
	return TradeDecision{Reason: fmt.Sprintf("gain ratio %.2f below margin %.2f", ratio, d.Params.TradeMargin)}
}

// RepayDecision sizes a voluntary loan repayment.
type RepayDecision struct {
	Repay  bool   `json:"repay"`
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

// DecideRepayLoan repays eagerly when money is cheap to hold (growth/boom)
// and hoards cash through recessions, scaled by the strategy's eagerness.
func (d *DecisionMaker) DecideRepayLoan(loan models.Loan, gs *models.GameState) RepayDecision {
	if !loan.Active || loan.Principal <= 0 {
		return RepayDecision{Reason: "loan not active"}
	}
	phaseUrge := map[string]float64{
		models.PhaseRecession: 0.2,
		models.PhaseNormal:    0.5,
		models.PhaseGrowth:    0.8,
		models.PhaseBoom:      1.0,
	}[gs.EconomicPhase]

	urge := phaseUrge * d.Params.RepayAggro
	spare := d.Player.Balance - d.reserve()
	if spare <= 0 || urge < 0.25 {
		return RepayDecision{Reason: "holding cash this phase"}
	}
	amount := int(float64(spare) * urge)
	if amount > loan.Principal {
		amount = loan.Principal
	}
	if amount <= 0 {
		return RepayDecision{Reason: "nothing to spare"}
	}
	return RepayDecision{Repay: true, Amount: amount, Reason: fmt.Sprintf("repaying at urgency %.2f", urge)}
}

// ShouldDevelop decides whether paying cost to improve p fits the strategy's
// reserve and the planning horizon's rent payback.
func (d *DecisionMaker) ShouldDevelop(p models.Property, cost int, snapshot []models.Property) bool {
	if d.Player.Balance-cost < d.reserve() {
		return false
	}
	if len(p.RentSchedule) <= p.DevelopmentLevel+1 {
		return false
	}
	rentGain := p.RentSchedule[p.DevelopmentLevel+1] - p.RentSchedule[p.DevelopmentLevel]
	payback := rentGain * d.Diff.PlanningHorizon * 2
	return payback >= cost/2
}

func withOwner(p models.Property, owner string) models.Property {
	p.OwnerId = owner
	return p
}

func groupCount(owner, group string, snapshot []models.Property) (owned, total int) {
	for _, q := range snapshot {
		if q.Group != group {
			continue
		}
		total++
		if q.OwnerId == owner {
			owned++
		}
	}
	return owned, total
}

func findProperty(id string, snapshot []models.Property) (models.Property, bool) {
	for _, p := range snapshot {
		if p.Id == id {
			return p, true
		}
	}
	return models.Property{}, false
}
