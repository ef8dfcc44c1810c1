package bots

import (
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/pkg/gameerr"
	"github.com/boardwalk-games/boardwalk-backend/platform/bank"
	"github.com/boardwalk-games/boardwalk-backend/platform/engine"
	"github.com/boardwalk-games/boardwalk-backend/platform/ledger"
	"github.com/boardwalk-games/boardwalk-backend/platform/store"
)

// TurnReport is everything one bot turn produced, for broadcasting.
type TurnReport struct {
	Success   bool                 `json:"success"`
	Message   string               `json:"message,omitempty"`
	Rolls     []*engine.TurnResult `json:"rolls"`
	Decisions []string             `json:"decisions"`
	Event     *EventResult         `json:"event,omitempty"`
	Bankrupt  bool                 `json:"bankrupt,omitempty"`
	NextTurn  string               `json:"next_turn"`
}

// Runner drives complete bot turns against the engine.
type Runner struct {
	Engine *engine.Engine
}

func NewRunner(e *engine.Engine) *Runner {
	return &Runner{Engine: e}
}

// ExecuteBotTurn plays one full turn for a bot: pre-roll housekeeping (loan
// repayment, unmortgaging, development), the dice roll(s), any decision the
// landing demands, a possible injected economic event, then turn advance.
// Pre-roll actions complete or fail cleanly before movement begins.
func (r *Runner) ExecuteBotTurn(gameID, playerID string) (*TurnReport, error) {
	eng := r.Engine
	player, err := eng.Store.GetPlayer(playerID)
	if err != nil {
		return nil, gameerr.ErrNotFound
	}
	if !player.IsBot || player.Bankrupt {
		return nil, gameerr.ErrInvalidState
	}
	gs, err := eng.Store.GetGameState(gameID)
	if err != nil {
		return nil, gameerr.ErrNotFound
	}

	dm := NewDecisionMaker(player, eng.Rand)
	report := &TurnReport{Success: true}

	r.preRoll(gameID, player, gs, dm, report)

	// Roll, and keep rolling on unconsumed doubles. Three rolls is the
	// ceiling by rule: the third doubles goes to jail.
	for i := 0; i < 3; i++ {
		turn, err := eng.ResolveTurn(gameID, playerID)
		if err != nil {
			return nil, err
		}
		report.Rolls = append(report.Rolls, turn)
		r.resolveExpected(gameID, player, gs, dm, report)
		if turn.NextAction != engine.NextRollAgain {
			break
		}
		// Refresh the snapshot the decision maker prices against.
		if refreshed, err := eng.Store.GetPlayer(playerID); err == nil {
			*player = *refreshed
		}
	}

	// Economic event injection, one draw per turn.
	if eng.Rand.Float64() < eng.Cfg.BotEventChance {
		if fresh, err := eng.Store.GetGameState(gameID); err == nil {
			gs = fresh
		}
		ctx := &EventContext{Engine: eng, GameID: gameID, Actor: player, State: gs, Rand: eng.Rand}
		if event := SelectEvent(ctx); event != nil {
			result := event.Execute()
			report.Event = &result
			report.Decisions = append(report.Decisions, fmt.Sprintf("event %s: %s", result.Kind, result.Message))
		}
	}

	next, err := eng.AdvanceTurn(gameID, playerID)
	if err != nil {
		return nil, err
	}
	report.NextTurn = next
	return report, nil
}

// preRoll runs the bookkeeping a human does between turns: repay loans when
// the cycle favors it, redeem mortgages, develop monopolies.
func (r *Runner) preRoll(gameID string, player *models.Player, gs *models.GameState, dm *DecisionMaker, report *TurnReport) {
	eng := r.Engine

	loans, err := eng.Store.LoansByPlayer(player.Id)
	if err == nil {
		for i := range loans {
			decision := dm.DecideRepayLoan(loans[i], gs)
			if !decision.Repay {
				continue
			}
			if res := eng.Bank.RepayLoan(&loans[i], decision.Amount, gs.Lap); res.Success {
				report.Decisions = append(report.Decisions, fmt.Sprintf("repaid $%d of loan: %s", decision.Amount, decision.Reason))
				r.refresh(player)
			}
		}
	}

	snapshot, err := eng.Store.PropertiesByGame(gameID)
	if err != nil {
		return
	}

	// Redeem mortgages when cash allows; unmortgaged deeds earn again.
	for _, p := range snapshot {
		if p.OwnerId != player.Id || !p.Mortgaged {
			continue
		}
		cost := p.MortgageValue + p.MortgageValue/10
		if player.Balance-cost < dm.reserve() {
			continue
		}
		if eng.Ledger.Unmortgage(player.Id, p.Id, gs.Lap) {
			report.Decisions = append(report.Decisions, "unmortgaged "+p.Name)
			r.refresh(player)
		}
	}

	// Develop monopolies, cheapest viable step first, within the horizon.
	for _, p := range snapshot {
		if p.OwnerId != player.Id {
			continue
		}
		property := p
		if okDev, _ := eng.Ledger.CanImprove(&property, snapshot, gs); !okDev {
			continue
		}
		cost := ledger.ImproveCost(&property, gs)
		if !dm.ShouldDevelop(property, cost, snapshot) {
			continue
		}
		if result := eng.Ledger.Improve(player.Id, property.Id, gs); result.Success {
			report.Decisions = append(report.Decisions,
				fmt.Sprintf("developed %s to level %d for $%d", property.Name, result.Level, result.Cost))
			r.refresh(player)
		}
	}
}

// resolveExpected answers whatever decision the landing left pending.
func (r *Runner) resolveExpected(gameID string, player *models.Player, gs *models.GameState, dm *DecisionMaker, report *TurnReport) {
	eng := r.Engine
	fresh, err := eng.Store.GetGameState(gameID)
	if err != nil {
		return
	}
	*gs = *fresh

	switch gs.ExpectedAction {
	case models.ActionBuyOrAuction:
		r.refresh(player)
		snapshot, err := eng.Store.PropertiesByGame(gameID)
		if err != nil {
			return
		}
		property, okP := findProperty(gs.ExpectedDetail["property_id"], snapshot)
		if !okP {
			return
		}
		decision := dm.DecideBuy(property, snapshot, gs)
		report.Decisions = append(report.Decisions, fmt.Sprintf("buy %s? %v (%s)", property.Name, decision.Buy, decision.Reason))
		if decision.Buy {
			if res := eng.BuyProperty(gameID, player.Id); res.Success {
				r.refresh(player)
				return
			}
		}
		auction, res := eng.DeclineBuy(gameID, player.Id)
		if !res.Success || auction == nil {
			return
		}
		runBotBidding(eng, &EventContext{Engine: eng, GameID: gameID, Actor: player, State: gs, Rand: eng.Rand}, auction, property)
		if settled, err := eng.Auctions.Settle(auction.Id, eng.Bank, gs.Lap); err == nil && settled.CurrentBidder != "" {
			report.Decisions = append(report.Decisions, fmt.Sprintf("auction settled at $%d", settled.CurrentBid))
		}
	case models.ActionManageAssets, models.ActionManageJailFine:
		r.liquidate(gameID, player, gs, report)
	}
}

// liquidate mortgages holdings until the owed amount is covered, then pays;
// bankruptcy when even full liquidation cannot cover it.
func (r *Runner) liquidate(gameID string, player *models.Player, gs *models.GameState, report *TurnReport) {
	eng := r.Engine
	amount := atoiSafe(gs.ExpectedDetail["amount"])
	creditor := gs.ExpectedDetail["creditor"]

	// Hopeless when even full liquidation cannot cover the debt; fold
	// without pointlessly mortgaging first.
	if player.Balance+eng.Ledger.UnimprovedValue(player.Id, gameID) < amount {
		res := eng.DeclareBankruptcy(gameID, player.Id)
		report.Decisions = append(report.Decisions, "declared bankruptcy")
		report.Success = res.Success
		report.Bankrupt = res.Success
		return
	}

	snapshot, err := eng.Store.PropertiesByGame(gameID)
	if err != nil {
		return
	}
	for _, p := range snapshot {
		if player.Balance >= amount {
			break
		}
		if p.OwnerId != player.Id || p.Mortgaged || p.DevelopmentLevel > 0 {
			continue
		}
		if eng.Ledger.Mortgage(player.Id, p.Id, gs.Lap) {
			report.Decisions = append(report.Decisions, "mortgaged "+p.Name+" to raise cash")
			r.refresh(player)
		}
	}

	if player.Balance < amount {
		res := eng.DeclareBankruptcy(gameID, player.Id)
		report.Decisions = append(report.Decisions, "declared bankruptcy")
		report.Success = res.Success
		report.Bankrupt = res.Success
		return
	}

	kind := engine.DebtKind(gs)
	var res bank.Result
	if creditor == "" {
		res = eng.Bank.PlayerPaysBank(gameID, player.Id, amount, kind, "", gs.Lap)
	} else {
		res = eng.Bank.PlayerPaysPlayer(gameID, player.Id, creditor, amount, kind, "", gs.Lap)
	}
	if !res.Success {
		log.WithFields(log.Fields{"game": gameID, "player": player.Id}).Warn("liquidation payment still failed")
		return
	}
	r.refresh(player)
	if gs.ExpectedAction == models.ActionManageJailFine {
		if p, err := eng.Store.GetPlayer(player.Id); err == nil {
			p.InJail = false
			p.JailTurns = 0
			if eng.Store.SavePlayer(p) == nil {
				*player = *p
			}
		}
	}
	gs.ClearExpected()
	if err := eng.Store.SaveGameState(gs); err == nil {
		report.Decisions = append(report.Decisions, fmt.Sprintf("settled $%d after liquidation", amount))
	}
}

func (r *Runner) refresh(player *models.Player) {
	if fresh, err := r.Engine.Store.GetPlayer(player.Id); err == nil {
		*player = *fresh
	}
}

// runBotBidding gives every other solvent bot bidding rounds on an open
// auction until nobody raises.
func runBotBidding(eng *engine.Engine, ctx *EventContext, auction *bank.Auction, property models.Property) {
	players, err := eng.Store.PlayersByGame(ctx.GameID)
	if err != nil {
		return
	}
	snapshot, err := eng.Store.PropertiesByGame(ctx.GameID)
	if err != nil {
		return
	}
	for round := 0; round < 5; round++ {
		raised := false
		for i := range players {
			p := &players[i]
			if !p.IsBot || p.Bankrupt || p.Id == auction.SellerId {
				continue
			}
			decision := NewDecisionMaker(p, ctx.Rand).DecideAuctionBid(auction, property, snapshot, ctx.State)
			if !decision.Bid {
				continue
			}
			if err := eng.Auctions.PlaceBid(auction.Id, p.Id, decision.Amount); err == nil {
				raised = true
			}
		}
		if !raised {
			return
		}
	}
}

// executeTrade swaps the two deeds and moves the cash sweetener, all inside
// the caller's unit of work.
func executeTrade(st store.Store, eng *engine.Engine, gameID string, offer TradeOffer, lap int) error {
	offered, err := st.GetProperty(offer.Offered)
	if err != nil {
		return err
	}
	requested, err := st.GetProperty(offer.Requested)
	if err != nil {
		return err
	}
	if offered.OwnerId != offer.FromPlayer || requested.OwnerId == "" {
		return gameerr.ErrInvalidState
	}
	receiver := requested.OwnerId

	txBank := bank.New(st)
	if offer.Cash > 0 {
		if r := txBank.PlayerPaysPlayer(gameID, offer.FromPlayer, receiver, offer.Cash, models.TxTrade, requested.Id, lap); !r.Success {
			return gameerr.ErrInsufficientFunds
		}
	} else if offer.Cash < 0 {
		if r := txBank.PlayerPaysPlayer(gameID, receiver, offer.FromPlayer, -offer.Cash, models.TxTrade, offered.Id, lap); !r.Success {
			return gameerr.ErrInsufficientFunds
		}
	}

	offered.OwnerId, requested.OwnerId = receiver, offer.FromPlayer
	if err := st.SaveProperty(offered); err != nil {
		return err
	}
	return st.SaveProperty(requested)
}

func atoiSafe(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
