package bots

import (
	"fmt"
	"math/rand"

	log "github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/platform/bank"
	"github.com/boardwalk-games/boardwalk-backend/platform/board"
	"github.com/boardwalk-games/boardwalk-backend/platform/economy"
	"github.com/boardwalk-games/boardwalk-backend/platform/engine"
	"github.com/boardwalk-games/boardwalk-backend/platform/store"
)

// Event kinds.
const (
	EventTradeProposal   = "trade_proposal"
	EventPropertyAuction = "property_auction"
	EventMarketCrash     = "market_crash"
	EventEconomicBoom    = "economic_boom"
	EventBotChallenge    = "bot_challenge"
	EventMarketTiming    = "market_timing"
)

// At most this many scheduled market effects may be live per game.
const maxActiveEffects = 2

// EventContext is everything an event needs to validate and run.
type EventContext struct {
	Engine *engine.Engine
	GameID string
	Actor  *models.Player
	State  *models.GameState
	Rand   *rand.Rand
}

// EventResult is the structured outcome of one executed event.
type EventResult struct {
	Success bool              `json:"success"`
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Detail  map[string]string `json:"detail,omitempty"`
}

// Event computes its parameters at construction and re-validates them inside
// Execute, since the game may have moved between selection and execution.
type Event interface {
	Kind() string
	Execute() EventResult
}

// eventSpec is one registry row: validity predicate, constructor, base
// weight. The registry is a plain table resolved once; no deferred imports.
type eventSpec struct {
	Kind   string
	Weight float64
	Valid  func(*EventContext) bool
	New    func(*EventContext) Event
}

var registry = []eventSpec{
	{EventTradeProposal, 25, validTradeProposal, newTradeProposal},
	{EventPropertyAuction, 15, validPropertyAuction, newPropertyAuction},
	{EventMarketCrash, 10, validMarketShift, newMarketCrash},
	{EventEconomicBoom, 10, validMarketShift, newEconomicBoom},
	{EventBotChallenge, 20, validBotChallenge, newBotChallenge},
	{EventMarketTiming, 20, validMarketTiming, newMarketTiming},
}

// SelectEvent draws one event over the cumulative weights of the currently
// valid kinds, with the actor's strategy multipliers applied. Returns nil
// when nothing is valid.
func SelectEvent(ctx *EventContext) Event {
	params := ParamsFor(ctx.Actor.BotStrategy)
	type candidate struct {
		spec   eventSpec
		weight float64
	}
	var candidates []candidate
	total := 0.0
	for _, spec := range registry {
		if !spec.Valid(ctx) {
			continue
		}
		w := spec.Weight
		if m, ok := params.EventWeights[spec.Kind]; ok {
			w *= m
		}
		if w <= 0 {
			continue
		}
		candidates = append(candidates, candidate{spec, w})
		total += w
	}
	if total == 0 {
		return nil
	}
	draw := ctx.Rand.Float64() * total
	acc := 0.0
	for _, c := range candidates {
		acc += c.weight
		if draw < acc {
			return c.spec.New(ctx)
		}
	}
	return candidates[len(candidates)-1].spec.New(ctx)
}

// ---- market crash / boom -------------------------------------------------

type marketShiftEvent struct {
	ctx       *EventContext
	kind      string
	groups    []string
	magnitude float64
	duration  int
}

func validMarketShift(ctx *EventContext) bool {
	return len(ctx.State.ActiveEffects) < maxActiveEffects
}

func randomGroups(r *rand.Rand) []string {
	n := 1 + r.Intn(2)
	picked := make([]string, 0, n)
	perm := r.Perm(len(board.Groups))
	for _, idx := range perm[:n] {
		picked = append(picked, board.Groups[idx])
	}
	return picked
}

func newMarketCrash(ctx *EventContext) Event {
	return &marketShiftEvent{
		ctx:       ctx,
		kind:      EventMarketCrash,
		groups:    randomGroups(ctx.Rand),
		magnitude: 10 + ctx.Rand.Float64()*20,
		duration:  3 + ctx.Rand.Intn(4),
	}
}

func newEconomicBoom(ctx *EventContext) Event {
	return &marketShiftEvent{
		ctx:       ctx,
		kind:      EventEconomicBoom,
		groups:    randomGroups(ctx.Rand),
		magnitude: 10 + ctx.Rand.Float64()*15,
		duration:  3 + ctx.Rand.Intn(4),
	}
}

func (e *marketShiftEvent) Kind() string { return e.kind }

func (e *marketShiftEvent) Execute() EventResult {
	// Re-validate against fresh state; another event may have landed since
	// selection.
	gs, err := e.ctx.Engine.Store.GetGameState(e.ctx.GameID)
	if err != nil || len(gs.ActiveEffects) >= maxActiveEffects {
		return EventResult{Kind: e.kind, Message: "market already saturated with effects"}
	}

	var applyErr error
	effectKind := economy.EffectCrash
	if e.kind == EventMarketCrash {
		applyErr = e.ctx.Engine.Ledger.ApplyMarketCrash(e.ctx.GameID, e.groups, e.magnitude, gs.Lap+e.duration)
	} else {
		effectKind = economy.EffectBoom
		applyErr = e.ctx.Engine.Ledger.ApplyEconomicBoom(e.ctx.GameID, e.groups, e.magnitude, gs.Lap+e.duration)
	}
	if applyErr != nil {
		return EventResult{Kind: e.kind, Message: applyErr.Error()}
	}
	economy.ScheduleEffect(gs, effectKind, e.groups, e.magnitude, e.duration)
	if err := e.ctx.Engine.Store.SaveGameState(gs); err != nil {
		return EventResult{Kind: e.kind, Message: err.Error()}
	}
	log.WithFields(log.Fields{"game": e.ctx.GameID, "kind": e.kind, "groups": e.groups, "pct": e.magnitude}).
		Info("bot triggered market shift")
	return EventResult{
		Success: true,
		Kind:    e.kind,
		Message: fmt.Sprintf("%s hit %v at %.0f%% for %d turns", e.kind, e.groups, e.magnitude, e.duration),
		Detail:  map[string]string{"duration": fmt.Sprint(e.duration)},
	}
}

// ---- trade proposal ------------------------------------------------------

type tradeProposalEvent struct {
	ctx       *EventContext
	offered   string // actor's property put on the table
	requested string // target property completing the actor's group
	cash      int
}

// tradeTarget finds a property owned by someone else in a group the actor
// already holds a piece of.
func tradeTarget(actor string, snapshot []models.Property) (models.Property, bool) {
	for _, p := range snapshot {
		if p.OwnerId == "" || p.OwnerId == actor || p.DevelopmentLevel > 0 {
			continue
		}
		owned, _ := groupCount(actor, p.Group, snapshot)
		if owned > 0 {
			return p, true
		}
	}
	return models.Property{}, false
}

func validTradeProposal(ctx *EventContext) bool {
	snapshot, err := ctx.Engine.Store.PropertiesByGame(ctx.GameID)
	if err != nil {
		return false
	}
	if _, ok := tradeTarget(ctx.Actor.Id, snapshot); !ok {
		return false
	}
	return ownsAny(ctx.Actor.Id, snapshot)
}

func newTradeProposal(ctx *EventContext) Event {
	snapshot, _ := ctx.Engine.Store.PropertiesByGame(ctx.GameID)
	target, _ := tradeTarget(ctx.Actor.Id, snapshot)
	offered := leastValued(ctx.Actor.Id, target.Group, snapshot)
	cash := target.CurrentPrice/4 + ctx.Rand.Intn(50)
	return &tradeProposalEvent{ctx: ctx, offered: offered, requested: target.Id, cash: cash}
}

func (e *tradeProposalEvent) Kind() string { return EventTradeProposal }

func (e *tradeProposalEvent) Execute() EventResult {
	eng := e.ctx.Engine
	snapshot, err := eng.Store.PropertiesByGame(e.ctx.GameID)
	if err != nil {
		return EventResult{Kind: EventTradeProposal, Message: err.Error()}
	}
	requested, okR := findProperty(e.requested, snapshot)
	offered, okO := findProperty(e.offered, snapshot)
	if !okR || !okO || requested.OwnerId == "" || offered.OwnerId != e.ctx.Actor.Id {
		return EventResult{Kind: EventTradeProposal, Message: "trade target no longer available"}
	}

	owner, err := eng.Store.GetPlayer(requested.OwnerId)
	if err != nil {
		return EventResult{Kind: EventTradeProposal, Message: "owner not found"}
	}
	offer := TradeOffer{FromPlayer: e.ctx.Actor.Id, Offered: offered.Id, Requested: requested.Id, Cash: e.cash}

	if !owner.IsBot {
		// Humans decide over the socket; the proposal itself is the event.
		return EventResult{
			Success: true,
			Kind:    EventTradeProposal,
			Message: fmt.Sprintf("%s offers %s plus $%d for %s", e.ctx.Actor.Username, offered.Name, e.cash, requested.Name),
			Detail:  map[string]string{"to_player": owner.Id, "offered": offered.Id, "requested": requested.Id, "cash": fmt.Sprint(e.cash)},
		}
	}

	decision := NewDecisionMaker(owner, e.ctx.Rand).DecideTradeOffer(offer, snapshot, e.ctx.State)
	if !decision.Accept {
		return EventResult{Kind: EventTradeProposal, Message: "offer declined: " + decision.Reason}
	}

	err = eng.Store.InTx(func(st store.Store) error {
		return executeTrade(st, eng, e.ctx.GameID, offer, e.ctx.State.Lap)
	})
	if err != nil {
		return EventResult{Kind: EventTradeProposal, Message: err.Error()}
	}
	return EventResult{
		Success: true,
		Kind:    EventTradeProposal,
		Message: fmt.Sprintf("trade executed: %s for %s plus $%d", offered.Name, requested.Name, e.cash),
	}
}

// ---- property auction ----------------------------------------------------

type propertyAuctionEvent struct {
	ctx        *EventContext
	propertyID string
	minimumBid int
}

func validPropertyAuction(ctx *EventContext) bool {
	snapshot, err := ctx.Engine.Store.PropertiesByGame(ctx.GameID)
	if err != nil {
		return false
	}
	return sellCandidate(ctx.Actor.Id, snapshot) != ""
}

// sellCandidate picks an undeveloped, unmortgaged holding to flip.
func sellCandidate(actor string, snapshot []models.Property) string {
	best := ""
	bestPrice := 0
	for _, p := range snapshot {
		if p.OwnerId != actor || p.Mortgaged || p.DevelopmentLevel > 0 {
			continue
		}
		if best == "" || p.CurrentPrice < bestPrice {
			best = p.Id
			bestPrice = p.CurrentPrice
		}
	}
	return best
}

func newPropertyAuction(ctx *EventContext) Event {
	snapshot, _ := ctx.Engine.Store.PropertiesByGame(ctx.GameID)
	id := sellCandidate(ctx.Actor.Id, snapshot)
	min := 0
	if p, ok := findProperty(id, snapshot); ok {
		min = p.CurrentPrice * 6 / 10
	}
	return &propertyAuctionEvent{ctx: ctx, propertyID: id, minimumBid: min}
}

func (e *propertyAuctionEvent) Kind() string { return EventPropertyAuction }

func (e *propertyAuctionEvent) Execute() EventResult {
	eng := e.ctx.Engine
	property, err := eng.Store.GetProperty(e.propertyID)
	if err != nil || property.OwnerId != e.ctx.Actor.Id || property.Mortgaged {
		return EventResult{Kind: EventPropertyAuction, Message: "property no longer available to auction"}
	}

	auction := eng.Auctions.CreateAuction(e.ctx.GameID, property.Id, e.ctx.Actor.Id, e.minimumBid)
	runBotBidding(eng, e.ctx, auction, *property)
	settled, err := eng.Auctions.Settle(auction.Id, eng.Bank, e.ctx.State.Lap)
	if err != nil {
		return EventResult{Kind: EventPropertyAuction, Message: err.Error()}
	}
	if settled.CurrentBidder == "" {
		return EventResult{Kind: EventPropertyAuction, Message: "no bids, " + property.Name + " stays put"}
	}
	return EventResult{
		Success: true,
		Kind:    EventPropertyAuction,
		Message: fmt.Sprintf("%s sold at auction for $%d", property.Name, settled.CurrentBid),
		Detail:  map[string]string{"winner": settled.CurrentBidder, "bid": fmt.Sprint(settled.CurrentBid)},
	}
}

// ---- bot challenge -------------------------------------------------------

type botChallengeEvent struct {
	ctx     *EventContext
	rivalID string
	wager   int
}

func solventRival(ctx *EventContext) *models.Player {
	players, err := ctx.Engine.Store.PlayersByGame(ctx.GameID)
	if err != nil {
		return nil
	}
	for i := range players {
		p := &players[i]
		if p.Id != ctx.Actor.Id && p.IsBot && !p.Bankrupt && p.Balance > 50 {
			return p
		}
	}
	return nil
}

func validBotChallenge(ctx *EventContext) bool {
	return ctx.Actor.Balance > 50 && solventRival(ctx) != nil
}

func newBotChallenge(ctx *EventContext) Event {
	rival := solventRival(ctx)
	id := ""
	wager := 0
	if rival != nil {
		id = rival.Id
		wager = 50 + ctx.Rand.Intn(51)
		if wager > rival.Balance {
			wager = rival.Balance
		}
		if wager > ctx.Actor.Balance {
			wager = ctx.Actor.Balance
		}
	}
	return &botChallengeEvent{ctx: ctx, rivalID: id, wager: wager}
}

func (e *botChallengeEvent) Kind() string { return EventBotChallenge }

func (e *botChallengeEvent) Execute() EventResult {
	eng := e.ctx.Engine
	rival, err := eng.Store.GetPlayer(e.rivalID)
	if err != nil || rival.Bankrupt || rival.Balance < e.wager {
		return EventResult{Kind: EventBotChallenge, Message: "rival can no longer cover the wager"}
	}

	// Community standing tilts the contest.
	actorScore := e.ctx.Rand.Intn(100) + e.ctx.Actor.CommunityStanding/5
	rivalScore := e.ctx.Rand.Intn(100) + rival.CommunityStanding/5
	winner, loser := e.ctx.Actor.Id, rival.Id
	if rivalScore > actorScore {
		winner, loser = rival.Id, e.ctx.Actor.Id
	}

	r := eng.Bank.PlayerPaysPlayer(e.ctx.GameID, loser, winner, e.wager, models.TxChallenge, "", e.ctx.State.Lap)
	if !r.Success {
		return EventResult{Kind: EventBotChallenge, Message: r.Error}
	}
	return EventResult{
		Success: true,
		Kind:    EventBotChallenge,
		Message: fmt.Sprintf("challenge settled, $%d changes hands", e.wager),
		Detail:  map[string]string{"winner": winner, "loser": loser},
	}
}

// ---- market timing -------------------------------------------------------

type marketTimingEvent struct {
	ctx   *EventContext
	buyID string // discounted lot to snap up; empty when opening a window
	group string // group to open a window on
	pct   float64
	turns int
}

func discountedBuy(ctx *EventContext) string {
	snapshot, err := ctx.Engine.Store.PropertiesByGame(ctx.GameID)
	if err != nil {
		return ""
	}
	for _, p := range snapshot {
		if p.OwnerId == "" && p.DiscountPct > 0 && p.CurrentPrice <= ctx.Actor.Balance {
			return p.Id
		}
	}
	return ""
}

func validMarketTiming(ctx *EventContext) bool {
	if discountedBuy(ctx) != "" {
		return true
	}
	return len(ctx.State.ActiveEffects) < maxActiveEffects
}

func newMarketTiming(ctx *EventContext) Event {
	e := &marketTimingEvent{ctx: ctx}
	if id := discountedBuy(ctx); id != "" {
		e.buyID = id
		return e
	}
	e.group = board.Groups[ctx.Rand.Intn(len(board.Groups))]
	e.pct = 5 + ctx.Rand.Float64()*10
	e.turns = 2 + ctx.Rand.Intn(2)
	return e
}

func (e *marketTimingEvent) Kind() string { return EventMarketTiming }

func (e *marketTimingEvent) Execute() EventResult {
	eng := e.ctx.Engine
	if e.buyID != "" {
		// Snap up the discounted lot, if it is still on the market.
		err := eng.Store.InTx(func(st store.Store) error {
			property, err := st.GetProperty(e.buyID)
			if err != nil {
				return err
			}
			if property.OwnerId != "" || property.DiscountPct == 0 {
				return fmt.Errorf("window closed on %s", property.Name)
			}
			txBank := bank.New(st)
			if r := txBank.PlayerPaysBank(e.ctx.GameID, e.ctx.Actor.Id, property.CurrentPrice, models.TxPurchase, property.Id, e.ctx.State.Lap); !r.Success {
				return fmt.Errorf(r.Error)
			}
			property.OwnerId = e.ctx.Actor.Id
			return st.SaveProperty(property)
		})
		if err != nil {
			return EventResult{Kind: EventMarketTiming, Message: err.Error()}
		}
		return EventResult{Success: true, Kind: EventMarketTiming, Message: "bought into the dip"}
	}

	gs, err := eng.Store.GetGameState(e.ctx.GameID)
	if err != nil || len(gs.ActiveEffects) >= maxActiveEffects {
		return EventResult{Kind: EventMarketTiming, Message: "no room for a timing window"}
	}
	if err := eng.Ledger.ApplyMarketCrash(e.ctx.GameID, []string{e.group}, e.pct, gs.Lap+e.turns); err != nil {
		return EventResult{Kind: EventMarketTiming, Message: err.Error()}
	}
	economy.ScheduleEffect(gs, economy.EffectBuyWindow, []string{e.group}, e.pct, e.turns)
	if err := eng.Store.SaveGameState(gs); err != nil {
		return EventResult{Kind: EventMarketTiming, Message: err.Error()}
	}
	return EventResult{
		Success: true,
		Kind:    EventMarketTiming,
		Message: fmt.Sprintf("buy window opened on %s at -%.0f%% for %d turns", e.group, e.pct, e.turns),
	}
}

// ---- shared helpers ------------------------------------------------------

func ownsAny(playerID string, snapshot []models.Property) bool {
	for _, p := range snapshot {
		if p.OwnerId == playerID {
			return true
		}
	}
	return false
}

// leastValued picks the actor's cheapest property outside group, falling back
// to the cheapest overall.
func leastValued(actor, excludeGroup string, snapshot []models.Property) string {
	best, bestAny := "", ""
	bestPrice, bestAnyPrice := 0, 0
	for _, p := range snapshot {
		if p.OwnerId != actor || p.DevelopmentLevel > 0 {
			continue
		}
		if bestAny == "" || p.CurrentPrice < bestAnyPrice {
			bestAny, bestAnyPrice = p.Id, p.CurrentPrice
		}
		if p.Group == excludeGroup {
			continue
		}
		if best == "" || p.CurrentPrice < bestPrice {
			best, bestPrice = p.Id, p.CurrentPrice
		}
	}
	if best != "" {
		return best
	}
	return bestAny
}
