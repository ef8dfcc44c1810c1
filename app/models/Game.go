package models

type Game struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Type   string `json:"type"`
}

type GameCreateDto struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Bots int    `json:"bots"`
}

type VerifyGameDto struct {
	Code    string `query:"code"`
	User_id string `query:"user_id"`
}

// Economic phases, ordered worst to best.
const (
	PhaseRecession = "recession"
	PhaseNormal    = "normal"
	PhaseGrowth    = "growth"
	PhaseBoom      = "boom"
)

// Expected actions a player may have to resolve before rolling again.
const (
	ActionBuyOrAuction   = "buy_or_auction_prompt"
	ActionPayTax         = "pay_tax"
	ActionDrawCard       = "draw_card"
	ActionJailPrompt     = "jail_action_prompt"
	ActionManageAssets   = "manage_assets_or_bankrupt"
	ActionManageJailFine = "manage_assets_for_jail_fine"
)

// ScheduledEffect is a group-scoped market perturbation waiting to be undone.
// Countdowns are turn-counted, never wall-clock.
type ScheduledEffect struct {
	Id        string   `json:"id"`
	Kind      string   `json:"kind"` // crash, boom, buy_window, sell_window
	Groups    []string `json:"groups"`
	Magnitude float64  `json:"magnitude"` // percentage moved, positive
	TurnsLeft int      `json:"turns_left"`
}

// GameState is the one mutable row per active game. It is always passed
// explicitly into core operations, never looked up through ambient state.
type GameState struct {
	Game_id         string            `json:"game_id" pg:",pk"`
	CurrentTurn     string            `json:"current_turn"` // player id
	Lap             int               `json:"lap" pg:",use_zero"`
	EconomicPhase   string            `json:"economic_phase"`
	InflationFactor float64           `json:"inflation_factor"`
	ExpectedAction  string            `json:"expected_action" pg:",use_zero"`
	ExpectedDetail  map[string]string `json:"expected_detail" pg:",use_zero"`
	ActiveEffects   []ScheduledEffect `json:"active_effects" pg:",use_zero"`
}

// SetExpected records the pending follow-up decision. At most one may be live
// at a time; callers overwrite only when resolving the prior one.
func (gs *GameState) SetExpected(action string, detail map[string]string) {
	gs.ExpectedAction = action
	gs.ExpectedDetail = detail
}

func (gs *GameState) ClearExpected() {
	gs.ExpectedAction = ""
	gs.ExpectedDetail = nil
}
