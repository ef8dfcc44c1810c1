package engine

import (
	log "github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/pkg/gameerr"
	"github.com/boardwalk-games/boardwalk-backend/platform/bank"
	"github.com/boardwalk-games/boardwalk-backend/platform/board"
	"github.com/boardwalk-games/boardwalk-backend/platform/economy"
	"github.com/boardwalk-games/boardwalk-backend/platform/rules"
	"github.com/boardwalk-games/boardwalk-backend/platform/store"
)

// OpResult is the normalized outcome shape every public operation returns.
type OpResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// StartGame seeds the per-game property set and the game state row, and
// creates player rows for the joined users plus any requested bots.
func (e *Engine) StartGame(gameID string, players []models.Player) error {
	return e.Store.InTx(func(st store.Store) error {
		for i := range players {
			players[i].Balance = e.Cfg.StartingBalance
			players[i].Pos = 0
			if err := st.InsertPlayer(&players[i]); err != nil {
				return err
			}
		}
		if err := st.InsertProperties(board.SeedProperties(gameID)); err != nil {
			return err
		}
		phase := e.Cfg.InitialPhase
		if phase == "" {
			phase = models.PhaseNormal
		}
		inflation := e.Cfg.InitialInflation
		if inflation == 0 {
			inflation = 1.0
		}
		current := ""
		if len(players) > 0 {
			current = players[0].Id
		}
		return st.SaveGameState(&models.GameState{
			Game_id:         gameID,
			CurrentTurn:     current,
			EconomicPhase:   phase,
			InflationFactor: inflation,
		})
	})
}

// BuyProperty resolves a pending buy_or_auction_prompt with a purchase at the
// current (possibly perturbed) price.
func (e *Engine) BuyProperty(gameID, playerID string) OpResult {
	unlock := e.lockGame(gameID)
	defer unlock()

	gs, _, err := e.loadTurnState(gameID, playerID)
	if err != nil {
		return OpResult{Message: "game or player not found"}
	}
	if gs.ExpectedAction != models.ActionBuyOrAuction {
		return OpResult{Message: "no purchase pending"}
	}
	propertyID := gs.ExpectedDetail["property_id"]

	err = e.Store.InTx(func(st store.Store) error {
		property, err := st.GetProperty(propertyID)
		if err != nil {
			return err
		}
		if property.OwnerId != "" {
			return gameerr.ErrInvalidState
		}
		txBank := bank.New(st)
		r := txBank.PlayerPaysBank(gameID, playerID, property.CurrentPrice, models.TxPurchase, property.Id, gs.Lap)
		if !r.Success {
			return gameerr.ErrInsufficientFunds
		}
		property.OwnerId = playerID
		if err := st.SaveProperty(property); err != nil {
			return err
		}
		gs.ClearExpected()
		return st.SaveGameState(gs)
	})
	if err == gameerr.ErrInsufficientFunds {
		return OpResult{Message: "insufficient funds to buy"}
	}
	if err != nil {
		return OpResult{Message: err.Error()}
	}
	return OpResult{Success: true, Message: "property purchased"}
}

// DeclineBuy resolves the prompt by sending the lot to auction at half the
// current price.
func (e *Engine) DeclineBuy(gameID, playerID string) (*bank.Auction, OpResult) {
	unlock := e.lockGame(gameID)
	defer unlock()

	gs, _, err := e.loadTurnState(gameID, playerID)
	if err != nil {
		return nil, OpResult{Message: "game or player not found"}
	}
	if gs.ExpectedAction != models.ActionBuyOrAuction {
		return nil, OpResult{Message: "no purchase pending"}
	}
	property, err := e.Store.GetProperty(gs.ExpectedDetail["property_id"])
	if err != nil {
		return nil, OpResult{Message: "property not found"}
	}
	auction := e.Auctions.CreateAuction(gameID, property.Id, "", property.CurrentPrice/2)
	gs.ClearExpected()
	if err := e.Store.SaveGameState(gs); err != nil {
		return nil, OpResult{Message: err.Error()}
	}
	return auction, OpResult{Success: true, Message: "property sent to auction"}
}

// PayOutOfJail lets a player buy freedom before rolling.
func (e *Engine) PayOutOfJail(gameID, playerID string) OpResult {
	unlock := e.lockGame(gameID)
	defer unlock()

	gs, player, err := e.loadTurnState(gameID, playerID)
	if err != nil {
		return OpResult{Message: "game or player not found"}
	}
	if !player.InJail {
		return OpResult{Message: "player is not in jail"}
	}
	fine := e.Cfg.JailFine
	if fine == 0 {
		fine = board.JailFine
	}
	r := e.Bank.PlayerPaysBank(gameID, playerID, fine, models.TxJailFine, "", gs.Lap)
	if !r.Success {
		return OpResult{Message: r.Error}
	}
	player.InJail = false
	player.JailTurns = 0
	if err := e.Store.SavePlayer(player); err != nil {
		return OpResult{Message: err.Error()}
	}
	if gs.ExpectedAction == models.ActionJailPrompt {
		gs.ClearExpected()
		if err := e.Store.SaveGameState(gs); err != nil {
			return OpResult{Message: err.Error()}
		}
	}
	return OpResult{Success: true, Message: "paid out of jail"}
}

// AdvanceTurn moves the turn pointer to the next solvent player and crosses
// a turn boundary: effect countdowns tick and, on a lap wrap, the economic
// phase may drift. Expired effects are reverted through the ledger.
func (e *Engine) AdvanceTurn(gameID, playerID string) (string, error) {
	unlock := e.lockGame(gameID)
	defer unlock()

	gs, err := e.Store.GetGameState(gameID)
	if err != nil {
		return "", gameerr.ErrNotFound
	}
	players, err := e.Store.PlayersByGame(gameID)
	if err != nil || len(players) == 0 {
		return "", gameerr.ErrNotFound
	}

	expired := economy.AdvanceEffects(gs, func(effect models.ScheduledEffect) error {
		return e.Ledger.RestoreMarketPrices(gameID, effect.Groups)
	})
	for _, effect := range expired {
		log.WithFields(log.Fields{"game": gameID, "kind": effect.Kind, "groups": effect.Groups}).
			Info("market effect expired and reverted")
	}

	next := nextPlayer(players, playerID)
	gs.CurrentTurn = next
	if next != "" && next == firstSolvent(players) {
		// Back at the top of the order: one table round done, let the
		// economy breathe.
		economy.DriftPhase(gs, e.Rand, e.Cfg.PhaseDriftChance)
	}
	if err := e.Store.SaveGameState(gs); err != nil {
		return "", err
	}
	return next, nil
}

func nextPlayer(players []models.Player, current string) string {
	n := len(players)
	start := 0
	for i, p := range players {
		if p.Id == current {
			start = i + 1
			break
		}
	}
	for i := 0; i < n; i++ {
		p := players[(start+i)%n]
		if !p.Bankrupt {
			return p.Id
		}
	}
	return ""
}

func firstSolvent(players []models.Player) string {
	for _, p := range players {
		if !p.Bankrupt {
			return p.Id
		}
	}
	return ""
}

// SpaceAction classifies what landing on a position would do, without
// mutating anything. Consumed by the route layer for previews and by bots.
type SpaceAction struct {
	Kind       string `json:"kind"` // special kind or "property"
	Name       string `json:"name"`
	PropertyId string `json:"property_id,omitempty"`
	Price      int    `json:"price,omitempty"`
	RentDue    int    `json:"rent_due,omitempty"`
	TaxDue     int    `json:"tax_due,omitempty"`
}

// DetermineActionForSpace resolves a position against the board and the
// current ownership snapshot.
func (e *Engine) DetermineActionForSpace(player *models.Player, gs *models.GameState, position, diceTotal int) (*SpaceAction, error) {
	if space, ok := board.SpecialAt(position); ok {
		return &SpaceAction{Kind: space.Kind, Name: space.Name, TaxDue: rules.Tax(space)}, nil
	}
	property, err := e.Store.PropertyByPosition(gs.Game_id, position)
	if err != nil {
		return nil, gameerr.ErrNotFound
	}
	action := &SpaceAction{
		Kind:       board.SpaceProperty,
		Name:       property.Name,
		PropertyId: property.Id,
		Price:      property.CurrentPrice,
	}
	if property.OwnerId != "" && property.OwnerId != player.Id {
		snapshot, err := e.Store.PropertiesByGame(gs.Game_id)
		if err != nil {
			return nil, err
		}
		action.RentDue = rules.Rent(*property, diceTotal, snapshot)
	}
	return action, nil
}

// SettleDebt pays off a pending liquidation demand once the player has
// raised enough cash (mortgaging through the ledger, trading, a loan) and
// clears the blocking action. Settling a jail fine also releases the player.
func (e *Engine) SettleDebt(gameID, playerID string) OpResult {
	unlock := e.lockGame(gameID)
	defer unlock()

	gs, player, err := e.loadTurnState(gameID, playerID)
	if err != nil {
		return OpResult{Message: "game or player not found"}
	}
	if !liquidationPending(gs) {
		return OpResult{Message: "no debt pending"}
	}
	amount := atoi(gs.ExpectedDetail["amount"])
	creditor := gs.ExpectedDetail["creditor"]
	kind := DebtKind(gs)

	err = e.Store.InTx(func(st store.Store) error {
		txBank := bank.New(st)
		var r bank.Result
		if creditor == "" {
			r = txBank.PlayerPaysBank(gameID, playerID, amount, kind, "", gs.Lap)
		} else {
			r = txBank.PlayerPaysPlayer(gameID, playerID, creditor, amount, kind, "", gs.Lap)
		}
		if !r.Success {
			return gameerr.ErrInsufficientFunds
		}
		if gs.ExpectedAction == models.ActionManageJailFine {
			player.InJail = false
			player.JailTurns = 0
			if err := st.SavePlayer(player); err != nil {
				return err
			}
		}
		gs.ClearExpected()
		return st.SaveGameState(gs)
	})
	if err == gameerr.ErrInsufficientFunds {
		return OpResult{Message: "still short: mortgage holdings or declare bankruptcy"}
	}
	if err != nil {
		return OpResult{Message: err.Error()}
	}
	return OpResult{Success: true, Message: "debt settled"}
}

// DeclareBankruptcy marks the player broke, frees their deeds back to the
// bank and clears any pending liquidation action.
func (e *Engine) DeclareBankruptcy(gameID, playerID string) OpResult {
	unlock := e.lockGame(gameID)
	defer unlock()

	err := e.Store.InTx(func(st store.Store) error {
		player, err := st.GetPlayer(playerID)
		if err != nil {
			return err
		}
		player.Bankrupt = true
		if err := st.SavePlayer(player); err != nil {
			return err
		}
		properties, err := st.PropertiesByGame(gameID)
		if err != nil {
			return err
		}
		for i := range properties {
			if properties[i].OwnerId != playerID {
				continue
			}
			properties[i].OwnerId = ""
			properties[i].Mortgaged = false
			properties[i].DevelopmentLevel = 0
			if err := st.SaveProperty(&properties[i]); err != nil {
				return err
			}
		}
		gs, err := st.GetGameState(gameID)
		if err != nil {
			return err
		}
		gs.ClearExpected()
		return st.SaveGameState(gs)
	})
	if err != nil {
		return OpResult{Message: err.Error()}
	}
	return OpResult{Success: true, Message: "player declared bankrupt"}
}
