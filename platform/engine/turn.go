package engine

import (
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/pkg/gameerr"
	"github.com/boardwalk-games/boardwalk-backend/platform/bank"
	"github.com/boardwalk-games/boardwalk-backend/platform/board"
	"github.com/boardwalk-games/boardwalk-backend/platform/rules"
	"github.com/boardwalk-games/boardwalk-backend/platform/store"
)

func itoa(n int) string { return strconv.Itoa(n) }

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Landing outcome tags.
const (
	LandingNone              = "no_effect"
	LandingBuyOrAuction      = "buy_or_auction_prompt"
	LandingPaidRent          = "paid_rent"
	LandingRentUnaffordable  = "insufficient_funds_for_rent"
	LandingPaidTax           = "paid_tax"
	LandingTaxUnaffordable   = "insufficient_funds_for_tax"
	LandingCardDrawn         = "card_drawn"
	LandingWentToJail        = "went_to_jail"
	LandingStayedInJail      = "stayed_in_jail"
	LandingReleasedFromJail  = "released_from_jail"
	LandingJailFineUnpayable = "manage_assets_for_jail_fine"
)

// Next-action signals.
const (
	NextRollAgain = "roll_again"
	NextEndTurn   = "end_turn"
)

// TurnResult is the structured outcome of one dice-roll resolution.
type TurnResult struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message,omitempty"`
	Dice        [2]int      `json:"dice"`
	Doubles     bool        `json:"doubles"`
	NewPosition int         `json:"new_position"`
	PassedGo    bool        `json:"passed_go"`
	Landing     string      `json:"landing"`
	AmountPaid  int         `json:"amount_paid,omitempty"`
	Card        *board.Card `json:"card,omitempty"`
	NextAction  string      `json:"next_action"`
}

// ResolveTurn runs the full state machine for one dice roll of playerID:
// jail branch, doubles tracking, movement with GO salary, landing dispatch
// and expected-action bookkeeping.
func (e *Engine) ResolveTurn(gameID, playerID string) (*TurnResult, error) {
	unlock := e.lockGame(gameID)
	defer unlock()

	gs, player, err := e.loadTurnState(gameID, playerID)
	if err != nil {
		return nil, err
	}
	if player.Bankrupt {
		return nil, gameerr.ErrInvalidState
	}

	// A pending decision blocks the roll, except the jail prompt which this
	// very roll resolves.
	if gs.ExpectedAction != "" && gs.ExpectedAction != models.ActionJailPrompt {
		return &TurnResult{
			Success:    false,
			Message:    "resolve the pending action before rolling",
			NextAction: NextEndTurn,
		}, nil
	}

	d1, d2 := e.rollDice()
	result := &TurnResult{Success: true, Dice: [2]int{d1, d2}, Doubles: d1 == d2, NextAction: NextEndTurn}

	if player.InJail {
		return e.resolveJailRoll(gs, player, result)
	}

	if result.Doubles {
		player.ConsecutiveDoubles++
		if player.ConsecutiveDoubles >= 3 {
			// Third consecutive doubles: straight to jail, no movement, no
			// landing resolution.
			if err := e.Store.SavePlayer(player); err != nil {
				return nil, err
			}
			if err := e.SendToJail(player.Id); err != nil {
				return nil, err
			}
			gs.ClearExpected()
			if err := e.Store.SaveGameState(gs); err != nil {
				return nil, err
			}
			result.Landing = LandingWentToJail
			result.NewPosition = board.JailPos
			result.Message = "caught speeding: three doubles in a row"
			return result, nil
		}
	} else {
		player.ConsecutiveDoubles = 0
	}

	return e.moveAndResolve(gs, player, d1+d2, result)
}

// resolveJailRoll handles the in-jail branch: doubles release immediately,
// three failed attempts force release against the fixed fine.
func (e *Engine) resolveJailRoll(gs *models.GameState, player *models.Player, result *TurnResult) (*TurnResult, error) {
	if result.Doubles {
		player.InJail = false
		player.JailTurns = 0
		player.ConsecutiveDoubles = 0
		result.Message = "rolled doubles, released from jail"
		// Release movement never earns a bonus roll.
		result.Doubles = false
		return e.moveAndResolve(gs, player, result.Dice[0]+result.Dice[1], result)
	}

	player.JailTurns++
	if player.JailTurns >= 3 {
		fine := e.Cfg.JailFine
		if fine == 0 {
			fine = board.JailFine
		}
		r := e.Bank.PlayerPaysBank(gs.Game_id, player.Id, fine, models.TxJailFine, "", gs.Lap)
		if bank.IsInsufficientFunds(r) {
			gs.SetExpected(models.ActionManageJailFine, map[string]string{"amount": itoa(fine)})
			if err := e.Store.SaveGameState(gs); err != nil {
				return nil, err
			}
			if err := e.Store.SavePlayer(player); err != nil {
				return nil, err
			}
			result.Success = false
			result.Landing = LandingJailFineUnpayable
			result.Message = "cannot afford the jail fine, liquidate assets"
			result.NewPosition = player.Pos
			return result, nil
		}
		if !r.Success {
			return nil, gameerr.ErrInvalidState
		}
		player.InJail = false
		player.JailTurns = 0
		result.Message = "forced release after three failed attempts, fine charged"
		result.AmountPaid = fine
		return e.moveAndResolve(gs, player, result.Dice[0]+result.Dice[1], result)
	}

	gs.SetExpected(models.ActionJailPrompt, map[string]string{"jail_turns": itoa(player.JailTurns)})
	if err := e.Store.SaveGameState(gs); err != nil {
		return nil, err
	}
	if err := e.Store.SavePlayer(player); err != nil {
		return nil, err
	}
	result.Landing = LandingStayedInJail
	result.Message = "no doubles, still in jail"
	result.NewPosition = player.Pos
	return result, nil
}

// moveAndResolve advances the player, credits GO salary on wraparound, then
// dispatches the landing space. The whole step runs as one unit of work.
func (e *Engine) moveAndResolve(gs *models.GameState, player *models.Player, total int, result *TurnResult) (*TurnResult, error) {
	oldPos := player.Pos
	newPos := (oldPos + total) % board.BoardSize
	player.Pos = newPos
	result.NewPosition = newPos
	result.PassedGo = newPos < oldPos

	err := e.Store.InTx(func(st store.Store) error {
		if err := st.SavePlayer(player); err != nil {
			return err
		}
		if result.PassedGo {
			gs.Lap++
			salary := e.Cfg.GoSalary
			if salary == 0 {
				salary = board.GoSalary
			}
			txBank := bank.New(st)
			if r := txBank.BankPaysPlayer(gs.Game_id, player.Id, salary, models.TxSalary, "", gs.Lap); !r.Success {
				// Accepted inconsistency: the bank is assumed solvent, a
				// failed salary credit is logged and the move continues.
				log.WithFields(log.Fields{"game": gs.Game_id, "player": player.Id}).
					WithField("error", r.Error).Error("GO salary payment failed")
			}
		}
		return e.resolveLanding(st, gs, player, total, result)
	})
	if err != nil {
		return nil, err
	}

	// A liquidation demand blocks the next roll, so a bonus roll promised on
	// doubles would be refused anyway.
	if result.Doubles && !player.InJail && !liquidationPending(gs) {
		result.NextAction = NextRollAgain
	}
	return result, nil
}

func liquidationPending(gs *models.GameState) bool {
	return gs.ExpectedAction == models.ActionManageAssets ||
		gs.ExpectedAction == models.ActionManageJailFine
}

// DebtKind maps a pending liquidation demand to the transaction kind it
// settles under, keeping the audit trail truthful about what was owed.
func DebtKind(gs *models.GameState) string {
	if gs.ExpectedAction == models.ActionManageJailFine {
		return models.TxJailFine
	}
	switch gs.ExpectedDetail["kind"] {
	case "tax":
		return models.TxTax
	case "card":
		return models.TxCard
	}
	return models.TxRent
}

// resolveLanding maps the landed position to exactly one outcome.
func (e *Engine) resolveLanding(st store.Store, gs *models.GameState, player *models.Player, diceTotal int, result *TurnResult) error {
	pos := player.Pos
	gs.ClearExpected()

	if space, ok := board.SpecialAt(pos); ok {
		if err := e.resolveSpecial(st, gs, player, space, result); err != nil {
			return err
		}
		return st.SaveGameState(gs)
	}

	property, err := st.PropertyByPosition(gs.Game_id, pos)
	if err != nil {
		return err // board invariant broken: every position is special or owned
	}

	switch {
	case property.OwnerId == "":
		gs.SetExpected(models.ActionBuyOrAuction, map[string]string{
			"property_id": property.Id,
			"price":       itoa(property.CurrentPrice),
		})
		result.Landing = LandingBuyOrAuction
		result.Message = property.Name + " is available"
	case property.OwnerId == player.Id:
		result.Landing = LandingNone
		result.Message = "landed on own property"
	case property.Mortgaged:
		result.Landing = LandingNone
		result.Message = property.Name + " is mortgaged, no rent due"
	default:
		snapshot, err := st.PropertiesByGame(gs.Game_id)
		if err != nil {
			return err
		}
		rent := rules.Rent(*property, diceTotal, snapshot)
		txBank := bank.New(st)
		r := txBank.PlayerPaysPlayer(gs.Game_id, player.Id, property.OwnerId, rent, models.TxRent, property.Id, gs.Lap)
		if bank.IsInsufficientFunds(r) {
			gs.SetExpected(models.ActionManageAssets, map[string]string{
				"creditor": property.OwnerId,
				"amount":   itoa(rent),
			})
			result.Landing = LandingRentUnaffordable
			result.Message = "cannot cover rent, liquidate assets or declare bankruptcy"
		} else if !r.Success {
			return gameerr.ErrInvalidState
		} else {
			result.Landing = LandingPaidRent
			result.AmountPaid = rent
			result.Message = "paid rent on " + property.Name
		}
	}
	return st.SaveGameState(gs)
}

func (e *Engine) resolveSpecial(st store.Store, gs *models.GameState, player *models.Player, space board.Space, result *TurnResult) error {
	switch space.Kind {
	case board.SpaceGo, board.SpaceJail, board.SpaceFreeParking:
		result.Landing = LandingNone
		result.Message = space.Name
	case board.SpaceGoToJail:
		player.Pos = board.JailPos
		player.InJail = true
		player.JailTurns = 0
		player.ConsecutiveDoubles = 0
		if err := st.SavePlayer(player); err != nil {
			return err
		}
		result.Landing = LandingWentToJail
		result.NewPosition = board.JailPos
		result.Message = "go to jail"
		result.NextAction = NextEndTurn
	case board.SpaceTax:
		txBank := bank.New(st)
		r := txBank.PlayerPaysBank(gs.Game_id, player.Id, space.Tax, models.TxTax, "", gs.Lap)
		if bank.IsInsufficientFunds(r) {
			gs.SetExpected(models.ActionManageAssets, map[string]string{"amount": itoa(space.Tax), "kind": "tax"})
			result.Landing = LandingTaxUnaffordable
			result.Message = "cannot cover " + space.Name
		} else if !r.Success {
			return gameerr.ErrInvalidState
		} else {
			result.Landing = LandingPaidTax
			result.AmountPaid = space.Tax
			result.Message = "paid " + space.Name
		}
	case board.SpaceChance, board.SpaceChest:
		card := board.DrawCard(space.Kind)
		result.Card = &card
		result.Landing = LandingCardDrawn
		result.Message = card.Info
		return e.applyCard(st, gs, player, card, result)
	}
	return nil
}

// applyCard executes a drawn card against the player.
func (e *Engine) applyCard(st store.Store, gs *models.GameState, player *models.Player, card board.Card, result *TurnResult) error {
	txBank := bank.New(st)
	switch card.Action {
	case "change":
		if card.Payload >= 0 {
			if r := txBank.BankPaysPlayer(gs.Game_id, player.Id, card.Payload, models.TxCard, "", gs.Lap); !r.Success {
				return gameerr.ErrInvalidState
			}
		} else {
			r := txBank.PlayerPaysBank(gs.Game_id, player.Id, -card.Payload, models.TxCard, "", gs.Lap)
			if bank.IsInsufficientFunds(r) {
				gs.SetExpected(models.ActionManageAssets, map[string]string{"amount": itoa(-card.Payload), "kind": "card"})
			} else if !r.Success {
				return gameerr.ErrInvalidState
			}
		}
	case "move":
		// The only move card in the deck advances to GO and collects.
		player.Pos = 0
		gs.Lap++
		if err := st.SavePlayer(player); err != nil {
			return err
		}
		result.NewPosition = 0
		salary := e.Cfg.GoSalary
		if salary == 0 {
			salary = board.GoSalary
		}
		if r := txBank.BankPaysPlayer(gs.Game_id, player.Id, salary, models.TxSalary, "", gs.Lap); !r.Success {
			log.WithField("game", gs.Game_id).Error("GO salary payment failed on card move")
		}
	case "jail":
		player.Pos = board.JailPos
		player.InJail = true
		player.JailTurns = 0
		player.ConsecutiveDoubles = 0
		if err := st.SavePlayer(player); err != nil {
			return err
		}
		result.NewPosition = board.JailPos
		result.NextAction = NextEndTurn
	}
	return nil
}
