// Package ledger owns property records: development under zoning gates,
// mortgage state, and market-event price perturbation. All mutations write
// through the store; rent math itself lives in platform/rules.
package ledger

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/platform/bank"
	"github.com/boardwalk-games/boardwalk-backend/platform/board"
	"github.com/boardwalk-games/boardwalk-backend/platform/economy"
	"github.com/boardwalk-games/boardwalk-backend/platform/store"
)

// costFractions index improvement cost by target level (1..4).
var costFractions = []float64{0, 0.5, 0.6, 0.75, 1.0}

// DefaultFloorFrac is the lowest a downward perturbation may drive a price,
// as a fraction of the base price.
const DefaultFloorFrac = 0.55

// Environmental studies stay valid this many laps after being granted.
const envStudyValidLaps = 4

type Ledger struct {
	Store store.Store
	Bank  *bank.Bank
	Rand  *rand.Rand
	// FloorFrac bounds downward price perturbations. Zero means default.
	FloorFrac float64
	// HasLien reports an encumbrance on a property (e.g. an open auction).
	// Nil means no lien source is wired.
	HasLien func(propertyID string) bool
}

func New(st store.Store, b *bank.Bank, r *rand.Rand) *Ledger {
	return &Ledger{Store: st, Bank: b, Rand: r, FloorFrac: DefaultFloorFrac}
}

func (l *Ledger) floor() float64 {
	if l.FloorFrac == 0 {
		return DefaultFloorFrac
	}
	return l.FloorFrac
}

// CanImprove checks every development gate for raising p one level. The
// returned reason is user-facing.
func (l *Ledger) CanImprove(p *models.Property, snapshot []models.Property, gs *models.GameState) (bool, string) {
	zoning := board.ZoningFor(p.Group)
	if zoning.MaxLevel == 0 {
		return false, "this property type cannot be developed"
	}
	if p.Mortgaged {
		return false, "mortgaged property cannot be developed"
	}
	if l.HasLien != nil && l.HasLien(p.Id) {
		return false, "property is under a lien"
	}
	if p.DevelopmentLevel >= zoning.MaxLevel {
		return false, "property is at maximum development for its zoning group"
	}
	if !models.HasMonopoly(p.OwnerId, p.Group, snapshot) {
		return false, "full group ownership required"
	}
	target := p.DevelopmentLevel + 1
	if target >= 3 && !p.CommunityApproved {
		return false, "community approval required for this development level"
	}
	if target >= 4 && zoning.FloodProne {
		if !p.EnvStudyGranted || gs.Lap > p.EnvStudyExpiresLap {
			return false, "a current environmental study is required in flood-prone zoning"
		}
	}
	return true, ""
}

// ImproveCost prices one level of development at call time. Never cached:
// the economic cycle and inflation move between turns.
func ImproveCost(p *models.Property, gs *models.GameState) int {
	target := p.DevelopmentLevel + 1
	if target < 1 || target >= len(costFractions) {
		return 0
	}
	frac := costFractions[target]
	zoning := board.ZoningFor(p.Group)
	inflation := gs.InflationFactor
	if inflation == 0 {
		inflation = 1.0
	}
	cost := float64(p.BasePrice) * frac * zoning.CostModifier * economy.CostMultiplier(gs.EconomicPhase) * inflation
	return int(math.Round(cost))
}

// ImproveResult reports one completed (or refused) development step.
type ImproveResult struct {
	Success  bool   `json:"success"`
	Reason   string `json:"reason,omitempty"`
	Level    int    `json:"level"`
	Cost     int    `json:"cost"`
	NewValue int    `json:"new_value"`
}

// Improve raises the development level by one, charging the owner inside a
// unit of work.
func (l *Ledger) Improve(playerID string, propertyID string, gs *models.GameState) ImproveResult {
	var result ImproveResult
	err := l.Store.InTx(func(st store.Store) error {
		property, err := st.GetProperty(propertyID)
		if err != nil {
			return err
		}
		if property.OwnerId != playerID {
			result = ImproveResult{Reason: "only the owner may develop a property"}
			return nil
		}
		snapshot, err := st.PropertiesByGame(property.Game_id)
		if err != nil {
			return err
		}
		if okImprove, reason := l.CanImprove(property, snapshot, gs); !okImprove {
			result = ImproveResult{Reason: reason, Level: property.DevelopmentLevel}
			return nil
		}
		cost := ImproveCost(property, gs)
		txBank := bank.New(st)
		if r := txBank.PlayerPaysBank(property.Game_id, playerID, cost, models.TxImprovement, property.Id, gs.Lap); !r.Success {
			result = ImproveResult{Reason: r.Error, Level: property.DevelopmentLevel, Cost: cost}
			return nil
		}
		property.DevelopmentLevel++
		property.CurrentPrice += cost / 2
		if err := st.SaveProperty(property); err != nil {
			return err
		}
		result = ImproveResult{
			Success:  true,
			Level:    property.DevelopmentLevel,
			Cost:     cost,
			NewValue: property.CurrentPrice,
		}
		return nil
	})
	if err != nil {
		return ImproveResult{Reason: err.Error()}
	}
	return result
}

// Mortgage banks the mortgage value. Developed property must be torn down
// first; rent stops while mortgaged.
func (l *Ledger) Mortgage(playerID, propertyID string, lap int) bool {
	err := l.Store.InTx(func(st store.Store) error {
		property, err := st.GetProperty(propertyID)
		if err != nil {
			return err
		}
		if property.OwnerId != playerID || property.Mortgaged || property.DevelopmentLevel > 0 {
			return fmt.Errorf("property %s cannot be mortgaged", property.Name)
		}
		txBank := bank.New(st)
		if r := txBank.BankPaysPlayer(property.Game_id, playerID, property.MortgageValue, models.TxMortgage, property.Id, lap); !r.Success {
			return fmt.Errorf(r.Error)
		}
		property.Mortgaged = true
		return st.SaveProperty(property)
	})
	return err == nil
}

// Unmortgage redeems at mortgage value plus 10%.
func (l *Ledger) Unmortgage(playerID, propertyID string, lap int) bool {
	err := l.Store.InTx(func(st store.Store) error {
		property, err := st.GetProperty(propertyID)
		if err != nil {
			return err
		}
		if property.OwnerId != playerID || !property.Mortgaged {
			return fmt.Errorf("property %s is not mortgaged by player", property.Name)
		}
		cost := property.MortgageValue + property.MortgageValue/10
		txBank := bank.New(st)
		if r := txBank.PlayerPaysBank(property.Game_id, playerID, cost, models.TxUnmortgage, property.Id, lap); !r.Success {
			return fmt.Errorf(r.Error)
		}
		property.Mortgaged = false
		return st.SaveProperty(property)
	})
	return err == nil
}

// UnimprovedValue sums what a player could raise by mortgaging everything
// still unmortgaged; the liquidation flow uses it to tell a recoverable debt
// from a hopeless one.
func (l *Ledger) UnimprovedValue(playerID, gameID string) int {
	properties, err := l.Store.PropertiesByGame(gameID)
	if err != nil {
		return 0
	}
	total := 0
	for _, p := range properties {
		if p.OwnerId == playerID && !p.Mortgaged {
			total += p.MortgageValue
		}
	}
	return total
}
