// Package economy owns the game-wide economic cycle and the turn-counted
// scheduling of temporary market effects. Countdowns advance only on turn
// boundaries; there is no wall-clock dependency.
package economy

import (
	"math/rand"

	log "github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
)

// phaseOrder runs worst to best.
var phaseOrder = []string{
	models.PhaseRecession,
	models.PhaseNormal,
	models.PhaseGrowth,
	models.PhaseBoom,
}

// costMultipliers scale improvement costs per phase.
var costMultipliers = map[string]float64{
	models.PhaseRecession: 0.85,
	models.PhaseNormal:    1.0,
	models.PhaseGrowth:    1.1,
	models.PhaseBoom:      1.25,
}

// buyShifts move bot value-ratio thresholds: negative loosens buying in a
// recession, positive tightens it in a boom.
var buyShifts = map[string]float64{
	models.PhaseRecession: -0.15,
	models.PhaseNormal:    0.0,
	models.PhaseGrowth:    0.05,
	models.PhaseBoom:      0.15,
}

// approvalShifts move zoning-approval odds in percentage points.
var approvalShifts = map[string]int{
	models.PhaseRecession: -10,
	models.PhaseNormal:    0,
	models.PhaseGrowth:    5,
	models.PhaseBoom:      15,
}

// CostMultiplier returns the improvement-cost scale for a phase.
func CostMultiplier(phase string) float64 {
	if m, ok := costMultipliers[phase]; ok {
		return m
	}
	return 1.0
}

// BuyThresholdShift returns the phase adjustment bots add to their buy
// threshold ratios.
func BuyThresholdShift(phase string) float64 {
	return buyShifts[phase]
}

// ApprovalShift returns the percentage-point adjustment the phase applies to
// zoning approval odds.
func ApprovalShift(phase string) int {
	return approvalShifts[phase]
}

// PhaseIndex returns the position of phase in the cycle, defaulting to normal.
func PhaseIndex(phase string) int {
	for i, p := range phaseOrder {
		if p == phase {
			return i
		}
	}
	return 1
}

// DriftPhase moves the economic phase at most one step, with the given
// per-boundary chance. Inflation follows the direction of the move.
func DriftPhase(gs *models.GameState, r *rand.Rand, chance float64) {
	if r.Float64() >= chance {
		return
	}
	idx := PhaseIndex(gs.EconomicPhase)
	if r.Float64() < 0.5 {
		idx--
	} else {
		idx++
	}
	if idx < 0 {
		idx = 0
	}
	if idx > len(phaseOrder)-1 {
		idx = len(phaseOrder) - 1
	}
	prev := gs.EconomicPhase
	gs.EconomicPhase = phaseOrder[idx]
	if gs.InflationFactor == 0 {
		gs.InflationFactor = 1.0
	}
	switch {
	case PhaseIndex(gs.EconomicPhase) > PhaseIndex(prev):
		gs.InflationFactor *= 1.03
	case PhaseIndex(gs.EconomicPhase) < PhaseIndex(prev):
		gs.InflationFactor *= 0.98
	}
	if prev != gs.EconomicPhase {
		log.WithFields(log.Fields{
			"game":      gs.Game_id,
			"from":      prev,
			"to":        gs.EconomicPhase,
			"inflation": gs.InflationFactor,
		}).Info("economic phase drift")
	}
}
