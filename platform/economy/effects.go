package economy

import (
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
)

// Effect kinds.
const (
	EffectCrash      = "crash"
	EffectBoom       = "boom"
	EffectBuyWindow  = "buy_window"
	EffectSellWindow = "sell_window"
)

// ScheduleEffect records a group-scoped perturbation to be reverted after
// turns boundary crossings.
func ScheduleEffect(gs *models.GameState, kind string, groups []string, magnitude float64, turns int) models.ScheduledEffect {
	effect := models.ScheduledEffect{
		Id:        uuid.NewV4().String(),
		Kind:      kind,
		Groups:    groups,
		Magnitude: magnitude,
		TurnsLeft: turns,
	}
	gs.ActiveEffects = append(gs.ActiveEffects, effect)
	return effect
}

// AdvanceEffects decrements every countdown by one boundary and calls restore
// for each effect reaching zero. Expired entries are removed from the state;
// restore applies the inverse perturbation (reset to base prices).
func AdvanceEffects(gs *models.GameState, restore func(models.ScheduledEffect) error) []models.ScheduledEffect {
	var expired []models.ScheduledEffect
	remaining := gs.ActiveEffects[:0]
	for _, effect := range gs.ActiveEffects {
		effect.TurnsLeft--
		if effect.TurnsLeft > 0 {
			remaining = append(remaining, effect)
			continue
		}
		if restore != nil {
			if err := restore(effect); err != nil {
				log.WithFields(log.Fields{
					"game":   gs.Game_id,
					"effect": effect.Kind,
				}).WithError(err).Error("failed reverting market effect")
				// Keep it for the next boundary rather than losing the revert.
				effect.TurnsLeft = 1
				remaining = append(remaining, effect)
				continue
			}
		}
		expired = append(expired, effect)
	}
	gs.ActiveEffects = remaining
	return expired
}
