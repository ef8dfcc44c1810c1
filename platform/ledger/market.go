package ledger

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk-backend/platform/store"
)

// ApplyMarketCrash discounts current price and rent of every property in the
// groups by pct percent. A property already carrying a live event is skipped:
// perturbations never compound without an intervening restore. Prices never
// fall below the floor fraction of base.
func (l *Ledger) ApplyMarketCrash(gameID string, groups []string, pct float64, expiresLap int) error {
	return l.perturb(gameID, groups, -pct, expiresLap)
}

// ApplyEconomicBoom raises current price and rent by pct percent.
func (l *Ledger) ApplyEconomicBoom(gameID string, groups []string, pct float64, expiresLap int) error {
	return l.perturb(gameID, groups, pct, expiresLap)
}

func (l *Ledger) perturb(gameID string, groups []string, pct float64, expiresLap int) error {
	groupSet := make(map[string]bool, len(groups))
	for _, g := range groups {
		groupSet[g] = true
	}
	return l.Store.InTx(func(st store.Store) error {
		properties, err := st.PropertiesByGame(gameID)
		if err != nil {
			return err
		}
		for i := range properties {
			p := &properties[i]
			if !groupSet[p.Group] {
				continue
			}
			if p.DiscountPct != 0 || p.PremiumPct != 0 {
				continue // live event, never stack
			}
			newPrice := int(math.Round(float64(p.BasePrice) * (1 + pct/100)))
			floor := int(math.Round(float64(p.BasePrice) * l.floor()))
			if newPrice < floor {
				newPrice = floor
			}
			if pct < 0 {
				p.DiscountPct = -pct
			} else {
				p.PremiumPct = pct
			}
			p.PriceDelta = newPrice - p.BasePrice
			p.EventExpiresLap = expiresLap
			p.CurrentPrice = newPrice
			if p.BasePrice > 0 {
				p.CurrentRent = int(math.Round(float64(p.BaseRent) * float64(newPrice) / float64(p.BasePrice)))
			}
			if err := st.SaveProperty(p); err != nil {
				return err
			}
		}
		return nil
	})
}

// RestoreMarketPrices resets every property in the groups exactly to its base
// price and rent and zeroes the event modifiers. Safe to call twice.
func (l *Ledger) RestoreMarketPrices(gameID string, groups []string) error {
	groupSet := make(map[string]bool, len(groups))
	for _, g := range groups {
		groupSet[g] = true
	}
	err := l.Store.InTx(func(st store.Store) error {
		properties, err := st.PropertiesByGame(gameID)
		if err != nil {
			return err
		}
		for i := range properties {
			p := &properties[i]
			if len(groups) > 0 && !groupSet[p.Group] {
				continue
			}
			p.CurrentPrice = p.BasePrice
			p.CurrentRent = p.BaseRent
			p.DiscountPct = 0
			p.PremiumPct = 0
			p.PriceDelta = 0
			p.EventExpiresLap = 0
			if err := st.SaveProperty(p); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		log.WithFields(log.Fields{"game": gameID, "groups": groups}).Debug("market prices restored")
	}
	return err
}
