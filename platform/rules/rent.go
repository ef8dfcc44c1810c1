// Package rules holds the pure rent and tax formulas. Nothing here mutates
// state; callers pass a snapshot of the game's properties for ownership
// counting.
package rules

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/platform/board"
)

const (
	railroadBaseRent = 25
	utilityOneOwned  = 4
	utilityBothOwned = 10
)

// Rent computes the rent owed for landing on p with the given dice total.
// One canonical formula keyed by property type; the snapshot supplies
// ownership concentration for railroads, utilities and monopolies. A live
// market event scales the result in proportion to the perturbed rent.
func Rent(p models.Property, diceTotal int, snapshot []models.Property) int {
	if p.OwnerId == "" || p.Mortgaged {
		return 0
	}

	rent := 0
	switch p.Type {
	case models.PropertyStreet:
		rent = streetRent(p, snapshot)
	case models.PropertyRailroad:
		n := countOwned(p.OwnerId, models.PropertyRailroad, snapshot)
		if n < 1 {
			n = 1
		}
		rent = railroadBaseRent << (n - 1)
	case models.PropertyUtility:
		if diceTotal == 0 {
			// Utility rent is undefined without the triggering roll.
			log.WithField("property", p.Name).Warn("utility rent requested without dice total, treating as zero")
			return 0
		}
		if countOwned(p.OwnerId, models.PropertyUtility, snapshot) >= 2 {
			rent = diceTotal * utilityBothOwned
		} else {
			rent = diceTotal * utilityOneOwned
		}
	}
	return marketAdjust(p, rent)
}

// marketAdjust scales rent by the live crash/boom factor carried on the
// property row. Without an active event the formula result passes through
// untouched.
func marketAdjust(p models.Property, rent int) int {
	if (p.DiscountPct == 0 && p.PremiumPct == 0) || p.BaseRent <= 0 || rent == 0 {
		return rent
	}
	return int(math.Round(float64(rent) * float64(p.CurrentRent) / float64(p.BaseRent)))
}

func streetRent(p models.Property, snapshot []models.Property) int {
	level := p.DevelopmentLevel
	if level < 0 {
		level = 0
	}
	if level >= len(p.RentSchedule) {
		level = len(p.RentSchedule) - 1
	}
	rent := p.RentSchedule[level]
	// Monopoly doubles undeveloped rent only.
	if level == 0 && models.HasMonopoly(p.OwnerId, p.Group, snapshot) {
		rent *= 2
	}
	return rent
}

// countOwned counts owner's unmortgaged holdings of one property type.
func countOwned(owner string, propType string, snapshot []models.Property) int {
	n := 0
	for _, q := range snapshot {
		if q.OwnerId == owner && q.Type == propType && !q.Mortgaged {
			n++
		}
	}
	return n
}

// Tax returns the amount owed to the bank on a tax space, zero otherwise.
func Tax(space board.Space) int {
	if space.Kind == board.SpaceTax {
		return space.Tax
	}
	return 0
}
