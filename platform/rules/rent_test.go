package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/platform/board"
)

func street(owner string, level int) models.Property {
	return models.Property{
		Id:               "p1",
		Type:             models.PropertyStreet,
		Group:            "orange",
		OwnerId:          owner,
		DevelopmentLevel: level,
		RentSchedule:     []int{18, 90, 250, 700, 875, 1050},
	}
}

func TestRentUnownedOrMortgagedIsZero(t *testing.T) {
	p := street("", 0)
	assert.Equal(t, 0, Rent(p, 7, nil))

	p = street("alice", 3)
	p.Mortgaged = true
	assert.Equal(t, 0, Rent(p, 7, nil))
}

func TestStreetRentFollowsSchedule(t *testing.T) {
	snapshot := []models.Property{street("alice", 0), {Group: "orange", OwnerId: "bob", Type: models.PropertyStreet}}
	for level, want := range []int{18, 90, 250, 700, 875} {
		p := street("alice", level)
		assert.Equal(t, want, Rent(p, 7, snapshot), "level %d", level)
	}
}

func TestStreetRentMonotonicInDevelopment(t *testing.T) {
	snapshot := []models.Property{{Group: "orange", OwnerId: "bob", Type: models.PropertyStreet}}
	prev := -1
	for level := 0; level <= 4; level++ {
		rent := Rent(street("alice", level), 7, snapshot)
		assert.Greater(t, rent, prev, "rent must rise with development")
		prev = rent
	}
}

func TestMonopolyDoublesUndevelopedOnly(t *testing.T) {
	a := street("alice", 0)
	b := street("alice", 0)
	b.Id = "p2"
	snapshot := []models.Property{a, b}

	assert.Equal(t, 36, Rent(a, 7, snapshot))

	// Once developed the schedule already prices the monopoly in.
	a.DevelopmentLevel = 1
	assert.Equal(t, 90, Rent(a, 7, snapshot))
}

func TestRailroadRentDoublesPerOwned(t *testing.T) {
	rails := make([]models.Property, 0, 4)
	for i := 0; i < 4; i++ {
		rails = append(rails, models.Property{Type: models.PropertyRailroad, OwnerId: "alice"})
	}
	want := []int{25, 50, 100, 200}
	for n := 1; n <= 4; n++ {
		got := Rent(rails[0], 7, rails[:n])
		assert.Equal(t, want[n-1], got, "%d railroads", n)
	}
}

func TestRailroadIgnoresMortgagedSiblings(t *testing.T) {
	owned := models.Property{Type: models.PropertyRailroad, OwnerId: "alice"}
	mortgaged := models.Property{Type: models.PropertyRailroad, OwnerId: "alice", Mortgaged: true}
	assert.Equal(t, 25, Rent(owned, 7, []models.Property{owned, mortgaged}))
}

func TestUtilityRentScalesWithDice(t *testing.T) {
	u := models.Property{Type: models.PropertyUtility, OwnerId: "alice"}
	both := []models.Property{u, {Type: models.PropertyUtility, OwnerId: "alice"}}

	for dice := 2; dice <= 12; dice++ {
		assert.Equal(t, dice*4, Rent(u, dice, []models.Property{u}))
		assert.Equal(t, dice*10, Rent(u, dice, both))
	}
}

func TestUtilityRentWithoutDiceIsZero(t *testing.T) {
	u := models.Property{Type: models.PropertyUtility, OwnerId: "alice"}
	assert.Equal(t, 0, Rent(u, 0, []models.Property{u}))
}

func TestTax(t *testing.T) {
	assert.Equal(t, 200, Tax(board.Spaces[4]))
	assert.Equal(t, 100, Tax(board.Spaces[38]))
	assert.Equal(t, 0, Tax(board.Space{Kind: board.SpaceGo}))
}

func TestMarketEventScalesChargedRent(t *testing.T) {
	snapshot := []models.Property{{Group: "orange", OwnerId: "bob", Type: models.PropertyStreet}}

	boomed := street("alice", 0)
	boomed.BaseRent = 18
	boomed.CurrentRent = 27
	boomed.PremiumPct = 50
	assert.Equal(t, 27, Rent(boomed, 7, snapshot), "boom raises the rent actually charged")

	crashed := street("alice", 1)
	crashed.BaseRent = 18
	crashed.CurrentRent = 13
	crashed.DiscountPct = 30
	assert.Equal(t, 65, Rent(crashed, 7, snapshot), "crash discounts developed rent proportionally")

	restored := street("alice", 0)
	restored.BaseRent = 18
	restored.CurrentRent = 18
	assert.Equal(t, 18, Rent(restored, 7, snapshot), "no live event, schedule rent passes through")
}
