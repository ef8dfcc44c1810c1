package models

const (
	PropertyStreet   = "street"
	PropertyRailroad = "railroad"
	PropertyUtility  = "utility"
)

// Property is one ownable board space of one game. Prices and rents carry both
// the base value (never mutated after seeding) and the current value, which
// market events perturb and RestoreMarketPrices resets.
type Property struct {
	Id               string `json:"id"`
	Game_id          string `json:"game_id"`
	Name             string `json:"name"`
	Type             string `json:"type"`  // street, railroad, utility
	Group            string `json:"group"` // color / zoning group
	Position         int    `json:"position"`
	BasePrice        int    `json:"base_price"`
	CurrentPrice     int    `json:"current_price"`
	BaseRent         int    `json:"base_rent"`
	CurrentRent      int    `json:"current_rent"`
	RentSchedule     []int  `json:"rent_schedule" pg:",array"` // base, 1..4 houses, hotel
	MortgageValue    int    `json:"mortgage_value"`
	HouseCost        int    `json:"house_cost"`
	DevelopmentLevel int    `json:"development_level" pg:",use_zero"`
	OwnerId          string `json:"owner_id"` // empty = bank
	Mortgaged        bool   `json:"mortgaged" pg:",use_zero"`

	// Market-event modifiers. At most one event is live at a time; restore
	// zeroes all four fields.
	DiscountPct     float64 `json:"discount_pct" pg:",use_zero"`
	PremiumPct      float64 `json:"premium_pct" pg:",use_zero"`
	PriceDelta      int     `json:"price_delta" pg:",use_zero"`
	EventExpiresLap int     `json:"event_expires_lap" pg:",use_zero"`

	// Zoning grants.
	CommunityApproved  bool `json:"community_approved" pg:",use_zero"`
	EnvStudyGranted    bool `json:"env_study_granted" pg:",use_zero"`
	EnvStudyExpiresLap int  `json:"env_study_expires_lap" pg:",use_zero"`
}

// HasMonopoly reports whether owner holds every property of the group in the
// given snapshot.
func HasMonopoly(owner string, group string, all []Property) bool {
	if owner == "" {
		return false
	}
	found := false
	for _, p := range all {
		if p.Group != group {
			continue
		}
		found = true
		if p.OwnerId != owner {
			return false
		}
	}
	return found
}
