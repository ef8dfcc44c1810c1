package board

import "math/rand"

// Card is one chance / community chest card. Action "change" moves money
// (positive payload = bank pays player), "move" relocates, "jail" sends to
// jail.
type Card struct {
	Info    string `json:"info"`
	Action  string `json:"action"`
	Payload int    `json:"payload"`
}

var chanceCards = []Card{
	{"Advance to GO", "move", 0},
	{"Bank pays you dividend of $50", "change", 50},
	{"Speeding fine $15", "change", -15},
	{"Go to Jail", "jail", 0},
	{"Your building loan matures, collect $150", "change", 150},
	{"Pay poor tax of $15", "change", -15},
}

var chestCards = []Card{
	{"Bank error in your favor, collect $200", "change", 200},
	{"Doctor's fees, pay $50", "change", -50},
	{"From sale of stock you get $50", "change", 50},
	{"Go to Jail", "jail", 0},
	{"Holiday fund matures, receive $100", "change", 100},
	{"Pay hospital fees of $100", "change", -100},
	{"You inherit $100", "change", 100},
}

// DrawCard draws a random card for a chance or community-chest space.
func DrawCard(kind string) Card {
	if kind == SpaceChance {
		return chanceCards[rand.Intn(len(chanceCards))]
	}
	return chestCards[rand.Intn(len(chestCards))]
}
