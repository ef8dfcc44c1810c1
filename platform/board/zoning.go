package board

// Zoning describes the development rules attached to a property group.
type Zoning struct {
	MaxLevel     int     // hard cap on development level
	CostModifier float64 // multiplied into improvement cost
	FloodProne   bool    // level-4 development needs an environmental study
}

// ZoningRules keys every group tag to its zoning. Railroads and utilities are
// never developable.
var ZoningRules = map[string]Zoning{
	"brown":     {MaxLevel: 3, CostModifier: 0.9, FloodProne: false},
	"lightblue": {MaxLevel: 3, CostModifier: 0.9, FloodProne: true},
	"pink":      {MaxLevel: 4, CostModifier: 1.0, FloodProne: false},
	"orange":    {MaxLevel: 4, CostModifier: 1.0, FloodProne: false},
	"red":       {MaxLevel: 4, CostModifier: 1.1, FloodProne: false},
	"yellow":    {MaxLevel: 4, CostModifier: 1.1, FloodProne: true},
	"green":     {MaxLevel: 4, CostModifier: 1.2, FloodProne: false},
	"darkblue":  {MaxLevel: 4, CostModifier: 1.25, FloodProne: true},
	"railroad":  {MaxLevel: 0, CostModifier: 1.0, FloodProne: false},
	"utility":   {MaxLevel: 0, CostModifier: 1.0, FloodProne: false},
}

// ZoningFor returns the zoning for a group, defaulting to undevelopable.
func ZoningFor(group string) Zoning {
	if z, ok := ZoningRules[group]; ok {
		return z
	}
	return Zoning{MaxLevel: 0, CostModifier: 1.0}
}

// Groups lists every color group that can hold a monopoly.
var Groups = []string{"brown", "lightblue", "pink", "orange", "red", "yellow", "green", "darkblue"}
