package board

// BoardSize is the number of spaces on the board.
const BoardSize = 40

// Fixed rule constants for this ruleset.
const (
	GoSalary    = 200
	JailFine    = 50
	JailPos     = 10
	GoToJailPos = 30
	IncomeTax   = 200
	LuxuryTax   = 100
)

// Special space kinds.
const (
	SpaceGo          = "go"
	SpaceJail        = "jail"
	SpaceGoToJail    = "go-to-jail"
	SpaceFreeParking = "free-parking"
	SpaceTax         = "tax"
	SpaceChance      = "chance"
	SpaceChest       = "community-chest"
	SpaceProperty    = "property"
)

// Space is one of the 40 board positions. Ownable positions carry Kind
// "property" and are seeded per game from Templates; the rest are static.
type Space struct {
	Position int
	Kind     string
	Name     string
	Tax      int // only for Kind "tax"
}

// Spaces maps every board position to exactly one space. Positions absent
// here are ownable and must appear in Templates instead.
var Spaces = map[int]Space{
	0:  {0, SpaceGo, "GO", 0},
	2:  {2, SpaceChest, "Community Chest", 0},
	4:  {4, SpaceTax, "Income Tax", IncomeTax},
	7:  {7, SpaceChance, "Chance", 0},
	10: {10, SpaceJail, "Jail", 0},
	17: {17, SpaceChest, "Community Chest", 0},
	20: {20, SpaceFreeParking, "Free Parking", 0},
	22: {22, SpaceChance, "Chance", 0},
	30: {30, SpaceGoToJail, "Go To Jail", 0},
	33: {33, SpaceChest, "Community Chest", 0},
	36: {36, SpaceChance, "Chance", 0},
	38: {38, SpaceTax, "Luxury Tax", LuxuryTax},
}

// SpecialAt returns the special space at pos, if any.
func SpecialAt(pos int) (Space, bool) {
	s, ok := Spaces[pos]
	return s, ok
}
