package board

import (
	"errors"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	uuid "github.com/satori/go.uuid"
)

// Template describes one ownable space; per-game Property rows are stamped
// out of these at game start.
type Template struct {
	Name         string
	Type         string
	Group        string
	Position     int
	Price        int
	Rent         int
	RentSchedule []int // base, 1..4 houses, hotel
	Mortgage     int
	HouseCost    int
}

// Templates is the full ownable-space table for this ruleset.
var Templates = []Template{
	{"Mediterranean Avenue", models.PropertyStreet, "brown", 1, 60, 2, []int{2, 10, 30, 90, 160, 250}, 30, 50},
	{"Baltic Avenue", models.PropertyStreet, "brown", 3, 60, 4, []int{4, 20, 60, 180, 320, 450}, 30, 50},
	{"Reading Railroad", models.PropertyRailroad, "railroad", 5, 200, 25, []int{25}, 100, 0},
	{"Oriental Avenue", models.PropertyStreet, "lightblue", 6, 100, 6, []int{6, 30, 90, 270, 400, 550}, 50, 50},
	{"Vermont Avenue", models.PropertyStreet, "lightblue", 8, 100, 6, []int{6, 30, 90, 270, 400, 550}, 50, 50},
	{"Connecticut Avenue", models.PropertyStreet, "lightblue", 9, 120, 8, []int{8, 40, 100, 300, 450, 600}, 60, 50},
	{"St. Charles Place", models.PropertyStreet, "pink", 11, 140, 10, []int{10, 50, 150, 450, 625, 750}, 70, 100},
	{"Electric Company", models.PropertyUtility, "utility", 12, 150, 0, []int{0}, 75, 0},
	{"States Avenue", models.PropertyStreet, "pink", 13, 140, 10, []int{10, 50, 150, 450, 625, 750}, 70, 100},
	{"Virginia Avenue", models.PropertyStreet, "pink", 14, 160, 12, []int{12, 60, 180, 500, 700, 900}, 80, 100},
	{"Pennsylvania Railroad", models.PropertyRailroad, "railroad", 15, 200, 25, []int{25}, 100, 0},
	{"St. James Place", models.PropertyStreet, "orange", 16, 180, 14, []int{14, 70, 200, 550, 750, 950}, 90, 100},
	{"Tennessee Avenue", models.PropertyStreet, "orange", 18, 180, 14, []int{14, 70, 200, 550, 750, 950}, 90, 100},
	{"New York Avenue", models.PropertyStreet, "orange", 19, 200, 16, []int{16, 80, 220, 600, 800, 1000}, 100, 100},
	{"Kentucky Avenue", models.PropertyStreet, "red", 21, 220, 18, []int{18, 90, 250, 700, 875, 1050}, 110, 150},
	{"Indiana Avenue", models.PropertyStreet, "red", 23, 220, 18, []int{18, 90, 250, 700, 875, 1050}, 110, 150},
	{"Illinois Avenue", models.PropertyStreet, "red", 24, 240, 20, []int{20, 100, 300, 750, 925, 1100}, 120, 150},
	{"B. & O. Railroad", models.PropertyRailroad, "railroad", 25, 200, 25, []int{25}, 100, 0},
	{"Atlantic Avenue", models.PropertyStreet, "yellow", 26, 260, 22, []int{22, 110, 330, 800, 975, 1150}, 130, 150},
	{"Ventnor Avenue", models.PropertyStreet, "yellow", 27, 260, 22, []int{22, 110, 330, 800, 975, 1150}, 130, 150},
	{"Water Works", models.PropertyUtility, "utility", 28, 150, 0, []int{0}, 75, 0},
	{"Marvin Gardens", models.PropertyStreet, "yellow", 29, 280, 24, []int{24, 120, 360, 850, 1025, 1200}, 140, 150},
	{"Pacific Avenue", models.PropertyStreet, "green", 31, 300, 26, []int{26, 130, 390, 900, 1100, 1275}, 150, 200},
	{"North Carolina Avenue", models.PropertyStreet, "green", 32, 300, 26, []int{26, 130, 390, 900, 1100, 1275}, 150, 200},
	{"Pennsylvania Avenue", models.PropertyStreet, "green", 34, 320, 28, []int{28, 150, 450, 1000, 1200, 1400}, 160, 200},
	{"Short Line", models.PropertyRailroad, "railroad", 35, 200, 25, []int{25}, 100, 0},
	{"Park Place", models.PropertyStreet, "darkblue", 37, 350, 35, []int{35, 175, 500, 1100, 1300, 1500}, 175, 200},
	{"Boardwalk", models.PropertyStreet, "darkblue", 39, 400, 50, []int{50, 200, 600, 1400, 1700, 2000}, 200, 200},
}

// SeedProperties stamps a fresh per-game property set out of Templates.
func SeedProperties(gameID string) []models.Property {
	properties := make([]models.Property, 0, len(Templates))
	for _, t := range Templates {
		properties = append(properties, models.Property{
			Id:            uuid.NewV4().String(),
			Game_id:       gameID,
			Name:          t.Name,
			Type:          t.Type,
			Group:         t.Group,
			Position:      t.Position,
			BasePrice:     t.Price,
			CurrentPrice:  t.Price,
			BaseRent:      t.Rent,
			CurrentRent:   t.Rent,
			RentSchedule:  append([]int(nil), t.RentSchedule...),
			MortgageValue: t.Mortgage,
			HouseCost:     t.HouseCost,
		})
	}
	return properties
}

// GetByPos finds the property sitting on pos. O(N) over a 28-entry slice.
func GetByPos(pos int, properties []models.Property) (models.Property, error) {
	for _, property := range properties {
		if property.Position == pos {
			return property, nil
		}
	}
	return models.Property{}, errors.New("not found")
}

// GetById finds a property by id. O(N) time complexity.
func GetById(id string, properties []models.Property) (models.Property, error) {
	for _, property := range properties {
		if property.Id == id {
			return property, nil
		}
	}
	return models.Property{}, errors.New("not found")
}
