package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/boardwalk-games/boardwalk-backend/pkg/gameerr"
)

type propertyActionDto struct {
	Game_id     string `json:"game_id"`
	Player_id   string `json:"player_id"`
	Property_id string `json:"property_id"`
}

func coreUnavailable(c *fiber.Ctx) error {
	// ConfigurationError: the operation aborts cleanly, nothing mutated.
	return c.Status(fiber.StatusServiceUnavailable).
		JSON(fiber.Map{"success": false, "message": gameerr.ErrConfiguration.Error()})
}

// ImproveProperty raises a property one development level.
func ImproveProperty(c *fiber.Ctx) error {
	if Core == nil {
		return coreUnavailable(c)
	}
	dto := new(propertyActionDto)
	if err := c.BodyParser(dto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	gs, err := Core.Store.GetGameState(dto.Game_id)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "game not found"})
	}
	result := Core.Ledger.Improve(dto.Player_id, dto.Property_id, gs)
	return c.JSON(result)
}

// RequestCommunityApproval rolls the zoning approval a level-3 development
// requires.
func RequestCommunityApproval(c *fiber.Ctx) error {
	if Core == nil {
		return coreUnavailable(c)
	}
	dto := new(propertyActionDto)
	if err := c.BodyParser(dto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	gs, err := Core.Store.GetGameState(dto.Game_id)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "game not found"})
	}
	return c.JSON(Core.Ledger.RequestCommunityApproval(dto.Player_id, dto.Property_id, gs))
}

// CommissionEnvironmentalStudy pays for the study flood-prone level-4
// development requires.
func CommissionEnvironmentalStudy(c *fiber.Ctx) error {
	if Core == nil {
		return coreUnavailable(c)
	}
	dto := new(propertyActionDto)
	if err := c.BodyParser(dto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	gs, err := Core.Store.GetGameState(dto.Game_id)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "game not found"})
	}
	return c.JSON(Core.Ledger.CommissionEnvironmentalStudy(dto.Player_id, dto.Property_id, gs))
}

// MortgageProperty turns a deed into cash at its mortgage value, the manual
// way out of a manage_assets_or_bankrupt demand.
func MortgageProperty(c *fiber.Ctx) error {
	if Core == nil {
		return coreUnavailable(c)
	}
	dto := new(propertyActionDto)
	if err := c.BodyParser(dto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	gs, err := Core.Store.GetGameState(dto.Game_id)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "game not found"})
	}
	if !Core.Ledger.Mortgage(dto.Player_id, dto.Property_id, gs.Lap) {
		return c.JSON(fiber.Map{"success": false, "message": "property cannot be mortgaged"})
	}
	return c.JSON(fiber.Map{"success": true, "message": "property mortgaged"})
}

// UnmortgageProperty redeems a mortgaged deed at value plus interest.
func UnmortgageProperty(c *fiber.Ctx) error {
	if Core == nil {
		return coreUnavailable(c)
	}
	dto := new(propertyActionDto)
	if err := c.BodyParser(dto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	gs, err := Core.Store.GetGameState(dto.Game_id)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "game not found"})
	}
	if !Core.Ledger.Unmortgage(dto.Player_id, dto.Property_id, gs.Lap) {
		return c.JSON(fiber.Map{"success": false, "message": "property cannot be redeemed"})
	}
	return c.JSON(fiber.Map{"success": true, "message": "property redeemed"})
}

// ExecuteBotTurn runs one complete bot turn.
func ExecuteBotTurn(c *fiber.Ctx) error {
	if Core == nil || BotRunner == nil {
		return coreUnavailable(c)
	}
	dto := new(propertyActionDto)
	if err := c.BodyParser(dto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	report, err := BotRunner.ExecuteBotTurn(dto.Game_id, dto.Player_id)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	return c.JSON(report)
}
