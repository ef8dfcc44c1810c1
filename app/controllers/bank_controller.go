package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/boardwalk-games/boardwalk-backend/platform/economy"
)

type loanRequestDto struct {
	Game_id   string `json:"game_id"`
	Player_id string `json:"player_id"`
	Amount    int    `json:"amount"`
}

type loanRepayDto struct {
	Game_id   string `json:"game_id"`
	Player_id string `json:"player_id"`
	Loan_id   string `json:"loan_id"`
	Amount    int    `json:"amount"`
}

// loanRate prices credit off the economic cycle: cheap in a recession, dear
// in a boom.
func loanRate(phase string) float64 {
	return 0.05 + 0.02*float64(economy.PhaseIndex(phase))
}

// RequestLoan opens a loan against the bank at the current phase rate.
func RequestLoan(c *fiber.Ctx) error {
	if Core == nil {
		return coreUnavailable(c)
	}
	dto := new(loanRequestDto)
	if err := c.BodyParser(dto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	gs, err := Core.Store.GetGameState(dto.Game_id)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "game not found"})
	}
	loan, err := Core.Bank.IssueLoan(dto.Game_id, dto.Player_id, dto.Amount, loanRate(gs.EconomicPhase), gs.Lap)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "loan": loan})
}

// RepayLoan pays down one of the player's open loans.
func RepayLoan(c *fiber.Ctx) error {
	if Core == nil {
		return coreUnavailable(c)
	}
	dto := new(loanRepayDto)
	if err := c.BodyParser(dto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	gs, err := Core.Store.GetGameState(dto.Game_id)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "game not found"})
	}
	loans, err := Core.Store.LoansByPlayer(dto.Player_id)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	for i := range loans {
		if loans[i].Id != dto.Loan_id {
			continue
		}
		result := Core.Bank.RepayLoan(&loans[i], dto.Amount, gs.Lap)
		return c.JSON(result)
	}
	return c.JSON(fiber.Map{"success": false, "message": "loan not found"})
}

// ListLoans returns the player's open loans.
func ListLoans(c *fiber.Ctx) error {
	if Core == nil {
		return coreUnavailable(c)
	}
	playerID := c.Query("player_id")
	loans, err := Core.Store.LoansByPlayer(playerID)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	return c.JSON(loans)
}
