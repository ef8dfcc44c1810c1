package controllers

import (
	log "github.com/sirupsen/logrus"

	"github.com/gofiber/fiber/v2"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/pkg"
	"github.com/boardwalk-games/boardwalk-backend/platform/bots"
	"github.com/boardwalk-games/boardwalk-backend/platform/database"
	"github.com/boardwalk-games/boardwalk-backend/platform/engine"
)

// Core holds the shared engine and bot runner; wired once from main. The
// per-game locks and the auction house live inside, so there is exactly one.
var Core *engine.Engine

// BotRunner drives bot turns; wired alongside Core.
var BotRunner *bots.Runner

// InitCore installs the shared game core used by controllers and sockets.
func InitCore(eng *engine.Engine) {
	Core = eng
	BotRunner = bots.NewRunner(eng)
}

func CreateGame(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	gameCreateDto := new(models.GameCreateDto)
	if err := c.BodyParser(gameCreateDto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	game := &models.Game{
		Id:     pkg.RandString(8),
		Name:   gameCreateDto.Name,
		Status: "open",
		Type:   gameCreateDto.Type,
	}

	_, err := db.Model(game).Insert()
	if err != nil {
		log.WithError(err).Error("failed creating game")
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.JSON(fiber.Map{"id": game.Id})
}

func GetAllAvailGames(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	var games []models.Game
	err := db.Model(&games).Where("status = ?", "open").Select()
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.JSON(games)
}

func FindAvailGame(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	game := new(models.Game)
	err := db.Model(game).Where("status = ?", "open").Limit(1).Select()
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "no open games"})
	}
	return c.JSON(fiber.Map{"success": true, "id": game.Id})
}

func VerifyGame(c *fiber.Ctx) error {
	db := database.PostgreSQLConnection()
	defer db.Close()

	verifyGameDto := new(models.VerifyGameDto)
	if err := c.QueryParser(verifyGameDto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	game := &models.Game{Id: verifyGameDto.Code}

	err := db.Model(game).WherePK().Select()
	if err != nil {
		return c.JSON(fiber.Map{"status": false})
	}
	return c.JSON(fiber.Map{"status": true})
}

type debtActionDto struct {
	Game_id   string `json:"game_id"`
	Player_id string `json:"player_id"`
}

// SettleGameDebt pays off a pending liquidation demand once the player has
// raised enough cash through mortgaging or loans.
func SettleGameDebt(c *fiber.Ctx) error {
	if Core == nil {
		return coreUnavailable(c)
	}
	dto := new(debtActionDto)
	if err := c.BodyParser(dto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	return c.JSON(Core.SettleDebt(dto.Game_id, dto.Player_id))
}

// DeclareBankruptcy folds the player when liquidation cannot cover the debt.
func DeclareBankruptcy(c *fiber.Ctx) error {
	if Core == nil {
		return coreUnavailable(c)
	}
	dto := new(debtActionDto)
	if err := c.BodyParser(dto); err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	return c.JSON(Core.DeclareBankruptcy(dto.Game_id, dto.Player_id))
}
