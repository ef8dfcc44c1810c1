package routes

import (
	"github.com/boardwalk-games/boardwalk-backend/app/controllers"
	"github.com/gofiber/fiber/v2"
)

func GameRoutes(a *fiber.App) {
	route := a.Group("/game")
	route.Post("/create", controllers.CreateGame)
	route.Get("/verify", controllers.VerifyGame)
	route.Get("/all", controllers.GetAllAvailGames)
	route.Get("/find", controllers.FindAvailGame)
	route.Post("/settle-debt", controllers.SettleGameDebt)
	route.Post("/bankrupt", controllers.DeclareBankruptcy)
}

func PropertyRoutes(a *fiber.App) {
	route := a.Group("/property")
	route.Post("/improve", controllers.ImproveProperty)
	route.Post("/approval", controllers.RequestCommunityApproval)
	route.Post("/study", controllers.CommissionEnvironmentalStudy)
	route.Post("/mortgage", controllers.MortgageProperty)
	route.Post("/unmortgage", controllers.UnmortgageProperty)

	a.Post("/bot/turn", controllers.ExecuteBotTurn)

	loans := a.Group("/bank")
	loans.Post("/loan", controllers.RequestLoan)
	loans.Post("/loan/repay", controllers.RepayLoan)
	loans.Get("/loans", controllers.ListLoans)
}
