package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/joho/godotenv/autoload"
	log "github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk-backend/app/controllers"
	"github.com/boardwalk-games/boardwalk-backend/pkg/routes"
	"github.com/boardwalk-games/boardwalk-backend/platform/config"
	"github.com/boardwalk-games/boardwalk-backend/platform/database"
	"github.com/boardwalk-games/boardwalk-backend/platform/engine"
	"github.com/boardwalk-games/boardwalk-backend/platform/logging"
	socket "github.com/boardwalk-games/boardwalk-backend/platform/sockets"
	"github.com/boardwalk-games/boardwalk-backend/platform/store"
)

func main() {
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	db := database.PostgreSQLConnection()
	eng := engine.New(store.NewPgStore(db), cfg)
	controllers.InitCore(eng)

	app := fiber.New()

	app.Use(cors.New())
	routes.AuthRoutes(app)
	routes.GameRoutes(app)
	routes.PropertyRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	app.Get("/user/cur", controllers.Cur)
	go socket.CreateSocketIOServer(eng, cfg)
	app.Listen(cfg.HTTPAddr)
}
