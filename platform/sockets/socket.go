package socket

import (
	"encoding/json"
	"net/http"

	"github.com/gomodule/redigo/redis"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/cors"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/pkg/gameerr"
	"github.com/boardwalk-games/boardwalk-backend/platform/bots"
	"github.com/boardwalk-games/boardwalk-backend/platform/cache"
	"github.com/boardwalk-games/boardwalk-backend/platform/config"
	"github.com/boardwalk-games/boardwalk-backend/platform/database"
	"github.com/boardwalk-games/boardwalk-backend/platform/engine"
	"github.com/boardwalk-games/boardwalk-backend/platform/queries"
)

// CreateSocketIOServer runs the realtime layer: rooms per game, the source
// of truth for turn flow stays in the engine; this file only validates turn
// ownership and broadcasts results.
func CreateSocketIOServer(eng *engine.Engine, cfg config.Config) {
	server, err := socketio.NewServer(nil)
	if err != nil {
		panic(err)
	}

	runner := bots.NewRunner(eng)

	pool := cache.CreateRedisPool()
	defer pool.Close()

	server.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext("")
		return nil
	})

	server.OnEvent("/", "join-game", func(s socketio.Conn, jsonStr string) {
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)

		gameID, ok := result["game_id"]
		if !ok {
			s.Emit("error-message", "game_id not passed")
			return
		}
		if _, err := eng.Store.GetGame(gameID); err != nil {
			s.Emit("error-message", "Invalid game")
			s.Emit("failed")
			return
		}
		userID, ok := result["user_id"]
		if !ok {
			s.Emit("error-message", "User not authenticated")
			s.Emit("failed")
			return
		}

		s.Join(gameID)
		server.BroadcastToRoom("/", gameID, "player-join", userID)
		s.Emit("joined-game", gameID)
	})

	server.OnEvent("/", "leave-game", func(s socketio.Conn, jsonStr string) {
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)

		s.Leave(result["game_id"])
		conn := pool.Get()
		defer conn.Close()
		queries.RemovePlayer(result["game_id"], result["user_id"], &conn)
		server.BroadcastToRoom("/", result["game_id"], "player-left", result["user_id"])
	})

	server.OnEvent("/", "start-game", func(s socketio.Conn, jsonStr string) {
		var req struct {
			GameID string              `json:"game_id"`
			Humans []map[string]string `json:"players"` // user_id, username
			Bots   []map[string]string `json:"bots"`    // strategy, difficulty
		}
		if err := json.Unmarshal([]byte(jsonStr), &req); err != nil {
			s.Emit("error-message", "malformed start request")
			return
		}
		if len(req.Humans)+len(req.Bots) < 2 {
			s.Emit("error-message", "Unable to start game: need at least two players")
			return
		}

		players := make([]models.Player, 0, len(req.Humans)+len(req.Bots))
		for _, h := range req.Humans {
			players = append(players, models.Player{
				Id:                uuid.NewV4().String(),
				Game_id:           req.GameID,
				User_id:           h["user_id"],
				Username:          h["username"],
				CommunityStanding: 50,
			})
		}
		allStrategies := bots.Strategies()
		for i, b := range req.Bots {
			strategy := b["strategy"]
			if strategy == "" {
				strategy = allStrategies[i%len(allStrategies)]
			}
			difficulty := b["difficulty"]
			if difficulty == "" {
				difficulty = bots.Normal
			}
			players = append(players, models.Player{
				Id:                uuid.NewV4().String(),
				Game_id:           req.GameID,
				Username:          "bot-" + strategy,
				IsBot:             true,
				BotStrategy:       strategy,
				Difficulty:        difficulty,
				CommunityStanding: 50,
			})
		}

		if err := eng.StartGame(req.GameID, players); err != nil {
			log.WithError(err).Error("failed starting game")
			s.Emit("error-message", "Unable to start game")
			return
		}

		db := database.PostgreSQLConnection()
		game := &models.Game{Id: req.GameID}
		if _, err := db.Model(game).WherePK().Set("status = ?", "in progress").Update(); err != nil {
			log.WithError(err).Error("failed flagging game in progress")
		}
		db.Close()

		conn := pool.Get()
		defer conn.Close()
		ids := make([]string, 0, len(players))
		for _, p := range players {
			ids = append(ids, p.Id)
		}
		if err := queries.SeedTurnOrder(req.GameID, ids, &conn); err != nil {
			log.WithError(err).Error("failed seeding turn order")
		}

		payload, _ := json.Marshal(players)
		server.BroadcastToRoom("/", req.GameID, "game-start", string(payload))
		server.BroadcastToRoom("/", req.GameID, "change-turn", ids[0])
	})

	server.OnEvent("/", "roll-dice", func(s socketio.Conn, jsonStr string) {
		conn := pool.Get()
		defer conn.Close()
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)
		gameID, playerID := result["game_id"], result["player_id"]

		if !queries.IsUserTurn(gameID, playerID, &conn) {
			s.Emit("error-message", gameerr.ErrNotYourTurn.Error())
			return
		}
		if queries.HasRolledDice(gameID, playerID, &conn) {
			s.Emit("error-message", "You have already rolled the dice")
			return
		}

		turn, err := eng.ResolveTurn(gameID, playerID)
		if err != nil {
			s.Emit("error-message", err.Error())
			return
		}
		if turn.NextAction != engine.NextRollAgain {
			queries.SetRolledDice(gameID, playerID, &conn)
		}
		payload, _ := json.Marshal(turn)
		server.BroadcastToRoom("/", gameID, "turn-result", string(payload))
	})

	server.OnEvent("/", "request-buy", func(s socketio.Conn, jsonStr string) {
		conn := pool.Get()
		defer conn.Close()
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)

		if !queries.IsUserTurn(result["game_id"], result["player_id"], &conn) {
			s.Emit("error-message", gameerr.ErrNotYourTurn.Error())
			return
		}
		res := eng.BuyProperty(result["game_id"], result["player_id"])
		if !res.Success {
			s.Emit("error-message", res.Message)
			return
		}
		server.BroadcastToRoom("/", result["game_id"], "property-bought", result["player_id"])
	})

	server.OnEvent("/", "decline-buy", func(s socketio.Conn, jsonStr string) {
		conn := pool.Get()
		defer conn.Close()
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)

		if !queries.IsUserTurn(result["game_id"], result["player_id"], &conn) {
			s.Emit("error-message", gameerr.ErrNotYourTurn.Error())
			return
		}
		auction, res := eng.DeclineBuy(result["game_id"], result["player_id"])
		if !res.Success {
			s.Emit("error-message", res.Message)
			return
		}
		payload, _ := json.Marshal(auction)
		server.BroadcastToRoom("/", result["game_id"], "auction-open", string(payload))
	})

	server.OnEvent("/", "place-bid", func(s socketio.Conn, jsonStr string) {
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)
		amount := 0
		json.Unmarshal([]byte(result["amount"]), &amount)

		if err := eng.Auctions.PlaceBid(result["auction_id"], result["player_id"], amount); err != nil {
			s.Emit("error-message", err.Error())
			return
		}
		server.BroadcastToRoom("/", result["game_id"], "bid-placed", jsonStr)
	})

	server.OnEvent("/", "settle-auction", func(s socketio.Conn, jsonStr string) {
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)

		gs, err := eng.Store.GetGameState(result["game_id"])
		if err != nil {
			s.Emit("error-message", "game not found")
			return
		}
		auction, err := eng.Auctions.Settle(result["auction_id"], eng.Bank, gs.Lap)
		if err != nil {
			s.Emit("error-message", err.Error())
			return
		}
		payload, _ := json.Marshal(auction)
		server.BroadcastToRoom("/", result["game_id"], "auction-settled", string(payload))
	})

	server.OnEvent("/", "pay-out-jail", func(s socketio.Conn, jsonStr string) {
		conn := pool.Get()
		defer conn.Close()
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)

		if !queries.IsUserTurn(result["game_id"], result["player_id"], &conn) || queries.HasRolledDice(result["game_id"], result["player_id"], &conn) {
			s.Emit("error-message", "To pay out of jail you must not have thrown the dice and it must be your turn")
			return
		}
		res := eng.PayOutOfJail(result["game_id"], result["player_id"])
		if !res.Success {
			s.Emit("error-message", res.Message)
			return
		}
		server.BroadcastToRoom("/", result["game_id"], "jail-released", result["player_id"])
	})

	server.OnEvent("/", "buy-house", func(s socketio.Conn, jsonStr string) {
		conn := pool.Get()
		defer conn.Close()
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)

		if !queries.IsUserTurn(result["game_id"], result["player_id"], &conn) {
			s.Emit("error-message", "It must be your turn to perform this action")
			return
		}
		gs, err := eng.Store.GetGameState(result["game_id"])
		if err != nil {
			s.Emit("error-message", "game not found")
			return
		}
		improveResult := eng.Ledger.Improve(result["player_id"], result["property_id"], gs)
		payload, _ := json.Marshal(improveResult)
		if !improveResult.Success {
			s.Emit("error-message", improveResult.Reason)
			return
		}
		server.BroadcastToRoom("/", result["game_id"], "house-built", string(payload))
	})

	server.OnEvent("/", "settle-debt", func(s socketio.Conn, jsonStr string) {
		conn := pool.Get()
		defer conn.Close()
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)

		if !queries.IsUserTurn(result["game_id"], result["player_id"], &conn) {
			s.Emit("error-message", gameerr.ErrNotYourTurn.Error())
			return
		}
		res := eng.SettleDebt(result["game_id"], result["player_id"])
		if !res.Success {
			s.Emit("error-message", res.Message)
			return
		}
		server.BroadcastToRoom("/", result["game_id"], "debt-settled", result["player_id"])
	})

	server.OnEvent("/", "mortgage-property", func(s socketio.Conn, jsonStr string) {
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)

		gs, err := eng.Store.GetGameState(result["game_id"])
		if err != nil {
			s.Emit("error-message", "game not found")
			return
		}
		if !eng.Ledger.Mortgage(result["player_id"], result["property_id"], gs.Lap) {
			s.Emit("error-message", "property cannot be mortgaged")
			return
		}
		server.BroadcastToRoom("/", result["game_id"], "property-mortgaged", result["property_id"])
	})

	server.OnEvent("/", "unmortgage-property", func(s socketio.Conn, jsonStr string) {
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)

		gs, err := eng.Store.GetGameState(result["game_id"])
		if err != nil {
			s.Emit("error-message", "game not found")
			return
		}
		if !eng.Ledger.Unmortgage(result["player_id"], result["property_id"], gs.Lap) {
			s.Emit("error-message", "property cannot be redeemed")
			return
		}
		server.BroadcastToRoom("/", result["game_id"], "property-redeemed", result["property_id"])
	})

	server.OnEvent("/", "declare-bankruptcy", func(s socketio.Conn, jsonStr string) {
		conn := pool.Get()
		defer conn.Close()
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)
		gameID, playerID := result["game_id"], result["player_id"]

		res := eng.DeclareBankruptcy(gameID, playerID)
		if !res.Success {
			s.Emit("error-message", res.Message)
			return
		}
		server.BroadcastToRoom("/", gameID, "player-bankrupt", playerID)
		queries.RemovePlayer(gameID, playerID, &conn)

		if finishGameIfOver(eng, server, gameID, &conn) {
			return
		}
		next, err := eng.AdvanceTurn(gameID, playerID)
		if err != nil || next == "" {
			return
		}
		queries.SetTurn(gameID, next, &conn)
		server.BroadcastToRoom("/", gameID, "change-turn", next)
		runBotTurns(eng, runner, server, gameID, next, &conn)
	})

	server.OnEvent("/", "end-turn", func(s socketio.Conn, jsonStr string) {
		conn := pool.Get()
		defer conn.Close()
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)
		gameID, playerID := result["game_id"], result["player_id"]

		if !queries.IsUserTurn(gameID, playerID, &conn) {
			s.Emit("error-message", gameerr.ErrNotYourTurn.Error())
			return
		}
		if !queries.HasRolledDice(gameID, playerID, &conn) {
			s.Emit("error-message", "You must roll the dice first!")
			return
		}

		next, err := eng.AdvanceTurn(gameID, playerID)
		if err != nil {
			s.Emit("error-message", err.Error())
			return
		}
		queries.ResetRolledDice(gameID, playerID, &conn)
		queries.SetTurn(gameID, next, &conn)
		server.BroadcastToRoom("/", gameID, "change-turn", next)

		runBotTurns(eng, runner, server, gameID, next, &conn)
	})

	server.OnEvent("/", "bot-turn", func(s socketio.Conn, jsonStr string) {
		conn := pool.Get()
		defer conn.Close()
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)
		runBotTurns(eng, runner, server, result["game_id"], result["player_id"], &conn)
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		log.WithError(e).Warn("socket error")
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		rooms := s.Rooms()
		for _, room := range rooms {
			server.BroadcastToRoom("/", room, "player-left")
		}
		s.LeaveAll()
	})

	go server.Serve()
	defer server.Close()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowCredentials: true,
	})

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", server)
	http.ListenAndServe(cfg.SocketAddr, c.Handler(mux))
}

// finishGameIfOver closes out a game once at most one solvent player remains:
// flags the row, drops the live Redis keys and announces the winner.
func finishGameIfOver(eng *engine.Engine, server *socketio.Server, gameID string, conn *redis.Conn) bool {
	players, err := eng.Store.PlayersByGame(gameID)
	if err != nil {
		return false
	}
	winner := ""
	solvent := 0
	for _, p := range players {
		if !p.Bankrupt {
			solvent++
			winner = p.Id
		}
	}
	if solvent > 1 {
		return false
	}

	db := database.PostgreSQLConnection()
	game := &models.Game{Id: gameID}
	if _, err := db.Model(game).WherePK().Set("status = ?", "finished").Update(); err != nil {
		log.WithError(err).Error("failed flagging game finished")
	}
	db.Close()

	queries.CleanUp(gameID, conn)
	server.BroadcastToRoom("/", gameID, "game-over", winner)
	return true
}

// runBotTurns plays through consecutive bot turns until the turn lands back on
// a human (or a bot turn fails). Bot turns run synchronously so broadcasts
// arrive in play order.
func runBotTurns(eng *engine.Engine, runner *bots.Runner, server *socketio.Server, gameID, playerID string, conn *redis.Conn) {
	current := playerID
	for i := 0; i < 16; i++ { // hard stop in case every seat is a bot
		player, err := eng.Store.GetPlayer(current)
		if err != nil || !player.IsBot || player.Bankrupt {
			return
		}
		report, err := runner.ExecuteBotTurn(gameID, current)
		if err != nil {
			log.WithError(err).WithField("player", current).Error("bot turn failed")
			return
		}
		payload, _ := json.Marshal(report)
		server.BroadcastToRoom("/", gameID, "bot-turn-result", string(payload))

		if report.Bankrupt && finishGameIfOver(eng, server, gameID, conn) {
			return
		}

		queries.ResetRolledDice(gameID, current, conn)
		queries.SetTurn(gameID, report.NextTurn, conn)
		server.BroadcastToRoom("/", gameID, "change-turn", report.NextTurn)
		if report.NextTurn == "" || report.NextTurn == current {
			return
		}
		current = report.NextTurn
	}
}
