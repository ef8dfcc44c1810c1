// Package queries keeps the live turn coordination in Redis: who holds the
// turn, whether they have rolled, and the join order. Durable game state
// lives in Postgres behind platform/store.
package queries

import (
	"fmt"

	"github.com/gomodule/redigo/redis"
	log "github.com/sirupsen/logrus"

	"github.com/boardwalk-games/boardwalk-backend/platform/cache"
)

func playerKey(gameID, playerID string) string {
	return fmt.Sprintf("%s.%s", gameID, playerID)
}

func orderKey(gameID string) string {
	return fmt.Sprintf("%s.order", gameID)
}

// IsUserTurn checks the per-game turn key.
func IsUserTurn(gameID string, playerID string, conn *redis.Conn) bool {
	val, err := cache.Get(gameID, conn)
	if err != nil {
		return false
	}
	return val == playerID
}

func HasRolledDice(gameID string, playerID string, conn *redis.Conn) bool {
	val, err := cache.HGET(playerKey(gameID, playerID), "hasRolled", conn)
	if err != nil {
		return false
	}
	return val == "true"
}

func SetRolledDice(gameID string, playerID string, conn *redis.Conn) {
	if err := cache.HSET(playerKey(gameID, playerID), "hasRolled", "true", conn); err != nil {
		log.WithError(err).Warn("failed marking dice rolled")
	}
}

func ResetRolledDice(gameID string, playerID string, conn *redis.Conn) {
	if err := cache.HSET(playerKey(gameID, playerID), "hasRolled", "false", conn); err != nil {
		log.WithError(err).Warn("failed resetting dice flag")
	}
}

// SeedTurnOrder stores the join order and hands the turn to the first player.
func SeedTurnOrder(gameID string, playerIDs []string, conn *redis.Conn) error {
	ids := make([]interface{}, 0, len(playerIDs))
	for _, id := range playerIDs {
		ids = append(ids, id)
		ResetRolledDice(gameID, id, conn)
	}
	if err := cache.RPUSH(orderKey(gameID), ids, conn); err != nil {
		return err
	}
	if len(playerIDs) > 0 {
		cache.Set(gameID, playerIDs[0], conn)
	}
	return nil
}

// SetTurn overwrites the turn key; used when the engine advances the turn.
func SetTurn(gameID string, playerID string, conn *redis.Conn) {
	cache.Set(gameID, playerID, conn)
}

// CleanUp drops every live key of a finished game.
func CleanUp(gameID string, conn *redis.Conn) {
	res, _ := cache.LGET(orderKey(gameID), conn)
	for _, id := range res {
		cache.Del(playerKey(gameID, string(id.([]byte))), conn)
	}
	cache.Del(gameID, conn)
	cache.Del(orderKey(gameID), conn)
}

// RemovePlayer drops one player's live keys and their order slot.
func RemovePlayer(gameID string, playerID string, conn *redis.Conn) {
	cache.Del(playerKey(gameID, playerID), conn)
	cache.LREM(orderKey(gameID), playerID, conn)
}
