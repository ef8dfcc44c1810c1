// Package engine is the turn resolver: dice roll, movement, landing dispatch
// and expected-action bookkeeping. One resolution at a time per game; every
// landing step commits through a unit of work.
package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/pkg/gameerr"
	"github.com/boardwalk-games/boardwalk-backend/platform/bank"
	"github.com/boardwalk-games/boardwalk-backend/platform/board"
	"github.com/boardwalk-games/boardwalk-backend/platform/config"
	"github.com/boardwalk-games/boardwalk-backend/platform/ledger"
	"github.com/boardwalk-games/boardwalk-backend/platform/store"
)

type Engine struct {
	Store    store.Store
	Bank     *bank.Bank
	Ledger   *ledger.Ledger
	Auctions *bank.AuctionHouse
	Cfg      config.Config
	Rand     *rand.Rand

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(st store.Store, cfg config.Config) *Engine {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := bank.New(st)
	auctions := bank.NewAuctionHouse()
	l := ledger.New(st, b, r)
	l.FloorFrac = cfg.MinPriceFloorFrac
	l.HasLien = func(propertyID string) bool {
		return auctions.OpenForProperty(propertyID) != nil
	}
	return &Engine{
		Store:    st,
		Bank:     b,
		Ledger:   l,
		Auctions: auctions,
		Cfg:      cfg,
		Rand:     r,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockGame serializes turn resolution per game. Different games never
// contend.
func (e *Engine) lockGame(gameID string) func() {
	e.mu.Lock()
	l, ok := e.locks[gameID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[gameID] = l
	}
	e.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (e *Engine) rollDice() (int, int) {
	return e.Rand.Intn(6) + 1, e.Rand.Intn(6) + 1
}

// loadTurnState fetches the state and player a resolution works on.
func (e *Engine) loadTurnState(gameID, playerID string) (*models.GameState, *models.Player, error) {
	gs, err := e.Store.GetGameState(gameID)
	if err != nil {
		return nil, nil, gameerr.ErrNotFound
	}
	player, err := e.Store.GetPlayer(playerID)
	if err != nil {
		return nil, nil, gameerr.ErrNotFound
	}
	return gs, player, nil
}

// SendToJail relocates a player to the jail space and flags them. The doubles
// counter always resets on the way in.
func (e *Engine) SendToJail(playerID string) error {
	player, err := e.Store.GetPlayer(playerID)
	if err != nil {
		return gameerr.ErrNotFound
	}
	player.Pos = board.JailPos
	player.InJail = true
	player.JailTurns = 0
	player.ConsecutiveDoubles = 0
	return e.Store.SavePlayer(player)
}
