// Package store abstracts persistence behind one interface so the core can be
// exercised against Postgres in production and in memory in tests. Multi-step
// turn mutations run inside InTx; any error rolls the step back.
package store

import (
	"github.com/boardwalk-games/boardwalk-backend/app/models"
)

type Store interface {
	GetGame(id string) (*models.Game, error)
	SaveGame(game *models.Game) error

	GetGameState(gameID string) (*models.GameState, error)
	SaveGameState(gs *models.GameState) error

	GetPlayer(id string) (*models.Player, error)
	SavePlayer(player *models.Player) error
	InsertPlayer(player *models.Player) error
	PlayersByGame(gameID string) ([]models.Player, error)

	GetProperty(id string) (*models.Property, error)
	PropertyByPosition(gameID string, pos int) (*models.Property, error)
	SaveProperty(property *models.Property) error
	InsertProperties(properties []models.Property) error
	PropertiesByGame(gameID string) ([]models.Property, error)

	InsertTransaction(tx *models.Transaction) error
	TransactionsByGame(gameID string) ([]models.Transaction, error)

	SaveLoan(loan *models.Loan) error
	LoansByPlayer(playerID string) ([]models.Loan, error)

	// InTx runs fn as one unit of work. On error every mutation made through
	// the passed Store is rolled back.
	InTx(fn func(Store) error) error
}
