package store

import (
	"context"
	"errors"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/pkg/gameerr"
)

// PgStore is the Postgres-backed Store. Inside InTx the same type wraps the
// open *pg.Tx, so callers never see the difference.
type PgStore struct {
	root *pg.DB
	db   orm.DB
}

func NewPgStore(db *pg.DB) *PgStore {
	return &PgStore{root: db, db: db}
}

func wrapNotFound(err error) error {
	if errors.Is(err, pg.ErrNoRows) {
		return gameerr.ErrNotFound
	}
	return err
}

func (s *PgStore) GetGame(id string) (*models.Game, error) {
	game := &models.Game{Id: id}
	if err := s.db.Model(game).WherePK().Select(); err != nil {
		return nil, wrapNotFound(err)
	}
	return game, nil
}

func (s *PgStore) SaveGame(game *models.Game) error {
	_, err := s.db.Model(game).WherePK().Update()
	return err
}

func (s *PgStore) GetGameState(gameID string) (*models.GameState, error) {
	gs := &models.GameState{Game_id: gameID}
	if err := s.db.Model(gs).WherePK().Select(); err != nil {
		return nil, wrapNotFound(err)
	}
	return gs, nil
}

func (s *PgStore) SaveGameState(gs *models.GameState) error {
	_, err := s.db.Model(gs).OnConflict("(game_id) DO UPDATE").Insert()
	return err
}

func (s *PgStore) GetPlayer(id string) (*models.Player, error) {
	player := &models.Player{Id: id}
	if err := s.db.Model(player).WherePK().Select(); err != nil {
		return nil, wrapNotFound(err)
	}
	return player, nil
}

func (s *PgStore) SavePlayer(player *models.Player) error {
	_, err := s.db.Model(player).WherePK().Update()
	return err
}

func (s *PgStore) InsertPlayer(player *models.Player) error {
	_, err := s.db.Model(player).Insert()
	return err
}

func (s *PgStore) PlayersByGame(gameID string) ([]models.Player, error) {
	var players []models.Player
	err := s.db.Model(&players).Where("game_id = ?", gameID).Order("id").Select()
	return players, err
}

func (s *PgStore) GetProperty(id string) (*models.Property, error) {
	property := &models.Property{Id: id}
	if err := s.db.Model(property).WherePK().Select(); err != nil {
		return nil, wrapNotFound(err)
	}
	return property, nil
}

func (s *PgStore) PropertyByPosition(gameID string, pos int) (*models.Property, error) {
	property := new(models.Property)
	err := s.db.Model(property).Where("game_id = ? and position = ?", gameID, pos).Select()
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return property, nil
}

func (s *PgStore) SaveProperty(property *models.Property) error {
	_, err := s.db.Model(property).WherePK().Update()
	return err
}

func (s *PgStore) InsertProperties(properties []models.Property) error {
	if len(properties) == 0 {
		return nil
	}
	_, err := s.db.Model(&properties).Insert()
	return err
}

func (s *PgStore) PropertiesByGame(gameID string) ([]models.Property, error) {
	var properties []models.Property
	err := s.db.Model(&properties).Where("game_id = ?", gameID).Order("position").Select()
	return properties, err
}

func (s *PgStore) InsertTransaction(tx *models.Transaction) error {
	_, err := s.db.Model(tx).Insert()
	return err
}

func (s *PgStore) TransactionsByGame(gameID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.Model(&txs).Where("game_id = ?", gameID).Select()
	return txs, err
}

func (s *PgStore) SaveLoan(loan *models.Loan) error {
	_, err := s.db.Model(loan).OnConflict("(id) DO UPDATE").Insert()
	return err
}

func (s *PgStore) LoansByPlayer(playerID string) ([]models.Loan, error) {
	var loans []models.Loan
	err := s.db.Model(&loans).Where("player_id = ? and active = true", playerID).Select()
	return loans, err
}

func (s *PgStore) InTx(fn func(Store) error) error {
	if s.root == nil {
		// Already inside a transaction; nested steps join it.
		return fn(s)
	}
	return s.root.RunInTransaction(context.Background(), func(tx *pg.Tx) error {
		return fn(&PgStore{db: tx})
	})
}
