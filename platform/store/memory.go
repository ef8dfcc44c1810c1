package store

import (
	"sort"
	"sync"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/pkg/gameerr"
)

// MemStore keeps everything in maps. Used by tests and local single-process
// games; InTx snapshots the maps so a failed step leaves no partial state.
type MemStore struct {
	mu           sync.Mutex
	games        map[string]models.Game
	states       map[string]models.GameState
	players      map[string]models.Player
	properties   map[string]models.Property
	transactions []models.Transaction
	loans        map[string]models.Loan
}

func NewMemStore() *MemStore {
	return &MemStore{
		games:      make(map[string]models.Game),
		states:     make(map[string]models.GameState),
		players:    make(map[string]models.Player),
		properties: make(map[string]models.Property),
		loans:      make(map[string]models.Loan),
	}
}

func (s *MemStore) GetGame(id string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return nil, gameerr.ErrNotFound
	}
	return &game, nil
}

func (s *MemStore) SaveGame(game *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.Id] = *game
	return nil
}

func (s *MemStore) GetGameState(gameID string) (*models.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.states[gameID]
	if !ok {
		return nil, gameerr.ErrNotFound
	}
	copied := gs
	copied.ActiveEffects = append([]models.ScheduledEffect(nil), gs.ActiveEffects...)
	return &copied, nil
}

func (s *MemStore) SaveGameState(gs *models.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *gs
	copied.ActiveEffects = append([]models.ScheduledEffect(nil), gs.ActiveEffects...)
	s.states[gs.Game_id] = copied
	return nil
}

func (s *MemStore) GetPlayer(id string) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[id]
	if !ok {
		return nil, gameerr.ErrNotFound
	}
	return &player, nil
}

func (s *MemStore) SavePlayer(player *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[player.Id]; !ok {
		return gameerr.ErrNotFound
	}
	s.players[player.Id] = *player
	return nil
}

func (s *MemStore) InsertPlayer(player *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.Id] = *player
	return nil
}

func (s *MemStore) PlayersByGame(gameID string) ([]models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var players []models.Player
	for _, p := range s.players {
		if p.Game_id == gameID {
			players = append(players, p)
		}
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Id < players[j].Id })
	return players, nil
}

func (s *MemStore) GetProperty(id string) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	property, ok := s.properties[id]
	if !ok {
		return nil, gameerr.ErrNotFound
	}
	copied := property
	copied.RentSchedule = append([]int(nil), property.RentSchedule...)
	return &copied, nil
}

func (s *MemStore) PropertyByPosition(gameID string, pos int) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.properties {
		if p.Game_id == gameID && p.Position == pos {
			copied := p
			copied.RentSchedule = append([]int(nil), p.RentSchedule...)
			return &copied, nil
		}
	}
	return nil, gameerr.ErrNotFound
}

func (s *MemStore) SaveProperty(property *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *property
	copied.RentSchedule = append([]int(nil), property.RentSchedule...)
	s.properties[property.Id] = copied
	return nil
}

func (s *MemStore) InsertProperties(properties []models.Property) error {
	for i := range properties {
		if err := s.SaveProperty(&properties[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemStore) PropertiesByGame(gameID string) ([]models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var properties []models.Property
	for _, p := range s.properties {
		if p.Game_id == gameID {
			copied := p
			copied.RentSchedule = append([]int(nil), p.RentSchedule...)
			properties = append(properties, copied)
		}
	}
	sort.Slice(properties, func(i, j int) bool { return properties[i].Position < properties[j].Position })
	return properties, nil
}

func (s *MemStore) InsertTransaction(tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, *tx)
	return nil
}

func (s *MemStore) TransactionsByGame(gameID string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var txs []models.Transaction
	for _, tx := range s.transactions {
		if tx.Game_id == gameID {
			txs = append(txs, tx)
		}
	}
	return txs, nil
}

func (s *MemStore) SaveLoan(loan *models.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loans[loan.Id] = *loan
	return nil
}

func (s *MemStore) LoansByPlayer(playerID string) ([]models.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var loans []models.Loan
	for _, l := range s.loans {
		if l.Player_id == playerID && l.Active {
			loans = append(loans, l)
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].Id < loans[j].Id })
	return loans, nil
}

// InTx snapshots all maps and restores them if fn fails.
func (s *MemStore) InTx(fn func(Store) error) error {
	snapshot := s.clone()
	if err := fn(s); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type memSnapshot struct {
	games        map[string]models.Game
	states       map[string]models.GameState
	players      map[string]models.Player
	properties   map[string]models.Property
	transactions []models.Transaction
	loans        map[string]models.Loan
}

func (s *MemStore) clone() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		games:        make(map[string]models.Game, len(s.games)),
		states:       make(map[string]models.GameState, len(s.states)),
		players:      make(map[string]models.Player, len(s.players)),
		properties:   make(map[string]models.Property, len(s.properties)),
		transactions: append([]models.Transaction(nil), s.transactions...),
		loans:        make(map[string]models.Loan, len(s.loans)),
	}
	for k, v := range s.games {
		snap.games[k] = v
	}
	for k, v := range s.states {
		v.ActiveEffects = append([]models.ScheduledEffect(nil), v.ActiveEffects...)
		snap.states[k] = v
	}
	for k, v := range s.players {
		snap.players[k] = v
	}
	for k, v := range s.properties {
		v.RentSchedule = append([]int(nil), v.RentSchedule...)
		snap.properties[k] = v
	}
	for k, v := range s.loans {
		snap.loans[k] = v
	}
	return snap
}

func (s *MemStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games = snap.games
	s.states = snap.states
	s.players = snap.players
	s.properties = snap.properties
	s.transactions = snap.transactions
	s.loans = snap.loans
}
