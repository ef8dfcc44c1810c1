package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/pkg/gameerr"
)

func TestInTxCommitsOnSuccess(t *testing.T) {
	st := NewMemStore()
	err := st.InTx(func(tx Store) error {
		if err := tx.InsertPlayer(&models.Player{Id: "alice", Game_id: "g1", Balance: 100}); err != nil {
			return err
		}
		return tx.SaveGameState(&models.GameState{Game_id: "g1", EconomicPhase: models.PhaseNormal})
	})
	require.NoError(t, err)

	p, err := st.GetPlayer("alice")
	require.NoError(t, err)
	assert.Equal(t, 100, p.Balance)
}

func TestInTxRollsBackOnError(t *testing.T) {
	st := NewMemStore()
	require.NoError(t, st.InsertPlayer(&models.Player{Id: "alice", Game_id: "g1", Balance: 100}))

	boom := errors.New("midway failure")
	err := st.InTx(func(tx Store) error {
		p, err := tx.GetPlayer("alice")
		if err != nil {
			return err
		}
		p.Balance = 0
		if err := tx.SavePlayer(p); err != nil {
			return err
		}
		if err := tx.InsertTransaction(&models.Transaction{Id: "t1", Game_id: "g1", Amount: 100}); err != nil {
			return err
		}
		return boom
	})
	assert.Equal(t, boom, err)

	p, err := st.GetPlayer("alice")
	require.NoError(t, err)
	assert.Equal(t, 100, p.Balance, "debit rolled back")

	txs, err := st.TransactionsByGame("g1")
	require.NoError(t, err)
	assert.Empty(t, txs, "ledger row rolled back")
}

func TestGetMissingRowsReturnNotFound(t *testing.T) {
	st := NewMemStore()
	_, err := st.GetGame("nope")
	assert.Equal(t, gameerr.ErrNotFound, err)
	_, err = st.GetPlayer("nope")
	assert.Equal(t, gameerr.ErrNotFound, err)
	_, err = st.PropertyByPosition("g1", 3)
	assert.Equal(t, gameerr.ErrNotFound, err)
}

func TestCopiesAreIsolated(t *testing.T) {
	st := NewMemStore()
	require.NoError(t, st.SaveProperty(&models.Property{
		Id: "p1", Game_id: "g1", Position: 3, RentSchedule: []int{4, 20, 60},
	}))

	p, err := st.GetProperty("p1")
	require.NoError(t, err)
	p.RentSchedule[0] = 999
	p.OwnerId = "alice"

	fresh, err := st.GetProperty("p1")
	require.NoError(t, err)
	assert.Equal(t, 4, fresh.RentSchedule[0], "mutating a returned copy never leaks back")
	assert.Empty(t, fresh.OwnerId)
}
