package bots

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/pkg/gameerr"
)

func TestExecuteBotTurnCompletesAndAdvances(t *testing.T) {
	eng, st, _ := eventFixture(t, Strategic, Shark)
	eng.Cfg.BotEventChance = 0 // keep this turn to dice and decisions
	eng.Rand = rand.New(rand.NewSource(5))

	runner := NewRunner(eng)
	report, err := runner.ExecuteBotTurn("g1", "bot1")
	require.NoError(t, err)
	require.True(t, report.Success)
	require.NotEmpty(t, report.Rolls)
	assert.LessOrEqual(t, len(report.Rolls), 3, "third doubles ends the turn in jail")
	assert.Equal(t, "bot2", report.NextTurn)

	gs, err := st.GetGameState("g1")
	require.NoError(t, err)
	assert.Equal(t, "bot2", gs.CurrentTurn)
	assert.Empty(t, gs.ExpectedAction, "bots never leave a decision hanging")
}

func TestExecuteBotTurnInjectsEventWhenDue(t *testing.T) {
	eng, _, _ := eventFixture(t, Opportunistic, Aggressive)
	eng.Cfg.BotEventChance = 1.0
	eng.Rand = rand.New(rand.NewSource(9))

	report, err := NewRunner(eng).ExecuteBotTurn("g1", "bot1")
	require.NoError(t, err)
	require.NotNil(t, report.Event, "chance 1.0 always draws an event")
}

func TestExecuteBotTurnRejectsHumans(t *testing.T) {
	eng, st, _ := eventFixture(t, Strategic, Shark)
	require.NoError(t, st.InsertPlayer(&models.Player{
		Id: "human", Game_id: "g1", User_id: "u1", Balance: 1500,
	}))

	_, err := NewRunner(eng).ExecuteBotTurn("g1", "human")
	assert.Equal(t, gameerr.ErrInvalidState, err)
}

func TestLiquidateMortgagesUntilCovered(t *testing.T) {
	eng, st, _ := eventFixture(t, Strategic, Shark)
	runner := NewRunner(eng)

	giveProperty(t, st, 3, "bot1") // Baltic, mortgage value 30
	giveProperty(t, st, 6, "bot1") // Oriental, mortgage value 50
	bot1, err := st.GetPlayer("bot1")
	require.NoError(t, err)
	bot1.Balance = 20
	require.NoError(t, st.SavePlayer(bot1))

	gs, err := st.GetGameState("g1")
	require.NoError(t, err)
	gs.SetExpected(models.ActionManageAssets, map[string]string{"creditor": "bot2", "amount": "50"})
	require.NoError(t, st.SaveGameState(gs))

	report := &TurnReport{Success: true}
	runner.liquidate("g1", bot1, gs, report)

	bot1, _ = st.GetPlayer("bot1")
	assert.False(t, bot1.Bankrupt)
	assert.Equal(t, 0, bot1.Balance, "raised 30 on the mortgage, paid 50")

	bot2, _ := st.GetPlayer("bot2")
	assert.Equal(t, 1550, bot2.Balance)

	gs, _ = st.GetGameState("g1")
	assert.Empty(t, gs.ExpectedAction)

	baltic, _ := st.PropertyByPosition("g1", 3)
	assert.True(t, baltic.Mortgaged)
	oriental, _ := st.PropertyByPosition("g1", 6)
	assert.False(t, oriental.Mortgaged, "stops mortgaging once the debt is covered")
}

func TestLiquidateDeclaresBankruptcyWhenHopeless(t *testing.T) {
	eng, st, _ := eventFixture(t, Strategic, Shark)
	runner := NewRunner(eng)

	giveProperty(t, st, 3, "bot1") // Baltic, mortgage value 30: still hopeless
	bot1, err := st.GetPlayer("bot1")
	require.NoError(t, err)
	bot1.Balance = 10
	require.NoError(t, st.SavePlayer(bot1))

	gs, err := st.GetGameState("g1")
	require.NoError(t, err)
	gs.SetExpected(models.ActionManageAssets, map[string]string{"creditor": "bot2", "amount": "500"})
	require.NoError(t, st.SaveGameState(gs))

	report := &TurnReport{Success: true}
	runner.liquidate("g1", bot1, gs, report)

	bot1, _ = st.GetPlayer("bot1")
	assert.True(t, bot1.Bankrupt)
	assert.True(t, report.Bankrupt)
	gs, _ = st.GetGameState("g1")
	assert.Empty(t, gs.ExpectedAction, "bankruptcy clears the pending demand")

	txs, err := st.TransactionsByGame("g1")
	require.NoError(t, err)
	for _, tx := range txs {
		assert.NotEqual(t, models.TxMortgage, tx.Kind, "no pointless mortgaging on a hopeless debt")
	}
}

func TestLiquidateSettlesTaxUnderTaxKind(t *testing.T) {
	eng, st, _ := eventFixture(t, Strategic, Shark)
	runner := NewRunner(eng)

	giveProperty(t, st, 3, "bot1") // Baltic, mortgage value 30
	bot1, err := st.GetPlayer("bot1")
	require.NoError(t, err)
	bot1.Balance = 40
	require.NoError(t, st.SavePlayer(bot1))

	gs, err := st.GetGameState("g1")
	require.NoError(t, err)
	gs.SetExpected(models.ActionManageAssets, map[string]string{"amount": "60", "kind": "tax"})
	require.NoError(t, st.SaveGameState(gs))

	runner.liquidate("g1", bot1, gs, &TurnReport{Success: true})

	bot1, _ = st.GetPlayer("bot1")
	assert.Equal(t, 10, bot1.Balance) // 40 + 30 mortgage - 60 tax

	txs, err := st.TransactionsByGame("g1")
	require.NoError(t, err)
	last := txs[len(txs)-1]
	assert.Equal(t, models.TxTax, last.Kind, "the ledger records what was owed")
	assert.Equal(t, 60, last.Amount)
	assert.Empty(t, last.ToPlayer, "tax goes to the bank")
}

func TestLiquidateCoversJailFineAndReleases(t *testing.T) {
	eng, st, _ := eventFixture(t, Strategic, Shark)
	runner := NewRunner(eng)

	giveProperty(t, st, 6, "bot1") // mortgage value 50
	require.NoError(t, eng.SendToJail("bot1"))
	bot1, err := st.GetPlayer("bot1")
	require.NoError(t, err)
	bot1.Balance = 10
	require.NoError(t, st.SavePlayer(bot1))

	gs, err := st.GetGameState("g1")
	require.NoError(t, err)
	gs.SetExpected(models.ActionManageJailFine, map[string]string{"amount": "50"})
	require.NoError(t, st.SaveGameState(gs))

	runner.liquidate("g1", bot1, gs, &TurnReport{Success: true})

	bot1, _ = st.GetPlayer("bot1")
	assert.False(t, bot1.InJail, "paying the fine releases the bot")
	assert.Equal(t, 10, bot1.Balance) // 10 + 50 mortgage - 50 fine
}
