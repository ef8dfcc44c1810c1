package bots

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/platform/config"
	"github.com/boardwalk-games/boardwalk-backend/platform/engine"
	"github.com/boardwalk-games/boardwalk-backend/platform/store"
)

func eventFixture(t *testing.T, strategies ...string) (*engine.Engine, *store.MemStore, *EventContext) {
	t.Helper()
	st := store.NewMemStore()
	eng := engine.New(st, config.Config{
		StartingBalance:   1500,
		GoSalary:          200,
		JailFine:          50,
		InitialPhase:      models.PhaseNormal,
		InitialInflation:  1.0,
		MinPriceFloorFrac: 0.55,
	})

	players := make([]models.Player, 0, len(strategies))
	for i, strategy := range strategies {
		players = append(players, models.Player{
			Id: "bot" + string(rune('1'+i)), Game_id: "g1",
			Username: "bot-" + strategy, IsBot: true,
			BotStrategy: strategy, Difficulty: Normal, CommunityStanding: 50,
		})
	}
	require.NoError(t, eng.StartGame("g1", players))

	gs, err := st.GetGameState("g1")
	require.NoError(t, err)
	actor, err := st.GetPlayer("bot1")
	require.NoError(t, err)

	return eng, st, &EventContext{
		Engine: eng,
		GameID: "g1",
		Actor:  actor,
		State:  gs,
		Rand:   rand.New(rand.NewSource(11)),
	}
}

func giveProperty(t *testing.T, st *store.MemStore, pos int, owner string) *models.Property {
	t.Helper()
	p, err := st.PropertyByPosition("g1", pos)
	require.NoError(t, err)
	p.OwnerId = owner
	require.NoError(t, st.SaveProperty(p))
	return p
}

func TestSelectEventAlwaysDrawsAValidKind(t *testing.T) {
	eng, st, ctx := eventFixture(t, Opportunistic, Aggressive)
	_ = eng
	giveProperty(t, st, 11, "bot1") // a pink holding makes trades plausible
	giveProperty(t, st, 13, "bot2")

	known := map[string]bool{
		EventTradeProposal:   true,
		EventPropertyAuction: true,
		EventMarketCrash:     true,
		EventEconomicBoom:    true,
		EventBotChallenge:    true,
		EventMarketTiming:    true,
	}
	for i := 0; i < 100; i++ {
		event := SelectEvent(ctx)
		require.NotNil(t, event)
		assert.True(t, known[event.Kind()], "unknown kind %s", event.Kind())
	}
}

func TestStrategyWeightsTiltTheDraw(t *testing.T) {
	_, _, ctx := eventFixture(t, Opportunistic, Aggressive)

	count := func(actorStrategy string, seed int64) int {
		ctx.Actor.BotStrategy = actorStrategy
		ctx.Rand = rand.New(rand.NewSource(seed))
		n := 0
		for i := 0; i < 400; i++ {
			if event := SelectEvent(ctx); event != nil && event.Kind() == EventMarketTiming {
				n++
			}
		}
		return n
	}

	// Opportunists treble the market-timing weight; across 400 draws the tilt
	// is far outside noise.
	assert.Greater(t, count(Opportunistic, 3), count(Aggressive, 3)+50)
}

func TestMarketShiftEventSchedulesAReversal(t *testing.T) {
	_, st, ctx := eventFixture(t, Aggressive, Conservative)

	event := newMarketCrash(ctx)
	result := event.Execute()
	require.True(t, result.Success, result.Message)

	gs, err := st.GetGameState("g1")
	require.NoError(t, err)
	require.Len(t, gs.ActiveEffects, 1)
	assert.Greater(t, gs.ActiveEffects[0].TurnsLeft, 0)

	properties, err := st.PropertiesByGame("g1")
	require.NoError(t, err)
	perturbed := 0
	for _, p := range properties {
		if p.DiscountPct > 0 {
			perturbed++
			assert.Less(t, p.CurrentPrice, p.BasePrice+1)
		}
	}
	assert.Greater(t, perturbed, 0)
}

func TestMarketShiftRefusedWhenEffectsSaturated(t *testing.T) {
	_, st, ctx := eventFixture(t, Aggressive, Conservative)

	gs, err := st.GetGameState("g1")
	require.NoError(t, err)
	gs.ActiveEffects = []models.ScheduledEffect{
		{Id: "e1", Kind: "crash", Groups: []string{"red"}, TurnsLeft: 2},
		{Id: "e2", Kind: "boom", Groups: []string{"pink"}, TurnsLeft: 3},
	}
	require.NoError(t, st.SaveGameState(gs))
	ctx.State = gs

	assert.False(t, validMarketShift(ctx))

	result := newMarketCrash(ctx).Execute()
	assert.False(t, result.Success)
}

func TestChallengeNeedsASolventRival(t *testing.T) {
	_, _, ctx := eventFixture(t, Shark)
	assert.False(t, validBotChallenge(ctx), "no rival, no challenge")
}

func TestChallengeMovesTheWagerWithoutCreatingMoney(t *testing.T) {
	_, st, ctx := eventFixture(t, Shark, Aggressive)
	require.True(t, validBotChallenge(ctx))

	result := newBotChallenge(ctx).Execute()
	require.True(t, result.Success, result.Message)

	a, _ := st.GetPlayer("bot1")
	b, _ := st.GetPlayer("bot2")
	assert.Equal(t, 3000, a.Balance+b.Balance, "wager only changes hands")
	assert.NotEqual(t, a.Balance, b.Balance)
}

func TestTradeProposalToHumanIsProposalOnly(t *testing.T) {
	_, st, ctx := eventFixture(t, Strategic)
	require.NoError(t, st.InsertPlayer(&models.Player{
		Id: "human", Game_id: "g1", User_id: "u1", Username: "ada", Balance: 1500,
	}))
	giveProperty(t, st, 11, "bot1")
	mine := giveProperty(t, st, 6, "bot1")
	theirs := giveProperty(t, st, 13, "human") // pink, completes bot1's group interest

	require.True(t, validTradeProposal(ctx))
	result := newTradeProposal(ctx).Execute()
	require.True(t, result.Success, result.Message)
	assert.Equal(t, "human", result.Detail["to_player"])

	// Nothing moved yet; the human answers over the wire.
	assert.Equal(t, "human", giveOwner(t, st, theirs.Id))
	assert.Equal(t, "bot1", giveOwner(t, st, mine.Id))
}

func giveOwner(t *testing.T, st *store.MemStore, id string) string {
	t.Helper()
	p, err := st.GetProperty(id)
	require.NoError(t, err)
	return p.OwnerId
}

func TestMarketTimingSnapsUpDiscountedLot(t *testing.T) {
	eng, st, ctx := eventFixture(t, Opportunistic, Conservative)
	require.NoError(t, eng.Ledger.ApplyMarketCrash("g1", []string{"orange"}, 30, 5))

	require.True(t, validMarketTiming(ctx))
	result := newMarketTiming(ctx).Execute()
	require.True(t, result.Success, result.Message)

	properties, err := st.PropertiesByGame("g1")
	require.NoError(t, err)
	bought := 0
	for _, p := range properties {
		if p.OwnerId == "bot1" {
			bought++
			assert.Greater(t, p.DiscountPct, 0.0, "only discounted lots get snapped up")
		}
	}
	assert.Equal(t, 1, bought)

	actor, _ := st.GetPlayer("bot1")
	assert.Less(t, actor.Balance, 1500)
}
