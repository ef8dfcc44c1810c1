package ledger

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
	"github.com/boardwalk-games/boardwalk-backend/platform/bank"
	"github.com/boardwalk-games/boardwalk-backend/platform/board"
	"github.com/boardwalk-games/boardwalk-backend/platform/store"
)

// fixedSource pins every draw so Intn(100) returns exactly v.
type fixedSource struct{ v int64 }

func (s fixedSource) Int63() int64 { return s.v << 32 }
func (s fixedSource) Seed(int64)   {}

func fixedRand(v int64) *rand.Rand { return rand.New(fixedSource{v: v}) }

func newFixture(t *testing.T) (*Ledger, *store.MemStore, *models.GameState) {
	t.Helper()
	st := store.NewMemStore()
	require.NoError(t, st.InsertProperties(board.SeedProperties("g1")))
	require.NoError(t, st.InsertPlayer(&models.Player{
		Id: "alice", Game_id: "g1", Balance: 5000, CommunityStanding: 50,
	}))
	gs := &models.GameState{
		Game_id:         "g1",
		EconomicPhase:   models.PhaseNormal,
		InflationFactor: 1.0,
	}
	require.NoError(t, st.SaveGameState(gs))
	l := New(st, bank.New(st), fixedRand(0))
	return l, st, gs
}

func ownGroup(t *testing.T, st *store.MemStore, group, owner string) {
	t.Helper()
	properties, err := st.PropertiesByGame("g1")
	require.NoError(t, err)
	for i := range properties {
		if properties[i].Group == group {
			properties[i].OwnerId = owner
			require.NoError(t, st.SaveProperty(&properties[i]))
		}
	}
}

func propAt(t *testing.T, st *store.MemStore, pos int) *models.Property {
	t.Helper()
	p, err := st.PropertyByPosition("g1", pos)
	require.NoError(t, err)
	return p
}

func TestImproveCostScalesWithPhaseAndInflation(t *testing.T) {
	_, st, gs := newFixture(t)
	stJames := propAt(t, st, 16) // orange, base 180, modifier 1.0

	assert.Equal(t, 90, ImproveCost(stJames, gs))

	gs.EconomicPhase = models.PhaseBoom
	assert.Equal(t, 113, ImproveCost(stJames, gs))

	gs.EconomicPhase = models.PhaseRecession
	assert.Equal(t, 77, ImproveCost(stJames, gs))

	gs.EconomicPhase = models.PhaseNormal
	gs.InflationFactor = 1.1
	assert.Equal(t, 99, ImproveCost(stJames, gs))
}

func TestImproveCostRisesWithLevel(t *testing.T) {
	_, st, gs := newFixture(t)
	stJames := propAt(t, st, 16)

	prev := 0
	for level := 0; level < 4; level++ {
		stJames.DevelopmentLevel = level
		cost := ImproveCost(stJames, gs)
		assert.Greater(t, cost, prev, "level %d cost", level+1)
		prev = cost
	}
}

func TestImproveRequiresMonopoly(t *testing.T) {
	l, st, gs := newFixture(t)
	stJames := propAt(t, st, 16)
	stJames.OwnerId = "alice"
	require.NoError(t, st.SaveProperty(stJames))

	result := l.Improve("alice", stJames.Id, gs)
	assert.False(t, result.Success)
	assert.Contains(t, result.Reason, "full group ownership")
}

func TestImproveChargesOwner(t *testing.T) {
	l, st, gs := newFixture(t)
	ownGroup(t, st, "orange", "alice")
	stJames := propAt(t, st, 16)

	result := l.Improve("alice", stJames.Id, gs)
	require.True(t, result.Success, result.Reason)
	assert.Equal(t, 1, result.Level)
	assert.Equal(t, 90, result.Cost)

	stJames = propAt(t, st, 16)
	assert.Equal(t, 1, stJames.DevelopmentLevel)
	assert.Equal(t, 225, stJames.CurrentPrice, "half the spend capitalizes into value")

	alice, err := st.GetPlayer("alice")
	require.NoError(t, err)
	assert.Equal(t, 4910, alice.Balance)
}

func TestImproveOnlyByOwner(t *testing.T) {
	l, st, gs := newFixture(t)
	ownGroup(t, st, "orange", "alice")
	stJames := propAt(t, st, 16)

	result := l.Improve("bob", stJames.Id, gs)
	assert.False(t, result.Success)
}

func TestRailroadsAndUtilitiesNeverDevelop(t *testing.T) {
	l, st, gs := newFixture(t)
	ownGroup(t, st, "railroad", "alice")
	reading := propAt(t, st, 5)

	ok, reason := l.CanImprove(reading, nil, gs)
	assert.False(t, ok)
	assert.Contains(t, reason, "cannot be developed")
}

func TestMortgagedPropertyCannotDevelop(t *testing.T) {
	l, st, gs := newFixture(t)
	ownGroup(t, st, "orange", "alice")
	stJames := propAt(t, st, 16)
	stJames.Mortgaged = true
	require.NoError(t, st.SaveProperty(stJames))

	snapshot, err := st.PropertiesByGame("g1")
	require.NoError(t, err)
	ok, reason := l.CanImprove(stJames, snapshot, gs)
	assert.False(t, ok)
	assert.Contains(t, reason, "mortgaged")
}

func TestLevelThreeNeedsCommunityApproval(t *testing.T) {
	l, st, gs := newFixture(t)
	ownGroup(t, st, "orange", "alice")
	stJames := propAt(t, st, 16)
	stJames.DevelopmentLevel = 2
	require.NoError(t, st.SaveProperty(stJames))

	snapshot, err := st.PropertiesByGame("g1")
	require.NoError(t, err)
	ok, reason := l.CanImprove(stJames, snapshot, gs)
	assert.False(t, ok)
	assert.Contains(t, reason, "community approval")

	stJames.CommunityApproved = true
	ok, _ = l.CanImprove(stJames, snapshot, gs)
	assert.True(t, ok)
}

func TestLevelFourInFloodZoneNeedsCurrentStudy(t *testing.T) {
	l, st, gs := newFixture(t)
	ownGroup(t, st, "darkblue", "alice")
	boardwalk := propAt(t, st, 39)
	boardwalk.DevelopmentLevel = 3
	boardwalk.CommunityApproved = true
	require.NoError(t, st.SaveProperty(boardwalk))
	snapshot, err := st.PropertiesByGame("g1")
	require.NoError(t, err)

	ok, reason := l.CanImprove(boardwalk, snapshot, gs)
	assert.False(t, ok)
	assert.Contains(t, reason, "environmental study")

	boardwalk.EnvStudyGranted = true
	boardwalk.EnvStudyExpiresLap = 6
	gs.Lap = 4
	ok, _ = l.CanImprove(boardwalk, snapshot, gs)
	assert.True(t, ok)

	gs.Lap = 7 // study lapsed
	ok, reason = l.CanImprove(boardwalk, snapshot, gs)
	assert.False(t, ok)
	assert.Contains(t, reason, "environmental study")
}

func TestZoningCapsDevelopment(t *testing.T) {
	l, st, gs := newFixture(t)
	ownGroup(t, st, "brown", "alice")
	baltic := propAt(t, st, 3)
	baltic.DevelopmentLevel = 3 // brown caps at 3
	baltic.CommunityApproved = true
	require.NoError(t, st.SaveProperty(baltic))
	snapshot, err := st.PropertiesByGame("g1")
	require.NoError(t, err)

	ok, reason := l.CanImprove(baltic, snapshot, gs)
	assert.False(t, ok)
	assert.Contains(t, reason, "maximum development")
}

func TestLienBlocksDevelopment(t *testing.T) {
	l, st, gs := newFixture(t)
	ownGroup(t, st, "orange", "alice")
	stJames := propAt(t, st, 16)
	l.HasLien = func(propertyID string) bool { return propertyID == stJames.Id }

	snapshot, err := st.PropertiesByGame("g1")
	require.NoError(t, err)
	ok, reason := l.CanImprove(stJames, snapshot, gs)
	assert.False(t, ok)
	assert.Contains(t, reason, "lien")
}

func TestMortgageRoundTrip(t *testing.T) {
	l, st, _ := newFixture(t)
	ownGroup(t, st, "orange", "alice")
	stJames := propAt(t, st, 16) // mortgage value 90

	require.True(t, l.Mortgage("alice", stJames.Id, 0))
	alice, _ := st.GetPlayer("alice")
	assert.Equal(t, 5090, alice.Balance)
	assert.True(t, propAt(t, st, 16).Mortgaged)

	// Redeeming costs the value plus 10%.
	require.True(t, l.Unmortgage("alice", stJames.Id, 0))
	alice, _ = st.GetPlayer("alice")
	assert.Equal(t, 4991, alice.Balance)
	assert.False(t, propAt(t, st, 16).Mortgaged)
}

func TestMortgageRefusedWhenDeveloped(t *testing.T) {
	l, st, _ := newFixture(t)
	ownGroup(t, st, "orange", "alice")
	stJames := propAt(t, st, 16)
	stJames.DevelopmentLevel = 1
	require.NoError(t, st.SaveProperty(stJames))

	assert.False(t, l.Mortgage("alice", stJames.Id, 0))
}

func TestUnimprovedValueSumsUnmortgagedHoldings(t *testing.T) {
	l, st, _ := newFixture(t)
	ownGroup(t, st, "orange", "alice")
	// St. James 90 + Tennessee 90 + New York 100
	assert.Equal(t, 280, l.UnimprovedValue("alice", "g1"))

	require.True(t, l.Mortgage("alice", propAt(t, st, 16).Id, 0))
	assert.Equal(t, 190, l.UnimprovedValue("alice", "g1"))
}

func TestCrashAndRestoreAreExactInverses(t *testing.T) {
	for _, pct := range []float64{5, 12.5, 25, 40, 60} {
		l, st, _ := newFixture(t)
		require.NoError(t, l.ApplyMarketCrash("g1", []string{"orange"}, pct, 3))
		require.NoError(t, l.RestoreMarketPrices("g1", []string{"orange"}))

		properties, err := st.PropertiesByGame("g1")
		require.NoError(t, err)
		for _, p := range properties {
			assert.Equal(t, p.BasePrice, p.CurrentPrice, "%s after %v%% crash", p.Name, pct)
			assert.Equal(t, p.BaseRent, p.CurrentRent, p.Name)
			assert.Zero(t, p.DiscountPct)
			assert.Zero(t, p.PriceDelta)
		}
	}
}

func TestCrashHonorsPriceFloor(t *testing.T) {
	l, st, _ := newFixture(t)
	require.NoError(t, l.ApplyMarketCrash("g1", []string{"orange"}, 60, 3))

	stJames := propAt(t, st, 16)
	floor := int(math.Round(float64(stJames.BasePrice) * DefaultFloorFrac))
	assert.Equal(t, floor, stJames.CurrentPrice, "60%% crash bottoms out at the floor")
}

func TestPerturbationsNeverCompound(t *testing.T) {
	l, st, _ := newFixture(t)
	require.NoError(t, l.ApplyMarketCrash("g1", []string{"orange"}, 20, 3))
	after := propAt(t, st, 16).CurrentPrice

	// A second event on the same group is a no-op until a restore.
	require.NoError(t, l.ApplyMarketCrash("g1", []string{"orange"}, 20, 5))
	assert.Equal(t, after, propAt(t, st, 16).CurrentPrice)
	require.NoError(t, l.ApplyEconomicBoom("g1", []string{"orange"}, 30, 5))
	assert.Equal(t, after, propAt(t, st, 16).CurrentPrice)
}

func TestBoomRaisesPriceAndRentProportionally(t *testing.T) {
	l, st, _ := newFixture(t)
	require.NoError(t, l.ApplyEconomicBoom("g1", []string{"orange"}, 25, 3))

	stJames := propAt(t, st, 16)
	assert.Equal(t, 225, stJames.CurrentPrice)
	assert.Equal(t, 25.0, stJames.PremiumPct)
	assert.Greater(t, stJames.CurrentRent, stJames.BaseRent)
}

func TestRestoreIsIdempotent(t *testing.T) {
	l, st, _ := newFixture(t)
	require.NoError(t, l.ApplyEconomicBoom("g1", []string{"orange"}, 25, 3))
	require.NoError(t, l.RestoreMarketPrices("g1", nil))
	require.NoError(t, l.RestoreMarketPrices("g1", nil))

	stJames := propAt(t, st, 16)
	assert.Equal(t, stJames.BasePrice, stJames.CurrentPrice)
}

func TestCommunityApprovalAdjustsStanding(t *testing.T) {
	l, st, gs := newFixture(t)
	ownGroup(t, st, "orange", "alice")
	stJames := propAt(t, st, 16)

	l.Rand = fixedRand(0) // roll always under the odds
	result := l.RequestCommunityApproval("alice", stJames.Id, gs)
	require.True(t, result.Success)
	assert.True(t, result.Granted)
	assert.Equal(t, 50, result.Odds) // 20 + 50*6/10 in a normal phase
	alice, _ := st.GetPlayer("alice")
	assert.Equal(t, 52, alice.CommunityStanding)
	assert.True(t, propAt(t, st, 16).CommunityApproved)
}

func TestCommunityApprovalDenialCostsStanding(t *testing.T) {
	l, st, gs := newFixture(t)
	ownGroup(t, st, "orange", "alice")
	stJames := propAt(t, st, 16)

	l.Rand = fixedRand(99) // roll always over the odds
	result := l.RequestCommunityApproval("alice", stJames.Id, gs)
	require.True(t, result.Success)
	assert.False(t, result.Granted)
	alice, _ := st.GetPlayer("alice")
	assert.Equal(t, 49, alice.CommunityStanding)
	assert.False(t, propAt(t, st, 16).CommunityApproved)
}

func TestEnvironmentalStudyChargesFeeAndExpires(t *testing.T) {
	l, st, gs := newFixture(t)
	ownGroup(t, st, "darkblue", "alice")
	boardwalk := propAt(t, st, 39)
	gs.Lap = 2

	l.Rand = fixedRand(0)
	result := l.CommissionEnvironmentalStudy("alice", boardwalk.Id, gs)
	require.True(t, result.Success)
	assert.True(t, result.Granted)

	alice, _ := st.GetPlayer("alice")
	assert.Equal(t, 4900, alice.Balance, "study fee charged")

	boardwalk = propAt(t, st, 39)
	assert.True(t, boardwalk.EnvStudyGranted)
	assert.Equal(t, 6, boardwalk.EnvStudyExpiresLap)

	// A second commission while the study is current is refused.
	again := l.CommissionEnvironmentalStudy("alice", boardwalk.Id, gs)
	assert.False(t, again.Success)
}
