package economy

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardwalk-games/boardwalk-backend/app/models"
)

type fixedSource struct{ v int64 }

func (s fixedSource) Int63() int64 { return s.v }
func (s fixedSource) Seed(int64)   {}

func TestCostMultiplierPerPhase(t *testing.T) {
	assert.Equal(t, 0.85, CostMultiplier(models.PhaseRecession))
	assert.Equal(t, 1.0, CostMultiplier(models.PhaseNormal))
	assert.Equal(t, 1.1, CostMultiplier(models.PhaseGrowth))
	assert.Equal(t, 1.25, CostMultiplier(models.PhaseBoom))
	assert.Equal(t, 1.0, CostMultiplier("unknown"))
}

func TestBuyThresholdShiftOrdering(t *testing.T) {
	// Recessions loosen buying, booms tighten it.
	assert.Less(t, BuyThresholdShift(models.PhaseRecession), 0.0)
	assert.Equal(t, 0.0, BuyThresholdShift(models.PhaseNormal))
	assert.Less(t, BuyThresholdShift(models.PhaseGrowth), BuyThresholdShift(models.PhaseBoom))
	assert.Greater(t, BuyThresholdShift(models.PhaseBoom), 0.0)
}

func TestApprovalShiftOrdering(t *testing.T) {
	assert.Less(t, ApprovalShift(models.PhaseRecession), 0)
	assert.Equal(t, 0, ApprovalShift(models.PhaseNormal))
	assert.Greater(t, ApprovalShift(models.PhaseBoom), ApprovalShift(models.PhaseGrowth))
}

func TestPhaseIndexDefaultsToNormal(t *testing.T) {
	assert.Equal(t, 0, PhaseIndex(models.PhaseRecession))
	assert.Equal(t, 3, PhaseIndex(models.PhaseBoom))
	assert.Equal(t, 1, PhaseIndex("garbage"))
}

func TestScheduleEffectAppends(t *testing.T) {
	gs := &models.GameState{Game_id: "g1"}
	effect := ScheduleEffect(gs, EffectCrash, []string{"red"}, 20, 3)
	require.Len(t, gs.ActiveEffects, 1)
	assert.NotEmpty(t, effect.Id)
	assert.Equal(t, 3, gs.ActiveEffects[0].TurnsLeft)
}

func TestAdvanceEffectsCountsDownAndRestores(t *testing.T) {
	gs := &models.GameState{Game_id: "g1"}
	ScheduleEffect(gs, EffectCrash, []string{"red"}, 20, 2)

	restored := 0
	restore := func(models.ScheduledEffect) error { restored++; return nil }

	expired := AdvanceEffects(gs, restore)
	assert.Empty(t, expired)
	assert.Equal(t, 0, restored)
	require.Len(t, gs.ActiveEffects, 1)
	assert.Equal(t, 1, gs.ActiveEffects[0].TurnsLeft)

	expired = AdvanceEffects(gs, restore)
	assert.Len(t, expired, 1)
	assert.Equal(t, 1, restored)
	assert.Empty(t, gs.ActiveEffects)
}

func TestAdvanceEffectsKeepsEffectWhenRestoreFails(t *testing.T) {
	gs := &models.GameState{Game_id: "g1"}
	ScheduleEffect(gs, EffectBoom, []string{"green"}, 15, 1)

	expired := AdvanceEffects(gs, func(models.ScheduledEffect) error {
		return errors.New("store unavailable")
	})
	assert.Empty(t, expired)
	require.Len(t, gs.ActiveEffects, 1, "failed revert is retried on the next boundary")
	assert.Equal(t, 1, gs.ActiveEffects[0].TurnsLeft)

	expired = AdvanceEffects(gs, func(models.ScheduledEffect) error { return nil })
	assert.Len(t, expired, 1)
	assert.Empty(t, gs.ActiveEffects)
}

func TestAdvanceEffectsHandlesSeveralCountdowns(t *testing.T) {
	gs := &models.GameState{Game_id: "g1"}
	ScheduleEffect(gs, EffectCrash, []string{"red"}, 20, 1)
	ScheduleEffect(gs, EffectBuyWindow, []string{"pink"}, 10, 3)

	expired := AdvanceEffects(gs, nil)
	require.Len(t, expired, 1)
	assert.Equal(t, EffectCrash, expired[0].Kind)
	require.Len(t, gs.ActiveEffects, 1)
	assert.Equal(t, EffectBuyWindow, gs.ActiveEffects[0].Kind)
}

func TestDriftPhaseRespectsChance(t *testing.T) {
	gs := &models.GameState{EconomicPhase: models.PhaseNormal, InflationFactor: 1.0}
	r := rand.New(rand.NewSource(1))
	DriftPhase(gs, r, 0)
	assert.Equal(t, models.PhaseNormal, gs.EconomicPhase, "zero chance never drifts")
}

func TestDriftPhaseMovesOneStepDown(t *testing.T) {
	// A source of zeros forces the drift and picks the downward direction.
	gs := &models.GameState{EconomicPhase: models.PhaseNormal, InflationFactor: 1.0}
	r := rand.New(fixedSource{v: 0})

	DriftPhase(gs, r, 1.0)
	assert.Equal(t, models.PhaseRecession, gs.EconomicPhase)
	assert.InDelta(t, 0.98, gs.InflationFactor, 1e-9)

	// Already at the bottom: the step clamps and inflation holds.
	DriftPhase(gs, r, 1.0)
	assert.Equal(t, models.PhaseRecession, gs.EconomicPhase)
	assert.InDelta(t, 0.98, gs.InflationFactor, 1e-9)
}

func TestDriftPhaseNeverSkipsAPhase(t *testing.T) {
	gs := &models.GameState{EconomicPhase: models.PhaseRecession, InflationFactor: 1.0}
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		before := PhaseIndex(gs.EconomicPhase)
		DriftPhase(gs, r, 0.5)
		after := PhaseIndex(gs.EconomicPhase)
		if diff := after - before; diff < -1 || diff > 1 {
			t.Fatalf("phase jumped %d steps", diff)
		}
	}
}
