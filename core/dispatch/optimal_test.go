package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridsched/core/model"
)

func on(name string, cost, minGen, eff float64) model.UnitSnapshot {
	return model.UnitSnapshot{Name: name, Status: model.StatusOn, CostRate: cost, MinGenMW: minGen, EffectiveMW: eff, CapacityMW: eff}
}

func TestOptimalDispatchCostMatchesScenario(t *testing.T) {
	units := []model.UnitSnapshot{on("A", 10, 50, 100), on("B", 20, 0, 100)}
	got, err := OptimalDispatchCost(units, 120, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 350, got, 1e-6)
}

func TestOptimalDispatchCostClampsToBand(t *testing.T) {
	units := []model.UnitSnapshot{on("A", 10, 50, 100), on("B", 20, 0, 100)}

	low, err := OptimalDispatchCost(units, 10, 1)
	require.NoError(t, err)
	assert.InDelta(t, 500, low, 1e-6, "floors are paid even below demand")

	high, err := OptimalDispatchCost(units, 1000, 1)
	require.NoError(t, err)
	assert.InDelta(t, 3000, high, 1e-6)
}

func TestOptimalDispatchCostIgnoresIdleUnits(t *testing.T) {
	units := []model.UnitSnapshot{
		on("cheap", 5, 0, 50),
		{Name: "off", Status: model.StatusOff, CostRate: 1, EffectiveMW: 100},
		{Name: "out", Status: model.StatusForcedOutage, CostRate: 1, EffectiveMW: 100},
		on("night-solar", 0, 20, 0),
		on("dear", 50, 10, 100),
	}
	got, err := OptimalDispatchCost(units, 80, 1)
	require.NoError(t, err)
	// dear holds its floor, cheap fills 50, dear covers the last 20
	assert.InDelta(t, 50*5+30*50, got, 1e-6)
}

func TestOptimalDispatchCostNoCommittedUnits(t *testing.T) {
	got, err := OptimalDispatchCost(nil, 100, 0.25)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestOptimalDispatchCostSolverError(t *testing.T) {
	old := lpSolve
	lpSolve = func(_, _ []float64, _ float64) (float64, error) { return 0, errors.New("fail") }
	defer func() { lpSolve = old }()

	_, err := OptimalDispatchCost([]model.UnitSnapshot{on("A", 10, 0, 100)}, 50, 1)
	assert.Error(t, err)
}
