package dispatch

import (
	"math"

	"github.com/kilianp07/gridsched/core/model"
)

// IntervalResult is the outcome of one processed block.
type IntervalResult struct {
	Block        int     `json:"block"`
	DemandMW     float64 `json:"demand_mw"`
	DispatchedMW float64 `json:"dispatched_mw"`
	// ShortfallMW is demand minus dispatch. It is negative when min-gen
	// floors push output above demand.
	ShortfallMW float64              `json:"shortfall_mw"`
	Cost        float64              `json:"cost"`
	Committed   []string             `json:"committed,omitempty"`
	Units       []model.UnitSnapshot `json:"units"`
}

// Unmet is the positive part of the shortfall.
func (r IntervalResult) Unmet() float64 { return math.Max(0, r.ShortfallMW) }

// Surplus is the output above demand forced by min-gen floors.
func (r IntervalResult) Surplus() float64 { return math.Max(0, -r.ShortfallMW) }

// DailySummary holds the totals accumulated since the engine was built.
type DailySummary struct {
	Intervals         int     `json:"intervals"`
	TotalCost         float64 `json:"total_cost"`
	TotalEnergyMWh    float64 `json:"total_energy_mwh"`
	ShortfallEvents   int     `json:"shortfall_events"`
	TotalShortfallMWh float64 `json:"total_shortfall_mwh"`
}
