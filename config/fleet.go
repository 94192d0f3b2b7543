package config

import "github.com/kilianp07/gridsched/core/model"

// DefaultFleet is the five unit fleet of the reference dashboard.
func DefaultFleet() []model.UnitSpec {
	return []model.UnitSpec{
		{Name: "Coal Plant A", Category: model.CategoryCoal, CapacityMW: 500, CostRate: 40, MinGenMW: 100},
		{Name: "Gas Plant B", Category: model.CategoryGas, CapacityMW: 300, CostRate: 65, MinGenMW: 50},
		{Name: "Solar Farm C", Category: model.CategorySolar, CapacityMW: 150, CostRate: 15},
		{Name: "Hydro Plant D", Category: model.CategoryHydro, CapacityMW: 600, CostRate: 25, MinGenMW: 150},
		{Name: "Gas Peaker E", Category: model.CategoryGas, CapacityMW: 100, CostRate: 120, MinGenMW: 25},
	}
}
