package dispatch

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kilianp07/gridsched/core/logger"
	"github.com/kilianp07/gridsched/core/model"
	"github.com/kilianp07/gridsched/internal/eventbus"
)

// Engine commits and dispatches a fixed fleet block by block and keeps the
// running daily totals. The merit order is fixed at construction.
//
// An Engine has a single writer: ProcessInterval and the operator commands
// must not be called concurrently.
type Engine struct {
	units   []*model.GenerationUnit // merit order
	byName  map[string]*model.GenerationUnit
	horizon model.Horizon
	summary DailySummary
	next    int // block following the last processed one

	logger logger.Logger
	alerts *eventbus.TypedBus[model.OutageAlert]
	now    func() time.Time
}

// NewEngine validates the unit definitions and ranks them by ascending cost
// rate. Units with equal rates keep their input order.
func NewEngine(specs []model.UnitSpec, horizon model.Horizon, log logger.Logger) (*Engine, error) {
	if err := horizon.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop{}
	}
	e := &Engine{
		units:   make([]*model.GenerationUnit, 0, len(specs)),
		byName:  make(map[string]*model.GenerationUnit, len(specs)),
		horizon: horizon,
		logger:  log,
		now:     time.Now,
	}
	for _, s := range specs {
		if _, dup := e.byName[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate unit name %q", model.ErrInvalidArgument, s.Name)
		}
		u, err := model.NewGenerationUnit(s)
		if err != nil {
			return nil, err
		}
		e.units = append(e.units, u)
		e.byName[s.Name] = u
	}
	sort.SliceStable(e.units, func(i, j int) bool {
		return e.units[i].CostRate() < e.units[j].CostRate()
	})
	for _, u := range e.units {
		unitStatus.WithLabelValues(u.Name()).Set(float64(u.Status()))
	}
	e.logger.Infof("engine ready with %d units, merit order %v", len(e.units), e.MeritOrder())
	return e, nil
}

// SetAlertBus configures the bus on which forced outages are announced.
func (e *Engine) SetAlertBus(bus *eventbus.TypedBus[model.OutageAlert]) { e.alerts = bus }

// SetClock overrides the time source used to stamp alerts.
func (e *Engine) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// Horizon returns the block layout the engine validates against.
func (e *Engine) Horizon() model.Horizon { return e.horizon }

// MeritOrder returns the unit names from cheapest to most expensive.
func (e *Engine) MeritOrder() []string {
	names := make([]string, len(e.units))
	for i, u := range e.units {
		names[i] = u.Name()
	}
	return names
}

// ProcessInterval commits and dispatches the fleet against demandMW for the
// given block and folds the outcome into the daily totals. Inputs are
// validated before any unit is touched.
func (e *Engine) ProcessInterval(demandMW float64, block int) (IntervalResult, error) {
	if math.IsNaN(demandMW) || math.IsInf(demandMW, 0) || demandMW < 0 {
		return IntervalResult{}, fmt.Errorf("%w: demand must be a non-negative number, got %v", model.ErrInvalidArgument, demandMW)
	}
	if err := e.horizon.CheckBlock(block); err != nil {
		return IntervalResult{}, err
	}
	start := time.Now()

	for _, u := range e.units {
		if err := u.UpdateAvailability(block, e.horizon); err != nil {
			return IntervalResult{}, err
		}
		u.ResetBaseline()
	}

	total := 0.0
	for _, u := range e.units {
		if u.IsOn() {
			total += u.DispatchMW()
		}
	}

	var committed []string
	if total < demandMW {
		for _, u := range e.units {
			if u.Status() != model.StatusOff {
				continue
			}
			u.TurnOn()
			committed = append(committed, u.Name())
			total += u.DispatchMW()
			if total >= demandMW {
				break
			}
		}
	}

	needed := demandMW - total
	if needed > 0 {
		for _, u := range e.units {
			if !u.IsOn() {
				continue
			}
			inc := u.Ramp(needed)
			total += inc
			needed -= inc
			if needed <= 0 {
				break
			}
		}
	}

	hours := e.horizon.BlockHours()
	shortfall := demandMW - total
	cost := 0.0
	for _, u := range e.units {
		cost += u.DispatchMW() * u.CostRate() * hours
	}

	e.summary.Intervals++
	e.summary.TotalCost += cost
	e.summary.TotalEnergyMWh += total * hours
	if shortfall > 0 {
		e.summary.ShortfallEvents++
		e.summary.TotalShortfallMWh += shortfall * hours
	}
	e.next = block + 1

	res := IntervalResult{
		Block:        block,
		DemandMW:     demandMW,
		DispatchedMW: total,
		ShortfallMW:  shortfall,
		Cost:         cost,
		Committed:    committed,
		Units:        e.Units(),
	}
	e.observe(res, hours, time.Since(start))
	return res, nil
}

func (e *Engine) observe(res IntervalResult, hours float64, elapsed time.Duration) {
	intervalLatency.Observe(elapsed.Seconds())
	costTotal.Add(res.Cost)
	energyTotal.Add(res.DispatchedMW * hours)
	if res.Unmet() > 0 {
		shortfallEvents.Inc()
		shortfallEnergy.Add(res.Unmet() * hours)
		e.logger.Warnf("block %d short by %.2f MW", res.Block, res.Unmet())
	}
	for _, u := range res.Units {
		unitDispatch.WithLabelValues(u.Name).Set(u.DispatchMW)
		unitStatus.WithLabelValues(u.Name).Set(float64(u.Status))
	}
	e.logger.Debugw("interval processed", map[string]any{
		"block":         res.Block,
		"demand_mw":     res.DemandMW,
		"dispatched_mw": res.DispatchedMW,
		"shortfall_mw":  res.ShortfallMW,
		"cost":          res.Cost,
		"committed":     res.Committed,
	})
}

// Units returns snapshots of the fleet in merit order.
func (e *Engine) Units() []model.UnitSnapshot {
	out := make([]model.UnitSnapshot, len(e.units))
	for i, u := range e.units {
		out[i] = u.Snapshot()
	}
	return out
}

// Unit returns the snapshot of a single unit.
func (e *Engine) Unit(name string) (model.UnitSnapshot, error) {
	u, err := e.lookup(name)
	if err != nil {
		return model.UnitSnapshot{}, err
	}
	return u.Snapshot(), nil
}

// Summary returns the daily totals accumulated so far.
func (e *Engine) Summary() DailySummary { return e.summary }
