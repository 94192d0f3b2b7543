package model

import (
	"fmt"
	"math"
)

// UnitSpec holds the static definition of a generation unit.
type UnitSpec struct {
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	CapacityMW float64  `json:"capacity_mw"` // nameplate capacity
	CostRate   float64  `json:"cost_rate"`   // marginal cost per MWh
	MinGenMW   float64  `json:"min_gen_mw"`  // minimum stable generation once committed
}

// Validate checks the unit definition is physically meaningful.
func (s UnitSpec) Validate() error {
	switch {
	case s.Name == "":
		return fmt.Errorf("%w: unit name is required", ErrInvalidArgument)
	case !(s.CapacityMW > 0) || math.IsInf(s.CapacityMW, 0):
		return fmt.Errorf("%w: unit %s capacity must be positive, got %v", ErrInvalidArgument, s.Name, s.CapacityMW)
	case !(s.CostRate >= 0) || math.IsInf(s.CostRate, 0):
		return fmt.Errorf("%w: unit %s cost rate must be non-negative, got %v", ErrInvalidArgument, s.Name, s.CostRate)
	case !(s.MinGenMW >= 0) || s.MinGenMW > s.CapacityMW:
		return fmt.Errorf("%w: unit %s min gen %v not in [0, %v]", ErrInvalidArgument, s.Name, s.MinGenMW, s.CapacityMW)
	}
	if !s.Category.Valid() {
		return fmt.Errorf("%w: unit %s has unknown category %q", ErrInvalidArgument, s.Name, s.Category)
	}
	return nil
}

// GenerationUnit is a power source together with its dynamic state.
// It is not safe for concurrent use; the dispatch engine is its only writer.
type GenerationUnit struct {
	spec        UnitSpec
	effectiveMW float64
	status      Status
	dispatchMW  float64
}

// NewGenerationUnit validates spec and returns an OFF unit with no output.
func NewGenerationUnit(spec UnitSpec) (*GenerationUnit, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &GenerationUnit{spec: spec, effectiveMW: spec.CapacityMW, status: StatusOff}, nil
}

func (u *GenerationUnit) Name() string         { return u.spec.Name }
func (u *GenerationUnit) Spec() UnitSpec       { return u.spec }
func (u *GenerationUnit) Status() Status       { return u.status }
func (u *GenerationUnit) DispatchMW() float64  { return u.dispatchMW }
func (u *GenerationUnit) EffectiveMW() float64 { return u.effectiveMW }
func (u *GenerationUnit) CostRate() float64    { return u.spec.CostRate }
func (u *GenerationUnit) MinGenMW() float64    { return u.spec.MinGenMW }
func (u *GenerationUnit) IsOn() bool           { return u.status == StatusOn }

// Headroom is the extra output the unit could still deliver this block.
func (u *GenerationUnit) Headroom() float64 {
	if !u.canHoldFloor() {
		return 0
	}
	return math.Max(0, u.effectiveMW-u.dispatchMW)
}

// canHoldFloor reports whether the available capacity covers min gen. A
// solar unit at night cannot, so it idles at zero even when ON.
func (u *GenerationUnit) canHoldFloor() bool {
	return u.spec.MinGenMW <= u.effectiveMW
}

func (u *GenerationUnit) apply(t Transition) {
	u.status = t.Next
	u.dispatchMW = 0
	if t.Floor == FloorMinGen && u.canHoldFloor() {
		u.dispatchMW = u.spec.MinGenMW
	}
}

// TurnOn commits the unit at its minimum stable generation. A unit in
// forced outage stays unavailable and its output is zeroed.
func (u *GenerationUnit) TurnOn() { u.apply(u.status.OnTurnOn()) }

// TurnOff shuts the unit down. Calling it on a unit in forced outage
// returns the unit to OFF.
func (u *GenerationUnit) TurnOff() { u.apply(u.status.OnTurnOff()) }

// ForceOutage removes the unit from service from any status.
func (u *GenerationUnit) ForceOutage() { u.apply(u.status.OnForceOutage()) }

// UpdateAvailability recomputes the effective capacity for block. Only
// solar units follow the daylight curve; other units stay at nameplate.
func (u *GenerationUnit) UpdateAvailability(block int, h Horizon) error {
	if err := h.CheckBlock(block); err != nil {
		return err
	}
	if u.spec.Category.IsSolar() {
		u.effectiveMW = u.spec.CapacityMW * h.SolarFactor(block)
	} else {
		u.effectiveMW = u.spec.CapacityMW
	}
	return nil
}

// ResetBaseline drops ON units to their floor and every other unit to zero.
func (u *GenerationUnit) ResetBaseline() {
	if u.status == StatusOn && u.canHoldFloor() {
		u.dispatchMW = u.spec.MinGenMW
		return
	}
	u.dispatchMW = 0
}

// Ramp raises output by at most needed MW within the unit's headroom and
// returns the increase. Units that are not ON do not ramp.
func (u *GenerationUnit) Ramp(needed float64) float64 {
	if u.status != StatusOn || needed <= 0 {
		return 0
	}
	inc := math.Min(needed, u.Headroom())
	u.dispatchMW += inc
	return inc
}

// UnitSnapshot is a read-only copy of a unit's state.
type UnitSnapshot struct {
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	CapacityMW  float64  `json:"capacity_mw"`
	EffectiveMW float64  `json:"effective_mw"`
	CostRate    float64  `json:"cost_rate"`
	MinGenMW    float64  `json:"min_gen_mw"`
	Status      Status   `json:"status"`
	DispatchMW  float64  `json:"dispatch_mw"`
}

// Snapshot copies the unit's current state.
func (u *GenerationUnit) Snapshot() UnitSnapshot {
	return UnitSnapshot{
		Name:        u.spec.Name,
		Category:    u.spec.Category,
		CapacityMW:  u.spec.CapacityMW,
		EffectiveMW: u.effectiveMW,
		CostRate:    u.spec.CostRate,
		MinGenMW:    u.spec.MinGenMW,
		Status:      u.status,
		DispatchMW:  u.dispatchMW,
	}
}
