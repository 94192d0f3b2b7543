package model

import (
	"fmt"
	"strings"
)

// Status is the operating state of a generation unit.
type Status int

const (
	StatusOff Status = iota
	StatusOn
	StatusForcedOutage
)

// String returns the operator-facing label of the status.
func (s Status) String() string {
	switch s {
	case StatusOff:
		return "OFF"
	case StatusOn:
		return "ON"
	case StatusForcedOutage:
		return "FORCED_OUTAGE"
	default:
		return "unknown"
	}
}

// ParseStatus converts a label produced by String back into a Status.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OFF":
		return StatusOff, nil
	case "ON":
		return StatusOn, nil
	case "FORCED_OUTAGE":
		return StatusForcedOutage, nil
	}
	return StatusOff, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, s)
}

// MarshalText encodes the status as its label.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a status label.
func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Transition is the outcome of applying an operator command to a status.
// Floor tells the unit which dispatch level to hold after the change.
type Transition struct {
	Next  Status
	Floor DispatchFloor
}

// DispatchFloor selects the dispatch level a unit holds after a transition.
type DispatchFloor int

const (
	FloorZero DispatchFloor = iota
	FloorMinGen
)

// OnTurnOn is the startup rule. A unit in forced outage keeps its status
// and drops to zero output instead of starting.
func (s Status) OnTurnOn() Transition {
	if s == StatusForcedOutage {
		return turnOnBlockedByOutage()
	}
	return Transition{Next: StatusOn, Floor: FloorMinGen}
}

// OnTurnOff is the shutdown rule. It also clears a forced outage.
func (s Status) OnTurnOff() Transition {
	if s == StatusForcedOutage {
		return turnOffClearsOutage()
	}
	return Transition{Next: StatusOff, Floor: FloorZero}
}

// OnForceOutage moves any status into forced outage.
func (Status) OnForceOutage() Transition {
	return Transition{Next: StatusForcedOutage, Floor: FloorZero}
}

func turnOnBlockedByOutage() Transition {
	return Transition{Next: StatusForcedOutage, Floor: FloorZero}
}

func turnOffClearsOutage() Transition {
	return Transition{Next: StatusOff, Floor: FloorZero}
}
