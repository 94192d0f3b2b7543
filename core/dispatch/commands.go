package dispatch

import (
	"errors"
	"fmt"

	"github.com/kilianp07/gridsched/core/model"
)

var (
	// ErrNotFound is returned when an operator command names an unknown unit.
	ErrNotFound = errors.New("unit not found")
	// ErrUnitInOutage is returned by Toggle for units in forced outage.
	ErrUnitInOutage = errors.New("unit is in forced outage")
)

func (e *Engine) lookup(name string) (*model.GenerationUnit, error) {
	u, ok := e.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return u, nil
}

// TurnOn commits the named unit at its minimum generation. Units in forced
// outage keep their status and drop to zero output.
func (e *Engine) TurnOn(name string) error {
	u, err := e.lookup(name)
	if err != nil {
		return err
	}
	u.TurnOn()
	e.logger.Infof("operator turn on %s: now %s at %.2f MW", name, u.Status(), u.DispatchMW())
	return nil
}

// TurnOff shuts the named unit down, clearing any forced outage.
func (e *Engine) TurnOff(name string) error {
	u, err := e.lookup(name)
	if err != nil {
		return err
	}
	prev := u.Status()
	u.TurnOff()
	e.logger.Infof("operator turn off %s (was %s)", name, prev)
	return nil
}

// ForceOutage removes the named unit from service and announces the outage
// on the alert bus. Declaring an outage twice is not an error.
func (e *Engine) ForceOutage(name string) error {
	u, err := e.lookup(name)
	if err != nil {
		return err
	}
	prev := u.Status()
	u.ForceOutage()
	forcedOutages.WithLabelValues(name).Inc()
	unitStatus.WithLabelValues(name).Set(float64(u.Status()))
	e.logger.Warnf("ALERT: forced outage reported for %s", name)
	if e.alerts != nil {
		e.alerts.Publish(model.OutageAlert{Unit: name, Previous: prev, Block: e.next, Time: e.now()})
	}
	return nil
}

// Toggle flips an ON unit off and an OFF unit on. Units in forced outage
// are left untouched and ErrUnitInOutage is returned.
func (e *Engine) Toggle(name string) error {
	u, err := e.lookup(name)
	if err != nil {
		return err
	}
	switch u.Status() {
	case model.StatusOn:
		return e.TurnOff(name)
	case model.StatusOff:
		return e.TurnOn(name)
	default:
		return fmt.Errorf("%w: %s cannot be changed", ErrUnitInOutage, name)
	}
}
