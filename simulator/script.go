package simulator

import (
	"fmt"
	"strings"

	"github.com/kilianp07/gridsched/core/dispatch"
	"github.com/kilianp07/gridsched/core/model"
)

// Action is an operator command that can be scheduled ahead of a block.
type Action string

const (
	ActionOn     Action = "on"
	ActionOff    Action = "off"
	ActionToggle Action = "toggle"
	ActionOutage Action = "outage"
)

// ParseAction accepts the action names case-insensitively.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionOn, ActionOff, ActionToggle, ActionOutage:
		return a, nil
	}
	return "", fmt.Errorf("%w: unknown action %q", model.ErrInvalidArgument, s)
}

// UnmarshalText lets actions be decoded from configuration files.
func (a *Action) UnmarshalText(b []byte) error {
	parsed, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Command applies Action to Unit right before Block is processed.
type Command struct {
	Block  int    `json:"block"`
	Action Action `json:"action"`
	Unit   string `json:"unit"`
}

// Apply runs the command against the engine.
func (c Command) Apply(e *dispatch.Engine) error {
	switch c.Action {
	case ActionOn:
		return e.TurnOn(c.Unit)
	case ActionOff:
		return e.TurnOff(c.Unit)
	case ActionToggle:
		return e.Toggle(c.Unit)
	case ActionOutage:
		return e.ForceOutage(c.Unit)
	}
	return fmt.Errorf("%w: unknown action %q", model.ErrInvalidArgument, c.Action)
}

func (c Command) String() string {
	return fmt.Sprintf("%s %s @%d", c.Action, c.Unit, c.Block)
}

// Script is the list of operator commands for a day.
type Script []Command

// Validate checks every command against the horizon and, when known is
// non-nil, the unit names of the fleet.
func (s Script) Validate(h model.Horizon, known func(string) bool) error {
	for i, c := range s {
		if _, err := ParseAction(string(c.Action)); err != nil {
			return fmt.Errorf("script[%d]: %w", i, err)
		}
		if err := h.CheckBlock(c.Block); err != nil {
			return fmt.Errorf("script[%d]: %w", i, err)
		}
		if known != nil && !known(c.Unit) {
			return fmt.Errorf("script[%d]: %w: %q", i, dispatch.ErrNotFound, c.Unit)
		}
	}
	return nil
}

// ByBlock groups the commands by block, keeping the declared order within
// a block.
func (s Script) ByBlock() map[int][]Command {
	out := make(map[int][]Command)
	for _, c := range s {
		out[c.Block] = append(out[c.Block], c)
	}
	return out
}
