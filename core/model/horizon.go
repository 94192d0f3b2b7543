package model

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultBlocks is the number of quarter-hour slots in a day.
	DefaultBlocks        = 96
	DefaultBlockDuration = 15 * time.Minute

	solarOffset = 0.1
)

// Horizon describes how a simulated day is cut into fixed-width blocks.
type Horizon struct {
	Blocks        int           `json:"blocks"`
	BlockDuration time.Duration `json:"block_duration"`
}

// DefaultHorizon returns a 24 hour day of 15 minute blocks.
func DefaultHorizon() Horizon {
	return Horizon{Blocks: DefaultBlocks, BlockDuration: DefaultBlockDuration}
}

// Validate checks that the horizon has at least one block of positive width.
func (h Horizon) Validate() error {
	if h.Blocks <= 0 {
		return fmt.Errorf("%w: horizon needs at least one block, got %d", ErrInvalidArgument, h.Blocks)
	}
	if h.BlockDuration <= 0 {
		return fmt.Errorf("%w: block duration must be positive, got %s", ErrInvalidArgument, h.BlockDuration)
	}
	return nil
}

// BlockHours converts a block into hours, used to turn MW into MWh.
func (h Horizon) BlockHours() float64 { return h.BlockDuration.Hours() }

// CheckBlock returns ErrOutOfRange when block is not in [0, Blocks).
func (h Horizon) CheckBlock(block int) error {
	if block < 0 || block >= h.Blocks {
		return fmt.Errorf("%w: time block %d not in [0, %d)", ErrOutOfRange, block, h.Blocks)
	}
	return nil
}

// SolarFactor returns the fraction of nameplate capacity available to a
// solar unit during block. The curve is a sine shifted so that it is
// lowest at block 0 and peaks mid-horizon. It is clamped to [0, 1]: zero
// overnight, and never above nameplate around noon.
func (h Horizon) SolarFactor(block int) float64 {
	rad := float64(block) / float64(h.Blocks) * 2 * math.Pi
	return math.Min(1, math.Max(0, math.Sin(rad-math.Pi/2)+solarOffset))
}

// BlockStart returns the wall-clock start of block on the given day.
func (h Horizon) BlockStart(day time.Time, block int) time.Time {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return midnight.Add(time.Duration(block) * h.BlockDuration)
}

// Label formats block as "HH:MM-HH:MM" relative to midnight.
func (h Horizon) Label(block int) string {
	start := time.Duration(block) * h.BlockDuration
	end := start + h.BlockDuration
	return fmt.Sprintf("%s-%s", clock(start), clock(end))
}

func clock(d time.Duration) string {
	m := int(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
