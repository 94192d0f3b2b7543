// Package simulator drives a dispatch engine through one simulated day:
// it builds the demand forecast, draws market rates, replays scripted
// operator commands and forwards every processed block to the configured
// sinks and interval log.
package simulator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/kilianp07/gridsched/core/model"
)

const (
	defaultBaseMW = 800
	defaultPeakMW = 1500
	defaultJitter = 0.05

	// demand never drops below this share of the base load
	floorShare = 0.9
	// amplitude of the twice-daily ripple on top of the day curve
	rippleShare = 0.15
)

// DemandConfig shapes the daily demand forecast.
type DemandConfig struct {
	BaseMW float64 `json:"base_mw"`
	PeakMW float64 `json:"peak_mw"`
	// Jitter is the relative spread of the actual demand around the
	// forecast; 0.05 draws uniformly within ±5%.
	Jitter float64 `json:"jitter"`
	// Seed makes demand and rates reproducible. Zero picks a time based seed.
	Seed int64 `json:"seed"`
}

// DefaultDemand returns the reference day: 800 MW base, 1500 MW peak and
// ±5% noise.
func DefaultDemand() DemandConfig {
	return DemandConfig{BaseMW: defaultBaseMW, PeakMW: defaultPeakMW, Jitter: defaultJitter}
}

// SetDefaults fills unset load levels and the seed. Jitter is left alone so
// that zero disables noise.
func (c *DemandConfig) SetDefaults() {
	if c.BaseMW == 0 {
		c.BaseMW = defaultBaseMW
	}
	if c.PeakMW == 0 {
		c.PeakMW = defaultPeakMW
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
}

// Validate checks that the profile parameters describe a usable day.
func (c DemandConfig) Validate() error {
	if c.BaseMW < 0 || math.IsNaN(c.BaseMW) {
		return fmt.Errorf("%w: base demand must be non-negative", model.ErrInvalidArgument)
	}
	if c.PeakMW < c.BaseMW || math.IsNaN(c.PeakMW) {
		return fmt.Errorf("%w: peak demand %.2f below base %.2f", model.ErrInvalidArgument, c.PeakMW, c.BaseMW)
	}
	if c.Jitter < 0 || c.Jitter >= 1 {
		return fmt.Errorf("%w: jitter must be in [0, 1), got %v", model.ErrInvalidArgument, c.Jitter)
	}
	return nil
}

// DemandProfile returns the forecast demand of every block: a day-long sine
// between base and peak plus a twice-daily ripple, floored at 90% of base.
func DemandProfile(h model.Horizon, baseMW, peakMW float64) []float64 {
	out := make([]float64, h.Blocks)
	for i := range out {
		rad := float64(i) / float64(h.Blocks) * 2 * math.Pi
		day := (math.Sin(rad-math.Pi/2) + 1) / 2
		ripple := math.Sin(2*rad-math.Pi/2) * rippleShare
		v := baseMW + (peakMW-baseMW)*(day+ripple)
		out[i] = math.Max(baseMW*floorShare, v)
	}
	return out
}

// Jitter scales every value by an independent uniform factor in
// [1-spread, 1+spread).
func Jitter(rng *rand.Rand, profile []float64, spread float64) []float64 {
	out := make([]float64, len(profile))
	for i, v := range profile {
		out[i] = v * uniform(rng, 1-spread, 1+spread)
	}
	return out
}

// Market rates are quoted per MWh.
const (
	yesterdayRateMin = 1.5
	yesterdayRateMax = 5.0
	todayRateMin     = 1.8
	todayRateMax     = 6.0
	ratePerMWh       = 1000
)

// YesterdayRates draws the previous day's market rate for n blocks.
func YesterdayRates(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = uniform(rng, yesterdayRateMin, yesterdayRateMax) * ratePerMWh
	}
	return out
}

// TodayRate draws the market rate observed when a block is processed.
func TodayRate(rng *rand.Rand) float64 {
	return uniform(rng, todayRateMin, todayRateMax) * ratePerMWh
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}
