package metrics

import (
	"time"

	"github.com/kilianp07/gridsched/core/model"
)

// IntervalEvent is the outcome of one processed block.
type IntervalEvent struct {
	RunID        string
	Block        int
	Label        string
	Time         time.Time
	DemandMW     float64
	DispatchedMW float64
	ShortfallMW  float64 // signed; negative values are surplus
	Cost         float64
	// OptimalCost is the LP lower bound for the committed set, zero when
	// the check was not run.
	OptimalCost float64
	Units       []model.UnitSnapshot
}

// MetricsSink records dispatch results for observability purposes.
type MetricsSink interface {
	RecordInterval(ev IntervalEvent) error
}

// OutageEvent records an operator-declared forced outage.
type OutageEvent struct {
	RunID string
	Alert model.OutageAlert
}

// OutageRecorder is implemented by sinks that track forced outages.
type OutageRecorder interface {
	RecordOutage(ev OutageEvent) error
}

// SummaryEvent carries the running daily totals.
type SummaryEvent struct {
	RunID             string
	Time              time.Time
	Intervals         int
	TotalCost         float64
	TotalEnergyMWh    float64
	ShortfallEvents   int
	TotalShortfallMWh float64
}

// SummaryRecorder is implemented by sinks that track daily totals.
type SummaryRecorder interface {
	RecordSummary(ev SummaryEvent) error
}

// Closer is implemented by sinks holding connections.
type Closer interface {
	Close() error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordInterval(IntervalEvent) error { return nil }
func (NopSink) RecordOutage(OutageEvent) error     { return nil }
func (NopSink) RecordSummary(SummaryEvent) error   { return nil }
