package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/gridsched/core/metrics"
)

// PromSink mirrors interval outcomes and daily totals into Prometheus gauges.
type PromSink struct {
	demand     prometheus.Gauge
	dispatched prometheus.Gauge
	shortfall  prometheus.Gauge
	cost       prometheus.Gauge
	gap        prometheus.Gauge
	block      prometheus.Gauge
	output     *prometheus.GaugeVec
	outages    *prometheus.CounterVec
	dayCost    prometheus.Gauge
	dayEnergy  prometheus.Gauge
	dayShort   prometheus.Gauge
}

// NewPromSink registers the sink metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics
// already present on the registerer are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	}
	s := &PromSink{
		demand:     gauge("gridsched_interval_demand_mw", "Demand of the last processed block"),
		dispatched: gauge("gridsched_interval_dispatched_mw", "Scheduled generation of the last processed block"),
		shortfall:  gauge("gridsched_interval_shortfall_mw", "Signed shortfall of the last processed block, negative for surplus"),
		cost:       gauge("gridsched_interval_cost", "Generation cost of the last processed block"),
		gap:        gauge("gridsched_interval_optimality_gap", "Cost above the LP optimum for the committed units"),
		block:      gauge("gridsched_interval_block", "Index of the last processed block"),
		output: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gridsched_unit_output_mw",
			Help: "Scheduled output per unit for the last processed block",
		}, []string{"unit", "category"}),
		outages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridsched_outage_alerts_total",
			Help: "Forced outage alerts raised by operators",
		}, []string{"unit"}),
		dayCost:   gauge("gridsched_day_cost", "Accumulated generation cost of the day"),
		dayEnergy: gauge("gridsched_day_energy_mwh", "Accumulated scheduled energy of the day"),
		dayShort:  gauge("gridsched_day_shortfall_mwh", "Accumulated unserved energy of the day"),
	}
	var err error
	for _, g := range []*prometheus.Gauge{&s.demand, &s.dispatched, &s.shortfall, &s.cost, &s.gap, &s.block, &s.dayCost, &s.dayEnergy, &s.dayShort} {
		if *g, err = register(reg, *g); err != nil {
			return nil, err
		}
	}
	if s.output, err = register(reg, s.output); err != nil {
		return nil, err
	}
	if s.outages, err = register(reg, s.outages); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordInterval updates the interval gauges and per-unit output.
func (s *PromSink) RecordInterval(ev coremetrics.IntervalEvent) error {
	s.demand.Set(ev.DemandMW)
	s.dispatched.Set(ev.DispatchedMW)
	s.shortfall.Set(ev.ShortfallMW)
	s.cost.Set(ev.Cost)
	s.block.Set(float64(ev.Block))
	if ev.OptimalCost > 0 {
		s.gap.Set(ev.Cost - ev.OptimalCost)
	}
	for _, u := range ev.Units {
		s.output.WithLabelValues(u.Name, u.Category.String()).Set(u.DispatchMW)
	}
	return nil
}

// RecordOutage counts the alert against its unit.
func (s *PromSink) RecordOutage(ev coremetrics.OutageEvent) error {
	s.outages.WithLabelValues(ev.Alert.Unit).Inc()
	return nil
}

// RecordSummary publishes the running daily totals.
func (s *PromSink) RecordSummary(ev coremetrics.SummaryEvent) error {
	s.dayCost.Set(ev.TotalCost)
	s.dayEnergy.Set(ev.TotalEnergyMWh)
	s.dayShort.Set(ev.TotalShortfallMWh)
	return nil
}
