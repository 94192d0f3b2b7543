package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	intervalLatency prometheus.Histogram
	costTotal       prometheus.Counter
	energyTotal     prometheus.Counter
	shortfallEvents prometheus.Counter
	shortfallEnergy prometheus.Counter
	unitDispatch    *prometheus.GaugeVec
	unitStatus      *prometheus.GaugeVec
	forcedOutages   *prometheus.CounterVec
)

type collectors struct {
	latency         prometheus.Histogram
	cost            prometheus.Counter
	energy          prometheus.Counter
	shortfallEvents prometheus.Counter
	shortfallEnergy prometheus.Counter
	unitDispatch    *prometheus.GaugeVec
	unitStatus      *prometheus.GaugeVec
	outages         *prometheus.CounterVec
}

// newCollectors creates new metric collectors.
func newCollectors() collectors {
	return collectors{
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dispatch_interval_processing_seconds",
			Help:    "Time spent committing and dispatching one block",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		cost: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_cost_total",
			Help: "Cumulative generation cost",
		}),
		energy: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_energy_mwh_total",
			Help: "Cumulative energy delivered in MWh",
		}),
		shortfallEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_shortfall_events_total",
			Help: "Number of blocks with unmet demand",
		}),
		shortfallEnergy: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_shortfall_mwh_total",
			Help: "Cumulative unmet energy in MWh",
		}),
		unitDispatch: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "unit_dispatch_mw",
			Help: "Current dispatch of each generation unit",
		}, []string{"unit"}),
		unitStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "unit_status",
			Help: "Unit status: 0 off, 1 on, 2 forced outage",
		}, []string{"unit"}),
		outages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unit_forced_outages_total",
			Help: "Forced outages declared per unit",
		}, []string{"unit"}),
	}
}

func (c collectors) install() {
	intervalLatency = c.latency
	costTotal = c.cost
	energyTotal = c.energy
	shortfallEvents = c.shortfallEvents
	shortfallEnergy = c.shortfallEnergy
	unitDispatch = c.unitDispatch
	unitStatus = c.unitStatus
	forcedOutages = c.outages
}

func init() {
	newCollectors().install()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(intervalLatency, costTotal, energyTotal, shortfallEvents,
		shortfallEnergy, unitDispatch, unitStatus, forcedOutages)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	newCollectors().install()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
