package metrics

import (
	coremetrics "github.com/kilianp07/gridsched/core/metrics"
	"github.com/kilianp07/gridsched/core/model"
	"github.com/kilianp07/gridsched/infra/mqtt"
)

type jsonPublisher interface {
	PublishJSON(topic string, v any) error
	Close() error
}

// MQTTSink publishes telemetry as JSON documents:
// <prefix>/interval, <prefix>/units/<name>, <prefix>/outage and <prefix>/summary.
type MQTTSink struct {
	pub jsonPublisher
}

// NewMQTTSink connects a Paho publisher with cfg.
func NewMQTTSink(cfg mqtt.Config) (*MQTTSink, error) {
	pub, err := mqtt.NewPublisher(cfg)
	if err != nil {
		return nil, err
	}
	return &MQTTSink{pub: pub}, nil
}

type intervalPayload struct {
	RunID        string  `json:"run_id"`
	Block        int     `json:"block"`
	Label        string  `json:"label"`
	Time         int64   `json:"time"`
	DemandMW     float64 `json:"demand_mw"`
	DispatchedMW float64 `json:"dispatched_mw"`
	ShortfallMW  float64 `json:"shortfall_mw"`
	Cost         float64 `json:"cost"`
	OptimalCost  float64 `json:"optimal_cost,omitempty"`
}

type unitPayload struct {
	RunID string `json:"run_id"`
	Block int    `json:"block"`
	model.UnitSnapshot
}

// RecordInterval publishes the interval and one retained-style document per unit.
func (s *MQTTSink) RecordInterval(ev coremetrics.IntervalEvent) error {
	if err := s.pub.PublishJSON("interval", intervalPayload{
		RunID:        ev.RunID,
		Block:        ev.Block,
		Label:        ev.Label,
		Time:         ev.Time.UnixMilli(),
		DemandMW:     ev.DemandMW,
		DispatchedMW: ev.DispatchedMW,
		ShortfallMW:  ev.ShortfallMW,
		Cost:         ev.Cost,
		OptimalCost:  ev.OptimalCost,
	}); err != nil {
		return err
	}
	for _, u := range ev.Units {
		if err := s.pub.PublishJSON("units/"+u.Name, unitPayload{RunID: ev.RunID, Block: ev.Block, UnitSnapshot: u}); err != nil {
			return err
		}
	}
	return nil
}

// RecordOutage publishes the alert so operators watching the broker see it.
func (s *MQTTSink) RecordOutage(ev coremetrics.OutageEvent) error {
	return s.pub.PublishJSON("outage", struct {
		RunID string `json:"run_id"`
		model.OutageAlert
	}{ev.RunID, ev.Alert})
}

// RecordSummary publishes the running daily totals.
func (s *MQTTSink) RecordSummary(ev coremetrics.SummaryEvent) error {
	return s.pub.PublishJSON("summary", map[string]any{
		"run_id":           ev.RunID,
		"time":             ev.Time.UnixMilli(),
		"intervals":        ev.Intervals,
		"total_cost":       ev.TotalCost,
		"energy_mwh":       ev.TotalEnergyMWh,
		"shortfall_events": ev.ShortfallEvents,
		"shortfall_mwh":    ev.TotalShortfallMWh,
	})
}

// Close disconnects from the broker.
func (s *MQTTSink) Close() error { return s.pub.Close() }
