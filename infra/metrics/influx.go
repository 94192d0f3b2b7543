package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/gridsched/core/metrics"
	"github.com/kilianp07/gridsched/infra/logger"
)

// InfluxConfig holds the InfluxDB v2 connection settings.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes dispatch events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordInterval writes one dispatch_interval point plus one unit_output
// point per unit in a single request.
func (s *InfluxSink) RecordInterval(ev coremetrics.IntervalEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	block := strconv.Itoa(ev.Block)
	points := make([]*write.Point, 0, len(ev.Units)+1)
	p := write.NewPointWithMeasurement("dispatch_interval").
		AddTag("run_id", ev.RunID).
		AddTag("block", block).
		AddField("demand_mw", round3(ev.DemandMW)).
		AddField("dispatched_mw", round3(ev.DispatchedMW)).
		AddField("shortfall_mw", round3(ev.ShortfallMW)).
		AddField("cost", round3(ev.Cost)).
		SetTime(ev.Time)
	if ev.OptimalCost > 0 {
		p.AddField("optimal_cost", round3(ev.OptimalCost))
	}
	points = append(points, p)
	for _, u := range ev.Units {
		points = append(points, write.NewPointWithMeasurement("unit_output").
			AddTag("run_id", ev.RunID).
			AddTag("unit", u.Name).
			AddTag("category", u.Category.String()).
			AddTag("status", u.Status.String()).
			AddField("dispatch_mw", round3(u.DispatchMW)).
			AddField("effective_mw", round3(u.EffectiveMW)).
			SetTime(ev.Time))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordOutage writes a forced outage alert.
func (s *InfluxSink) RecordOutage(ev coremetrics.OutageEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("forced_outage").
		AddTag("run_id", ev.RunID).
		AddTag("unit", ev.Alert.Unit).
		AddField("previous", ev.Alert.Previous.String()).
		AddField("block", ev.Alert.Block).
		SetTime(ev.Alert.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSummary writes the running daily totals.
func (s *InfluxSink) RecordSummary(ev coremetrics.SummaryEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("daily_summary").
		AddTag("run_id", ev.RunID).
		AddField("intervals", ev.Intervals).
		AddField("total_cost", round3(ev.TotalCost)).
		AddField("energy_mwh", round3(ev.TotalEnergyMWh)).
		AddField("shortfall_events", ev.ShortfallEvents).
		AddField("shortfall_mwh", round3(ev.TotalShortfallMWh)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
