package metrics_test

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/gridsched/core/factory"
	metrics "github.com/kilianp07/gridsched/core/metrics"
	_ "github.com/kilianp07/gridsched/infra/metrics"
)

func TestMetricsFactory_Builtins(t *testing.T) {
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	if err != nil {
		t.Fatalf("create nop: %v", err)
	}
	if s == nil {
		t.Fatal("expected sink instance")
	}
	_, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}})
	if !errors.Is(err, factory.ErrUnknownType) {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}

func TestNewMetricsSink_Multi(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("empty config: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}

	var cfg metrics.Config
	data := "sinks:\n  - type: nop\n  - type: nop\n"
	if err := yaml.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("yaml unmarshal: %v", err)
	}
	s, err = metrics.NewMetricsSink(cfg.Sinks)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	m, ok := s.(*metrics.MultiSink)
	if !ok {
		t.Fatalf("expected MultiSink, got %T", s)
	}
	if len(m.Sinks) != 2 {
		t.Fatalf("expected 2 sinks got %d", len(m.Sinks))
	}
}

func TestSinkTypesIncludesBuiltins(t *testing.T) {
	got := map[string]bool{}
	for _, n := range metrics.SinkTypes() {
		got[n] = true
	}
	for _, want := range []string{"nop", "prometheus", "influx", "mqtt"} {
		if !got[want] {
			t.Fatalf("sink type %s not registered: %v", want, metrics.SinkTypes())
		}
	}
}
