package metrics

import "github.com/kilianp07/gridsched/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// ListenAddr exposes /metrics when a prometheus sink is configured.
	ListenAddr string `json:"listen_addr"`
	// APIToken guards the interval log endpoint served next to /metrics.
	APIToken string `json:"api_token"`
	// OptimalityCheck solves the LP bound every block and reports the gap.
	OptimalityCheck bool `json:"optimality_check"`
}
