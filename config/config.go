package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/gridsched/core/dispatch/logging"
	"github.com/kilianp07/gridsched/core/metrics"
	"github.com/kilianp07/gridsched/core/model"
	"github.com/kilianp07/gridsched/core/monitoring"
	"github.com/kilianp07/gridsched/infra/control"
	"github.com/kilianp07/gridsched/simulator"
)

// EnvPrefix marks environment variables that override file values.
// GS_DEMAND__BASE_MW=900 sets demand.base_mw.
const EnvPrefix = "GS_"

type Config struct {
	Horizon     model.Horizon          `json:"horizon"`
	Fleet       []model.UnitSpec       `json:"fleet"`
	Demand      simulator.DemandConfig `json:"demand"`
	Script      simulator.Script       `json:"script"`
	Metrics     metrics.Config         `json:"metrics"`
	IntervalLog logging.Config         `json:"interval_log"`
	Control     control.Config         `json:"control"`
	Logging     LoggingConfig          `json:"logging"`
	Monitoring  monitoring.Config      `json:"monitoring"`
}

// Default returns the reference day: the five unit dashboard fleet, 96
// quarter-hour blocks and the 800/1500 MW demand curve.
func Default() Config {
	return Config{
		Horizon: model.DefaultHorizon(),
		Demand:  simulator.DefaultDemand(),
	}
}

// Load reads a YAML or JSON file, applies GS_ environment overrides and
// validates the result. An empty path loads the defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides: GS_SECTION__KEY maps to section.key
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section that was left empty.
func (c *Config) SetDefaults() {
	if c.Horizon.Blocks == 0 {
		c.Horizon.Blocks = model.DefaultBlocks
	}
	if c.Horizon.BlockDuration == 0 {
		c.Horizon.BlockDuration = model.DefaultBlockDuration
	}
	if len(c.Fleet) == 0 {
		c.Fleet = DefaultFleet()
	}
	c.Demand.SetDefaults()
	c.IntervalLog.SetDefaults()
	c.Control.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks every section. Script unit names are checked against
// the fleet.
func (c Config) Validate() error {
	if err := c.Horizon.Validate(); err != nil {
		return fmt.Errorf("horizon: %w", err)
	}
	names := make(map[string]bool, len(c.Fleet))
	for i, u := range c.Fleet {
		if err := u.Validate(); err != nil {
			return fmt.Errorf("fleet[%d]: %w", i, err)
		}
		if names[u.Name] {
			return fmt.Errorf("fleet[%d]: %w: duplicate unit name %q", i, model.ErrInvalidArgument, u.Name)
		}
		names[u.Name] = true
	}
	if err := c.Demand.Validate(); err != nil {
		return fmt.Errorf("demand: %w", err)
	}
	if err := c.Script.Validate(c.Horizon, func(n string) bool { return names[n] }); err != nil {
		return err
	}
	if err := c.IntervalLog.Validate(); err != nil {
		return err
	}
	if err := c.Control.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}
