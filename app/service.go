package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/gridsched/api/intervals"
	"github.com/kilianp07/gridsched/config"
	"github.com/kilianp07/gridsched/core/dispatch"
	"github.com/kilianp07/gridsched/core/dispatch/logging"
	coremetrics "github.com/kilianp07/gridsched/core/metrics"
	"github.com/kilianp07/gridsched/core/model"
	"github.com/kilianp07/gridsched/core/monitoring"
	"github.com/kilianp07/gridsched/infra/control"
	"github.com/kilianp07/gridsched/infra/logger"
	"github.com/kilianp07/gridsched/infra/metrics"
	"github.com/kilianp07/gridsched/internal/eventbus"
	"github.com/kilianp07/gridsched/simulator"
)

// Service wires the engine, the day runner and their sinks from configuration.
type Service struct {
	Engine *dispatch.Engine
	Runner *simulator.Runner

	sink       coremetrics.MetricsSink
	store      logging.Store
	bus        *eventbus.TypedBus[model.OutageAlert]
	control    *control.Listener
	log        logger.Logger
	listenAddr string
	apiToken   string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	engine, err := dispatch.NewEngine(cfg.Fleet, cfg.Horizon, logger.New("engine"))
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	bus := eventbus.NewTyped[model.OutageAlert]()
	engine.SetAlertBus(bus)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	store, err := logging.Open(cfg.IntervalLog)
	if err != nil {
		closeSink(sink)
		return nil, fmt.Errorf("interval log: %w", err)
	}
	runner, err := simulator.NewRunner(engine, cfg.Demand, cfg.Script, simulator.Options{
		Sink:    sink,
		Store:   store,
		Logger:  logger.New("simulator"),
		Optimal: cfg.Metrics.OptimalityCheck,
		Pace:    cfg.Control.Pace,
	})
	if err != nil {
		closeSink(sink)
		_ = store.Close()
		return nil, fmt.Errorf("simulator: %w", err)
	}
	var listener *control.Listener
	if cfg.Control.Enabled {
		listener, err = control.NewListener(cfg.Control, runner)
		if err != nil {
			closeSink(sink)
			_ = store.Close()
			return nil, fmt.Errorf("control: %w", err)
		}
	}
	return &Service{
		Engine:     engine,
		Runner:     runner,
		sink:       sink,
		store:      store,
		bus:        bus,
		control:    listener,
		log:        logg,
		listenAddr: cfg.Metrics.ListenAddr,
		apiToken:   cfg.Metrics.APIToken,
	}, nil
}

// Run simulates the day and returns the schedule. The metrics endpoint and
// the interval log API, when configured, keep serving until ctx is canceled.
func (s *Service) Run(ctx context.Context) ([]simulator.Interval, error) {
	if s.listenAddr != "" {
		go func() {
			defer monitoring.Recover()
			logs := metrics.Route{Pattern: intervals.Path, Handler: intervals.NewLogHandler(s.store, s.apiToken)}
			if err := metrics.StartPromServer(ctx, s.listenAddr, logs); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := metrics.StartOutageCollector(runCtx, s.bus, s.sink, s.Runner.RunID())
	if s.control != nil {
		go func() {
			defer monitoring.Recover()
			if err := s.control.Start(runCtx); err != nil {
				s.log.Errorf("command listener: %v", err)
			}
		}()
	}

	s.log.Infow("starting run", map[string]any{
		"run_id": s.Runner.RunID(),
		"units":  len(s.Engine.MeritOrder()),
		"blocks": s.Engine.Horizon().Blocks,
	})
	rows, err := s.Runner.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		monitoring.CaptureException(err, map[string]string{"run_id": s.Runner.RunID()})
	}
	// let the collector drain alerts raised during the run
	s.bus.Close()
	<-done
	return rows, err
}

// Close releases the sinks and the interval log.
func (s *Service) Close() error {
	s.bus.Close()
	var errs []error
	if c, ok := s.sink.(coremetrics.Closer); ok {
		errs = append(errs, c.Close())
	}
	errs = append(errs, s.store.Close())
	return errors.Join(errs...)
}

func closeSink(sink coremetrics.MetricsSink) {
	if c, ok := sink.(coremetrics.Closer); ok {
		_ = c.Close()
	}
}
