package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/gridsched/core/metrics"
	"github.com/kilianp07/gridsched/core/model"
	"github.com/kilianp07/gridsched/infra/logger"
	"github.com/kilianp07/gridsched/internal/eventbus"
)

// StartOutageCollector subscribes to the alert bus and forwards every alert
// to sinks implementing OutageRecorder. It stops when the context is
// canceled or the bus is closed; the returned channel is closed on exit.
func StartOutageCollector(ctx context.Context, bus *eventbus.TypedBus[model.OutageAlert], sink coremetrics.MetricsSink, runID string) <-chan struct{} {
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.OutageRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	log := logger.New("outage-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case alert, ok := <-sub:
				if !ok {
					return
				}
				if err := rec.RecordOutage(coremetrics.OutageEvent{RunID: runID, Alert: alert}); err != nil {
					log.Errorf("record outage for %s: %v", alert.Unit, err)
				}
			}
		}
	}()
	return done
}
