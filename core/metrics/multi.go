package metrics

import "errors"

// MultiSink fans events out to several sinks. Optional recorder interfaces
// are forwarded only to the sinks that implement them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordInterval forwards the event to all sinks. Every sink is tried and
// the errors are joined.
func (m *MultiSink) RecordInterval(ev IntervalEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordInterval(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordOutage forwards outage events.
func (m *MultiSink) RecordOutage(ev OutageEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(OutageRecorder); ok {
			if err := rec.RecordOutage(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordSummary forwards summary events.
func (m *MultiSink) RecordSummary(ev SummaryEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(SummaryRecorder); ok {
			if err := rec.RecordSummary(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if c, ok := s.(Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
