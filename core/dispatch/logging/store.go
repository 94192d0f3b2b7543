// Package logging persists the outcome of every dispatch interval so a day
// can be inspected after the fact.
package logging

import (
	"context"
	"time"

	"github.com/kilianp07/gridsched/core/model"
)

// IntervalRecord captures one processed block.
type IntervalRecord struct {
	RunID        string               `json:"run_id"`
	Block        int                  `json:"block"`
	Label        string               `json:"label"`
	Timestamp    time.Time            `json:"timestamp"`
	DemandMW     float64              `json:"demand_mw"`
	DispatchedMW float64              `json:"dispatched_mw"`
	ShortfallMW  float64              `json:"shortfall_mw"`
	Cost         float64              `json:"cost"`
	OptimalCost  float64              `json:"optimal_cost"`
	Committed    []string             `json:"committed,omitempty"`
	Units        []model.UnitSnapshot `json:"units"`
}

// LogQuery filters stored records. Zero values match everything; ToBlock is
// inclusive and only applied when HasTo is set.
type LogQuery struct {
	RunID     string
	FromBlock int
	ToBlock   int
	HasTo     bool
	Unit      string
}

// BlockRange returns a query covering the inclusive range [from, to].
func BlockRange(from, to int) LogQuery {
	return LogQuery{FromBlock: from, ToBlock: to, HasTo: true}
}

// Store persists IntervalRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec IntervalRecord) error
	Query(ctx context.Context, q LogQuery) ([]IntervalRecord, error)
	Close() error
}

// Match reports whether rec satisfies q. A unit filter matches records in
// which the unit produced energy or was committed.
func (q LogQuery) Match(rec IntervalRecord) bool {
	if q.RunID != "" && rec.RunID != q.RunID {
		return false
	}
	if rec.Block < q.FromBlock {
		return false
	}
	if q.HasTo && rec.Block > q.ToBlock {
		return false
	}
	if q.Unit == "" {
		return true
	}
	for _, name := range rec.Committed {
		if name == q.Unit {
			return true
		}
	}
	for _, u := range rec.Units {
		if u.Name == q.Unit && u.DispatchMW > 0 {
			return true
		}
	}
	return false
}
