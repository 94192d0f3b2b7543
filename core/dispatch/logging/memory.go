package logging

import (
	"context"
	"sync"
)

// MemoryStore keeps records in process memory. It is the default backend
// when no path is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records []IntervalRecord
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Append(ctx context.Context, rec IntervalRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, q LogQuery) ([]IntervalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []IntervalRecord
	for _, r := range s.records {
		if q.Match(r) {
			res = append(res, r)
		}
	}
	return res, nil
}

func (s *MemoryStore) Close() error { return nil }
