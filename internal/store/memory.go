package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/workiq/weave/pkg/api"
)

// MemoryStore keeps execution history in process memory. It is the
// default when no Redis address is configured
type MemoryStore struct {
	records map[string]*api.ExecutionRecord
	order   []string
	limit   int
	mu      sync.RWMutex
}

func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{
		records: map[string]*api.ExecutionRecord{},
		limit:   limit,
	}
}

func (s *MemoryStore) Save(_ context.Context, rec *api.ExecutionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; !ok {
		s.order = append([]string{rec.ID}, s.order...)
	}
	s.records[rec.ID] = rec

	for len(s.order) > s.limit {
		last := s.order[len(s.order)-1]
		s.order = s.order[:len(s.order)-1]
		delete(s.records, last)
	}
	return nil
}

func (s *MemoryStore) Get(
	_ context.Context, id string,
) (*api.ExecutionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrExecutionNotFound, id)
	}
	return rec, nil
}

func (s *MemoryStore) List(
	_ context.Context,
) ([]*api.ExecutionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]*api.ExecutionRecord, 0, len(s.order))
	for _, id := range s.order {
		res = append(res, s.records[id])
	}
	return res, nil
}
