package screening

import (
	"context"
	"sync"

	id "amlgate/pkg/domain"
	"amlgate/pkg/platform/sentinel"
)

// InMemoryStore keeps screening history per client. Authoritative for unit
// tests; production uses the Postgres store.
type InMemoryStore struct {
	mu      sync.RWMutex
	history map[id.ClientID][]*Result
}

// NewInMemoryStore creates an empty history store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{history: make(map[id.ClientID][]*Result)}
}

// Append adds a snapshot to the client's history.
func (s *InMemoryStore) Append(_ context.Context, result *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *result
	s.history[result.ClientID] = append(s.history[result.ClientID], &cp)
	return nil
}

// Latest returns the most recent snapshot for the client.
func (s *InMemoryStore) Latest(_ context.Context, clientID id.ClientID) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := s.history[clientID]
	if len(results) == 0 {
		return nil, sentinel.ErrNotFound
	}
	cp := *results[len(results)-1]
	return &cp, nil
}

// ListByClient returns the full history, oldest first.
func (s *InMemoryStore) ListByClient(_ context.Context, clientID id.ClientID) ([]*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := s.history[clientID]
	out := make([]*Result, len(results))
	for i, r := range results {
		cp := *r
		out[i] = &cp
	}
	return out, nil
}
