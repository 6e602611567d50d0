package client

import (
	"context"
	"sort"
	"sync"

	"amlgate/pkg/domain"
	"amlgate/pkg/platform/sentinel"
)

// InMemoryStore is the test and development client store.
type InMemoryStore struct {
	mu      sync.RWMutex
	clients map[domain.ClientID]Client
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{clients: make(map[domain.ClientID]Client)}
}

func (s *InMemoryStore) Create(_ context.Context, c Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.ID]; ok {
		return sentinel.ErrConflict
	}
	s.clients[c.ID] = c
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, clientID domain.ClientID) (Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[clientID]
	if !ok || c.Deleted() {
		return Client{}, sentinel.ErrNotFound
	}
	return c, nil
}

func (s *InMemoryStore) Update(_ context.Context, c Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.clients[c.ID] = c
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Client, 0, len(s.clients))
	for _, c := range s.clients {
		if !c.Deleted() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
