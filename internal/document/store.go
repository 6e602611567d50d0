package document

import (
	"context"
	"sort"
	"sync"
	"time"

	"amlgate/pkg/domain"
	"amlgate/pkg/platform/sentinel"
)

// Store persists documents. Removal is a soft-delete stamp only.
type Store interface {
	Create(ctx context.Context, d Document) error
	Get(ctx context.Context, docID domain.DocumentID) (Document, error)
	ListByClient(ctx context.Context, clientID domain.ClientID) ([]Document, error)
	SoftDelete(ctx context.Context, docID domain.DocumentID, reason string, at time.Time) error
}

// InMemoryStore is the test and development document store.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[domain.DocumentID]Document
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[domain.DocumentID]Document)}
}

func (s *InMemoryStore) Create(_ context.Context, d Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[d.ID]; ok {
		return sentinel.ErrConflict
	}
	s.docs[d.ID] = d
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, docID domain.DocumentID) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[docID]
	if !ok {
		return Document{}, sentinel.ErrNotFound
	}
	return d, nil
}

func (s *InMemoryStore) ListByClient(_ context.Context, clientID domain.ClientID) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Document
	for _, d := range s.docs {
		if d.ClientID == clientID && !d.Deleted() {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) SoftDelete(_ context.Context, docID domain.DocumentID, reason string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[docID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if d.Deleted() {
		return sentinel.ErrAlreadyDeleted
	}
	d.DeletedAt = &at
	d.DeleteReason = reason
	s.docs[docID] = d
	return nil
}
