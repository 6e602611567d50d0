package transaction

import (
	"context"
	"sort"
	"sync"
	"time"

	"amlgate/pkg/domain"
	"amlgate/pkg/platform/sentinel"
)

// InMemoryStore is the test and development transaction store.
type InMemoryStore struct {
	mu  sync.RWMutex
	txs map[domain.TransactionID]Transaction
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{txs: make(map[domain.TransactionID]Transaction)}
}

func (s *InMemoryStore) Create(_ context.Context, tx Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[tx.ID]; ok {
		return sentinel.ErrConflict
	}
	s.txs[tx.ID] = tx
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, txID domain.TransactionID) (Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.txs[txID]
	if !ok {
		return Transaction{}, sentinel.ErrNotFound
	}
	return tx, nil
}

func (s *InMemoryStore) ListWindow(_ context.Context, clientID domain.ClientID, activity domain.ActivityCode, from, to time.Time) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Transaction
	for _, tx := range s.txs {
		if tx.ClientID != clientID || tx.Activity != activity || tx.Deleted() {
			continue
		}
		if tx.OccurredAt.Before(from) || tx.OccurredAt.After(to) {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (s *InMemoryStore) SoftDelete(_ context.Context, txID domain.TransactionID, reason string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[txID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if tx.Deleted() {
		return sentinel.ErrAlreadyDeleted
	}
	tx.DeletedAt = &at
	tx.DeleteReason = reason
	s.txs[txID] = tx
	return nil
}
