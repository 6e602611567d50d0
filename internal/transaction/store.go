package transaction

import (
	"context"
	"time"

	"amlgate/pkg/domain"
)

// Store persists transactions. Records are immutable once created; the only
// update is the soft-delete stamp.
type Store interface {
	Create(ctx context.Context, tx Transaction) error
	Get(ctx context.Context, txID domain.TransactionID) (Transaction, error)
	// ListWindow returns the client's non-deleted transactions for one
	// activity with occurred_at in [from, to], oldest first. The upper bound
	// is inclusive so history sharing the new transaction's timestamp still
	// counts toward accumulation.
	ListWindow(ctx context.Context, clientID domain.ClientID, activity domain.ActivityCode, from, to time.Time) ([]Transaction, error)
	SoftDelete(ctx context.Context, txID domain.TransactionID, reason string, at time.Time) error
}
