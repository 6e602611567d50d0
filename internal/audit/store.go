package audit

import "context"

// Store persists ledger entries. Implementations expose no update or delete
// operation; the interface shape is part of the retention guarantee.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListByTarget(ctx context.Context, targetType TargetType, targetID string) ([]Entry, error)
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}
