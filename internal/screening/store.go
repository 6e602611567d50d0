package screening

import (
	"context"

	id "amlgate/pkg/domain"
)

// Store persists the immutable screening history. Results are only ever
// appended; the client's current state is the latest entry.
type Store interface {
	Append(ctx context.Context, result *Result) error
	Latest(ctx context.Context, clientID id.ClientID) (*Result, error)
	ListByClient(ctx context.Context, clientID id.ClientID) ([]*Result, error)
}

// Cache is an optional read-through cache for the latest result. A cache
// miss or cache failure falls through to the store; staleness decisions are
// made on the stored timestamp either way.
type Cache interface {
	SaveLatest(ctx context.Context, result *Result) error
	FindLatest(ctx context.Context, clientID id.ClientID) (*Result, error)
}
