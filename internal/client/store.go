package client

import (
	"context"

	"amlgate/pkg/domain"
)

// Store persists clients. Get excludes soft-deleted rows; deletion happens
// through Update with DeletedAt set, never a SQL DELETE.
type Store interface {
	Create(ctx context.Context, c Client) error
	Get(ctx context.Context, clientID domain.ClientID) (Client, error)
	Update(ctx context.Context, c Client) error
	List(ctx context.Context) ([]Client, error)
}
