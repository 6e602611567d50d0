package audit

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	dErrors "amlgate/pkg/domain-errors"
	"amlgate/pkg/requestcontext"
)

// Publisher emits ledger entries with synchronous, fail-closed semantics.
// The caller blocks until the write succeeds; if it fails, the calling
// operation MUST fail. An unauditable decision is not allowed to happen.
type Publisher struct {
	store   Store
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

// NewPublisher creates a ledger publisher over the given store.
func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit validates and appends one entry. Deletion actions without a non-empty
// reason are rejected outright with an audit policy error.
func (p *Publisher) Emit(ctx context.Context, entry Entry) error {
	if entry.Action == "" {
		return dErrors.New(dErrors.CodeAuditPolicy, "audit entry requires an action")
	}
	if entry.TargetID == "" {
		return dErrors.New(dErrors.CodeAuditPolicy, "audit entry requires a target")
	}
	if entry.Action.RequiresReason() && strings.TrimSpace(entry.Reason) == "" {
		return dErrors.Newf(dErrors.CodeAuditPolicy,
			"%s requires a deletion reason", entry.Action)
	}

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = requestcontext.Now(ctx)
	}
	if entry.Actor == "" {
		entry.Actor = "system"
	}

	if err := p.store.Append(ctx, entry); err != nil {
		p.metrics.IncAppendFailure()
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "CRITICAL: audit append failed",
				"action", entry.Action,
				"target_type", entry.TargetType,
				"target_id", entry.TargetID,
				"error", err,
			)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "audit persistence failed")
	}

	p.metrics.IncEntryAppended(string(entry.Action))
	return nil
}

// ListByTarget returns the ledger trail for one target.
func (p *Publisher) ListByTarget(ctx context.Context, targetType TargetType, targetID string) ([]Entry, error) {
	return p.store.ListByTarget(ctx, targetType, targetID)
}

// ListRecent returns the most recent entries for compliance review.
func (p *Publisher) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return p.store.ListRecent(ctx, limit)
}
