package audit

import (
	"context"
	"log/slog"
	"time"

	"amlgate/internal/platform/kafka"
)

// OutboxWorker drains the audit outbox into Kafka. Publication is
// asynchronous and at-least-once; the ledger write itself already happened
// synchronously, so a slow broker never blocks a business operation.
type OutboxWorker struct {
	store     *PostgresStore
	publisher *kafka.Publisher
	logger    *slog.Logger
	metrics   *Metrics

	interval  time.Duration
	batchSize int
}

// NewOutboxWorker creates a worker polling at the given interval.
func NewOutboxWorker(store *PostgresStore, publisher *kafka.Publisher, logger *slog.Logger, metrics *Metrics, interval time.Duration) *OutboxWorker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &OutboxWorker{
		store:     store,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		interval:  interval,
		batchSize: 100,
	}
}

// Run polls until ctx is cancelled.
func (w *OutboxWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *OutboxWorker) drain(ctx context.Context) {
	rows, err := w.store.PendingOutbox(ctx, w.batchSize)
	if err != nil {
		w.logger.ErrorContext(ctx, "outbox poll failed", "error", err)
		return
	}
	w.metrics.SetOutboxLag(len(rows))
	if len(rows) == 0 {
		return
	}

	published := 0
	for _, row := range rows {
		if err := w.publisher.Publish(ctx, row.EntryID.String(), row.Payload); err != nil {
			// Stop the batch; rows stay pending and order is preserved.
			w.logger.WarnContext(ctx, "outbox publish failed", "outbox_id", row.ID, "error", err)
			break
		}
		if err := w.store.MarkPublished(ctx, row.ID); err != nil {
			w.logger.ErrorContext(ctx, "outbox mark failed", "outbox_id", row.ID, "error", err)
			break
		}
		published++
	}

	if published > 0 {
		w.metrics.SetOutboxLag(len(rows) - published)
		w.logger.DebugContext(ctx, "outbox drained", "published", published)
	}
}
