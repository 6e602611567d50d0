//go:build integration

package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"amlgate/internal/platform/config"
	"amlgate/internal/platform/kafka"
	"amlgate/pkg/testutil/containers"
)

func TestOutboxWorker_DrainsToBroker(t *testing.T) {
	ctx := context.Background()
	store := newLedgerStore(t)
	broker := containers.NewRedpandaContainer(t)

	const topic = "aml.audit.entries"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	publisher, err := kafka.NewPublisher(config.KafkaConfig{
		Brokers: []string{broker.Broker},
		Topic:   topic,
	}, logger)
	require.NoError(t, err)
	require.NotNil(t, publisher)
	t.Cleanup(publisher.Close)

	now := time.Now().UTC().Truncate(time.Microsecond)
	first := ledgerEntry("c-1", ActionScreeningCompleted, now.Add(-time.Minute))
	second := ledgerEntry("c-1", ActionClientBlocked, now)
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	workerCtx, stop := context.WithCancel(ctx)
	t.Cleanup(stop)
	worker := NewOutboxWorker(store, publisher, logger, nil, 50*time.Millisecond)
	go worker.Run(workerCtx)

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	var records []*kgo.Record
	deadline := time.Now().Add(30 * time.Second)
	for len(records) < 2 && time.Now().Before(deadline) {
		pollCtx, cancel := context.WithTimeout(ctx, time.Second)
		fetches := consumer.PollFetches(pollCtx)
		cancel()
		fetches.EachRecord(func(r *kgo.Record) { records = append(records, r) })
	}
	require.Len(t, records, 2, "both outbox rows should reach the broker")

	// Ledger order is preserved and records are keyed by entry ID.
	assert.Equal(t, first.ID.String(), string(records[0].Key))
	assert.Equal(t, second.ID.String(), string(records[1].Key))
	assert.Contains(t, string(records[0].Value), string(ActionScreeningCompleted))
	assert.Contains(t, string(records[1].Value), string(ActionClientBlocked))

	// Published rows leave the pending set.
	require.Eventually(t, func() bool {
		pending, err := store.PendingOutbox(ctx, 10)
		return err == nil && len(pending) == 0
	}, 10*time.Second, 100*time.Millisecond)
}
