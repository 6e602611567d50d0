//go:build integration

package transaction

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amlgate/pkg/domain"
	"amlgate/pkg/platform/sentinel"
	"amlgate/pkg/testutil/containers"
)

func newTxStore(t *testing.T) *PostgresStore {
	t.Helper()
	pg := containers.NewPostgresContainer(t, filepath.Join("..", "..", "migrations", "001_init.sql"))
	pool, err := pgxpool.New(context.Background(), pg.ConnString)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewPostgresStore(pool)
}

func seedTx(clientID domain.ClientID, units int64, at time.Time) Transaction {
	return Transaction{
		ID:             domain.NewTransactionID(),
		ClientID:       clientID,
		Activity:       "casa_de_cambio",
		Amount:         decimal.NewFromInt(units * 1000),
		Currency:       "CLP",
		Method:         MethodTransfer,
		AmountUnits:    decimal.NewFromInt(units),
		Classification: ClassNormal,
		Obligation:     ObligationNone,
		OccurredAt:     at,
		CreatedAt:      at,
	}
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTxStore(t)
	now := time.Now().UTC().Truncate(time.Microsecond)

	original := domain.NewTransactionID()
	tx := seedTx(domain.NewClientID(), 150, now)
	tx.Classification = ClassConcerning
	tx.Obligation = ObligationReport24h
	tx.Alerts = []Alert{{Code: AlertCashOverLimit, Message: "cash over limit", LegalBasis: "Art. 3, Ley 19.913"}}
	tx.Amends = &original

	require.NoError(t, store.Create(ctx, tx))

	got, err := store.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, got.AmountUnits.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, ClassConcerning, got.Classification)
	assert.Equal(t, ObligationReport24h, got.Obligation)
	require.Len(t, got.Alerts, 1)
	assert.Equal(t, AlertCashOverLimit, got.Alerts[0].Code)
	require.NotNil(t, got.Amends)
	assert.Equal(t, original, *got.Amends)
}

func TestPostgresStore_ListWindow(t *testing.T) {
	ctx := context.Background()
	store := newTxStore(t)
	now := time.Now().UTC().Truncate(time.Microsecond)
	clientID := domain.NewClientID()

	inWindow := seedTx(clientID, 100, now.AddDate(0, -1, 0))
	older := seedTx(clientID, 200, now.AddDate(0, -3, 0))
	outOfWindow := seedTx(clientID, 300, now.AddDate(0, -8, 0))
	otherActivity := seedTx(clientID, 400, now.AddDate(0, -1, 0))
	otherActivity.Activity = "notaria"
	deleted := seedTx(clientID, 500, now.AddDate(0, -1, 0))

	for _, tx := range []Transaction{inWindow, older, outOfWindow, otherActivity, deleted} {
		require.NoError(t, store.Create(ctx, tx))
	}
	require.NoError(t, store.SoftDelete(ctx, deleted.ID, "typo", now))

	from := now.AddDate(0, -6, 0)
	window, err := store.ListWindow(ctx, clientID, "casa_de_cambio", from, now)
	require.NoError(t, err)
	require.Len(t, window, 2)
	// Oldest first.
	assert.Equal(t, older.ID, window[0].ID)
	assert.Equal(t, inWindow.ID, window[1].ID)

	// The upper bound is inclusive: a prior transaction sharing the new
	// transaction's timestamp still counts.
	atBound := seedTx(clientID, 50, now)
	require.NoError(t, store.Create(ctx, atBound))
	window, err = store.ListWindow(ctx, clientID, "casa_de_cambio", from, now)
	require.NoError(t, err)
	require.Len(t, window, 3)
	assert.Equal(t, atBound.ID, window[2].ID)
}

func TestPostgresStore_SoftDelete(t *testing.T) {
	ctx := context.Background()
	store := newTxStore(t)
	now := time.Now().UTC().Truncate(time.Microsecond)

	tx := seedTx(domain.NewClientID(), 100, now)
	require.NoError(t, store.Create(ctx, tx))
	require.NoError(t, store.SoftDelete(ctx, tx.ID, "operator typo", now))

	// Deleted rows stay readable with their reason.
	got, err := store.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted())
	assert.Equal(t, "operator typo", got.DeleteReason)

	err = store.SoftDelete(ctx, tx.ID, "again", now)
	require.ErrorIs(t, err, sentinel.ErrAlreadyDeleted)

	err = store.SoftDelete(ctx, domain.NewTransactionID(), "missing", now)
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}
