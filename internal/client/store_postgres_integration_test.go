//go:build integration

package client

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amlgate/internal/screening"
	"amlgate/pkg/domain"
	"amlgate/pkg/platform/sentinel"
	"amlgate/pkg/testutil/containers"
)

func newClientStore(t *testing.T) *PostgresStore {
	t.Helper()
	pg := containers.NewPostgresContainer(t, filepath.Join("..", "..", "migrations", "001_init.sql"))
	pool, err := pgxpool.New(context.Background(), pg.ConnString)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewPostgresStore(pool)
}

func TestPostgresStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := newClientStore(t)
	now := time.Now().UTC().Truncate(time.Microsecond)

	c := Client{
		ID:         domain.NewClientID(),
		LegalID:    "12345678-5",
		FullName:   "Comercial Andes Ltda",
		PersonType: PersonLegal,
		Sector:     "retail",
		Activity:   "casa_de_cambio",
		State:      StateDraft,
		RiskLevel:  screening.LevelPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, store.Create(ctx, c))

	got, err := store.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.LegalID, got.LegalID)
	assert.Equal(t, PersonLegal, got.PersonType)
	assert.Equal(t, domain.ActivityCode("casa_de_cambio"), got.Activity)
	assert.Equal(t, screening.LevelPending, got.RiskLevel)
	assert.Nil(t, got.LastScreeningAt)

	screenedAt := now.Add(-time.Hour)
	got.State = StateApproved
	got.RiskLevel = screening.LevelLow
	got.RiskScore = 0.1
	got.LastScreeningAt = &screenedAt
	got.UpdatedAt = now
	require.NoError(t, store.Update(ctx, got))

	updated, err := store.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, StateApproved, updated.State)
	assert.Equal(t, screening.LevelLow, updated.RiskLevel)
	require.NotNil(t, updated.LastScreeningAt)
	assert.WithinDuration(t, screenedAt, *updated.LastScreeningAt, time.Second)
}

func TestPostgresStore_SoftDeleteHidesRow(t *testing.T) {
	ctx := context.Background()
	store := newClientStore(t)
	now := time.Now().UTC().Truncate(time.Microsecond)

	c := Client{
		ID:         domain.NewClientID(),
		LegalID:    "9876543-1",
		FullName:   "Acme SpA",
		PersonType: PersonLegal,
		State:      StateDraft,
		RiskLevel:  screening.LevelPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, store.Create(ctx, c))

	c.DeletedAt = &now
	c.DeleteReason = "duplicate case file"
	c.State = StateDeleted
	require.NoError(t, store.Update(ctx, c))

	_, err := store.Get(ctx, c.ID)
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	list, err := store.List(ctx)
	require.NoError(t, err)
	for _, item := range list {
		assert.NotEqual(t, c.ID, item.ID)
	}
}

func TestPostgresStore_UpdateMissing(t *testing.T) {
	ctx := context.Background()
	store := newClientStore(t)

	err := store.Update(ctx, Client{ID: domain.NewClientID(), UpdatedAt: time.Now()})
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}
