//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// PostgresContainer is a running Postgres instance with the schema applied.
type PostgresContainer struct {
	Container  *tcpostgres.PostgresContainer
	ConnString string
}

// NewPostgresContainer starts Postgres, runs the given init scripts and
// returns a ready connection string. The container is terminated when the
// test finishes.
func NewPostgresContainer(t *testing.T, initScripts ...string) *PostgresContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("amlgate"),
		tcpostgres.WithUsername("amlgate"),
		tcpostgres.WithPassword("amlgate"),
		tcpostgres.WithInitScripts(initScripts...),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	conn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}

	return &PostgresContainer{Container: container, ConnString: conn}
}
