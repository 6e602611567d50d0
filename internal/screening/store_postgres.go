package screening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	id "amlgate/pkg/domain"
	"amlgate/pkg/platform/sentinel"
)

// PostgresStore persists screening history keyed by (client_id, created_at).
// Rows are insert-only; there is no update or delete statement in this file
// on purpose.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Append(ctx context.Context, result *Result) error {
	sources, err := json.Marshal(result.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}
	alerts, err := json.Marshal(result.Alerts)
	if err != nil {
		return fmt.Errorf("marshal alerts: %w", err)
	}

	const q = `
		INSERT INTO screenings (id, client_id, score, level, approved, sources, alerts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.pool.Exec(ctx, q,
		uuid.UUID(result.ID),
		uuid.UUID(result.ClientID),
		result.Score,
		string(result.Level),
		result.Approved,
		sources,
		alerts,
		result.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert screening: %w", err)
	}
	return nil
}

func (s *PostgresStore) Latest(ctx context.Context, clientID id.ClientID) (*Result, error) {
	const q = `
		SELECT id, client_id, score, level, approved, sources, alerts, created_at
		FROM screenings
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	result, err := scanResult(s.pool.QueryRow(ctx, q, uuid.UUID(clientID)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest screening: %w", err)
	}
	return result, nil
}

func (s *PostgresStore) ListByClient(ctx context.Context, clientID id.ClientID) ([]*Result, error) {
	const q = `
		SELECT id, client_id, score, level, approved, sources, alerts, created_at
		FROM screenings
		WHERE client_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.pool.Query(ctx, q, uuid.UUID(clientID))
	if err != nil {
		return nil, fmt.Errorf("query screening history: %w", err)
	}
	defer rows.Close()

	var out []*Result
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan screening: %w", err)
		}
		out = append(out, result)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*Result, error) {
	var (
		resultID uuid.UUID
		clientID uuid.UUID
		level    string
		sources  []byte
		alerts   []byte
		result   Result
	)
	err := row.Scan(&resultID, &clientID, &result.Score, &level, &result.Approved, &sources, &alerts, &result.Timestamp)
	if err != nil {
		return nil, err
	}
	result.ID = id.ScreeningID(resultID)
	result.ClientID = id.ClientID(clientID)
	result.Level = RiskLevel(level)
	if err := json.Unmarshal(sources, &result.Sources); err != nil {
		return nil, fmt.Errorf("unmarshal sources: %w", err)
	}
	if err := json.Unmarshal(alerts, &result.Alerts); err != nil {
		return nil, fmt.Errorf("unmarshal alerts: %w", err)
	}
	return &result, nil
}
