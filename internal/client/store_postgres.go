package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"amlgate/internal/screening"
	"amlgate/pkg/domain"
	"amlgate/pkg/platform/sentinel"
)

// PostgresStore persists clients in the clients table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a pgx connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const clientColumns = `
	id, legal_id, full_name, person_type, sector, source_of_funds,
	activity, activity_locked, state, risk_level, risk_score,
	last_screening_at, created_at, updated_at, deleted_at, delete_reason
`

func (s *PostgresStore) Create(ctx context.Context, c Client) error {
	const q = `
		INSERT INTO clients (` + clientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := s.pool.Exec(ctx, q,
		c.ID.String(), c.LegalID, c.FullName, string(c.PersonType), c.Sector, c.SourceOfFunds,
		string(c.Activity), c.ActivityLocked, string(c.State), string(c.RiskLevel), c.RiskScore,
		c.LastScreeningAt, c.CreatedAt, c.UpdatedAt, c.DeletedAt, c.DeleteReason,
	)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, clientID domain.ClientID) (Client, error) {
	const q = `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE id = $1 AND deleted_at IS NULL
	`
	return s.scanClient(s.pool.QueryRow(ctx, q, clientID.String()))
}

func (s *PostgresStore) Update(ctx context.Context, c Client) error {
	const q = `
		UPDATE clients SET
			legal_id = $2, full_name = $3, person_type = $4, sector = $5,
			source_of_funds = $6, activity = $7, activity_locked = $8,
			state = $9, risk_level = $10, risk_score = $11,
			last_screening_at = $12, updated_at = $13,
			deleted_at = $14, delete_reason = $15
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, q,
		c.ID.String(), c.LegalID, c.FullName, string(c.PersonType), c.Sector,
		c.SourceOfFunds, string(c.Activity), c.ActivityLocked,
		string(c.State), string(c.RiskLevel), c.RiskScore,
		c.LastScreeningAt, c.UpdatedAt,
		c.DeletedAt, c.DeleteReason,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Client, error) {
	const q = `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE deleted_at IS NULL
		ORDER BY created_at ASC
	`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := s.scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanClient(row rowScanner) (Client, error) {
	var c Client
	var rawID, personType, state, activity, riskLevel string
	err := row.Scan(
		&rawID, &c.LegalID, &c.FullName, &personType, &c.Sector, &c.SourceOfFunds,
		&activity, &c.ActivityLocked, &state, &riskLevel, &c.RiskScore,
		&c.LastScreeningAt, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt, &c.DeleteReason,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, sentinel.ErrNotFound
		}
		return Client{}, fmt.Errorf("scan client: %w", err)
	}

	c.ID, err = domain.ParseClientID(rawID)
	if err != nil {
		return Client{}, fmt.Errorf("parse client id: %w", err)
	}
	c.PersonType = PersonType(personType)
	c.State = CaseState(state)
	c.Activity = domain.ActivityCode(activity)
	c.RiskLevel = screening.RiskLevel(riskLevel)
	return c, nil
}
