package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"amlgate/pkg/domain"
	"amlgate/pkg/platform/sentinel"
)

// PostgresStore persists transactions in the transactions table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a pgx connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, tx Transaction) error {
	alerts, err := json.Marshal(tx.Alerts)
	if err != nil {
		return fmt.Errorf("marshal alerts: %w", err)
	}
	var amends *string
	if tx.Amends != nil {
		v := tx.Amends.String()
		amends = &v
	}

	const q = `
		INSERT INTO transactions (
			id, client_id, activity, amount, currency, method, amount_units,
			classification, obligation, alerts, occurred_at, created_at, amends_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = s.pool.Exec(ctx, q,
		tx.ID.String(), tx.ClientID.String(), string(tx.Activity),
		tx.Amount, tx.Currency, string(tx.Method), tx.AmountUnits,
		string(tx.Classification), string(tx.Obligation), alerts,
		tx.OccurredAt, tx.CreatedAt, amends,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

const txColumns = `
	id, client_id, activity, amount, currency, method, amount_units,
	classification, obligation, alerts, occurred_at, created_at,
	deleted_at, delete_reason, amends_id
`

func (s *PostgresStore) Get(ctx context.Context, txID domain.TransactionID) (Transaction, error) {
	const q = `SELECT ` + txColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(s.pool.QueryRow(ctx, q, txID.String()))
}

func (s *PostgresStore) ListWindow(ctx context.Context, clientID domain.ClientID, activity domain.ActivityCode, from, to time.Time) ([]Transaction, error) {
	const q = `
		SELECT ` + txColumns + `
		FROM transactions
		WHERE client_id = $1 AND activity = $2
		  AND occurred_at >= $3 AND occurred_at <= $4
		  AND deleted_at IS NULL
		ORDER BY occurred_at ASC
	`
	rows, err := s.pool.Query(ctx, q, clientID.String(), string(activity), from, to)
	if err != nil {
		return nil, fmt.Errorf("query transaction window: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SoftDelete(ctx context.Context, txID domain.TransactionID, reason string, at time.Time) error {
	const q = `
		UPDATE transactions
		SET deleted_at = $2, delete_reason = $3
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := s.pool.Exec(ctx, q, txID.String(), at, reason)
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either missing or already deleted; a second lookup disambiguates.
		if _, getErr := s.Get(ctx, txID); getErr != nil {
			return getErr
		}
		return sentinel.ErrAlreadyDeleted
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (Transaction, error) {
	var tx Transaction
	var rawID, rawClientID, activity, method, class, obligation string
	var alerts []byte
	var amends *string

	err := row.Scan(
		&rawID, &rawClientID, &activity, &tx.Amount, &tx.Currency, &method, &tx.AmountUnits,
		&class, &obligation, &alerts, &tx.OccurredAt, &tx.CreatedAt,
		&tx.DeletedAt, &tx.DeleteReason, &amends,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, sentinel.ErrNotFound
		}
		return Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	if tx.ID, err = domain.ParseTransactionID(rawID); err != nil {
		return Transaction{}, fmt.Errorf("parse transaction id: %w", err)
	}
	if tx.ClientID, err = domain.ParseClientID(rawClientID); err != nil {
		return Transaction{}, fmt.Errorf("parse client id: %w", err)
	}
	tx.Activity = domain.ActivityCode(activity)
	tx.Method = PaymentMethod(method)
	tx.Classification = Classification(class)
	tx.Obligation = Obligation(obligation)
	if len(alerts) > 0 {
		if err := json.Unmarshal(alerts, &tx.Alerts); err != nil {
			return Transaction{}, fmt.Errorf("unmarshal alerts: %w", err)
		}
	}
	if amends != nil {
		id, err := domain.ParseTransactionID(*amends)
		if err != nil {
			return Transaction{}, fmt.Errorf("parse amends id: %w", err)
		}
		tx.Amends = &id
	}
	return tx, nil
}
