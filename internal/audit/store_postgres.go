package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresStore persists ledger entries using the transactional outbox
// pattern: every entry lands in audit_entries (the queryable ledger) and in
// audit_outbox (pending Kafka publication) in one transaction. There is no
// UPDATE or DELETE against audit_entries anywhere in the codebase.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle (lib/pq driver).
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insertEntry = `
		INSERT INTO audit_entries (id, actor, action, target_type, target_id, reason, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.ExecContext(ctx, insertEntry,
		entry.ID, entry.Actor, string(entry.Action),
		string(entry.TargetType), entry.TargetID,
		entry.Reason, entry.Detail, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	const insertOutbox = `
		INSERT INTO audit_outbox (id, entry_id, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err = tx.ExecContext(ctx, insertOutbox, uuid.New(), entry.ID, payload, time.Now()); err != nil {
		return fmt.Errorf("insert outbox row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByTarget(ctx context.Context, targetType TargetType, targetID string) ([]Entry, error) {
	const q = `
		SELECT id, actor, action, target_type, target_id, reason, detail, created_at
		FROM audit_entries
		WHERE target_type = $1 AND target_id = $2
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, q, string(targetType), targetID)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	const q = `
		SELECT id, actor, action, target_type, target_id, reason, detail, created_at
		FROM audit_entries
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent audit entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var out []Entry
	for rows.Next() {
		var e Entry
		var action, targetType string
		if err := rows.Scan(&e.ID, &e.Actor, &action, &targetType, &e.TargetID, &e.Reason, &e.Detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Action = Action(action)
		e.TargetType = TargetType(targetType)
		out = append(out, e)
	}
	return out, rows.Err()
}

// PendingOutbox returns unpublished outbox rows, oldest first.
func (s *PostgresStore) PendingOutbox(ctx context.Context, limit int) ([]OutboxRow, error) {
	const q = `
		SELECT id, entry_id, payload
		FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var out []OutboxRow
	for rows.Next() {
		var r OutboxRow
		if err := rows.Scan(&r.ID, &r.EntryID, &r.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkPublished stamps an outbox row after successful publication. The row
// stays for traceability; only published_at changes.
func (s *PostgresStore) MarkPublished(ctx context.Context, outboxID uuid.UUID) error {
	const q = `UPDATE audit_outbox SET published_at = $1 WHERE id = $2`
	if _, err := s.db.ExecContext(ctx, q, time.Now(), outboxID); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

// OutboxRow is one pending publication.
type OutboxRow struct {
	ID      uuid.UUID
	EntryID uuid.UUID
	Payload []byte
}
