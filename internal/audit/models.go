// Package audit is the append-only ledger of every state-changing decision.
// Entries are never updated or removed; deletions elsewhere in the system are
// soft and must arrive here with a reason.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names what happened. The set is closed so downstream compliance
// tooling can rely on it.
type Action string

const (
	ActionScreeningCompleted    Action = "screening_completed"
	ActionClientBlocked         Action = "client_blocked"
	ActionBlockCleared          Action = "block_cleared"
	ActionClientDeleted         Action = "client_deleted"
	ActionTransactionRegistered Action = "transaction_registered"
	ActionTransactionDeleted    Action = "transaction_deleted"
	ActionDocumentDeleted       Action = "document_deleted"
)

// deleteActions require a non-empty reason; the ledger rejects them without
// one instead of defaulting to an empty string.
var deleteActions = map[Action]bool{
	ActionClientDeleted:      true,
	ActionTransactionDeleted: true,
	ActionDocumentDeleted:    true,
}

// RequiresReason reports whether the ledger demands a reason for the action.
func (a Action) RequiresReason() bool { return deleteActions[a] }

// TargetType classifies what an entry is about.
type TargetType string

const (
	TargetClient      TargetType = "client"
	TargetTransaction TargetType = "transaction"
	TargetDocument    TargetType = "document"
)

// Entry is one immutable ledger record.
type Entry struct {
	ID         uuid.UUID  `json:"id"`
	Actor      string     `json:"actor"`
	Action     Action     `json:"action"`
	TargetType TargetType `json:"target_type"`
	TargetID   string     `json:"target_id"`
	// Reason is mandatory for deletions, optional context otherwise.
	Reason    string    `json:"reason,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
