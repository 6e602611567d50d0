// Package document tracks KYC supporting documents attached to clients.
// Documents share the soft-delete discipline: removal requires a reason and
// leaves the record in place.
package document

import (
	"time"

	"amlgate/pkg/domain"
)

// Kind classifies a supporting document.
type Kind string

const (
	KindIdentity      Kind = "identity"
	KindProofOfFunds  Kind = "proof_of_funds"
	KindIncorporation Kind = "incorporation"
	KindOther         Kind = "other"
)

// Document is one supporting file reference.
type Document struct {
	ID       domain.DocumentID `json:"id"`
	ClientID domain.ClientID   `json:"client_id"`
	Kind     Kind              `json:"kind"`
	Name     string            `json:"name"`
	// URI points at the stored object; the ledger never holds content.
	URI string `json:"uri"`

	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	DeleteReason string     `json:"delete_reason,omitempty"`
}

// Deleted reports whether the document was soft-deleted.
func (d Document) Deleted() bool { return d.DeletedAt != nil }
