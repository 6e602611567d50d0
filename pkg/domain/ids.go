// Package domain holds shared domain primitives: typed identifiers and the
// regulated-activity code. Typed IDs make cross-entity mixups a compile error.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "amlgate/pkg/domain-errors"
)

// Typed identifiers. Each wraps uuid.UUID so the compiler distinguishes them.
type (
	// ClientID identifies a compliance case file (expediente).
	ClientID uuid.UUID

	// TransactionID identifies a registered transaction.
	TransactionID uuid.UUID

	// ScreeningID identifies one immutable screening snapshot.
	ScreeningID uuid.UUID

	// DocumentID identifies a stored due-diligence document.
	DocumentID uuid.UUID
)

func (id ClientID) String() string      { return uuid.UUID(id).String() }
func (id TransactionID) String() string { return uuid.UUID(id).String() }
func (id ScreeningID) String() string   { return uuid.UUID(id).String() }
func (id DocumentID) String() string    { return uuid.UUID(id).String() }

// MarshalText renders IDs in canonical UUID form for JSON and logging.
func (id ClientID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id TransactionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id ScreeningID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id DocumentID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }

func (id *ClientID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	*id = ClientID(u)
	return err
}

func (id *TransactionID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	*id = TransactionID(u)
	return err
}

func (id *ScreeningID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	*id = ScreeningID(u)
	return err
}

func (id *DocumentID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	*id = DocumentID(u)
	return err
}

func (id ClientID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id TransactionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ScreeningID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// NewClientID returns a fresh random client ID.
func NewClientID() ClientID { return ClientID(uuid.New()) }

// NewTransactionID returns a fresh random transaction ID.
func NewTransactionID() TransactionID { return TransactionID(uuid.New()) }

// NewScreeningID returns a fresh random screening ID.
func NewScreeningID() ScreeningID { return ScreeningID(uuid.New()) }

// NewDocumentID returns a fresh random document ID.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

func parseUUID(s, kind string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "%s is required", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid %s", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "%s must not be nil", kind)
	}
	return u, nil
}

// ParseClientID validates and parses a client ID.
func ParseClientID(s string) (ClientID, error) {
	u, err := parseUUID(s, "client id")
	return ClientID(u), err
}

// ParseTransactionID validates and parses a transaction ID.
func ParseTransactionID(s string) (TransactionID, error) {
	u, err := parseUUID(s, "transaction id")
	return TransactionID(u), err
}

// ParseScreeningID validates and parses a screening ID.
func ParseScreeningID(s string) (ScreeningID, error) {
	u, err := parseUUID(s, "screening id")
	return ScreeningID(u), err
}

// ParseDocumentID validates and parses a document ID.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := parseUUID(s, "document id")
	return DocumentID(u), err
}
