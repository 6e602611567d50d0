// Package client manages regulated subjects: their KYC attributes, case
// lifecycle, current risk standing and the staleness gate over screenings.
package client

import (
	"strings"
	"time"

	"amlgate/internal/screening"
	"amlgate/pkg/domain"
	dErrors "amlgate/pkg/domain-errors"
)

// PersonType distinguishes natural persons from legal entities.
type PersonType string

const (
	PersonNatural PersonType = "natural"
	PersonLegal   PersonType = "legal"
)

// ParsePersonType canonicalizes a person type string.
func ParsePersonType(s string) (PersonType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "natural", "persona_natural":
		return PersonNatural, nil
	case "legal", "juridica", "jurídica", "persona_juridica":
		return PersonLegal, nil
	default:
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown person type %q", s)
	}
}

// CaseState is the client's lifecycle state. Suspended is the blocked state;
// the only way out is the audited ClearBlock path.
type CaseState string

const (
	StateDraft           CaseState = "draft"
	StatePendingApproval CaseState = "pending_approval"
	StateApproved        CaseState = "approved"
	StateRejected        CaseState = "rejected"
	StateSuspended       CaseState = "suspended"
	StateDeleted         CaseState = "deleted"
)

// Client is one regulated subject.
type Client struct {
	ID            domain.ClientID     `json:"id"`
	LegalID       string              `json:"legal_id"`
	FullName      string              `json:"full_name"`
	PersonType    PersonType          `json:"person_type"`
	Sector        string              `json:"sector"`
	SourceOfFunds string              `json:"source_of_funds"`
	Activity      domain.ActivityCode `json:"activity"`

	// ActivityLocked pins the declared activity; overriding it on a
	// transaction requires the compliance officer role.
	ActivityLocked bool `json:"activity_locked"`

	State           CaseState           `json:"state"`
	RiskLevel       screening.RiskLevel `json:"risk_level"`
	RiskScore       float64             `json:"risk_score"`
	LastScreeningAt *time.Time          `json:"last_screening_at,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	DeleteReason string     `json:"delete_reason,omitempty"`
}

// Identity projects the fields watchlist sources match against.
func (c Client) Identity() screening.Identity {
	return screening.Identity{
		ClientID: c.ID,
		LegalID:  c.LegalID,
		FullName: c.FullName,
	}
}

// Attributes projects the fields the risk scorer weighs.
func (c Client) Attributes() screening.ClientAttributes {
	return screening.ClientAttributes{
		Sector:     c.Sector,
		Activity:   c.Activity,
		PersonType: string(c.PersonType),
	}
}

// Blocked reports whether the client is in the suspended state.
func (c Client) Blocked() bool {
	return c.State == StateSuspended
}

// Deleted reports whether the client was soft-deleted.
func (c Client) Deleted() bool {
	return c.DeletedAt != nil || c.State == StateDeleted
}
