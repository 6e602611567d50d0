package handler

import (
	"strings"

	"amlgate/internal/client"
	"amlgate/pkg/domain"
	dErrors "amlgate/pkg/domain-errors"
)

// CreateClientRequest is the HTTP request body for POST /clients.
type CreateClientRequest struct {
	LegalID        string `json:"legal_id"`
	FullName       string `json:"full_name"`
	PersonType     string `json:"person_type"`
	Sector         string `json:"sector"`
	SourceOfFunds  string `json:"source_of_funds"`
	Activity       string `json:"activity"`
	ActivityLocked bool   `json:"activity_locked"`

	// Parsed values (populated by Validate)
	parsedPersonType client.PersonType
	parsedActivity   domain.ActivityCode
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateClientRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.LegalID = strings.TrimSpace(r.LegalID)
	if r.LegalID == "" {
		return dErrors.New(dErrors.CodeValidation, "legal_id is required")
	}
	if len(r.LegalID) > 20 {
		return dErrors.New(dErrors.CodeValidation, "legal_id must be at most 20 characters")
	}

	r.FullName = strings.TrimSpace(r.FullName)
	if r.FullName == "" {
		return dErrors.New(dErrors.CodeValidation, "full_name is required")
	}

	personType, err := client.ParsePersonType(r.PersonType)
	if err != nil {
		return err
	}
	r.parsedPersonType = personType

	if r.Activity != "" {
		activity, err := domain.ParseActivityCode(r.Activity)
		if err != nil {
			return err
		}
		r.parsedActivity = activity
	}
	return nil
}

// ToClient builds the domain client from the validated request.
func (r *CreateClientRequest) ToClient() client.Client {
	return client.Client{
		LegalID:        r.LegalID,
		FullName:       r.FullName,
		PersonType:     r.parsedPersonType,
		Sector:         strings.ToLower(strings.TrimSpace(r.Sector)),
		SourceOfFunds:  strings.TrimSpace(r.SourceOfFunds),
		Activity:       r.parsedActivity,
		ActivityLocked: r.ActivityLocked,
	}
}

// ReasonRequest is the body for operations that require a justification:
// clearing a block and soft deletion.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// Validate implements Validatable. The reason itself is checked by the
// service so policy errors carry the audit error code.
func (r *ReasonRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	return nil
}
