package handler

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"amlgate/internal/transaction"
	"amlgate/pkg/domain"
	dErrors "amlgate/pkg/domain-errors"
)

// RegisterTransactionRequest is the HTTP request body for POST /transactions.
// Amount travels as a string so no precision is lost in transit.
type RegisterTransactionRequest struct {
	ClientID   string `json:"client_id"`
	Activity   string `json:"activity,omitempty"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Method     string `json:"method"`
	OccurredAt string `json:"occurred_at,omitempty"`

	// Parsed values (populated by Validate)
	parsedClientID   domain.ClientID
	parsedActivity   domain.ActivityCode
	parsedAmount     decimal.Decimal
	parsedMethod     transaction.PaymentMethod
	parsedOccurredAt time.Time
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterTransactionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	clientID, err := domain.ParseClientID(r.ClientID)
	if err != nil {
		return err
	}
	r.parsedClientID = clientID

	if r.Activity != "" {
		activity, err := domain.ParseActivityCode(r.Activity)
		if err != nil {
			return err
		}
		r.parsedActivity = activity
	}

	r.Amount = strings.TrimSpace(r.Amount)
	if r.Amount == "" {
		return dErrors.New(dErrors.CodeValidation, "amount is required")
	}
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return dErrors.Newf(dErrors.CodeValidation, "amount %q is not a number", r.Amount)
	}
	if !amount.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	r.parsedAmount = amount

	r.Currency = strings.TrimSpace(r.Currency)
	if r.Currency == "" {
		return dErrors.New(dErrors.CodeValidation, "currency is required")
	}

	method, err := transaction.ParsePaymentMethod(r.Method)
	if err != nil {
		return err
	}
	r.parsedMethod = method

	if r.OccurredAt != "" {
		at, err := time.Parse(time.RFC3339, r.OccurredAt)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "occurred_at must be RFC 3339")
		}
		r.parsedOccurredAt = at
	}
	return nil
}

// ToRegisterRequest builds the domain request from the validated body.
func (r *RegisterTransactionRequest) ToRegisterRequest() transaction.RegisterRequest {
	return transaction.RegisterRequest{
		ClientID:   r.parsedClientID,
		Activity:   r.parsedActivity,
		Amount:     r.parsedAmount,
		Currency:   r.Currency,
		Method:     r.parsedMethod,
		OccurredAt: r.parsedOccurredAt,
	}
}

// ReasonRequest is the body for DELETE /transactions/{id}.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// Validate implements Validatable; the reason policy itself is enforced by
// the service so it carries the audit error code.
func (r *ReasonRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	return nil
}

// AmendTransactionRequest is the body for POST /transactions/{id}/amend: the
// replacement transaction plus the reason the original is removed.
type AmendTransactionRequest struct {
	RegisterTransactionRequest
	Reason string `json:"reason"`
}

// Validate validates the replacement and trims the reason.
func (r *AmendTransactionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if err := r.RegisterTransactionRequest.Validate(); err != nil {
		return err
	}
	r.Reason = strings.TrimSpace(r.Reason)
	return nil
}
