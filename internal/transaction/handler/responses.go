package handler

import (
	"time"

	"amlgate/internal/transaction"
)

// TransactionResponse is the HTTP projection of a transaction.
type TransactionResponse struct {
	ID             string              `json:"id"`
	ClientID       string              `json:"client_id"`
	Activity       string              `json:"activity"`
	Amount         string              `json:"amount"`
	Currency       string              `json:"currency"`
	Method         string              `json:"method"`
	AmountUnits    string              `json:"amount_units"`
	Classification string              `json:"classification"`
	Obligation     string              `json:"obligation"`
	Alerts         []transaction.Alert `json:"alerts,omitempty"`
	OccurredAt     time.Time           `json:"occurred_at"`
	CreatedAt      time.Time           `json:"created_at"`
	DeletedAt      *time.Time          `json:"deleted_at,omitempty"`
	Amends         string              `json:"amends,omitempty"`
}

// FromTransaction converts a domain transaction to an HTTP response.
func FromTransaction(tx transaction.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:             tx.ID.String(),
		ClientID:       tx.ClientID.String(),
		Activity:       string(tx.Activity),
		Amount:         tx.Amount.String(),
		Currency:       tx.Currency,
		Method:         string(tx.Method),
		AmountUnits:    tx.AmountUnits.StringFixed(4),
		Classification: string(tx.Classification),
		Obligation:     string(tx.Obligation),
		Alerts:         tx.Alerts,
		OccurredAt:     tx.OccurredAt,
		CreatedAt:      tx.CreatedAt,
		DeletedAt:      tx.DeletedAt,
	}
	if tx.Amends != nil {
		resp.Amends = tx.Amends.String()
	}
	return resp
}

// RegisterResponse is the HTTP response for a successful registration.
type RegisterResponse struct {
	Transaction      *TransactionResponse `json:"transaction"`
	AccumulatedUnits string               `json:"accumulated_units"`
	WindowFrom       time.Time            `json:"window_from"`
}

// FromResult converts a domain registration result to an HTTP response.
func FromResult(result *transaction.Result) *RegisterResponse {
	return &RegisterResponse{
		Transaction:      FromTransaction(result.Transaction),
		AccumulatedUnits: result.AccumulatedUnits.StringFixed(4),
		WindowFrom:       result.WindowFrom,
	}
}
