// Package transaction registers client operations and classifies them
// against the regulatory activity thresholds: accumulation over a rolling
// window, cash ceilings and structuring detection.
package transaction

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"amlgate/pkg/domain"
	dErrors "amlgate/pkg/domain-errors"
)

// PaymentMethod is how the funds moved. Cash is the method the cash-ceiling
// rule watches.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
	MethodCheck    PaymentMethod = "check"
	MethodCard     PaymentMethod = "card"
)

// ParsePaymentMethod canonicalizes a payment method string.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash", "efectivo":
		return MethodCash, nil
	case "transfer", "transferencia", "wire":
		return MethodTransfer, nil
	case "check", "cheque":
		return MethodCheck, nil
	case "card", "tarjeta":
		return MethodCard, nil
	default:
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown payment method %q", s)
	}
}

// Classification is the regulatory bucket a transaction lands in.
type Classification string

const (
	ClassNormal     Classification = "normal"
	ClassRelevant   Classification = "relevant"
	ClassConcerning Classification = "concerning"
)

// Obligation is the reporting duty the classification triggers.
type Obligation string

const (
	ObligationNone           Obligation = "none"
	ObligationPeriodicReport Obligation = "periodic_report"
	ObligationReport24h      Obligation = "report_24h"
)

// Alert is one finding attached to a classification, citing the legal
// article that mandates it.
type Alert struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	LegalBasis string `json:"legal_basis,omitempty"`
}

const (
	AlertThresholdAccumulation = "threshold_accumulation"
	AlertCashOverLimit         = "cash_over_limit"
	AlertStructuring           = "structuring_pattern"
	AlertAnomaly               = "anomaly_score"
)

// Transaction is one immutable registered operation. Amendments create a new
// record and soft-delete this one; there is no in-place edit.
type Transaction struct {
	ID       domain.TransactionID `json:"id"`
	ClientID domain.ClientID      `json:"client_id"`
	Activity domain.ActivityCode  `json:"activity"`

	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Method   PaymentMethod   `json:"method"`

	// AmountUnits is the amount converted at the unit value in force on
	// OccurredAt; classification math runs on this, never on raw amounts.
	AmountUnits decimal.Decimal `json:"amount_units"`

	Classification Classification `json:"classification"`
	Obligation     Obligation     `json:"obligation"`
	Alerts         []Alert        `json:"alerts,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`

	DeletedAt    *time.Time            `json:"deleted_at,omitempty"`
	DeleteReason string                `json:"delete_reason,omitempty"`
	Amends       *domain.TransactionID `json:"amends,omitempty"`
}

// Deleted reports whether the record was soft-deleted.
func (t Transaction) Deleted() bool { return t.DeletedAt != nil }

// Result is what a successful registration returns.
type Result struct {
	Transaction      Transaction     `json:"transaction"`
	AccumulatedUnits decimal.Decimal `json:"accumulated_units"`
	WindowFrom       time.Time       `json:"window_from"`
}
