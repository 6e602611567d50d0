package transaction

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"amlgate/internal/reference"
)

// Classifier evaluates one converted transaction against an activity's rules
// and the client's rolling window. Pure: same inputs always yield the same
// outcome, which is what makes the classification auditable.
type Classifier struct {
	// StructuringWindowDays bounds the lookback for the structuring rule.
	StructuringWindowDays int
	// StructuringMinCount is the minimum run length of near-threshold
	// transactions that counts as a pattern.
	StructuringMinCount int
	// StructuringFloor is the fraction of the report threshold a single
	// transaction must reach to count toward the pattern.
	StructuringFloor decimal.Decimal
}

// DefaultClassifier returns the rule parameters currently in force.
func DefaultClassifier() Classifier {
	return Classifier{
		StructuringWindowDays: 7,
		StructuringMinCount:   3,
		StructuringFloor:      decimal.NewFromFloat(0.6),
	}
}

// Outcome is the classification verdict for one transaction.
type Outcome struct {
	Classification   Classification
	Obligation       Obligation
	Alerts           []Alert
	AccumulatedUnits decimal.Decimal
}

// Classify buckets the new transaction given the prior window. window holds
// the client's non-deleted transactions for the same activity inside the
// accumulation window, oldest first; tx must already carry AmountUnits.
func (c Classifier) Classify(tx Transaction, window []Transaction, rules reference.ThresholdVersion, legalBasis string) Outcome {
	accumulated := tx.AmountUnits
	for _, prior := range window {
		accumulated = accumulated.Add(prior.AmountUnits)
	}

	out := Outcome{
		Classification:   ClassNormal,
		Obligation:       ObligationNone,
		AccumulatedUnits: accumulated,
	}

	if accumulated.GreaterThanOrEqual(rules.ReportThresholdUnits) {
		out.Classification = ClassRelevant
		out.Obligation = ObligationPeriodicReport
		out.Alerts = append(out.Alerts, Alert{
			Code: AlertThresholdAccumulation,
			Message: fmt.Sprintf("accumulated %s units reaches the %s unit reporting threshold",
				accumulated.StringFixed(2), rules.ReportThresholdUnits.StringFixed(2)),
			LegalBasis: legalBasis,
		})
	}

	// Concerning rules override the accumulation verdict.
	concerning := false

	if tx.Method == MethodCash && tx.AmountUnits.GreaterThan(rules.MaxCashUnits) {
		concerning = true
		out.Alerts = append(out.Alerts, Alert{
			Code: AlertCashOverLimit,
			Message: fmt.Sprintf("cash payment of %s units exceeds the %s unit cash ceiling",
				tx.AmountUnits.StringFixed(2), rules.MaxCashUnits.StringFixed(2)),
			LegalBasis: legalBasis,
		})
	}

	if c.isStructuring(tx, window, rules.ReportThresholdUnits) {
		concerning = true
		out.Alerts = append(out.Alerts, Alert{
			Code: AlertStructuring,
			Message: fmt.Sprintf("%d or more near-threshold transactions within %d days sum past the reporting threshold",
				c.StructuringMinCount, c.StructuringWindowDays),
			LegalBasis: legalBasis,
		})
	}

	if concerning {
		out.Classification = ClassConcerning
		out.Obligation = ObligationReport24h
	}
	return out
}

// isStructuring detects splitting a reportable amount into several smaller
// transactions: within the lookback, at least StructuringMinCount
// transactions (the new one included) each at or above the floor fraction of
// the threshold yet individually below it, together reaching the threshold.
func (c Classifier) isStructuring(tx Transaction, window []Transaction, threshold decimal.Decimal) bool {
	floor := threshold.Mul(c.StructuringFloor)
	cutoff := tx.OccurredAt.AddDate(0, 0, -c.StructuringWindowDays)

	count := 0
	sum := decimal.Zero
	consider := func(t Transaction) {
		if t.OccurredAt.Before(cutoff) || t.OccurredAt.After(tx.OccurredAt) {
			return
		}
		if t.AmountUnits.GreaterThanOrEqual(floor) && t.AmountUnits.LessThan(threshold) {
			count++
			sum = sum.Add(t.AmountUnits)
		}
	}
	for _, prior := range window {
		consider(prior)
	}
	consider(tx)

	return count >= c.StructuringMinCount && sum.GreaterThanOrEqual(threshold)
}

// windowStart returns the opening date of the rolling accumulation window
// for a transaction dated at. months is the calendar span.
func windowStart(at time.Time, months int) time.Time {
	y, m, d := at.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, at.Location()).AddDate(0, -months, 0)
}
