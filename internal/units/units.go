// Package units converts monetary amounts into the regulatory unit of
// account. Thresholds in the AML catalog are expressed in this unit; its
// value is revalued periodically by the authority, so every conversion is
// resolved against the value in effect on the transaction date.
package units

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	dErrors "amlgate/pkg/domain-errors"
)

// UnitValue is one row of the unit-of-account reference table.
type UnitValue struct {
	// EffectiveFrom is the first date (inclusive, local calendar) on which
	// this value applies. Only the date part is significant.
	EffectiveFrom time.Time
	// Value is the unit's worth in national currency.
	Value decimal.Decimal
}

// Table resolves the unit value by effective date. Read-only after
// construction, safe for concurrent use.
type Table struct {
	values []UnitValue
}

// NewTable builds a table from unordered rows. Rows with non-positive values
// are rejected: a zero unit value would turn every division into nonsense.
func NewTable(rows []UnitValue) (*Table, error) {
	if len(rows) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "unit table has no rows")
	}
	sorted := make([]UnitValue, len(rows))
	for i, r := range rows {
		if !r.Value.IsPositive() {
			return nil, dErrors.Newf(dErrors.CodeValidation,
				"unit value effective %s is not positive", r.EffectiveFrom.Format("2006-01-02"))
		}
		sorted[i] = UnitValue{EffectiveFrom: dateOf(r.EffectiveFrom), Value: r.Value}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EffectiveFrom.Before(sorted[j].EffectiveFrom)
	})
	return &Table{values: sorted}, nil
}

// ValueOn returns the unit value in effect on the given date: the most recent
// row whose EffectiveFrom is on or before it. Dates before the first row are
// an error, never a silent default.
func (t *Table) ValueOn(date time.Time) (decimal.Decimal, error) {
	day := dateOf(date)
	idx := sort.Search(len(t.values), func(i int) bool {
		return t.values[i].EffectiveFrom.After(day)
	})
	if idx == 0 {
		return decimal.Zero, dErrors.Newf(dErrors.CodeValidation,
			"no unit value in effect on %s", date.Format("2006-01-02"))
	}
	return t.values[idx-1].Value, nil
}

// dateOf strips the time-of-day in the timestamp's own location. Effective
// dates follow the local calendar, not UTC.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Converter translates currency amounts into regulatory units. Foreign
// currencies convert through an explicit rate into national currency first;
// a currency without a configured path fails hard.
type Converter struct {
	table *Table
	// rates maps an upper-case ISO code to its national-currency rate.
	// The national currency itself maps to 1.
	rates map[string]decimal.Decimal
}

// NewConverter builds a converter. nationalCurrency always gets rate 1.
func NewConverter(table *Table, nationalCurrency string, rates map[string]decimal.Decimal) *Converter {
	all := make(map[string]decimal.Decimal, len(rates)+1)
	for code, rate := range rates {
		all[strings.ToUpper(code)] = rate
	}
	all[strings.ToUpper(nationalCurrency)] = decimal.NewFromInt(1)
	return &Converter{table: table, rates: all}
}

// ToUnits converts amount in the given currency to regulatory units using the
// unit value in effect on date.
func (c *Converter) ToUnits(amount decimal.Decimal, currency string, date time.Time) (decimal.Decimal, error) {
	rate, ok := c.rates[strings.ToUpper(currency)]
	if !ok {
		return decimal.Zero, dErrors.Newf(dErrors.CodeValidation,
			"no conversion path for currency %q", currency)
	}
	unit, err := c.table.ValueOn(date)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate).Div(unit), nil
}

// FromUnits converts regulatory units back into national currency on date.
func (c *Converter) FromUnits(units decimal.Decimal, date time.Time) (decimal.Decimal, error) {
	unit, err := c.table.ValueOn(date)
	if err != nil {
		return decimal.Zero, err
	}
	return units.Mul(unit), nil
}
