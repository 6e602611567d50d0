// Package reference holds the regulatory activity catalog: per-activity
// reporting thresholds, cash ceilings and the legal bases behind them.
// Thresholds are expressed in the national unit of account and carry an
// effective date so that historic transactions resolve against the rules in
// force when they happened.
package reference

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"amlgate/pkg/domain"
	"amlgate/pkg/platform/sentinel"
)

// ThresholdVersion is one dated revision of an activity's limits.
type ThresholdVersion struct {
	EffectiveFrom        time.Time
	ReportThresholdUnits decimal.Decimal
	MaxCashUnits         decimal.Decimal
}

// ActivityThreshold describes one regulated activity.
type ActivityThreshold struct {
	Code       domain.ActivityCode
	Name       string
	LegalBasis string
	Versions   []ThresholdVersion
}

// ResolveOn returns the version in force at the given date. Transactions
// dated before the first version have no applicable rule.
func (a ActivityThreshold) ResolveOn(date time.Time) (ThresholdVersion, error) {
	d := dateOf(date)
	idx := -1
	for i, v := range a.Versions {
		if !dateOf(v.EffectiveFrom).After(d) {
			idx = i
		}
	}
	if idx < 0 {
		return ThresholdVersion{}, sentinel.ErrNotFound
	}
	return a.Versions[idx], nil
}

// dateOf maps a timestamp to its calendar day in the timestamp's own
// location, represented as a UTC midnight so days compare across zones.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Catalog is an in-memory lookup over the activity table. The table is
// reference data loaded at startup; there is no write path.
type Catalog struct {
	byCode map[domain.ActivityCode]ActivityThreshold
}

// NewCatalog builds a catalog, sorting each activity's versions by date.
func NewCatalog(activities []ActivityThreshold) *Catalog {
	byCode := make(map[domain.ActivityCode]ActivityThreshold, len(activities))
	for _, a := range activities {
		sort.Slice(a.Versions, func(i, j int) bool {
			return a.Versions[i].EffectiveFrom.Before(a.Versions[j].EffectiveFrom)
		})
		byCode[a.Code] = a
	}
	return &Catalog{byCode: byCode}
}

// Lookup returns the activity entry for a code.
func (c *Catalog) Lookup(_ context.Context, code domain.ActivityCode) (ActivityThreshold, error) {
	a, ok := c.byCode[code]
	if !ok {
		return ActivityThreshold{}, sentinel.ErrNotFound
	}
	return a, nil
}

// Codes returns every registered activity code, sorted.
func (c *Catalog) Codes() []domain.ActivityCode {
	out := make([]domain.ActivityCode, 0, len(c.byCode))
	for code := range c.byCode {
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DefaultCatalog returns the activity table currently in force.
func DefaultCatalog() *Catalog {
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		loc = time.UTC
	}
	since2021 := time.Date(2021, time.January, 1, 0, 0, 0, 0, loc)
	since2024 := time.Date(2024, time.July, 1, 0, 0, 0, 0, loc)

	return NewCatalog([]ActivityThreshold{
		{
			Code:       "casa_de_cambio",
			Name:       "Currency exchange house",
			LegalBasis: "Art. 3, Ley 19.913; Circular UAF N° 49",
			Versions: []ThresholdVersion{
				{EffectiveFrom: since2021, ReportThresholdUnits: decimal.NewFromInt(450), MaxCashUnits: decimal.NewFromInt(120)},
				{EffectiveFrom: since2024, ReportThresholdUnits: decimal.NewFromInt(400), MaxCashUnits: decimal.NewFromInt(100)},
			},
		},
		{
			Code:       "corredor_propiedades",
			Name:       "Real estate brokerage",
			LegalBasis: "Art. 3, Ley 19.913; Circular UAF N° 54",
			Versions: []ThresholdVersion{
				{EffectiveFrom: since2021, ReportThresholdUnits: decimal.NewFromInt(3000), MaxCashUnits: decimal.NewFromInt(250)},
			},
		},
		{
			Code:       "notaria",
			Name:       "Notary services",
			LegalBasis: "Art. 3, Ley 19.913",
			Versions: []ThresholdVersion{
				{EffectiveFrom: since2021, ReportThresholdUnits: decimal.NewFromInt(1500), MaxCashUnits: decimal.NewFromInt(200)},
			},
		},
		{
			Code:       "gestion_activos",
			Name:       "Asset management",
			LegalBasis: "Art. 3, Ley 19.913; NCG 502",
			Versions: []ThresholdVersion{
				{EffectiveFrom: since2021, ReportThresholdUnits: decimal.NewFromInt(2000), MaxCashUnits: decimal.NewFromInt(150)},
				{EffectiveFrom: since2024, ReportThresholdUnits: decimal.NewFromInt(1800), MaxCashUnits: decimal.NewFromInt(150)},
			},
		},
		{
			Code:       "comercio_metales",
			Name:       "Precious metals and stones dealing",
			LegalBasis: "Art. 3, Ley 19.913; Circular UAF N° 57",
			Versions: []ThresholdVersion{
				{EffectiveFrom: since2021, ReportThresholdUnits: decimal.NewFromInt(800), MaxCashUnits: decimal.NewFromInt(80)},
			},
		},
		{
			Code:       "juegos_azar",
			Name:       "Casinos and gaming",
			LegalBasis: "Art. 3, Ley 19.913; Ley 19.995",
			Versions: []ThresholdVersion{
				{EffectiveFrom: since2021, ReportThresholdUnits: decimal.NewFromInt(600), MaxCashUnits: decimal.NewFromInt(60)},
			},
		},
	})
}
