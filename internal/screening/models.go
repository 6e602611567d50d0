// Package screening runs watchlist checks against every configured list
// source and derives the client's composite risk score and level. A client's
// current risk state is always the latest applied ScreeningResult; results
// are immutable snapshots, never edited in place.
package screening

import (
	"sort"
	"strings"
	"time"

	id "amlgate/pkg/domain"
	dErrors "amlgate/pkg/domain-errors"
)

// SourceKind is the configured effect of a positive hit. It is a static
// property of the source configuration, never inferred from a source's name
// or response shape.
type SourceKind string

const (
	// KindBlocking sources force a hard stop on a positive hit: score 1.0,
	// level critical, no transaction may be registered.
	KindBlocking SourceKind = "blocking"

	// KindAdvisory sources only raise the composite risk on a hit.
	KindAdvisory SourceKind = "advisory"
)

// Outcome is a single source's answer for one identity.
type Outcome string

const (
	// OutcomeClear means the source answered and found nothing.
	OutcomeClear Outcome = "clear"

	// OutcomeFound means the source matched the identity.
	OutcomeFound Outcome = "found"

	// OutcomeUnknown means the source failed or timed out. Unknown is never
	// treated as clear; the scorer applies an uncertainty penalty for it.
	OutcomeUnknown Outcome = "unknown"
)

// Identity is the minimal set of fields sent to list sources.
type Identity struct {
	ClientID id.ClientID
	LegalID  string
	FullName string
}

// SourceResult is the per-source entry of a screening snapshot.
type SourceResult struct {
	Source  string        `json:"source"`
	Kind    SourceKind    `json:"kind"`
	Outcome Outcome       `json:"outcome"`
	Detail  string        `json:"detail,omitempty"`
	Err     string        `json:"error,omitempty"`
	Latency time.Duration `json:"latency_ns"`
}

// RiskLevel is the discrete classification derived from the composite score.
type RiskLevel string

const (
	LevelLow      RiskLevel = "low"
	LevelMedium   RiskLevel = "medium"
	LevelHigh     RiskLevel = "high"
	LevelCritical RiskLevel = "critical"
	// LevelPending marks a client that has never completed a screening.
	LevelPending RiskLevel = "pending"
)

// riskLevelSynonyms canonicalizes externally reported labels. Vendors report
// in several languages and spellings; anything not in this table is rejected
// rather than guessed at.
var riskLevelSynonyms = map[string]RiskLevel{
	"low":       LevelLow,
	"bajo":      LevelLow,
	"minimal":   LevelLow,
	"medium":    LevelMedium,
	"medio":     LevelMedium,
	"moderate":  LevelMedium,
	"high":      LevelHigh,
	"alto":      LevelHigh,
	"elevated":  LevelHigh,
	"critical":  LevelCritical,
	"critico":   LevelCritical,
	"crítico":   LevelCritical,
	"severe":    LevelCritical,
	"pending":   LevelPending,
	"pendiente": LevelPending,
}

// ParseRiskLevel canonicalizes a risk label through the synonym table.
func ParseRiskLevel(s string) (RiskLevel, error) {
	if lvl, ok := riskLevelSynonyms[strings.ToLower(strings.TrimSpace(s))]; ok {
		return lvl, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown risk level %q", s)
}

// severity orders levels for comparisons; pending sorts below low because it
// carries no information, not because it is safe.
var severity = map[RiskLevel]int{
	LevelPending:  0,
	LevelLow:      1,
	LevelMedium:   2,
	LevelHigh:     3,
	LevelCritical: 4,
}

// AtLeast reports whether l is at least as severe as other.
func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return severity[l] >= severity[other]
}

// Result is one immutable screening snapshot. The client's current risk
// state is its latest Result.
type Result struct {
	ID        id.ScreeningID          `json:"id"`
	ClientID  id.ClientID             `json:"client_id"`
	Score     float64                 `json:"score"`
	Level     RiskLevel               `json:"level"`
	Approved  bool                    `json:"approved"`
	Sources   map[string]SourceResult `json:"sources"`
	Alerts    []string                `json:"alerts"`
	Timestamp time.Time               `json:"timestamp"`
}

// HasBlockingHit reports whether any blocking source matched.
func (r *Result) HasBlockingHit() bool {
	for _, sr := range r.Sources {
		if sr.Kind == KindBlocking && sr.Outcome == OutcomeFound {
			return true
		}
	}
	return false
}

// SourceNames returns the source names in deterministic order.
func (r *Result) SourceNames() []string {
	names := make([]string, 0, len(r.Sources))
	for name := range r.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
