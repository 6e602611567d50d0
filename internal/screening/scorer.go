package screening

import (
	"fmt"
	"sort"

	id "amlgate/pkg/domain"
)

// ClientAttributes are the declared facts that feed the scorer alongside the
// watchlist outcomes.
type ClientAttributes struct {
	Sector     string
	Activity   id.ActivityCode
	PersonType string
}

// Weights are the scoring constants. They are configuration, not code:
// the compliance owner adjusts them without touching the rule logic.
type Weights struct {
	Base             float64
	AdvisoryHit      float64
	HighRiskSector   float64
	HighRiskActivity float64
	// UnknownPenalty is added per errored/unknown source. An unreachable
	// list never counts as clean (fail-closed bias).
	UnknownPenalty float64

	// Cut points between levels: low/medium, medium/high, high/critical.
	// Scores exactly on a cut point take the lower level, so float noise
	// never over-classifies.
	CutMedium   float64
	CutHigh     float64
	CutCritical float64

	HighRiskSectors    map[string]bool
	HighRiskActivities map[id.ActivityCode]bool
}

// DefaultWeights are the values agreed with the compliance owner.
func DefaultWeights() Weights {
	return Weights{
		Base:             0.10,
		AdvisoryHit:      0.25,
		HighRiskSector:   0.15,
		HighRiskActivity: 0.15,
		UnknownPenalty:   0.05,
		CutMedium:        0.25,
		CutHigh:          0.50,
		CutCritical:      0.75,
		HighRiskSectors: map[string]bool{
			"gambling":         true,
			"mining_precious":  true,
			"arms_trade":       true,
			"cash_intensive":   true,
			"crypto_exchange":  true,
			"offshore_finance": true,
		},
		HighRiskActivities: map[id.ActivityCode]bool{
			"casino":        true,
			"money_remit":   true,
			"precious_gems": true,
		},
	}
}

// Score combines the per-source screening map and client attributes into the
// composite score and level. Pure and deterministic: the same inputs always
// produce the same outputs, and all rule weights come from w.
//
// Any blocking-source hit forces score 1.0 and level critical regardless of
// every other factor.
func (w Weights) Score(sources map[string]SourceResult, attrs ClientAttributes) (float64, RiskLevel, []string) {
	score := w.Base
	var alerts []string

	// Deterministic iteration so alert order is stable across runs.
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	blocking := false
	for _, name := range names {
		sr := sources[name]
		switch {
		case sr.Outcome == OutcomeFound && sr.Kind == KindBlocking:
			blocking = true
			alerts = append(alerts, fmt.Sprintf("blocking hit on %s: %s", name, sr.Detail))
		case sr.Outcome == OutcomeFound:
			score += w.AdvisoryHit
			alerts = append(alerts, fmt.Sprintf("advisory hit on %s: %s", name, sr.Detail))
		case sr.Outcome == OutcomeUnknown:
			score += w.UnknownPenalty
			alerts = append(alerts, fmt.Sprintf("source %s unavailable, treated as unresolved", name))
		}
	}

	if w.HighRiskSectors[attrs.Sector] {
		score += w.HighRiskSector
		alerts = append(alerts, fmt.Sprintf("declared sector %q is high risk", attrs.Sector))
	}
	if w.HighRiskActivities[attrs.Activity] {
		score += w.HighRiskActivity
		alerts = append(alerts, fmt.Sprintf("declared activity %q is high risk", attrs.Activity))
	}

	if blocking {
		return 1.0, LevelCritical, alerts
	}
	if score > 1.0 {
		score = 1.0
	}
	return score, w.levelFor(score), alerts
}

// levelFor thresholds the score. Ties round toward the lower level.
func (w Weights) levelFor(score float64) RiskLevel {
	switch {
	case score <= w.CutMedium:
		return LevelLow
	case score <= w.CutHigh:
		return LevelMedium
	case score <= w.CutCritical:
		return LevelHigh
	default:
		return LevelCritical
	}
}
