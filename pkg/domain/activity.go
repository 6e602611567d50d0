package domain

import (
	"strings"

	dErrors "amlgate/pkg/domain-errors"
)

// ActivityCode names a regulated activity from the threshold catalog
// (e.g. "real_estate", "vehicle_dealer"). The code is the lookup key for
// report thresholds; an empty or unknown code must never default silently.
type ActivityCode string

func (c ActivityCode) String() string { return string(c) }

// IsZero reports whether no activity was supplied.
func (c ActivityCode) IsZero() bool { return c == "" }

// ParseActivityCode normalizes a declared activity code. It does not check
// catalog membership; that is the classifier's job against reference data.
func ParseActivityCode(s string) (ActivityCode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "activity code is required")
	}
	return ActivityCode(s), nil
}
