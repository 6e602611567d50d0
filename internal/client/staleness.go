package client

import (
	"math"
	"time"
)

// AgeDays returns the screening age in whole calendar days, counted on local
// date boundaries: a screening from 23:59 yesterday is one day old at 00:01
// today. A client never screened has infinite age.
func AgeDays(last *time.Time, now time.Time, loc *time.Location) int {
	if last == nil {
		return math.MaxInt32
	}
	// Midnights are mapped to UTC so the subtraction is DST-proof.
	a := dateAsUTC(*last, loc)
	b := dateAsUTC(now, loc)
	return int(b.Sub(a).Hours() / 24)
}

func dateAsUTC(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsStale reports whether a screening older than maxAgeDays must be redone.
// Exactly maxAgeDays old is still fresh.
func IsStale(last *time.Time, now time.Time, loc *time.Location, maxAgeDays int) bool {
	return AgeDays(last, now, loc) > maxAgeDays
}
