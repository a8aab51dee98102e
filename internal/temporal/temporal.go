// Package temporal converts between absolute instants and the continuous
// day-number scale used for period arithmetic and range comparisons.
//
// The day-number scale counts days since the CNES Julian Day epoch,
// 1950-01-01T00:00:00Z, the conventional reference for remote-sensing
// archives. The epoch is a convention shared with the backing store; it is
// unrelated to the platform's own zero instant.
//
// The minimum and maximum representable instants are sentinels meaning
// "unbounded", not real dates. They map to -Inf and +Inf on the day-number
// scale, and the infinities map back to the sentinels exactly.
package temporal

import (
	"fmt"
	"math"
	"time"
)

// Epoch is the origin of the day-number scale (CNES Julian Day 0).
var Epoch = time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC)

// Sentinel instants marking an unbounded start or end of a time range.
// Constructed from the extreme millisecond counts; real catalog data never
// reaches them.
var (
	MinInstant = time.UnixMilli(math.MinInt64).UTC()
	MaxInstant = time.UnixMilli(math.MaxInt64).UTC()
)

const millisPerDay = 24 * 60 * 60 * 1000

// epochMillis is Epoch on the Unix millisecond scale.
var epochMillis = Epoch.UnixMilli()

// DayNumber converts an instant to its day number: a linear scale,
// (t - Epoch) / millisecondsPerDay. The sentinel instants map to -Inf and
// +Inf respectively.
//
// Finite instants are assumed millisecond-representable; sub-millisecond
// components are truncated, matching the backing store's resolution.
func DayNumber(t time.Time) float64 {
	if t.Equal(MinInstant) {
		return math.Inf(-1)
	}
	if t.Equal(MaxInstant) {
		return math.Inf(+1)
	}
	return float64(t.UnixMilli()-epochMillis) / millisPerDay
}

// Instant converts a day number back to an instant in UTC, rounding to the
// nearest whole millisecond. -Inf and +Inf yield the corresponding sentinel
// instants exactly. NaN is an error: it means "unknown", which has no
// instant representation.
func Instant(day float64) (time.Time, error) {
	switch {
	case math.IsNaN(day):
		return time.Time{}, fmt.Errorf("day number is NaN")
	case math.IsInf(day, -1):
		return MinInstant, nil
	case math.IsInf(day, +1):
		return MaxInstant, nil
	}
	ms := math.Round(day * millisPerDay)
	return time.UnixMilli(epochMillis + int64(ms)).UTC(), nil
}

// Rebase re-expresses an instant read with one calendar field-set in another
// timezone by copying the calendar fields (year, month, day, hour, minute,
// second, nanosecond) across locations rather than by offset arithmetic.
//
// The backing store serializes timestamps in its configured timezone; naive
// offset conversion breaks around daylight-saving transitions and differs
// across platforms. Field copying sidesteps both.
func Rebase(t time.Time, from, to *time.Location) time.Time {
	local := t.In(from)
	year, month, day := local.Date()
	hour, minute, sec := local.Clock()
	return time.Date(year, month, day, hour, minute, sec, local.Nanosecond(), to)
}
