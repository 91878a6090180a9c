// Package timeutil provides calendar-day arithmetic for the dial and the
// streak engine. All day boundaries are local wall-clock midnights; the
// helpers use calendar math rather than raw millisecond division so they
// stay correct across DST transitions and other variable-length days.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	MSPerSecond = int64(1000)
	MSPerMinute = 60 * MSPerSecond
	MSPerHour   = 60 * MSPerMinute
	MSPerDay    = 24 * MSPerHour
)

var dayKeyRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfDayMS is StartOfDay over Unix-millisecond timestamps.
func StartOfDayMS(ms int64, loc *time.Location) int64 {
	return StartOfDay(time.UnixMilli(ms).In(loc)).UnixMilli()
}

// AddDays moves t to midnight and shifts it by the given number of calendar
// days. A day across a DST switch may be 23 or 25 hours long.
func AddDays(t time.Time, days int) time.Time {
	return StartOfDay(t).AddDate(0, 0, days)
}

// DayBounds returns the [start, end) millisecond window of ms's calendar day.
func DayBounds(ms int64, loc *time.Location) (int64, int64) {
	start := StartOfDay(time.UnixMilli(ms).In(loc))
	return start.UnixMilli(), start.AddDate(0, 0, 1).UnixMilli()
}

// DayKey formats t's calendar day as "YYYY-MM-DD".
func DayKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// DayKeyMS is DayKey over Unix-millisecond timestamps.
func DayKeyMS(ms int64, loc *time.Location) string {
	return DayKey(time.UnixMilli(ms).In(loc))
}

// ParseDayKey parses a "YYYY-MM-DD" key into midnight of that day in loc.
// The second return value reports whether the key was well formed.
func ParseDayKey(key string, loc *time.Location) (time.Time, bool) {
	m := dayKeyRe.FindStringSubmatch(key)
	if m == nil {
		return time.Time{}, false
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, loc)
	// Reject keys like 2024-02-31 that Date silently normalizes.
	if t.Day() != d || int(t.Month()) != mo {
		return time.Time{}, false
	}
	return t, true
}

// DayNumber returns the number of days between the Unix epoch and t's
// calendar date. The date is re-anchored in UTC so that consecutive local
// days always differ by exactly one, regardless of DST.
func DayNumber(t time.Time) int {
	utc := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(utc.Unix() / 86400)
}

// DayNumberMS is DayNumber over Unix-millisecond timestamps.
func DayNumberMS(ms int64, loc *time.Location) int {
	return DayNumber(time.UnixMilli(ms).In(loc))
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return DayNumber(b) - DayNumber(a)
}

// StartOfWeek returns midnight of the Monday of t's week.
func StartOfWeek(t time.Time) time.Time {
	d := StartOfDay(t)
	diff := int(time.Monday - d.Weekday())
	if d.Weekday() == time.Sunday {
		diff = -6
	}
	return d.AddDate(0, 0, diff)
}
