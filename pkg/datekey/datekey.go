// Package datekey handles the canonical YYYY-MM-DD strings used as record
// identifiers throughout the tracker. Keys are zero-padded, so lexicographic
// order equals chronological order.
package datekey

import (
	"fmt"
	"time"
)

const Layout = "2006-01-02"

// Format returns the date key for t in t's location.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse converts a date key back into a time.Time at midnight UTC.
func Parse(key string) (time.Time, error) {
	t, err := time.Parse(Layout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %v", key, err)
	}
	return t, nil
}

// Valid reports whether key is a well-formed date key.
func Valid(key string) bool {
	_, err := Parse(key)
	return err == nil
}

// Today returns the current date key in the given location.
func Today(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.Now().In(loc).Format(Layout)
}

// AddDays shifts a date key by n days (n may be negative).
func AddDays(key string, n int) (string, error) {
	t, err := Parse(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(Layout), nil
}

// DayOfYear returns the 1-based ordinal day of the key within its year.
func DayOfYear(key string) (int, error) {
	t, err := Parse(key)
	if err != nil {
		return 0, err
	}
	return t.YearDay(), nil
}
