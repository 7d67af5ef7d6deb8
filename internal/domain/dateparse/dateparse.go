// Package dateparse normalizes heterogeneous spreadsheet date cells
// into calendar instants.
package dateparse

import (
	"strconv"
	"strings"
	"time"
)

// Spreadsheet day-serial convention: serial 25569 is 1970-01-01.
const (
	serialEpochOffset = 25569
	msPerDay          = 86_400_000
)

// maxSerial bounds the day-serial path: anything at or above it would
// overflow the millisecond math. Textual layouts top out at four-digit
// years, well inside this window.
const maxSerial = 10_000_000

// Textual layouts seen in exported sheets, most common first.
var layouts = []string{
	"2006-01-02",
	time.RFC3339,
	"1/2/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"2006/01/02",
}

// Parse normalizes a raw cell into a calendar instant at local
// midnight. The boolean is false for empty or unparseable cells;
// Parse never panics.
func Parse(cell string) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		// Any positive serial is a date, including pre-1970 ones below
		// the epoch offset: a serial and the ISO string for the same
		// calendar day must parse to the same instant.
		if serial <= 0 || serial >= maxSerial {
			return time.Time{}, false
		}
		ms := int64((serial - serialEpochOffset) * msPerDay)
		u := time.UnixMilli(ms).UTC()
		// Normalize to local midnight so serial and textual cells of
		// the same calendar day compare equal.
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.Local), true
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), true
		}
	}
	return time.Time{}, false
}

// SameDay reports whether two instants fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Quarter returns the 1-based quarter for a 1-based month.
func Quarter(month int) int {
	return (month + 2) / 3
}
