// Package sheets defines the range-reader contract for the remote
// tabular source and an HTTP client speaking a values-style API.
package sheets

import (
	"context"
	"fmt"
)

// RangeSpec addresses a rectangular cell region on one sheet tab.
// Columns are letters, rows 1-based and inclusive.
type RangeSpec struct {
	Sheet    string
	StartCol string
	EndCol   string
	StartRow int
	EndRow   int
}

// String renders the spec in A1 notation, e.g. "Push!A2:E201".
func (r RangeSpec) String() string {
	return fmt.Sprintf("%s!%s%d:%s%d", r.Sheet, r.StartCol, r.StartRow, r.EndCol, r.EndRow)
}

// Grid is a possibly-short 2D block of raw cell values. Trailing empty
// rows and cells are omitted by the source, never zero-filled.
type Grid [][]string

// Cell returns the value at (row, col) or the empty string when the
// response omitted it.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	if col < 0 || col >= len(g[row]) {
		return ""
	}
	return g[row][col]
}

// RangeReader reads rectangular cell regions from the remote source.
type RangeReader interface {
	// ReadRange fetches a single region.
	ReadRange(ctx context.Context, spec RangeSpec) (Grid, error)

	// ReadRangesBatch fetches several regions in one round-trip,
	// returning grids in request order.
	ReadRangesBatch(ctx context.Context, specs []RangeSpec) ([]Grid, error)
}

// ColumnLetter converts a 0-based column index to its letter form
// (0 -> A, 25 -> Z, 26 -> AA).
func ColumnLetter(index int) string {
	letters := ""
	for index >= 0 {
		letters = string(rune('A'+index%26)) + letters
		index = index/26 - 1
	}
	return letters
}
