// Package fetch pages dated rows out of the remote source, stopping at
// the corpus boundary.
package fetch

import (
	"context"
	"time"

	"github.com/repstats/repstats/internal/adapters/sheets"
	"github.com/repstats/repstats/internal/domain/dateparse"
	"github.com/repstats/repstats/internal/domain/types"
	"github.com/repstats/repstats/pkg/logger"
	"github.com/repstats/repstats/pkg/metrics"
)

// Corpus layout constants. Row 1 is the roster header; the date column
// is A and participant columns start at B.
const (
	HeaderRows = 1
	ChunkSize  = 200
	MaxChunks  = 25

	// bulkWindowRows bounds the single batched read used for the
	// all-categories path (roughly ten years of daily rows).
	bulkWindowRows = 3500

	// maxRosterColumns caps the header scan at column Z.
	maxRosterColumns = 25
)

// RowSet holds boundary-truncated rows for one category: a shared date
// column plus the value column of every requested roster position.
type RowSet struct {
	Dates  []string
	Values map[int][]string
}

// Column pairs the shared dates with one roster position's values.
func (rs RowSet) Column(pos int) []types.DateValueRow {
	rows := make([]types.DateValueRow, len(rs.Dates))
	values := rs.Values[pos]
	for i, date := range rs.Dates {
		row := types.DateValueRow{Date: date}
		if i < len(values) {
			row.Value = values[i]
		}
		rows[i] = row
	}
	return rows
}

// Fetcher reads rosters and row corpora through a RangeReader.
type Fetcher struct {
	reader sheets.RangeReader
	now    func() time.Time
	log    logger.Logger
}

// Option applies a configuration option to the Fetcher.
type Option func(*Fetcher)

// WithClock overrides the wall clock used for the today boundary.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(f *Fetcher) {
		if log != nil {
			f.log = log
		}
	}
}

// New creates a Fetcher over the given reader.
func New(reader sheets.RangeReader, opts ...Option) *Fetcher {
	f := &Fetcher{
		reader: reader,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Roster reads the ordered participant names of one category from the
// header row, stopping at the first blank column. Position i maps to
// sheet column i+1 for the lifetime of the cached roster.
func (f *Fetcher) Roster(ctx context.Context, cat types.Category) ([]string, error) {
	grid, err := f.reader.ReadRange(ctx, sheets.RangeSpec{
		Sheet:    cat.Sheet(),
		StartCol: sheets.ColumnLetter(1),
		EndCol:   sheets.ColumnLetter(maxRosterColumns),
		StartRow: 1,
		EndRow:   1,
	})
	if err != nil {
		return nil, err
	}

	var names []string
	for col := 0; col < maxRosterColumns; col++ {
		name := grid.Cell(0, col)
		if name == "" {
			break
		}
		names = append(names, name)
	}
	return names, nil
}

// Rows pages the date/value columns of one category for the given
// roster positions. Chunks are requested strictly sequentially so the
// scan can stop early: a row dated today ends the corpus (later rows
// are unwritten future cells), and a short chunk means the sheet ran
// out of rows.
func (f *Fetcher) Rows(ctx context.Context, cat types.Category, positions []int) (RowSet, error) {
	start := time.Now()
	rs := RowSet{Values: make(map[int][]string, len(positions))}

	maxPos := 0
	for _, pos := range positions {
		if pos > maxPos {
			maxPos = pos
		}
	}

	for chunk := 0; chunk < MaxChunks; chunk++ {
		startRow := HeaderRows + 1 + chunk*ChunkSize
		grid, err := f.reader.ReadRange(ctx, sheets.RangeSpec{
			Sheet:    cat.Sheet(),
			StartCol: "A",
			EndCol:   sheets.ColumnLetter(maxPos + 1),
			StartRow: startRow,
			EndRow:   startRow + ChunkSize - 1,
		})
		if err != nil {
			return RowSet{}, err
		}
		metrics.RecordChunkFetched()

		for i := range grid {
			rs.Dates = append(rs.Dates, grid.Cell(i, 0))
			for _, pos := range positions {
				rs.Values[pos] = append(rs.Values[pos], grid.Cell(i, pos+1))
			}
		}

		if boundary, found := f.todayBoundary(rs.Dates); found {
			rs.truncate(boundary + 1)
			break
		}
		if len(grid) < ChunkSize {
			break
		}
	}

	metrics.RecordRowsImported(len(rs.Dates))
	metrics.RecordFetchDuration(time.Since(start).Seconds())
	if f.log != nil {
		f.log.Debug(ctx, "fetched rows",
			logger.String("category", string(cat)),
			logger.Int("rows", len(rs.Dates)),
		)
	}
	return rs, nil
}

// AllYearWindows fetches every category's full row window in a single
// batched read, then applies the today boundary in memory. rosterSizes
// gives the participant count per category.
func (f *Fetcher) AllYearWindows(ctx context.Context, cats []types.Category, rosterSizes map[types.Category]int) (map[types.Category]RowSet, error) {
	start := time.Now()
	specs := make([]sheets.RangeSpec, len(cats))
	for i, cat := range cats {
		specs[i] = sheets.RangeSpec{
			Sheet:    cat.Sheet(),
			StartCol: "A",
			EndCol:   sheets.ColumnLetter(rosterSizes[cat]),
			StartRow: HeaderRows + 1,
			EndRow:   HeaderRows + bulkWindowRows,
		}
	}

	grids, err := f.reader.ReadRangesBatch(ctx, specs)
	if err != nil {
		return nil, err
	}

	out := make(map[types.Category]RowSet, len(cats))
	total := 0
	for i, cat := range cats {
		rs := RowSet{Values: make(map[int][]string)}
		for row := range grids[i] {
			rs.Dates = append(rs.Dates, grids[i].Cell(row, 0))
			for pos := 0; pos < rosterSizes[cat]; pos++ {
				rs.Values[pos] = append(rs.Values[pos], grids[i].Cell(row, pos+1))
			}
		}
		if boundary, found := f.todayBoundary(rs.Dates); found {
			rs.truncate(boundary + 1)
		}
		out[cat] = rs
		total += len(rs.Dates)
	}

	metrics.RecordRowsImported(total)
	metrics.RecordFetchDuration(time.Since(start).Seconds())
	return out, nil
}

// todayBoundary returns the index of the first row whose parsed date is
// the current local calendar day. Blank or unparseable cells never
// match.
func (f *Fetcher) todayBoundary(dates []string) (int, bool) {
	today := f.now()
	for i, cell := range dates {
		if t, ok := dateparse.Parse(cell); ok && dateparse.SameDay(t, today) {
			return i, true
		}
	}
	return 0, false
}

func (rs *RowSet) truncate(n int) {
	if n >= len(rs.Dates) {
		return
	}
	rs.Dates = rs.Dates[:n]
	for pos, values := range rs.Values {
		if len(values) > n {
			rs.Values[pos] = values[:n]
		}
	}
}
