package fetch_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/repstats/repstats/internal/adapters/sheets"
	"github.com/repstats/repstats/internal/domain/fetch"
	"github.com/repstats/repstats/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// serialFor renders the spreadsheet day-serial for a calendar day.
func serialFor(year int, month time.Month, day int) string {
	epochDays := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / 86400
	return strconv.FormatInt(epochDays+25569, 10)
}

// gridReader serves a fixed per-sheet grid in ChunkSize windows and
// records every request.
type gridReader struct {
	rows       map[string]sheets.Grid
	rangeCalls []sheets.RangeSpec
	batchCalls [][]sheets.RangeSpec
	err        error
}

// colIndex converts a column letter back to its 0-based index.
func colIndex(letters string) int {
	n := 0
	for _, c := range letters {
		n = n*26 + int(c-'A') + 1
	}
	return n - 1
}

func (r *gridReader) window(spec sheets.RangeSpec) sheets.Grid {
	full := r.rows[spec.Sheet]
	start := spec.StartRow - 1
	end := spec.EndRow
	if start >= len(full) {
		return sheets.Grid{}
	}
	if end > len(full) {
		end = len(full)
	}
	startCol, endCol := colIndex(spec.StartCol), colIndex(spec.EndCol)
	out := make(sheets.Grid, 0, end-start)
	for _, row := range full[start:end] {
		if startCol >= len(row) {
			out = append(out, nil)
			continue
		}
		hi := endCol + 1
		if hi > len(row) {
			hi = len(row)
		}
		out = append(out, row[startCol:hi])
	}
	return out
}

func (r *gridReader) ReadRange(_ context.Context, spec sheets.RangeSpec) (sheets.Grid, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.rangeCalls = append(r.rangeCalls, spec)
	return r.window(spec), nil
}

func (r *gridReader) ReadRangesBatch(_ context.Context, specs []sheets.RangeSpec) ([]sheets.Grid, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.batchCalls = append(r.batchCalls, specs)
	grids := make([]sheets.Grid, len(specs))
	for i, spec := range specs {
		grids[i] = r.window(spec)
	}
	return grids, nil
}

// corpus builds a Push sheet: header row, then daily rows starting at
// start, counting up.
func corpus(start time.Time, days int, names ...string) sheets.Grid {
	grid := sheets.Grid{append([]string{""}, names...)}
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		row := []string{serialFor(d.Year(), d.Month(), d.Day())}
		for range names {
			row = append(row, strconv.Itoa(i+1))
		}
		grid = append(grid, row)
	}
	return grid
}

func TestRoster(t *testing.T) {
	Convey("Given a sheet with a header row", t, func() {
		reader := &gridReader{rows: map[string]sheets.Grid{
			"Push": {{"", "alex", "sam", "kim", "", "ghost"}},
		}}
		f := fetch.New(reader)

		Convey("When reading the roster", func() {
			roster, err := f.Roster(context.Background(), types.CategoryPush)

			Convey("Then names should be ordered and cut at the first blank", func() {
				So(err, ShouldBeNil)
				So(roster, ShouldResemble, []string{"alex", "sam", "kim"})
			})

			Convey("Then only the header row should have been requested", func() {
				So(len(reader.rangeCalls), ShouldEqual, 1)
				So(reader.rangeCalls[0].StartRow, ShouldEqual, 1)
				So(reader.rangeCalls[0].EndRow, ShouldEqual, 1)
			})
		})
	})
}

func TestRowsTodayBoundary(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
	clock := func() time.Time { return today.Add(9 * time.Hour) }

	Convey("Given a corpus whose 251st data row is dated today", t, func() {
		start := today.AddDate(0, 0, -250)
		reader := &gridReader{rows: map[string]sheets.Grid{
			"Push": corpus(start, 400, "alex", "sam"),
		}}
		f := fetch.New(reader, fetch.WithClock(clock))

		Convey("When fetching rows", func() {
			rs, err := f.Rows(context.Background(), types.CategoryPush, []int{0, 1})

			Convey("Then fetching should stop at the boundary, keeping today's row", func() {
				So(err, ShouldBeNil)
				So(len(rs.Dates), ShouldEqual, 251)
				So(rs.Dates[250], ShouldEqual, serialFor(2024, 6, 15))
			})

			Convey("Then only two sequential chunks should have been read", func() {
				So(len(reader.rangeCalls), ShouldEqual, 2)
				So(reader.rangeCalls[0].StartRow, ShouldEqual, 2)
				So(reader.rangeCalls[1].StartRow, ShouldEqual, 202)
			})

			Convey("Then values should align with the shared date column", func() {
				col := rs.Column(1)
				So(len(col), ShouldEqual, 251)
				So(col[0], ShouldResemble, types.DateValueRow{Date: rs.Dates[0], Value: "1"})
			})
		})
	})

	Convey("Given a corpus that ends before today", t, func() {
		start := today.AddDate(0, 0, -500)
		reader := &gridReader{rows: map[string]sheets.Grid{
			"Push": corpus(start, 150, "alex"),
		}}
		f := fetch.New(reader, fetch.WithClock(clock))

		Convey("When fetching rows", func() {
			rs, err := f.Rows(context.Background(), types.CategoryPush, []int{0})

			Convey("Then a short chunk should end the fetch with all rows kept", func() {
				So(err, ShouldBeNil)
				So(len(rs.Dates), ShouldEqual, 150)
				So(len(reader.rangeCalls), ShouldEqual, 1)
			})
		})
	})

	Convey("Given an endless corpus with no today row", t, func() {
		start := today.AddDate(0, 0, -20000)
		reader := &gridReader{rows: map[string]sheets.Grid{
			"Push": corpus(start, 6000, "alex"),
		}}
		f := fetch.New(reader, fetch.WithClock(clock))

		Convey("When fetching rows", func() {
			rs, err := f.Rows(context.Background(), types.CategoryPush, []int{0})

			Convey("Then the hard chunk cap should bound the read", func() {
				So(err, ShouldBeNil)
				So(len(reader.rangeCalls), ShouldEqual, fetch.MaxChunks)
				So(len(rs.Dates), ShouldEqual, fetch.MaxChunks*fetch.ChunkSize)
			})
		})
	})

	Convey("Given a failing reader", t, func() {
		reader := &gridReader{err: errors.New("boom")}
		f := fetch.New(reader, fetch.WithClock(clock))

		Convey("When fetching rows", func() {
			_, err := f.Rows(context.Background(), types.CategoryPush, []int{0})

			Convey("Then the transport failure should propagate", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestAllYearWindows(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
	clock := func() time.Time { return today }

	Convey("Given two categories with different corpus lengths", t, func() {
		reader := &gridReader{rows: map[string]sheets.Grid{
			"Push": corpus(today.AddDate(0, 0, -100), 300, "alex", "sam"),
			"Pull": corpus(today.AddDate(0, 0, -50), 20, "alex"),
		}}
		f := fetch.New(reader, fetch.WithClock(clock))

		cats := []types.Category{types.CategoryPush, types.CategoryPull}
		sizes := map[types.Category]int{types.CategoryPush: 2, types.CategoryPull: 1}

		Convey("When fetching all year windows", func() {
			out, err := f.AllYearWindows(context.Background(), cats, sizes)

			Convey("Then everything should travel in one batched read", func() {
				So(err, ShouldBeNil)
				So(len(reader.batchCalls), ShouldEqual, 1)
				So(len(reader.batchCalls[0]), ShouldEqual, 2)
				So(len(reader.rangeCalls), ShouldEqual, 0)
			})

			Convey("Then the boundary should apply per category in memory", func() {
				So(len(out[types.CategoryPush].Dates), ShouldEqual, 101)
				So(len(out[types.CategoryPull].Dates), ShouldEqual, 20)
			})
		})
	})
}
