// Package aggregate folds parsed rows into per-participant sums keyed
// by weekday, month and year.
package aggregate

import (
	"strconv"
	"strings"
	"time"

	"github.com/repstats/repstats/internal/domain/dateparse"
	"github.com/repstats/repstats/internal/domain/types"
)

// value reads a numeric cell. Blank or non-numeric cells sum as 0;
// they are data, not errors.
func value(cell string) float64 {
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// WeekdayTotals sums one participant's values per weekday (Sunday=0)
// within a single month of a single year. Rows with unparseable dates
// are skipped.
func WeekdayTotals(rows []types.DateValueRow, year, month int) [7]float64 {
	var totals [7]float64
	for _, row := range rows {
		t, ok := dateparse.Parse(row.Date)
		if !ok {
			continue
		}
		if t.Year() != year || int(t.Month()) != month {
			continue
		}
		totals[t.Weekday()] += value(row.Value)
	}
	return totals
}

// WeekdayAverages sums one participant's values per weekday for the
// given month-of-year across all observed years, then divides each
// weekday bucket by the number of years that contributed rows to it.
// Buckets no year touched stay 0.
func WeekdayAverages(rows []types.DateValueRow, month int) [7]float64 {
	var sums [7]float64
	years := [7]map[int]struct{}{}
	for i := range years {
		years[i] = make(map[int]struct{})
	}

	for _, row := range rows {
		t, ok := dateparse.Parse(row.Date)
		if !ok {
			continue
		}
		if int(t.Month()) != month {
			continue
		}
		w := t.Weekday()
		sums[w] += value(row.Value)
		years[w][t.Year()] = struct{}{}
	}

	var avgs [7]float64
	for w := time.Sunday; w <= time.Saturday; w++ {
		if n := len(years[w]); n > 0 {
			avgs[w] = sums[w] / float64(n)
		}
	}
	return avgs
}

// MonthlyTotals sums one participant's values per calendar month
// (index 0 = January) within one year. This is the ranking input.
func MonthlyTotals(rows []types.DateValueRow, year int) [12]float64 {
	var totals [12]float64
	for _, row := range rows {
		t, ok := dateparse.Parse(row.Date)
		if !ok {
			continue
		}
		if t.Year() != year {
			continue
		}
		totals[int(t.Month())-1] += value(row.Value)
	}
	return totals
}

// YearTotal sums a participant's monthly totals.
func YearTotal(monthly [12]float64) float64 {
	total := 0.0
	for _, v := range monthly {
		total += v
	}
	return total
}
