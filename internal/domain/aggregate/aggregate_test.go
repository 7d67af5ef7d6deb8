package aggregate_test

import (
	"testing"
	"time"

	"github.com/repstats/repstats/internal/domain/aggregate"
	"github.com/repstats/repstats/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func row(date, value string) types.DateValueRow {
	return types.DateValueRow{Date: date, Value: value}
}

func TestWeekdayTotals(t *testing.T) {
	Convey("Given rows inside and outside one month", t, func() {
		// 2024-01-01 was a Monday.
		rows := []types.DateValueRow{
			row("2024-01-01", "5"),
			row("2024-01-02", "0"),
			row("2024-01-03", ""),
			row("2024-01-08", "7"),  // second Monday
			row("2024-02-05", "99"), // wrong month
			row("2023-01-02", "99"), // wrong year
			row("not a date", "99"),
		}

		Convey("When bucketing by weekday for January 2024", func() {
			totals := aggregate.WeekdayTotals(rows, 2024, 1)

			Convey("Then Mondays should sum across the month", func() {
				So(totals[time.Monday], ShouldEqual, 12)
			})

			Convey("Then a zero value and a blank value should contribute 0, not be excluded", func() {
				So(totals[time.Tuesday], ShouldEqual, 0)
				So(totals[time.Wednesday], ShouldEqual, 0)
			})

			Convey("Then other periods and unparseable rows should not leak in", func() {
				sum := 0.0
				for _, v := range totals {
					sum += v
				}
				So(sum, ShouldEqual, 12)
			})
		})
	})
}

func TestWeekdayAverages(t *testing.T) {
	Convey("Given January rows across three years", t, func() {
		rows := []types.DateValueRow{
			// Mondays: 2024-01-01 (10), 2023-01-02 (20). Two years touch Monday.
			row("2024-01-01", "10"),
			row("2023-01-02", "20"),
			// Sunday touched by a single year.
			row("2023-01-01", "8"),
			// Different month, must not count.
			row("2022-03-07", "50"),
		}

		Convey("When averaging January weekdays across observed years", func() {
			avgs := aggregate.WeekdayAverages(rows, 1)

			Convey("Then each bucket should divide by its own contributing-year count", func() {
				So(avgs[time.Monday], ShouldEqual, 15)
				So(avgs[time.Sunday], ShouldEqual, 8)
			})

			Convey("Then untouched buckets should default to 0", func() {
				So(avgs[time.Friday], ShouldEqual, 0)
			})
		})
	})
}

func TestMonthlyTotals(t *testing.T) {
	Convey("Given a year of scattered rows", t, func() {
		rows := []types.DateValueRow{
			row("2024-01-01", "5"),
			row("2024-01-15", "2.5"),
			row("2024-03-10", "4"),
			row("2024-12-31", "1"),
			row("2023-06-01", "100"),
			row("", "100"),
			row("2024-02-29", "abc"), // non-numeric sums as 0
		}

		Convey("When computing monthly totals for 2024", func() {
			totals := aggregate.MonthlyTotals(rows, 2024)

			Convey("Then sums should land in the right months", func() {
				So(totals[0], ShouldEqual, 7.5)
				So(totals[1], ShouldEqual, 0)
				So(totals[2], ShouldEqual, 4)
				So(totals[11], ShouldEqual, 1)
			})

			Convey("Then the year total should match the sum of months", func() {
				So(aggregate.YearTotal(totals), ShouldEqual, 12.5)
			})
		})
	})
}
