package dateparse_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/repstats/repstats/internal/domain/dateparse"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseDaySerials(t *testing.T) {
	Convey("Given numeric day-serial cells", t, func() {
		Convey("When parsing the epoch serial", func() {
			got, ok := dateparse.Parse("25569")

			Convey("Then it should resolve to 1970-01-01 local midnight", func() {
				So(ok, ShouldBeTrue)
				So(got.Year(), ShouldEqual, 1970)
				So(got.Month(), ShouldEqual, time.January)
				So(got.Day(), ShouldEqual, 1)
				So(got.Hour(), ShouldEqual, 0)
			})
		})

		Convey("When a serial and an ISO string denote the same day", func() {
			// 45292 days after 1899-12-30 is 2024-01-01.
			fromSerial, okSerial := dateparse.Parse("45292")
			fromText, okText := dateparse.Parse("2024-01-01")

			Convey("Then both should parse to the same instant", func() {
				So(okSerial, ShouldBeTrue)
				So(okText, ShouldBeTrue)
				So(fromSerial.Equal(fromText), ShouldBeTrue)
			})
		})

		Convey("When the serial has a fractional time part", func() {
			fromSerial, ok := dateparse.Parse("45292.75")

			Convey("Then it should truncate to the calendar day", func() {
				So(ok, ShouldBeTrue)
				So(fromSerial.Format("2006-01-02"), ShouldEqual, "2024-01-01")
			})
		})

		Convey("When the serial denotes a pre-1970 day", func() {
			// 20000 days after 1899-12-30 is 1954-10-03, below the
			// Unix epoch offset.
			fromSerial, okSerial := dateparse.Parse("20000")
			fromText, okText := dateparse.Parse("1954-10-03")

			Convey("Then serial and text should agree", func() {
				So(okSerial, ShouldBeTrue)
				So(okText, ShouldBeTrue)
				So(fromSerial.Equal(fromText), ShouldBeTrue)
			})
		})

		Convey("When the serial is zero or negative", func() {
			for _, cell := range []string{"0", "-1", "-25569"} {
				_, ok := dateparse.Parse(cell)
				So(ok, ShouldBeFalse)
			}
		})

		Convey("When the serial is numeric but out of any sane date range", func() {
			_, ok := dateparse.Parse("99999999")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestParseTextualDates(t *testing.T) {
	Convey("Given textual date cells", t, func() {
		cases := map[string]string{
			"2024-03-05":   "2024-03-05",
			"3/5/2024":     "2024-03-05",
			"Mar 5, 2024":  "2024-03-05",
			"5 Mar 2024":   "2024-03-05",
			"2024/03/05":   "2024-03-05",
			" 2024-03-05 ": "2024-03-05",
		}
		for cell, want := range cases {
			got, ok := dateparse.Parse(cell)
			So(ok, ShouldBeTrue)
			So(got.Format("2006-01-02"), ShouldEqual, want)
		}
	})
}

func TestParseGarbage(t *testing.T) {
	Convey("Given unparseable cells", t, func() {
		for _, cell := range []string{"", "   ", "yesterday", "13/45/9999", "n/a"} {
			Convey(fmt.Sprintf("When parsing %q", cell), func() {
				_, ok := dateparse.Parse(cell)

				Convey("Then it should miss without panicking", func() {
					So(ok, ShouldBeFalse)
				})
			})
		}
	})
}

func TestSameDay(t *testing.T) {
	Convey("Given instants on and around a day boundary", t, func() {
		base := time.Date(2024, 6, 10, 0, 0, 0, 0, time.Local)
		So(dateparse.SameDay(base, base.Add(23*time.Hour)), ShouldBeTrue)
		So(dateparse.SameDay(base, base.Add(25*time.Hour)), ShouldBeFalse)
		So(dateparse.SameDay(base, base.AddDate(0, 0, -1)), ShouldBeFalse)
	})
}

func TestQuarter(t *testing.T) {
	Convey("Given 1-based months", t, func() {
		want := map[int]int{1: 1, 2: 1, 3: 1, 4: 2, 6: 2, 7: 3, 9: 3, 10: 4, 12: 4}
		for month, quarter := range want {
			So(dateparse.Quarter(month), ShouldEqual, quarter)
		}
	})
}
