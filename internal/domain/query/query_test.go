package query_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/repstats/repstats/internal/domain/query"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerations(t *testing.T) {
	Convey("Given a controller", t, func() {
		c := query.NewController()

		Convey("When beginning a query", func() {
			gen := c.Begin("medals:push:2024")

			Convey("Then the query should be loading at generation 1", func() {
				So(gen, ShouldEqual, 1)
				So(c.Current("medals:push:2024"), ShouldEqual, 1)
				So(c.Status("medals:push:2024").State, ShouldEqual, query.StateLoading)
			})

			Convey("And when it commits successfully", func() {
				So(c.Commit("medals:push:2024", gen, nil), ShouldBeTrue)
				So(c.Status("medals:push:2024").State, ShouldEqual, query.StateSuccess)
			})

			Convey("And when it commits an error", func() {
				So(c.Commit("medals:push:2024", gen, errors.New("remote read failed")), ShouldBeTrue)
				status := c.Status("medals:push:2024")
				So(status.State, ShouldEqual, query.StateError)
				So(status.Err, ShouldContainSubstring, "remote read failed")
			})
		})

		Convey("When a second query starts before the first resolves", func() {
			first := c.Begin("medals:push:2024")
			second := c.Begin("medals:push:2024")

			Convey("Then only the second result should ever be observed", func() {
				So(c.Commit("medals:push:2024", first, nil), ShouldBeFalse)
				So(c.Status("medals:push:2024").State, ShouldEqual, query.StateLoading)

				So(c.Commit("medals:push:2024", second, nil), ShouldBeTrue)
				So(c.Status("medals:push:2024").State, ShouldEqual, query.StateSuccess)
			})

			Convey("Then a stale error should be dropped, not shown", func() {
				So(c.Commit("medals:push:2024", first, errors.New("slow failure")), ShouldBeFalse)
				So(c.Status("medals:push:2024").Err, ShouldBeEmpty)
			})
		})

		Convey("When distinct keys interleave", func() {
			pushGen := c.Begin("medals:push:2024")
			pullGen := c.Begin("medals:pull:2024")

			Convey("Then generations should be independent per key", func() {
				So(pushGen, ShouldEqual, 1)
				So(pullGen, ShouldEqual, 1)
				So(c.Commit("medals:push:2024", pushGen, nil), ShouldBeTrue)
				So(c.Status("medals:pull:2024").State, ShouldEqual, query.StateLoading)
			})
		})

		Convey("When an unknown key is inspected", func() {
			Convey("Then it should read as idle", func() {
				So(c.Status("never-begun").State, ShouldEqual, query.StateIdle)
				So(c.Current("never-begun"), ShouldEqual, 0)
			})
		})

		Convey("When reset", func() {
			c.Begin("medals:push:2024")
			c.Reset()

			Convey("Then all state should clear", func() {
				So(c.Current("medals:push:2024"), ShouldEqual, 0)
				So(c.Status("medals:push:2024").State, ShouldEqual, query.StateIdle)
			})
		})
	})
}

func TestConcurrentBegins(t *testing.T) {
	Convey("Given many concurrent begins for one key", t, func() {
		c := query.NewController()
		const n = 64

		var wg sync.WaitGroup
		gens := make([]uint64, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				gens[i] = c.Begin("k")
			}(i)
		}
		wg.Wait()

		Convey("Then tokens should be unique and the max should be current", func() {
			seen := map[uint64]bool{}
			var max uint64
			for _, g := range gens {
				So(seen[g], ShouldBeFalse)
				seen[g] = true
				if g > max {
					max = g
				}
			}
			So(max, ShouldEqual, uint64(n))
			So(c.Current("k"), ShouldEqual, uint64(n))
		})

		Convey("Then only the final generation may commit", func() {
			So(c.Commit("k", uint64(n), nil), ShouldBeTrue)
			So(c.Commit("k", uint64(n-1), nil), ShouldBeFalse)
		})
	})
}

func TestStateString(t *testing.T) {
	Convey("Given query states", t, func() {
		So(query.StateIdle.String(), ShouldEqual, "idle")
		So(query.StateLoading.String(), ShouldEqual, "loading")
		So(query.StateSuccess.String(), ShouldEqual, "success")
		So(query.StateError.String(), ShouldEqual, "error")
	})
}
