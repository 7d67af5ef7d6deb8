// Package ranking turns per-bucket totals into leaderboards and medal
// tallies.
package ranking

import (
	"sort"
	"time"

	"github.com/repstats/repstats/internal/domain/dateparse"
	"github.com/repstats/repstats/internal/domain/types"
)

const medalRanks = 3

// Rank orders participants descending by total with contiguous 1-based
// ranks. Ties keep roster order; there is no shared-rank scheme.
func Rank(roster []string, totals map[string]float64) []types.LeaderboardEntry {
	entries := make([]types.LeaderboardEntry, 0, len(roster))
	for _, name := range roster {
		entries = append(entries, types.LeaderboardEntry{Name: name, Total: totals[name]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total > entries[j].Total
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// ScoredMonths returns how many months of a year earn medals: all 12
// for a past year, months up to the current one for the current year,
// none for a future year.
func ScoredMonths(year int, now time.Time) int {
	switch {
	case year < now.Year():
		return 12
	case year == now.Year():
		return int(now.Month())
	default:
		return 0
	}
}

// BuildMedalBoard awards gold/silver/bronze to the top three of every
// scored month's leaderboard, crediting the month, its quarter and the
// year, overall and per category. monthly holds each category's
// twelve month leaderboards (index 0 = January).
func BuildMedalBoard(year int, now time.Time, monthly map[types.Category][12][]types.LeaderboardEntry) types.MedalBoard {
	board := types.NewMedalBoard()
	months := ScoredMonths(year, now)
	if months == 0 {
		return board
	}

	yearTally := newTally()
	quarterTallies := map[int]*tally{}
	monthTallies := map[int]*tally{}

	cats := make([]types.Category, 0, len(monthly))
	for _, cat := range types.Categories() {
		if _, ok := monthly[cat]; ok {
			cats = append(cats, cat)
		}
	}

	for month := 1; month <= months; month++ {
		quarter := dateparse.Quarter(month)
		if quarterTallies[quarter] == nil {
			quarterTallies[quarter] = newTally()
		}
		if monthTallies[month] == nil {
			monthTallies[month] = newTally()
		}

		for _, cat := range cats {
			catMonths := monthly[cat]
			entries := catMonths[month-1]
			for i := 0; i < medalRanks && i < len(entries); i++ {
				name := entries[i].Name
				place := i + 1
				monthTallies[month].award(name, cat, place)
				quarterTallies[quarter].award(name, cat, place)
				yearTally.award(name, cat, place)
			}
		}
	}

	board.ByYear = yearTally.list()
	for quarter, t := range quarterTallies {
		board.ByQuarter[quarter] = t.list()
	}
	for month, t := range monthTallies {
		board.ByMonth[month] = t.list()
	}
	return board
}

// tally accumulates medal counts keyed by participant, remembering
// first-seen order so the final sort stays deterministic.
type tally struct {
	byName map[string]*types.MedalCount
	order  []string
}

func newTally() *tally {
	return &tally{byName: map[string]*types.MedalCount{}}
}

func (t *tally) award(name string, cat types.Category, place int) {
	mc, ok := t.byName[name]
	if !ok {
		mc = &types.MedalCount{
			Name:       name,
			ByCategory: map[types.Category]types.MedalSet{},
		}
		t.byName[name] = mc
		t.order = append(t.order, name)
	}

	var medal types.MedalSet
	switch place {
	case 1:
		medal.Gold = 1
	case 2:
		medal.Silver = 1
	case 3:
		medal.Bronze = 1
	}
	mc.Add(medal)
	perCat := mc.ByCategory[cat]
	perCat.Add(medal)
	mc.ByCategory[cat] = perCat
}

// list filters out empty tallies and orders by weighted score, ties by
// gold, silver, then bronze, all descending.
func (t *tally) list() []types.MedalCount {
	out := make([]types.MedalCount, 0, len(t.order))
	for _, name := range t.order {
		if mc := t.byName[name]; !mc.Empty() {
			out = append(out, *mc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score() != b.Score() {
			return a.Score() > b.Score()
		}
		if a.Gold != b.Gold {
			return a.Gold > b.Gold
		}
		if a.Silver != b.Silver {
			return a.Silver > b.Silver
		}
		return a.Bronze > b.Bronze
	})
	return out
}
