package cache

import (
	"sort"
	"strconv"
	"strings"

	"github.com/repstats/repstats/internal/domain/types"
)

// Key builders. One entry per (category-set, year) for medal boards,
// one per category for rosters, one per (category, participant) for
// row histories.

// MedalsKey is stable under category order.
func MedalsKey(cats []types.Category, year int) string {
	names := make([]string, len(cats))
	for i, cat := range cats {
		names[i] = string(cat)
	}
	sort.Strings(names)
	return "medals:" + strings.Join(names, "+") + ":" + strconv.Itoa(year)
}

func RosterKey(cat types.Category) string {
	return "roster:" + string(cat)
}

func HistoryKey(cat types.Category, participant string) string {
	return "history:" + string(cat) + ":" + participant
}
