// Package types contains the domain types shared across the engine.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Category identifies an independent partition of the tabular corpus.
// The set is closed and known at build time; each category maps to one
// sheet tab with its own participant roster and row corpus.
type Category string

const (
	CategoryPush  Category = "push"
	CategoryPull  Category = "pull"
	CategorySquat Category = "squat"
	CategoryCore  Category = "core"
)

// Categories returns all categories in their canonical order.
func Categories() []Category {
	return []Category{CategoryPush, CategoryPull, CategorySquat, CategoryCore}
}

// ParseCategory resolves a textual category name, case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryPush:
		return CategoryPush, nil
	case CategoryPull:
		return CategoryPull, nil
	case CategorySquat:
		return CategorySquat, nil
	case CategoryCore:
		return CategoryCore, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
}

// Sheet returns the sheet tab name for the category.
func (c Category) Sheet() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// DateValueRow is the raw cell pair for one participant on one calendar
// row. Immutable once fetched; the remote row order is authoritative,
// not the parsed date.
type DateValueRow struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// LeaderboardEntry is one ranked row for a category and time window.
// Ranks are 1-based and contiguous; ties keep roster order.
type LeaderboardEntry struct {
	Rank  int     `json:"rank"`
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// MedalSet holds gold/silver/bronze counts.
type MedalSet struct {
	Gold   int `json:"gold"`
	Silver int `json:"silver"`
	Bronze int `json:"bronze"`
}

// Score is the weighted medal score used for tally ordering.
func (m MedalSet) Score() int {
	return m.Gold*3 + m.Silver*2 + m.Bronze
}

// Empty reports whether no medal of any color was won.
func (m MedalSet) Empty() bool {
	return m.Gold == 0 && m.Silver == 0 && m.Bronze == 0
}

// Add accumulates another set into this one.
func (m *MedalSet) Add(other MedalSet) {
	m.Gold += other.Gold
	m.Silver += other.Silver
	m.Bronze += other.Bronze
}

// MedalCount is one participant's tally for a time window, with an
// optional per-category breakdown.
type MedalCount struct {
	Name string `json:"name"`
	MedalSet
	ByCategory map[Category]MedalSet `json:"byCategory,omitempty"`
}

// MedalBoard holds the medal tallies of one year at every bucket size.
// Quarter keys are 1..4, month keys 1..12. For future years all three
// are present but empty.
type MedalBoard struct {
	ByYear    []MedalCount         `json:"byYear"`
	ByQuarter map[int][]MedalCount `json:"byQuarter"`
	ByMonth   map[int][]MedalCount `json:"byMonth"`
}

// NewMedalBoard returns an empty board with initialized maps so the
// JSON shape stays stable even when no months were scored.
func NewMedalBoard() MedalBoard {
	return MedalBoard{
		ByYear:    []MedalCount{},
		ByQuarter: map[int][]MedalCount{},
		ByMonth:   map[int][]MedalCount{},
	}
}

// MedalsResult is the read-side view of a medal board: the latest
// committed board plus the status of any in-flight refresh.
type MedalsResult struct {
	Board     MedalBoard `json:"board"`
	Loading   bool       `json:"loading"`
	Error     string     `json:"error,omitempty"`
	FetchedAt time.Time  `json:"fetchedAt,omitzero"`
}

// WeekdayStats holds the two weekday views for one participant and
// month: this month's totals and the month-of-year averages across
// all observed years. Index 0 is Sunday.
type WeekdayStats struct {
	Totals   [7]float64 `json:"totals"`
	Averages [7]float64 `json:"averages"`
}
