// Package seedsheet generates a deterministic activity corpus and
// serves it over the same values-API surface the engine's client
// speaks. It exists for local development and integration testing.
package seedsheet

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/repstats/repstats/internal/domain/types"
)

// Corpus shape constants.
const (
	serialEpochOffset = 25569
	secondsPerDay     = 86400

	// Roughly one cell in twelve is left blank, and one date in ten
	// is rendered as text instead of a day-serial.
	blankOneIn    = 12
	textualOneIn  = 10
	maxDailyValue = 60
)

// Config controls corpus generation.
type Config struct {
	// Seed makes the corpus reproducible.
	Seed int64

	// Participants per category, in roster order.
	Participants []string

	// Start is the first data row's calendar day.
	Start time.Time

	// End is the last generated day, usually today.
	End time.Time
}

// DefaultParticipants is the roster used when none is configured.
func DefaultParticipants() []string {
	return []string{"alex", "sam", "kim", "robin", "charlie"}
}

// Sheet is one category tab: a header row followed by daily rows.
type Sheet [][]string

// Corpus maps sheet tab names to generated sheets.
type Corpus map[string]Sheet

// Generate builds one sheet per category. Every participant gets a
// value for every day unless the blank roll hits; dates are mostly
// day-serials with occasional textual renderings, matching what real
// spreadsheets accumulate over years of manual entry.
func Generate(cfg Config) Corpus {
	if len(cfg.Participants) == 0 {
		cfg.Participants = DefaultParticipants()
	}
	if cfg.End.Before(cfg.Start) {
		cfg.End = cfg.Start
	}

	corpus := make(Corpus, len(types.Categories()))
	for ci, cat := range types.Categories() {
		rng := rand.New(rand.NewSource(cfg.Seed + int64(ci)))
		corpus[cat.Sheet()] = generateSheet(rng, cfg)
	}
	return corpus
}

func generateSheet(rng *rand.Rand, cfg Config) Sheet {
	header := append([]string{""}, cfg.Participants...)
	sheet := Sheet{header}

	for day := cfg.Start; !day.After(cfg.End); day = day.AddDate(0, 0, 1) {
		row := []string{dateCell(rng, day)}
		for range cfg.Participants {
			row = append(row, valueCell(rng))
		}
		sheet = append(sheet, row)
	}
	return sheet
}

func dateCell(rng *rand.Rand, day time.Time) string {
	if rng.Intn(textualOneIn) == 0 {
		return day.Format("2006-01-02")
	}
	utcDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	serial := utcDay.Unix()/secondsPerDay + serialEpochOffset
	return strconv.FormatInt(serial, 10)
}

func valueCell(rng *rand.Rand) string {
	if rng.Intn(blankOneIn) == 0 {
		return ""
	}
	return strconv.Itoa(rng.Intn(maxDailyValue + 1))
}
