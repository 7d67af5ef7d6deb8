// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/repstats/repstats/internal/domain/types"
)

// WeekdaysDependencies defines the interface for weekday aggregation.
type WeekdaysDependencies interface {
	Weekdays(ctx context.Context, cat types.Category, participant string, year, month int) (types.WeekdayStats, error)
}

// WeekdaysHandler handles weekday statistics requests.
type WeekdaysHandler struct {
	deps WeekdaysDependencies
}

// NewWeekdaysHandler creates a new weekdays handler.
func NewWeekdaysHandler(deps WeekdaysDependencies) *WeekdaysHandler {
	return &WeekdaysHandler{deps: deps}
}

type weekdaysResponse struct {
	Category    types.Category `json:"category"`
	Participant string         `json:"participant"`
	Year        int            `json:"year"`
	Month       int            `json:"month"`
	types.WeekdayStats
}

// HandleGetWeekdays handles
// GET /weekdays?category=push&participant=alex&year=2026&month=3
// requests.
func (h *WeekdaysHandler) HandleGetWeekdays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	cat, err := categoryParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	participant := strings.TrimSpace(r.URL.Query().Get("participant"))
	if participant == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing participant"))
		return
	}
	year, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	month, err := monthParam(r)
	if err != nil || month == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid month"))
		return
	}
	stats, err := h.deps.Weekdays(r.Context(), cat, participant, year, month)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weekdaysResponse{
		Category:     cat,
		Participant:  participant,
		Year:         year,
		Month:        month,
		WeekdayStats: stats,
	})
}
