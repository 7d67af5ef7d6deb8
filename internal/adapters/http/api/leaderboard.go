// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/repstats/repstats/internal/domain/types"
)

// LeaderboardDependencies defines the interface for leaderboard
// operations.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, cat types.Category, year, month int) ([]types.LeaderboardEntry, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

type leaderboardResponse struct {
	Category types.Category           `json:"category"`
	Year     int                      `json:"year"`
	Month    int                      `json:"month,omitempty"`
	Entries  []types.LeaderboardEntry `json:"entries"`
}

// HandleGetLeaderboard handles GET /leaderboard?category=push&year=2026
// requests. An optional month=1..12 narrows the window; without it the
// whole year is ranked.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	cat, err := categoryParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	year, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	entries, err := h.deps.Leaderboard(r.Context(), cat, year, month)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []types.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{
		Category: cat,
		Year:     year,
		Month:    month,
		Entries:  entries,
	})
}
