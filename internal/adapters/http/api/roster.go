// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/repstats/repstats/internal/domain/types"
)

// RosterDependencies defines the interface for roster operations.
type RosterDependencies interface {
	Roster(ctx context.Context, cat types.Category) ([]string, error)
}

// RosterHandler handles roster requests.
type RosterHandler struct {
	deps RosterDependencies
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(deps RosterDependencies) *RosterHandler {
	return &RosterHandler{deps: deps}
}

type rosterResponse struct {
	Category     types.Category `json:"category"`
	Participants []string       `json:"participants"`
}

// HandleGetRoster handles GET /roster?category=push requests.
func (h *RosterHandler) HandleGetRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	cat, err := categoryParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	roster, err := h.deps.Roster(r.Context(), cat)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if roster == nil {
		roster = []string{}
	}
	writeJSON(w, http.StatusOK, rosterResponse{Category: cat, Participants: roster})
}
