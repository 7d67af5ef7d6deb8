// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/repstats/repstats/internal/domain/types"
)

// HistoryDependencies defines the interface for raw history reads.
type HistoryDependencies interface {
	History(ctx context.Context, cat types.Category, participant string) ([]types.DateValueRow, error)
}

// HistoryHandler handles raw row history requests.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

type historyResponse struct {
	Category    types.Category       `json:"category"`
	Participant string               `json:"participant"`
	Rows        []types.DateValueRow `json:"rows"`
}

// HandleGetHistory handles GET /history/{category}/{participant}
// requests. Rows come back raw, unparseable dates included.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/history/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	cat, err := types.ParseCategory(parts[0])
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	participant := parts[1]
	rows, err := h.deps.History(r.Context(), cat, participant)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if rows == nil {
		rows = []types.DateValueRow{}
	}
	writeJSON(w, http.StatusOK, historyResponse{
		Category:    cat,
		Participant: participant,
		Rows:        rows,
	})
}
