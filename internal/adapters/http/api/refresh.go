// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/repstats/repstats/internal/domain/types"
)

// RefreshDependencies defines the interface for refresh requests.
type RefreshDependencies interface {
	Refresh(ctx context.Context, cats []types.Category, year int, force bool) (uint64, bool)
}

// RefreshHandler handles refresh requests.
type RefreshHandler struct {
	deps RefreshDependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps RefreshDependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

// refreshRequest mirrors the OpenAPI schema for POST /refresh.
type refreshRequest struct {
	Categories []string `json:"categories"`
	Year       int      `json:"year"`
	Force      bool     `json:"force"`
}

func (req refreshRequest) validate() error {
	if req.Year < 1970 || req.Year > 9999 {
		return errors.New("invalid year")
	}
	return nil
}

type refreshResponse struct {
	Status     string `json:"status"`
	Generation uint64 `json:"generation"`
}

// HandlePostRefresh handles POST /refresh requests. An empty category
// list covers every category; force removes cached entries from all
// tiers before recomputation.
func (h *RefreshHandler) HandlePostRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	cats := types.Categories()
	if len(req.Categories) > 0 {
		cats = cats[:0]
		for _, raw := range req.Categories {
			cat, err := types.ParseCategory(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "bad_request", err)
				return
			}
			cats = append(cats, cat)
		}
	}

	gen, ok := h.deps.Refresh(r.Context(), cats, req.Year, req.Force)
	if !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, refreshResponse{Status: "accepted", Generation: gen})
}
