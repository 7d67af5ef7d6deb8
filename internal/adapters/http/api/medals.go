// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/repstats/repstats/internal/domain/types"
)

// MedalsDependencies defines the interface for medal board reads.
type MedalsDependencies interface {
	Medals(ctx context.Context, cats []types.Category, year int) (types.MedalsResult, error)
}

// MedalsHandler handles medal board requests.
type MedalsHandler struct {
	deps MedalsDependencies
}

// NewMedalsHandler creates a new medals handler.
func NewMedalsHandler(deps MedalsDependencies) *MedalsHandler {
	return &MedalsHandler{deps: deps}
}

// HandleGetMedals handles GET /medals?categories=push,pull&year=2026
// requests. An absent categories parameter covers every category. The
// response always carries loading/error flags alongside the board.
func (h *MedalsHandler) HandleGetMedals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	cats, err := categoriesParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	year, err := yearParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	result, err := h.deps.Medals(r.Context(), cats, year)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
