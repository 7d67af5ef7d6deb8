// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/repstats/repstats/internal/adapters/sheets"
	"github.com/repstats/repstats/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to implementations in other
// packages.
type Dependencies interface {
	Roster(ctx context.Context, cat types.Category) ([]string, error)
	History(ctx context.Context, cat types.Category, participant string) ([]types.DateValueRow, error)
	Leaderboard(ctx context.Context, cat types.Category, year, month int) ([]types.LeaderboardEntry, error)
	Medals(ctx context.Context, cats []types.Category, year int) (types.MedalsResult, error)
	Weekdays(ctx context.Context, cat types.Category, participant string, year, month int) (types.WeekdayStats, error)

	// Refresh starts a new generation and enqueues a refresh job.
	// Returns false on backpressure.
	Refresh(ctx context.Context, cats []types.Category, year int, force bool) (uint64, bool)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	rosterHandler      *RosterHandler
	leaderboardHandler *LeaderboardHandler
	medalsHandler      *MedalsHandler
	weekdaysHandler    *WeekdaysHandler
	historyHandler     *HistoryHandler
	refreshHandler     *RefreshHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		rosterHandler:      NewRosterHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		medalsHandler:      NewMedalsHandler(deps),
		weekdaysHandler:    NewWeekdaysHandler(deps),
		historyHandler:     NewHistoryHandler(deps),
		refreshHandler:     NewRefreshHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(RequestIDMiddleware(s.statsHandler.HandleStats), "stats"))
	mux.HandleFunc("/roster", MetricsMiddleware(RequestIDMiddleware(s.rosterHandler.HandleGetRoster), "roster"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(RequestIDMiddleware(s.leaderboardHandler.HandleGetLeaderboard), "leaderboard"))
	mux.HandleFunc("/medals", MetricsMiddleware(RequestIDMiddleware(s.medalsHandler.HandleGetMedals), "medals"))
	mux.HandleFunc("/weekdays", MetricsMiddleware(RequestIDMiddleware(s.weekdaysHandler.HandleGetWeekdays), "weekdays"))
	mux.HandleFunc("/history/", MetricsMiddleware(RequestIDMiddleware(s.historyHandler.HandleGetHistory), "history"))
	mux.HandleFunc("/refresh", MetricsMiddleware(RequestIDMiddleware(s.refreshHandler.HandlePostRefresh), "refresh"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates well-known upstream errors: unknown
// categories and participants become 404, remote read failures 502,
// anything else 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrUnknownCategory), errors.Is(err, types.ErrUnknownParticipant):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, sheets.ErrRemoteRead):
		writeError(w, http.StatusBadGateway, "remote_read_failed", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// categoryParam parses the required ?category= query parameter.
func categoryParam(r *http.Request) (types.Category, error) {
	raw := r.URL.Query().Get("category")
	if strings.TrimSpace(raw) == "" {
		return "", errors.New("missing category")
	}
	return types.ParseCategory(raw)
}

// categoriesParam parses the optional ?categories=a,b list; an absent
// parameter means every category.
func categoriesParam(r *http.Request) ([]types.Category, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("categories"))
	if raw == "" {
		return types.Categories(), nil
	}
	parts := strings.Split(raw, ",")
	cats := make([]types.Category, 0, len(parts))
	for _, part := range parts {
		cat, err := types.ParseCategory(part)
		if err != nil {
			return nil, err
		}
		cats = append(cats, cat)
	}
	return cats, nil
}

// yearParam parses the required ?year= query parameter.
func yearParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1970 || year > 9999 {
		return 0, errors.New("invalid year")
	}
	return year, nil
}

// monthParam parses the optional ?month= parameter; 0 means the whole
// year.
func monthParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return 0, nil
	}
	month, err := strconv.Atoi(raw)
	if err != nil || month < 1 || month > 12 {
		return 0, errors.New("invalid month")
	}
	return month, nil
}
