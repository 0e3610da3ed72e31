// Package api provides the read-only HTTP status surface: the resolved
// project set, their tier decisions, and recorded deployment runs.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/onurmatik/StageOps/internal/core/manifest"
	"github.com/onurmatik/StageOps/internal/core/tier"
	"github.com/onurmatik/StageOps/internal/shell/history"
)

// =============================================================================
// Handler
// =============================================================================

// Handler serves the status API.
type Handler struct {
	projects []manifest.ResolvedProject
	runs     history.Store // may be nil when history is not configured
	logger   *slog.Logger
}

// NewHandler creates a status API handler.
func NewHandler(projects []manifest.ResolvedProject, runs history.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{projects: projects, runs: runs, logger: logger}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(jsonContentType)

	r.Get("/healthz", h.handleHealth)
	r.Get("/api/projects", h.handleProjects)
	r.Get("/api/runs", h.handleRuns)

	return r
}

func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "healthy"})
}

func (h *Handler) handleProjects(w http.ResponseWriter, _ *http.Request) {
	out := make([]projectResponse, 0, len(h.projects))
	for _, p := range h.projects {
		d := tier.Decide(p)
		out = append(out, projectResponse{
			Name:         p.Name,
			Domain:       p.Domain,
			Tier:         string(p.Tier),
			Worker:       p.Worker,
			Frontend:     p.Node,
			BackendPaths: p.BackendPaths,
			EnabledUnits: d.EnabledUnitNames(p.Name),
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		h.writeError(w, http.StatusNotFound, "run history is not configured", "history_disabled")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer", "bad_limit")
			return
		}
		limit = n
	}

	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list runs", "store_error")
		return
	}

	out := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		rr := runResponse{
			ID:         run.ID,
			StartedAt:  run.StartedAt,
			FinishedAt: run.FinishedAt,
			Success:    run.Success,
		}
		for _, p := range run.Projects {
			rr.Projects = append(rr.Projects, outcomeResponse{
				Project: p.Project,
				Status:  p.Status,
				Reason:  p.Reason,
			})
		}
		out = append(out, rr)
	}
	h.writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// Response Helpers
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, errorResponse{Error: message, Code: code})
}
