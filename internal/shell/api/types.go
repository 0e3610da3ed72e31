package api

import "time"

// =============================================================================
// Response Types
// =============================================================================

// healthResponse is the health check response.
type healthResponse struct {
	Status string `json:"status"`
}

// errorResponse is the error response format.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// projectResponse describes one resolved project and its decided units.
type projectResponse struct {
	Name         string   `json:"name"`
	Domain       string   `json:"domain,omitempty"`
	Tier         string   `json:"tier"`
	Worker       bool     `json:"worker"`
	Frontend     bool     `json:"frontend"`
	BackendPaths []string `json:"backend_paths,omitempty"`
	EnabledUnits []string `json:"enabled_units,omitempty"`
}

// runResponse describes one recorded deployment run.
type runResponse struct {
	ID         string            `json:"id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Success    bool              `json:"success"`
	Projects   []outcomeResponse `json:"projects,omitempty"`
}

// outcomeResponse is one project's outcome within a run.
type outcomeResponse struct {
	Project string `json:"project"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
}
