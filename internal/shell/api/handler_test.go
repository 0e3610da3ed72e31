package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onurmatik/StageOps/internal/core/manifest"
	"github.com/onurmatik/StageOps/internal/shell/history"
)

// fakeRunStore serves canned runs.
type fakeRunStore struct {
	runs []history.Run
}

func (f *fakeRunStore) RecordRun(_ context.Context, run history.Run) (string, error) {
	f.runs = append(f.runs, run)
	return run.ID, nil
}

func (f *fakeRunStore) ListRuns(_ context.Context, limit int) ([]history.Run, error) {
	if limit > len(f.runs) {
		limit = len(f.runs)
	}
	return f.runs[:limit], nil
}

func (f *fakeRunStore) Close() error { return nil }

func testProjects() []manifest.ResolvedProject {
	return []manifest.ResolvedProject{
		{Name: "newsradar", Domain: "newsradar.example.com", Tier: manifest.TierHot},
		{Name: "mevzuat", Domain: "mevzuat.example.com", Tier: manifest.TierCold, Worker: true},
		{Name: "parked", Tier: manifest.TierDormant},
	}
}

func TestHandleHealth(t *testing.T) {
	h := NewHandler(testProjects(), nil, nil)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestHandleProjects(t *testing.T) {
	h := NewHandler(testProjects(), nil, nil)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out []projectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 3)

	assert.Equal(t, "hot", out[0].Tier)
	assert.Equal(t, []string{"app@newsradar.service"}, out[0].EnabledUnits)

	assert.Equal(t, []string{"app@mevzuat.socket", "celery@mevzuat.service"}, out[1].EnabledUnits)

	assert.Equal(t, "dormant", out[2].Tier)
	assert.Empty(t, out[2].EnabledUnits)
}

func TestHandleRuns(t *testing.T) {
	store := &fakeRunStore{runs: []history.Run{{
		ID:         "run-1",
		StartedAt:  time.Date(2025, 11, 3, 4, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2025, 11, 3, 4, 1, 0, 0, time.UTC),
		Success:    true,
		Projects:   []history.ProjectOutcome{{Project: "mevzuat", Status: "succeeded"}},
	}}}
	h := NewHandler(testProjects(), store, nil)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs?limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out []runResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "run-1", out[0].ID)
	assert.True(t, out[0].Success)
}

func TestHandleRuns_HistoryDisabled(t *testing.T) {
	h := NewHandler(testProjects(), nil, nil)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRuns_BadLimit(t *testing.T) {
	h := NewHandler(testProjects(), &fakeRunStore{}, nil)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs?limit=zero", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
