package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordRun_AssignsID(t *testing.T) {
	s := newTestStore(t)

	id, err := s.RecordRun(context.Background(), Run{
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
		Success:    true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestRecordRun_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	started := time.Date(2025, 11, 3, 4, 0, 0, 0, time.UTC)
	id, err := s.RecordRun(ctx, Run{
		StartedAt:  started,
		FinishedAt: started.Add(30 * time.Second),
		Success:    false,
		Projects: []ProjectOutcome{
			{Project: "mevzuat", Status: "failed", Reason: "WriteFile /etc/nginx/conf.d/mevzuat.conf: remote command failed"},
			{Project: "newsradar", Status: "succeeded"},
		},
	})
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, id, run.ID)
	assert.Equal(t, started, run.StartedAt)
	assert.False(t, run.Success)
	require.Len(t, run.Projects, 2)
	assert.Equal(t, "mevzuat", run.Projects[0].Project)
	assert.Equal(t, "failed", run.Projects[0].Status)
	assert.Equal(t, "newsradar", run.Projects[1].Project)
	assert.Empty(t, run.Projects[1].Reason)
}

func TestListRuns_NewestFirstAndLimited(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := s.RecordRun(ctx, Run{
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
			Success:    true,
		})
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt))
}
