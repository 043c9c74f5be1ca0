package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	run := Run{
		ID:         "3f1c2a9e-0000-4000-8000-000000000001",
		StartedAt:  time.Date(2025, 3, 14, 9, 5, 0, 0, time.UTC),
		Model:      "gemini-2.5-flash",
		Agent:      "Analista Corporativo IA",
		Source:     "knowledge",
		Total:      2,
		Succeeded:  1,
		ReportPath: "reports/relatorio_analise_2025-03-14.md",
	}
	require.NoError(t, s.SaveRun(ctx, run))

	require.NoError(t, s.SaveResult(ctx, Result{RunID: run.ID, Number: 2, Question: "q2", Answer: "*Erro*", Status: "error", Duration: 40 * time.Millisecond}))
	require.NoError(t, s.SaveResult(ctx, Result{RunID: run.ID, Number: 1, Question: "q1", Answer: "a1", Status: "success", Duration: 1500 * time.Millisecond}))

	results, err := s.GetResultsByRunID(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Number)
	assert.Equal(t, "a1", results[0].Answer)
	assert.Equal(t, 1500*time.Millisecond, results[0].Duration)
	assert.Equal(t, "error", results[1].Status)

	runs, err := s.ListRuns(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run, runs[0])

	empty, err := s.GetResultsByRunID(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListRunsNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.SaveRun(ctx, Run{ID: id, StartedAt: base.Add(time.Duration(i) * time.Hour), Model: "m", Agent: "x", Source: "k"}))
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)

	runs, err = s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestSaveRunUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	run := Run{ID: "r", StartedAt: time.Now(), Model: "m", Agent: "a", Source: "k", Total: 1}
	require.NoError(t, s.SaveRun(ctx, run))
	run.Succeeded = 1
	run.ReportPath = "reports/r.md"
	require.NoError(t, s.SaveRun(ctx, run))

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Succeeded)
	assert.Equal(t, "reports/r.md", runs[0].ReportPath)
}

func TestRunListToString(t *testing.T) {
	assert.Equal(t, "No runs recorded yet.", RunListToString(nil))

	out := RunListToString([]Run{{
		ID: "3f1c2a9e-aaaa", StartedAt: time.Date(2025, 3, 14, 9, 5, 0, 0, time.UTC),
		Model: "m", Agent: "a", Total: 5, Succeeded: 4, ReportPath: "reports/x.md",
	}})
	assert.Contains(t, out, "| 3f1c2a9e | 2025-03-14 09:05:00 | m | a | 4/5 | reports/x.md |")
}
