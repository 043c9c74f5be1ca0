package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Interface interface {
	SaveRun(ctx context.Context, run Run) error
	SaveResult(ctx context.Context, result Result) error
	GetResultsByRunID(ctx context.Context, runID string) ([]Result, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

type Run struct {
	ID         string    `json:"id" db:"id"`
	StartedAt  time.Time `json:"started_at" db:"started_at"`
	Model      string    `json:"model" db:"model"`
	Agent      string    `json:"agent" db:"agent"`
	Source     string    `json:"source" db:"source"`
	Total      int       `json:"total" db:"total"`
	Succeeded  int       `json:"succeeded" db:"succeeded"`
	ReportPath string    `json:"report_path" db:"report_path"`
}

type Result struct {
	RunID    string        `json:"run_id" db:"run_id"`
	Number   int           `json:"number" db:"number"`
	Question string        `json:"question" db:"question"`
	Answer   string        `json:"answer" db:"answer"`
	Status   string        `json:"status" db:"status"`
	Duration time.Duration `json:"duration_ms" db:"duration_ms"`
}

// RunListToString formats runs as a Markdown table, newest first as returned by ListRuns.
func RunListToString(runs []Run) string {
	if len(runs) == 0 {
		return "No runs recorded yet."
	}
	var b strings.Builder
	b.WriteString("| Run | Started | Model | Agent | Answered | Report |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	for _, r := range runs {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d/%d | %s |\n",
			shortID(r.ID), r.StartedAt.Format(timeLayout), r.Model, r.Agent, r.Succeeded, r.Total, r.ReportPath)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
