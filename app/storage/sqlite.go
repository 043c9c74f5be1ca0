package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02 15:04:05"

var _ Interface = &SQLiteStorage{}

// SQLiteStorage keeps the history of analysis runs and their per-question results.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open SQLite DB at %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS runs (
            id TEXT PRIMARY KEY,
            started_at TEXT NOT NULL,
            model TEXT NOT NULL,
            agent TEXT NOT NULL,
            source TEXT NOT NULL,
            total INTEGER NOT NULL,
            succeeded INTEGER NOT NULL,
            report_path TEXT NULL
        );
        CREATE TABLE IF NOT EXISTS results (
            run_id TEXT NOT NULL,
            number INTEGER NOT NULL,
            question TEXT NOT NULL,
            answer TEXT NOT NULL,
            status TEXT NOT NULL,
            duration_ms INTEGER NOT NULL,
            PRIMARY KEY (run_id, number)
        );
        CREATE INDEX IF NOT EXISTS idx_results_run_id ON results (run_id);
    `)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) SaveRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, started_at, model, agent, source, total, succeeded, report_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(timeLayout), run.Model, run.Agent, run.Source, run.Total, run.Succeeded, run.ReportPath,
	)
	if err != nil {
		slog.Warn("⚠️ Error saving run", "run", run.ID, "error", err)
		return err
	}
	slog.Debug("✅ Run saved", "run", run.ID)
	return nil
}

func (s *SQLiteStorage) SaveResult(ctx context.Context, result Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO results (run_id, number, question, answer, status, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		result.RunID, result.Number, result.Question, result.Answer, result.Status, result.Duration.Milliseconds(),
	)
	if err != nil {
		slog.Warn("⚠️ Error saving result", "run", result.RunID, "number", result.Number, "error", err)
	}
	return err
}

func (s *SQLiteStorage) GetResultsByRunID(ctx context.Context, runID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, number, question, answer, status, duration_ms
		 FROM results
		 WHERE run_id = ?
		 ORDER BY number ASC`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var ms int64
		if err = rows.Scan(&r.RunID, &r.Number, &r.Question, &r.Answer, &r.Status, &ms); err != nil {
			return nil, fmt.Errorf("scan result of run %s: %w", runID, err)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, model, agent, source, total, succeeded, COALESCE(report_path, '')
		 FROM runs
		 ORDER BY started_at DESC, id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt string
		if err = rows.Scan(&r.ID, &startedAt, &r.Model, &r.Agent, &r.Source, &r.Total, &r.Succeeded, &r.ReportPath); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(timeLayout, startedAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
