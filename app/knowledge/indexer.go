package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"DocAnalystAI/app/configs"
	"DocAnalystAI/app/rag"
	"DocAnalystAI/app/utils"
)

type Status string

const (
	StatusIndexed Status = "indexed"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

type DocumentOutcome struct {
	Name   string
	Status Status
	Chunks int
	Err    error
}

type IndexReport struct {
	Documents []DocumentOutcome
}

func (r IndexReport) Count(status Status) int {
	n := 0
	for _, d := range r.Documents {
		if d.Status == status {
			n++
		}
	}
	return n
}

func (r IndexReport) Names() []string {
	names := make([]string, len(r.Documents))
	for i, d := range r.Documents {
		names[i] = d.Name
	}
	return names
}

type Indexer struct {
	store   rag.Interface
	pattern string
}

func NewIndexer(store rag.Interface, pattern string) *Indexer {
	return &Indexer{store: store, pattern: pattern}
}

// Index inserts every matching document of dir into the store, in name order. A failed document is
// recorded and the batch moves on; only cancellation stops it early.
func (ix *Indexer) Index(ctx context.Context, dir string) (IndexReport, error) {
	var report IndexReport

	paths, err := utils.LoadFilesFromDir(dir, ix.pattern)
	if err != nil {
		return report, fmt.Errorf("list documents in %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return report, fmt.Errorf("%w: %s in %s", configs.ErrNoDocumentsFound, ix.pattern, dir)
	}

	slog.Info("📚 Indexing knowledge base", "dir", dir, "documents", len(paths))

	for _, path := range paths {
		if err = ctx.Err(); err != nil {
			return report, err
		}

		name := filepath.Base(path)
		res, err := ix.store.InsertDocument(ctx, path, true)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			slog.Error("❌ Failed to index document", "document", name, "error", err)
			report.Documents = append(report.Documents, DocumentOutcome{Name: name, Status: StatusFailed, Err: err})
		case res.Skipped:
			slog.Info("⏭️ Document already indexed", "document", name)
			report.Documents = append(report.Documents, DocumentOutcome{Name: name, Status: StatusSkipped})
		default:
			slog.Info("✅ Document indexed", "document", name, "chunks", res.Chunks)
			report.Documents = append(report.Documents, DocumentOutcome{Name: name, Status: StatusIndexed, Chunks: res.Chunks})
		}
	}

	slog.Info("📚 Indexing finished",
		"indexed", report.Count(StatusIndexed),
		"skipped", report.Count(StatusSkipped),
		"failed", report.Count(StatusFailed),
	)
	return report, nil
}
