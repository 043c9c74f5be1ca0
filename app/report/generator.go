package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"DocAnalystAI/app/analysis"
)

type Generator struct {
	dir string
}

func NewGenerator(reportsDir string) *Generator {
	return &Generator{dir: reportsDir}
}

// Generate writes the report to <reports-dir>/relatorio_analise_<date>.md, replacing any report
// written earlier the same day.
func (g *Generator) Generate(summary *analysis.Summary, meta Metadata) (string, error) {
	if err := os.MkdirAll(g.dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	path := filepath.Join(g.dir, FileName(summary))
	if err := os.WriteFile(path, []byte(Render(summary, meta)), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	slog.Info("📄 Report saved", "path", path)
	return path, nil
}
