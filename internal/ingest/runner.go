package ingest

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/navlens/nav-audit/internal/entity"
)

// Analyzer is the slice of the pipeline the inbox depends on.
type Analyzer interface {
	AnalyzeText(ctx context.Context, rawText, sourceName string) (*entity.AnalysisReport, error)
}

// Runner consumes watcher events and feeds each discovered document to the
// analysis pipeline.
type Runner struct {
	Analyzer Analyzer
	Logger   *slog.Logger
}

func NewRunner(analyzer Analyzer, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Analyzer: analyzer, Logger: logger}
}

// Run blocks until ctx is canceled or the event channel closes. Per-file
// failures are logged and skipped; the inbox keeps flowing.
func (r *Runner) Run(ctx context.Context, events <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-events:
			if !ok {
				return
			}
			r.ingestFile(ctx, path)
		}
	}
}

func (r *Runner) ingestFile(ctx context.Context, path string) {
	b, err := os.ReadFile(path)
	if err != nil {
		r.Logger.Warn("ingest.read_failed", "path", path, "error", err)
		return
	}
	report, err := r.Analyzer.AnalyzeText(ctx, string(b), filepath.Base(path))
	if err != nil {
		r.Logger.Error("ingest.analyze_failed", "path", path, "error", err)
		return
	}
	r.Logger.Info("ingest.ok",
		"path", path,
		"report_id", report.ID,
		"severity", report.Analysis.Severity,
	)
}
