// Package app wires extraction, summarization, and rendering into the
// end-to-end flow shared by the CLI and the HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/brieflab/brief/internal/content"
	"github.com/brieflab/brief/internal/pipeline"
	"github.com/brieflab/brief/internal/render"
	"github.com/brieflab/brief/internal/report"
)

// App runs the full content-to-report flow.
type App struct {
	Extractor *content.Extractor
	Pipeline  *pipeline.Pipeline
	OutputDir string
	Logger    *slog.Logger
}

// Summarize extracts the source, runs the pipeline, and writes the
// rendered report under OutputDir/<run-id>/report.html. It returns the
// report and the artifact path.
func (a *App) Summarize(ctx context.Context, source string) (*report.Report, string, error) {
	src, err := a.Extractor.Extract(ctx, source)
	if err != nil {
		return nil, "", err
	}
	return a.run(ctx, src)
}

// SummarizeText runs the flow on raw text input.
func (a *App) SummarizeText(ctx context.Context, text, title string) (*report.Report, string, error) {
	return a.run(ctx, a.Extractor.ExtractText(text, title))
}

// SummarizeFile runs the flow on an uploaded or local file.
func (a *App) SummarizeFile(ctx context.Context, path string) (*report.Report, string, error) {
	src, err := a.Extractor.ExtractFile(ctx, path)
	if err != nil {
		return nil, "", err
	}
	return a.run(ctx, src)
}

func (a *App) run(ctx context.Context, src *content.SourceContent) (*report.Report, string, error) {
	rep, err := a.Pipeline.Run(ctx, src)
	if err != nil {
		return nil, "", err
	}

	path, err := a.writeReport(rep)
	if err != nil {
		return nil, "", err
	}
	return rep, path, nil
}

func (a *App) writeReport(rep *report.Report) (string, error) {
	html, err := render.Render(rep)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(a.OutputDir, rep.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(dir, "report.html")
	if err := os.WriteFile(path, html, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	if a.Logger != nil {
		a.Logger.Info("report written", "path", path, "degraded", len(rep.Degraded))
	}
	return path, nil
}
