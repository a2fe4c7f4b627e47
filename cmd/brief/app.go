package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/brieflab/brief/internal/app"
	"github.com/brieflab/brief/internal/config"
	"github.com/brieflab/brief/internal/content"
	"github.com/brieflab/brief/internal/home"
	"github.com/brieflab/brief/internal/metrics"
	"github.com/brieflab/brief/internal/pipeline"
	"github.com/brieflab/brief/internal/providers"
)

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

// buildApp wires the extractor, provider client, and pipeline from loaded
// configuration. An empty output dir falls back to the home reports dir.
func buildApp(cfg *config.Config, logger *slog.Logger, rec *metrics.Recorder) (*app.App, error) {
	outputDir := cfg.Report.OutputDir
	if outputDir == "" {
		h, err := home.New(homeDir)
		if err != nil {
			return nil, err
		}
		if err := h.EnsureExists(); err != nil {
			return nil, err
		}
		outputDir = h.ReportsPath()
	}

	client := providers.NewVeniceClient(cfg.ToVeniceConfig())

	pipeCfg := cfg.ToPipelineConfig()
	pipeCfg.Metrics = rec
	pipeCfg.Logger = logger

	extractor := content.NewExtractor(content.ExtractorConfig{
		Timeout:          time.Duration(cfg.Scraper.TimeoutSeconds) * time.Second,
		MaxContentLength: cfg.Scraper.MaxContentLength,
		UserAgent:        cfg.Scraper.UserAgent,
		Logger:           logger,
	})

	return &app.App{
		Extractor: extractor,
		Pipeline:  pipeline.New(client, client, pipeCfg),
		OutputDir: outputDir,
		Logger:    logger,
	}, nil
}
