package config

import (
	"github.com/brieflab/brief/internal/pipeline"
	"github.com/brieflab/brief/internal/providers"
)

// DefaultConfig returns the built-in configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Venice: VeniceConfig{
			APIKey:             "${VENICE_API_KEY}",
			BaseURL:            providers.VeniceBaseURL,
			SummarizationModel: "qwen3-235b",
			ImageModel:         "qwen-image",
			Temperature:        0.3,
			MaxTokens:          4096,
			TimeoutSeconds:     120,
			RequestsPerSecond:  2,
		},
		Images: ImagesConfig{
			Enabled:     true,
			Width:       1024,
			Height:      768,
			Style:       pipeline.DefaultImageStyle,
			Concurrency: 3,
			Retry:       false,
		},
		Scraper: ScraperConfig{
			TimeoutSeconds:   30,
			MaxContentLength: 100000,
			UserAgent:        "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		},
		Report: ReportConfig{
			OutputDir: "reports",
		},
		Pipeline: PipelineConfig{
			MaxAttempts:       3,
			RetryDelaySeconds: 1,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: "8080",
		},
	}
}
