package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestManagerDefaults(t *testing.T) {
	path := writeConfig(t, "venice: {}\n")

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}

	cfg := cm.Get()
	if cfg.Venice.SummarizationModel != "qwen3-235b" {
		t.Errorf("unexpected default model %q", cfg.Venice.SummarizationModel)
	}
	if cfg.Venice.Temperature != 0.3 {
		t.Errorf("unexpected default temperature %v", cfg.Venice.Temperature)
	}
	if cfg.Images.Width != 1024 || cfg.Images.Height != 768 {
		t.Errorf("unexpected default image size %dx%d", cfg.Images.Width, cfg.Images.Height)
	}
	if cfg.Images.Concurrency != 3 {
		t.Errorf("unexpected default concurrency %d", cfg.Images.Concurrency)
	}
	if cfg.Scraper.MaxContentLength != 100000 {
		t.Errorf("unexpected default content length %d", cfg.Scraper.MaxContentLength)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("unexpected default port %q", cfg.Server.Port)
	}
}

func TestManagerFileOverrides(t *testing.T) {
	path := writeConfig(t, `
venice:
  summarization_model: other-model
  temperature: 0.7
images:
  enabled: false
  style: Infographic
server:
  port: "9999"
`)

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}

	cfg := cm.Get()
	if cfg.Venice.SummarizationModel != "other-model" {
		t.Errorf("override not applied: %q", cfg.Venice.SummarizationModel)
	}
	if cfg.Venice.Temperature != 0.7 {
		t.Errorf("override not applied: %v", cfg.Venice.Temperature)
	}
	if cfg.Images.Enabled {
		t.Error("images.enabled override not applied")
	}
	if cfg.Images.Style != "Infographic" {
		t.Errorf("style override not applied: %q", cfg.Images.Style)
	}
	if cfg.Server.Port != "9999" {
		t.Errorf("port override not applied: %q", cfg.Server.Port)
	}
	// Untouched values keep their defaults.
	if cfg.Venice.MaxTokens != 4096 {
		t.Errorf("default lost: %d", cfg.Venice.MaxTokens)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("BRIEF_TEST_KEY", "secret-value")

	tests := []struct {
		in   string
		want string
	}{
		{"${BRIEF_TEST_KEY}", "secret-value"},
		{"prefix-${BRIEF_TEST_KEY}", "prefix-secret-value"},
		{"no refs here", "no refs here"},
		{"${BRIEF_UNSET_VAR}", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ResolveEnvVars(tt.in); got != tt.want {
			t.Errorf("ResolveEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToVeniceConfigResolvesKey(t *testing.T) {
	t.Setenv("VENICE_API_KEY", "resolved-key")

	cfg := DefaultConfig()
	vc := cfg.ToVeniceConfig()
	if vc.APIKey != "resolved-key" {
		t.Errorf("API key not resolved: %q", vc.APIKey)
	}
	if vc.Timeout != 120*time.Second {
		t.Errorf("unexpected timeout %v", vc.Timeout)
	}
}

func TestToPipelineConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Images.Retry = true

	pc := cfg.ToPipelineConfig()
	if pc.Model != cfg.Venice.SummarizationModel {
		t.Errorf("model not mapped: %q", pc.Model)
	}
	if pc.MaxAttempts != 3 || pc.RetryDelay != time.Second {
		t.Errorf("retry policy not mapped: %d/%v", pc.MaxAttempts, pc.RetryDelay)
	}
	if !pc.ImagesEnabled || !pc.ImageRetry {
		t.Error("image settings not mapped")
	}
	if pc.ImageConcurrency != 3 {
		t.Errorf("concurrency not mapped: %d", pc.ImageConcurrency)
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error: %v", err)
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}

	cfg := cm.Get()
	want := DefaultConfig()
	if cfg.Venice.SummarizationModel != want.Venice.SummarizationModel {
		t.Errorf("round trip lost model: %q", cfg.Venice.SummarizationModel)
	}
	if cfg.Venice.APIKey != want.Venice.APIKey {
		t.Errorf("round trip lost api key reference: %q", cfg.Venice.APIKey)
	}
	if cfg.Images.Style != want.Images.Style {
		t.Errorf("round trip lost style: %q", cfg.Images.Style)
	}
}
