// Package config loads application configuration from file, environment,
// and defaults, with hot-reload support.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/brieflab/brief/internal/pipeline"
	"github.com/brieflab/brief/internal/providers"
)

// Config is the full application configuration.
type Config struct {
	Venice   VeniceConfig   `mapstructure:"venice" yaml:"venice"`
	Images   ImagesConfig   `mapstructure:"images" yaml:"images"`
	Scraper  ScraperConfig  `mapstructure:"scraper" yaml:"scraper"`
	Report   ReportConfig   `mapstructure:"report" yaml:"report"`
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
}

// VeniceConfig configures the remote model API.
type VeniceConfig struct {
	APIKey             string  `mapstructure:"api_key" yaml:"api_key"`
	BaseURL            string  `mapstructure:"base_url" yaml:"base_url"`
	SummarizationModel string  `mapstructure:"summarization_model" yaml:"summarization_model"`
	ImageModel         string  `mapstructure:"image_model" yaml:"image_model"`
	Temperature        float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens          int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	RequestsPerSecond  float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// ImagesConfig configures the image pipeline.
type ImagesConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	Width       int    `mapstructure:"width" yaml:"width"`
	Height      int    `mapstructure:"height" yaml:"height"`
	Style       string `mapstructure:"style" yaml:"style"`
	Concurrency int    `mapstructure:"concurrency" yaml:"concurrency"`
	Retry       bool   `mapstructure:"retry" yaml:"retry"`
}

// ScraperConfig configures content extraction.
type ScraperConfig struct {
	TimeoutSeconds   int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxContentLength int    `mapstructure:"max_content_length" yaml:"max_content_length"`
	UserAgent        string `mapstructure:"user_agent" yaml:"user_agent"`
}

// ReportConfig configures artifact output.
type ReportConfig struct {
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
}

// PipelineConfig configures stage retry policy.
type PipelineConfig struct {
	MaxAttempts       int `mapstructure:"max_attempts" yaml:"max_attempts"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" yaml:"retry_delay_seconds"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("venice", defaults.Venice)
	viper.SetDefault("images", defaults.Images)
	viper.SetDefault("scraper", defaults.Scraper)
	viper.SetDefault("report", defaults.Report)
	viper.SetDefault("pipeline", defaults.Pipeline)
	viper.SetDefault("server", defaults.Server)

	viper.SetEnvPrefix("BRIEF")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.brief")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// ToVeniceConfig converts config into the provider client form, resolving
// ${ENV_VAR} references in the API key.
func (c *Config) ToVeniceConfig() providers.VeniceConfig {
	return providers.VeniceConfig{
		APIKey:             ResolveEnvVars(c.Venice.APIKey),
		BaseURL:            c.Venice.BaseURL,
		SummarizationModel: c.Venice.SummarizationModel,
		ImageModel:         c.Venice.ImageModel,
		Timeout:            time.Duration(c.Venice.TimeoutSeconds) * time.Second,
		RequestsPerSecond:  c.Venice.RequestsPerSecond,
	}
}

// ToPipelineConfig converts config into pipeline settings.
func (c *Config) ToPipelineConfig() pipeline.Config {
	return pipeline.Config{
		Model:            c.Venice.SummarizationModel,
		Temperature:      c.Venice.Temperature,
		MaxTokens:        c.Venice.MaxTokens,
		MaxAttempts:      c.Pipeline.MaxAttempts,
		RetryDelay:       time.Duration(c.Pipeline.RetryDelaySeconds) * time.Second,
		ImagesEnabled:    c.Images.Enabled,
		ImageModel:       c.Venice.ImageModel,
		ImageWidth:       c.Images.Width,
		ImageHeight:      c.Images.Height,
		ImageStyle:       c.Images.Style,
		ImageConcurrency: c.Images.Concurrency,
		ImageRetry:       c.Images.Retry,
	}
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# brief configuration
# The API key uses ${ENV_VAR} syntax to reference an environment variable.
# Set it in your shell: export VENICE_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
