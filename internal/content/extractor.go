package content

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// Extractor turns a source descriptor (URL, file path, or raw text) into
// SourceContent.
type Extractor struct {
	Timeout          time.Duration
	MaxContentLength int
	UserAgent        string
	Logger           *slog.Logger
}

// ExtractorConfig holds extractor settings.
type ExtractorConfig struct {
	Timeout          time.Duration
	MaxContentLength int
	UserAgent        string
	Logger           *slog.Logger
}

// NewExtractor creates an Extractor with defaults applied.
func NewExtractor(cfg ExtractorConfig) *Extractor {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxContentLength == 0 {
		cfg.MaxContentLength = 100000
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Extractor{
		Timeout:          cfg.Timeout,
		MaxContentLength: cfg.MaxContentLength,
		UserAgent:        cfg.UserAgent,
		Logger:           cfg.Logger,
	}
}

// Extract sniffs the source descriptor and dispatches to the appropriate
// extraction method: http(s) URLs are fetched, existing file paths are read,
// anything else is treated as raw text.
func (e *Extractor) Extract(ctx context.Context, source string) (*SourceContent, error) {
	trimmed := strings.TrimSpace(source)

	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return e.ExtractURL(ctx, trimmed)
	}

	if info, err := os.Stat(trimmed); err == nil && !info.IsDir() {
		return e.ExtractFile(ctx, trimmed)
	}

	return e.ExtractText(source, "Direct Input"), nil
}

// ExtractURL fetches a page and extracts the readable article content.
// The fetch carries the configured User-Agent so sites that reject
// default Go clients still serve the page.
func (e *Extractor) ExtractURL(ctx context.Context, rawURL string) (*SourceContent, error) {
	pageURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid URL %q", ErrUnreachableSource, rawURL)
	}

	e.Logger.Info("extracting URL", "url", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachableSource, err)
	}
	if e.UserAgent != "" {
		req.Header.Set("User-Agent", e.UserAgent)
	}

	client := &http.Client{Timeout: e.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachableSource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrUnreachableSource, rawURL, resp.Status)
	}

	article, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachableSource, err)
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = rawURL
	}

	sections := sectionsFromHTML(article.Content)
	return NewSourceContent(title, article.TextContent, rawURL, sections, e.MaxContentLength), nil
}

// ExtractText wraps raw text input, splitting sections on markdown-style or
// underlined headings when present.
func (e *Extractor) ExtractText(text, title string) *SourceContent {
	if title == "" {
		title = "Direct Input"
	}
	return NewSourceContent(title, text, "text input", sectionsFromText(text), e.MaxContentLength)
}

// ExtractFile reads a local file. Plain text and markdown are read directly;
// PDFs go through pdfcpu text extraction. Anything else is unsupported.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*SourceContent, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachableSource, err)
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreachableSource, err)
		}
		text := string(data)
		return NewSourceContent(title, text, path, sectionsFromText(text), e.MaxContentLength), nil

	case ".pdf":
		text, err := extractPDFText(path)
		if err != nil {
			return nil, err
		}
		return NewSourceContent(title, text, path, sectionsFromText(text), e.MaxContentLength), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
