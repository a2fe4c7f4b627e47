// Package pipeline orchestrates the content-to-report flow: a strictly
// ordered sequence of structured completion stages followed by
// bounded-concurrency image generation, merged into a frozen Report.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/brieflab/brief/internal/content"
	"github.com/brieflab/brief/internal/metrics"
	"github.com/brieflab/brief/internal/providers"
	"github.com/brieflab/brief/internal/report"
)

// Config holds pipeline settings.
type Config struct {
	// Completion parameters
	Model       string
	Temperature float64
	MaxTokens   int

	// Bounded retry for unavailable-endpoint failures on completion
	// stages. Malformed responses are never retried.
	MaxAttempts int
	RetryDelay  time.Duration

	// Image generation
	ImagesEnabled    bool
	ImageModel       string
	ImageWidth       int
	ImageHeight      int
	ImageStyle       string
	ImageConcurrency int
	ImageRetry       bool // retry a failed image call once before degrading

	// Metrics records per-call usage when set.
	Metrics *metrics.Recorder

	Logger *slog.Logger
}

// Pipeline runs summarization and image generation for one content source.
// It holds no per-run state and is safe for concurrent runs.
type Pipeline struct {
	llm    providers.LLMClient
	images providers.ImageClient
	cfg    Config
	log    *slog.Logger
}

// New creates a Pipeline. The image client may be nil when image generation
// is disabled.
func New(llm providers.LLMClient, images providers.ImageClient, cfg Config) *Pipeline {
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.ImageWidth == 0 {
		cfg.ImageWidth = 1024
	}
	if cfg.ImageHeight == 0 {
		cfg.ImageHeight = 768
	}
	if cfg.ImageStyle == "" {
		cfg.ImageStyle = DefaultImageStyle
	}
	if cfg.ImageConcurrency < 1 {
		cfg.ImageConcurrency = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pipeline{
		llm:    llm,
		images: images,
		cfg:    cfg,
		log:    cfg.Logger,
	}
}

// Run executes the full pipeline for one source. Load-bearing stage
// failures abort the run with no report; optional stages degrade to
// explicit unavailable markers. Cancellation propagates to all in-flight
// calls and discards any partial result.
func (p *Pipeline) Run(ctx context.Context, src *content.SourceContent) (*report.Report, error) {
	start := time.Now()
	runID := uuid.New().String()
	ctx = metrics.WithRun(ctx, runID)
	log := p.log.With("run_id", runID, "title", src.Title)

	log.Info("pipeline starting", "words", src.WordCount, "sections", len(src.Sections))

	var degraded []string

	// Stage 1: key takeaways (load-bearing).
	takeaways, err := p.extractTakeaways(ctx, src)
	if err != nil {
		return nil, err
	}
	log.Info("takeaways extracted", "count", len(takeaways))

	// Stage 2: section summaries (load-bearing; skipped for sectionless input).
	var sections []report.SectionSummary
	if len(src.Sections) > 0 {
		sections, err = p.summarizeSections(ctx, src, takeaways)
		if err != nil {
			return nil, err
		}
		log.Info("sections summarized", "count", len(sections))
	} else {
		log.Info("no sections detected, skipping section summaries")
	}

	// Stage 3: executive synthesis (load-bearing).
	synthesis, err := p.synthesize(ctx, src, takeaways, sections)
	if err != nil {
		return nil, err
	}

	// Stage 4: key terms (degradable).
	keyTerms, err := p.extractKeyTerms(ctx, src)
	if err != nil {
		if isRunFatal(ctx, err) {
			return nil, err
		}
		log.Warn("key terms unavailable", "error", err)
		degraded = append(degraded, StageKeyTerms)
	}

	// Stage 5: limitations analysis (degradable).
	limitations, err := p.analyzeLimitations(ctx, src, synthesis)
	if err != nil {
		if isRunFatal(ctx, err) {
			return nil, err
		}
		log.Warn("limitations analysis unavailable", "error", err)
		degraded = append(degraded, StageLimitations)
	}

	// Stage 6: social variants (each independently degradable).
	post, err := p.draftSocialPost(ctx, src, synthesis, takeaways)
	if err != nil {
		if isRunFatal(ctx, err) {
			return nil, err
		}
		log.Warn("social post unavailable", "error", err)
		degraded = append(degraded, StageSocialPost)
	}
	article, err := p.draftArticle(ctx, src)
	if err != nil {
		if isRunFatal(ctx, err) {
			return nil, err
		}
		log.Warn("article unavailable", "error", err)
		degraded = append(degraded, StageArticle)
	}

	// Image phase: bounded fan-out, reassociated by index.
	var sectionImages []*report.GeneratedImage
	var hero *report.GeneratedImage
	if p.cfg.ImagesEnabled && p.images != nil {
		var imageDegraded []string
		sectionImages, hero, imageDegraded = p.generateImages(ctx, runID, src.Title, sections, synthesis)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		degraded = append(degraded, imageDegraded...)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	rep, err := report.Assemble(report.AssembleInput{
		ID:          runID,
		Source:      src,
		Takeaways:   takeaways,
		Sections:    sections,
		Images:      sectionImages,
		Synthesis:   synthesis,
		KeyTerms:    keyTerms,
		Limitations: limitations,
		Post:        post,
		Article:     article,
		Hero:        hero,
		Degraded:    degraded,
		Model:       p.cfg.Model,
		ImageStyle:  p.cfg.ImageStyle,
		Elapsed:     time.Since(start),
	})
	if err != nil {
		return nil, err
	}

	log.Info("pipeline complete", "elapsed", rep.Elapsed, "degraded", len(rep.Degraded))
	return rep, nil
}

// complete runs one structured completion with bounded retry for
// unavailable-endpoint failures. Malformed responses return immediately so
// the stage can attempt its single salvage pass.
func (p *Pipeline) complete(ctx context.Context, stage, prompt string) (*providers.CompletionResult, error) {
	var res *providers.CompletionResult
	err := retry.Do(
		func() error {
			r, err := p.llm.Complete(ctx, &providers.CompletionRequest{
				Prompt:         prompt,
				SystemPrompt:   systemPrompt,
				Model:          p.cfg.Model,
				Temperature:    p.cfg.Temperature,
				MaxTokens:      p.cfg.MaxTokens,
				ResponseFormat: responseFormat(stage),
			})
			p.recordCompletion(ctx, stage, r, err)
			if err != nil {
				return err
			}
			res = r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(p.cfg.MaxAttempts)),
		retry.Delay(p.cfg.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.MaxJitter(p.cfg.RetryDelay/2),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, providers.ErrRemoteUnavailable)
		}),
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// isRunFatal reports whether an optional-stage error must still abort the
// run: only cancellation and deadline expiry qualify.
func isRunFatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// recordCompletion records usage for one completion attempt.
func (p *Pipeline) recordCompletion(ctx context.Context, stage string, res *providers.CompletionResult, err error) {
	if p.cfg.Metrics == nil {
		return
	}
	m := metrics.Metric{
		RunID:   metrics.RunFrom(ctx),
		Stage:   stage,
		Model:   p.cfg.Model,
		Success: err == nil,
	}
	if res != nil {
		m.Provider = res.Provider
		m.Model = res.ModelUsed
		m.PromptTokens = res.PromptTokens
		m.CompletionTokens = res.CompletionTokens
		m.TotalTokens = res.TotalTokens
		m.ExecutionSeconds = res.ExecutionTime.Seconds()
	}
	if err != nil {
		m.ErrorType = errorType(err)
	}
	p.cfg.Metrics.Record(m)
}

// recordImage records usage for one image attempt.
func (p *Pipeline) recordImage(ctx context.Context, res *providers.ImageResult, err error) {
	if p.cfg.Metrics == nil {
		return
	}
	m := metrics.Metric{
		RunID:   metrics.RunFrom(ctx),
		Stage:   "image",
		Model:   p.cfg.ImageModel,
		Success: err == nil,
	}
	if res != nil {
		m.ExecutionSeconds = res.ExecutionTime.Seconds()
	}
	if err != nil {
		m.ErrorType = errorType(err)
	}
	p.cfg.Metrics.Record(m)
}

// errorType maps call failures to coarse labels for aggregation. Labels
// never carry request or credential material.
func errorType(err error) string {
	var malformed *providers.MalformedResponseError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, providers.ErrRemoteUnavailable):
		return "remote_unavailable"
	case errors.As(err, &malformed):
		return "malformed_response"
	default:
		return "rejected"
	}
}
