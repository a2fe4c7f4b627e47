package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/brieflab/brief/internal/providers"
	"github.com/brieflab/brief/internal/report"
)

// DefaultImageStyle is used when no style is configured.
const DefaultImageStyle = "Watercolor Whimsical"

// styleModifiers maps style template names to prompt suffixes. The style is
// selected once per run.
var styleModifiers = map[string]string{
	"Watercolor Whimsical": "watercolor painting style, whimsical and dreamy, soft flowing colors, " +
		"artistic brush strokes, ethereal and magical atmosphere, " +
		"pastel color palette with gentle gradients, hand-painted aesthetic, " +
		"playful and imaginative, organic shapes and forms, " +
		"delicate watercolor washes, artistic illustration",
	"Infographic": "infographic style, data visualization, clean modern design, " +
		"icons and symbols, professional business graphics",
	"Cinematic": "cinematic composition, dramatic lighting, movie poster style, " +
		"atmospheric, professional photography look",
	"Digital Art": "digital art, vibrant colors, creative illustration, " +
		"modern artistic style, detailed rendering",
	"Minimalist": "minimalist design, simple shapes, clean lines, " +
		"limited color palette, elegant and sophisticated",
	"Photographic": "photorealistic, high quality photography style, " +
		"professional lighting, sharp details",
	"3D Model": "3D rendered, isometric view, modern 3D graphics, " +
		"clean materials, professional product visualization",
}

// enhancePrompt wraps a visual concept in the run's style template.
func enhancePrompt(concept, style string) string {
	modifier, ok := styleModifiers[style]
	if !ok {
		modifier = styleModifiers[DefaultImageStyle]
	}
	return fmt.Sprintf("%s. Style: %s. High quality, detailed, no text overlays.", concept, modifier)
}

// heroPromptBudget bounds the executive-summary excerpt embedded in the
// hero banner prompt.
const heroPromptBudget = 200

func heroPrompt(title, executiveSummary, style string) string {
	concept := fmt.Sprintf(
		"Hero banner illustration representing: %s. Conceptual visualization of: %s. Wide format",
		title, Truncate(executiveSummary, heroPromptBudget),
	)
	return enhancePrompt(concept, style)
}

// generateImages renders one image per section visual concept plus a hero
// banner, with at most cfg.ImageConcurrency requests in flight. Dispatch
// order matches section order; completion order is unconstrained and
// results are reassociated by index. A failed image never fails the run:
// the slot stays nil and the failure is reported as degraded.
func (p *Pipeline) generateImages(ctx context.Context, runID, title string, sections []report.SectionSummary, syn *report.ExecutiveSynthesis) ([]*report.GeneratedImage, *report.GeneratedImage, []string) {
	images := make([]*report.GeneratedImage, len(sections))
	var hero *report.GeneratedImage
	failed := make([]bool, len(sections))
	heroFailed := false

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.ImageConcurrency)

	for i, sec := range sections {
		g.Go(func() error {
			prompt := enhancePrompt(sec.VisualConcept, p.cfg.ImageStyle)
			img, err := p.generateOne(gctx, runID, prompt, p.cfg.ImageWidth, p.cfg.ImageHeight)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.log.Warn("image generation failed", "section", sec.Title, "error", err)
				failed[i] = true
				return nil
			}
			images[i] = img
			return nil
		})
	}

	g.Go(func() error {
		// 2:1 aspect ratio for the banner.
		prompt := heroPrompt(title, syn.ExecutiveSummary, p.cfg.ImageStyle)
		img, err := p.generateOne(gctx, runID, prompt, p.cfg.ImageWidth, p.cfg.ImageWidth/2)
		if err != nil {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			p.log.Warn("hero image generation failed", "error", err)
			heroFailed = true
			return nil
		}
		hero = img
		return nil
	})

	if err := g.Wait(); err != nil {
		// Only cancellation reaches here; the caller discards partial work.
		return nil, nil, nil
	}

	var degraded []string
	for i, f := range failed {
		if f {
			degraded = append(degraded, fmt.Sprintf("section_image_%d", i))
		}
	}
	if heroFailed {
		degraded = append(degraded, "hero_image")
	}
	return images, hero, degraded
}

// generateOne issues a single image request, retrying once when configured.
func (p *Pipeline) generateOne(ctx context.Context, runID, prompt string, width, height int) (*report.GeneratedImage, error) {
	attempts := 1
	if p.cfg.ImageRetry {
		attempts = 2
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := p.images.GenerateImage(ctx, &providers.ImageRequest{
			Prompt:    prompt,
			Width:     width,
			Height:    height,
			StyleHint: p.cfg.ImageStyle,
			RequestID: runID,
		})
		p.recordImage(ctx, res, err)
		if err != nil {
			lastErr = err
			continue
		}
		return &report.GeneratedImage{
			SourcePrompt: prompt,
			Data:         res.Data,
			Format:       res.Format,
			Width:        res.Width,
			Height:       res.Height,
		}, nil
	}
	return nil, lastErr
}
