package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/brieflab/brief/internal/content"
	"github.com/brieflab/brief/internal/report"
)

// Stage functions for the fixed summarization sequence. Stages 1-3 are
// load-bearing: any unrecovered failure aborts the run. Stages 4-6 return
// their error to the orchestrator, which degrades instead of aborting.

func (p *Pipeline) extractTakeaways(ctx context.Context, src *content.SourceContent) ([]report.Takeaway, error) {
	res, callErr := p.complete(ctx, StageTakeaways, takeawaysPrompt(src))

	var payload struct {
		Takeaways []report.Takeaway `json:"takeaways"`
	}
	out, err := decodeStage(res, callErr, &payload)
	if err != nil {
		return nil, fmt.Errorf("takeaways stage: %w", err)
	}
	if out.state == failedParse {
		return nil, fmt.Errorf("takeaways stage: %w", out.reason)
	}
	if len(payload.Takeaways) == 0 {
		return nil, fmt.Errorf("takeaways stage: response contained no takeaways")
	}
	if out.state == salvagedPartial {
		p.log.Warn("takeaways salvaged from malformed response")
	}
	return payload.Takeaways, nil
}

func (p *Pipeline) summarizeSections(ctx context.Context, src *content.SourceContent, takeaways []report.Takeaway) ([]report.SectionSummary, error) {
	res, callErr := p.complete(ctx, StageSections, sectionsPrompt(src, takeaways))

	var payload struct {
		Sections []report.SectionSummary `json:"sections"`
	}
	out, err := decodeStage(res, callErr, &payload)
	if err != nil {
		return nil, fmt.Errorf("section summaries stage: %w", err)
	}
	if out.state == failedParse {
		return nil, fmt.Errorf("section summaries stage: %w", out.reason)
	}
	if out.state == salvagedPartial {
		p.log.Warn("section summaries salvaged from malformed response")
	}
	return normalizeSections(src, payload.Sections), nil
}

// normalizeSections enforces the one-summary-per-input-section invariant:
// extras are dropped, gaps are backfilled from source headings, and every
// summary carries a non-empty visual concept.
func normalizeSections(src *content.SourceContent, got []report.SectionSummary) []report.SectionSummary {
	limit := len(src.Sections)
	if limit > maxPromptSections {
		limit = maxPromptSections
	}
	out := make([]report.SectionSummary, 0, len(src.Sections))
	for i, sec := range src.Sections {
		var s report.SectionSummary
		if i < len(got) && i < limit {
			s = got[i]
		}
		if strings.TrimSpace(s.Title) == "" {
			s.Title = sec.Heading
		}
		if strings.TrimSpace(s.Summary) == "" {
			s.Summary = Truncate(sec.Body, 300)
		}
		if strings.TrimSpace(s.VisualConcept) == "" {
			s.VisualConcept = "Abstract conceptual illustration representing " + s.Title
		}
		out = append(out, s)
	}
	return out
}

func (p *Pipeline) synthesize(ctx context.Context, src *content.SourceContent, takeaways []report.Takeaway, sections []report.SectionSummary) (*report.ExecutiveSynthesis, error) {
	res, callErr := p.complete(ctx, StageSynthesis, synthesisPrompt(src, takeaways, sections))

	var payload report.ExecutiveSynthesis
	out, err := decodeStage(res, callErr, &payload)
	if err != nil {
		return nil, fmt.Errorf("executive synthesis stage: %w", err)
	}
	if out.state == failedParse {
		return nil, fmt.Errorf("executive synthesis stage: %w", out.reason)
	}
	if strings.TrimSpace(payload.ExecutiveSummary) == "" {
		return nil, fmt.Errorf("executive synthesis stage: empty executive summary")
	}
	if out.state == salvagedPartial {
		p.log.Warn("executive synthesis salvaged from malformed response")
	}
	return &payload, nil
}

func (p *Pipeline) extractKeyTerms(ctx context.Context, src *content.SourceContent) ([]report.KeyTerm, error) {
	res, callErr := p.complete(ctx, StageKeyTerms, keyTermsPrompt(src))

	var payload struct {
		Terms []report.KeyTerm `json:"terms"`
	}
	out, err := decodeStage(res, callErr, &payload)
	if err != nil {
		return nil, fmt.Errorf("key terms stage: %w", err)
	}
	if out.state == failedParse {
		return nil, fmt.Errorf("key terms stage: %w", out.reason)
	}
	if len(payload.Terms) == 0 {
		return nil, fmt.Errorf("key terms stage: response contained no terms")
	}
	return payload.Terms, nil
}

func (p *Pipeline) analyzeLimitations(ctx context.Context, src *content.SourceContent, syn *report.ExecutiveSynthesis) (*report.LimitationsAnalysis, error) {
	res, callErr := p.complete(ctx, StageLimitations, limitationsPrompt(src, syn))

	var payload report.LimitationsAnalysis
	out, err := decodeStage(res, callErr, &payload)
	if err != nil {
		return nil, fmt.Errorf("limitations stage: %w", err)
	}
	if out.state == failedParse {
		return nil, fmt.Errorf("limitations stage: %w", out.reason)
	}
	return &payload, nil
}

func (p *Pipeline) draftSocialPost(ctx context.Context, src *content.SourceContent, syn *report.ExecutiveSynthesis, takeaways []report.Takeaway) (*report.SocialPost, error) {
	res, callErr := p.complete(ctx, StageSocialPost, socialPostPrompt(src, syn, takeaways))

	var payload report.SocialPost
	out, err := decodeStage(res, callErr, &payload)
	if err != nil {
		return nil, fmt.Errorf("social post stage: %w", err)
	}
	if out.state == failedParse {
		return nil, fmt.Errorf("social post stage: %w", out.reason)
	}
	if strings.TrimSpace(payload.PostText) == "" {
		return nil, fmt.Errorf("social post stage: empty post")
	}
	return &payload, nil
}

func (p *Pipeline) draftArticle(ctx context.Context, src *content.SourceContent) (*report.Article, error) {
	res, callErr := p.complete(ctx, StageArticle, articlePrompt(src))

	var payload report.Article
	out, err := decodeStage(res, callErr, &payload)
	if err != nil {
		return nil, fmt.Errorf("article stage: %w", err)
	}
	if out.state == failedParse {
		return nil, fmt.Errorf("article stage: %w", out.reason)
	}
	if strings.TrimSpace(payload.Headline) == "" {
		return nil, fmt.Errorf("article stage: empty headline")
	}
	return &payload, nil
}
