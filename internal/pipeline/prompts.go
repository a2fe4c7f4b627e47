package pipeline

import (
	"fmt"
	"strings"

	"github.com/brieflab/brief/internal/content"
	"github.com/brieflab/brief/internal/report"
)

// Stage identifiers. Each names one structured completion in the fixed
// summarization sequence and doubles as the schema name sent to the remote
// endpoint.
const (
	StageTakeaways   = "key_takeaways"
	StageSections    = "section_summaries"
	StageSynthesis   = "executive_summary"
	StageKeyTerms    = "key_terms"
	StageLimitations = "limitations_analysis"
	StageSocialPost  = "social_post"
	StageArticle     = "article"
)

const systemPrompt = "You are an expert analyst and summarizer. Provide clear, structured, insightful analysis."

// budgets lists the per-stage character ceilings applied to each content
// field before network dispatch. These are configuration data, not control
// flow: truncation is a prefix cut for cost and latency control.
var budgets = map[string]map[string]int{
	StageTakeaways:   {"content": 12000},
	StageSections:    {"section_body": 2000},
	StageSynthesis:   {"content": 4000, "overview_line": 150},
	StageKeyTerms:    {"content": 100000},
	StageLimitations: {"executive_summary": 1000, "detailed_analysis": 1500, "content": 3000},
	StageSocialPost:  {"summary": 500},
	StageArticle:     {"content": 100000},
}

// budget returns the character ceiling for a stage's content field.
func budget(stage, field string) int {
	if b, ok := budgets[stage][field]; ok {
		return b
	}
	return 0
}

// maxPromptSections caps how many sections are included in the section
// summarization prompt.
const maxPromptSections = 8

func takeawaysPrompt(src *content.SourceContent) string {
	return fmt.Sprintf(`Analyze the following content and extract 5-7 key takeaways.
Each takeaway should be a concise, actionable insight that captures the most important points.
Rate each takeaway's importance as high, medium, or low.

CONTENT TITLE: %s

CONTENT:
%s

Extract the most critical insights, findings, or lessons from this content.`,
		src.Title, Truncate(src.Text, budget(StageTakeaways, "content")))
}

func sectionsPrompt(src *content.SourceContent, takeaways []report.Takeaway) string {
	themes := make([]string, 0, 3)
	for _, t := range takeaways {
		if len(themes) == 3 {
			break
		}
		themes = append(themes, t.Point)
	}

	limit := budget(StageSections, "section_body")
	var b strings.Builder
	for i, s := range src.Sections {
		if i == maxPromptSections {
			break
		}
		fmt.Fprintf(&b, "SECTION: %s\n%s\n\n", s.Heading, Truncate(s.Body, limit))
	}

	return fmt.Sprintf(`Analyze these content sections and provide structured summaries.

DOCUMENT TITLE: %s

KEY THEMES: %s

SECTIONS:
%s
For each section, in input order:
1. Create a clear, descriptive title
2. Write a 2-3 sentence summary
3. List 2-3 key points
4. Describe a visual concept for an illustration that would represent this section's main idea
   (be specific about imagery, metaphors, and visual elements - this will be used to generate an image)

Return exactly one entry per input section, in the same order.`,
		src.Title, strings.Join(themes, ", "), b.String())
}

func synthesisPrompt(src *content.SourceContent, takeaways []report.Takeaway, sections []report.SectionSummary) string {
	var points strings.Builder
	for _, t := range takeaways {
		fmt.Fprintf(&points, "- %s\n", t.Point)
	}

	lineLimit := budget(StageSynthesis, "overview_line")
	var overview strings.Builder
	for i, s := range sections {
		if i == 6 {
			break
		}
		fmt.Fprintf(&overview, "- %s: %s\n", s.Title, Truncate(s.Summary, lineLimit))
	}

	return fmt.Sprintf(`Create an executive summary and detailed analysis for this content.

TITLE: %s

KEY TAKEAWAYS:
%s
SECTIONS OVERVIEW:
%s
ORIGINAL CONTENT PREVIEW:
%s

Generate:
1. An executive summary (3-4 paragraphs) that captures the essence, main arguments, and significance
2. A detailed analysis (4-6 paragraphs) providing deeper insights, implications, and context
3. 3-5 actionable recommendations based on the content`,
		src.Title, points.String(), overview.String(),
		Truncate(src.Text, budget(StageSynthesis, "content")))
}

func keyTermsPrompt(src *content.SourceContent) string {
	return fmt.Sprintf(`Extract 5-10 key terms, technical vocabulary, acronyms, or important concepts from this content that readers should understand.

CONTENT TITLE: %s

CONTENT:
%s

For each term, provide:
1. The term itself (exact phrase as used in the content)
2. A clear, concise definition (1-2 sentences, accessible to a general business audience)
3. Context: how this term is specifically used or relevant in this content

Focus on technical jargon, acronyms, key concepts central to understanding the content, and industry-specific terminology.`,
		src.Title, Truncate(src.Text, budget(StageKeyTerms, "content")))
}

func limitationsPrompt(src *content.SourceContent, syn *report.ExecutiveSynthesis) string {
	return fmt.Sprintf(`Perform a critical second-order analysis of this content. Apply slow, deliberate, analytical thinking to identify limitations, cognitive biases, and potential blind spots. Do not restate the summary.

CONTENT TITLE: %s

EXECUTIVE SUMMARY:
%s

DETAILED ANALYSIS:
%s

ORIGINAL CONTENT PREVIEW:
%s

Analyze:
1. Methodological limitations (sample size, data quality, research design, generalizability)
2. Cognitive biases present in the content (confirmation bias, availability heuristic, survivorship bias, anchoring, framing effects, etc.)
3. Missing perspectives or alternative viewpoints
4. Critical evaluation of claims and evidence

For each cognitive bias identified, name the bias, explain how it manifests in the content, the potential impact on the conclusions drawn, and how to mitigate or account for it.`,
		src.Title,
		Truncate(syn.ExecutiveSummary, budget(StageLimitations, "executive_summary")),
		Truncate(syn.DetailedAnalysis, budget(StageLimitations, "detailed_analysis")),
		Truncate(src.Text, budget(StageLimitations, "content")))
}

func socialPostPrompt(src *content.SourceContent, syn *report.ExecutiveSynthesis, takeaways []report.Takeaway) string {
	var points strings.Builder
	for i, t := range takeaways {
		if i == 3 {
			break
		}
		fmt.Fprintf(&points, "- %s\n", t.Point)
	}

	return fmt.Sprintf(`Write a compelling, engaging social post summarizing this content.

CONTENT TITLE: %s

SUMMARY:
%s

KEY TAKEAWAYS:
%s
Requirements:
- Hook: start with a provocative question or statement to grab attention.
- Body: concisely explain why this matters and the key insights. Use short paragraphs.
- Structure: use bullet points for the key takeaways.
- Tone: professional yet engaging and thought-provoking.
- Call to action: end with a question to encourage discussion.
- Hashtags: include 3-5 relevant hashtags at the bottom.
- Length: around 150-200 words.

The output should be the raw text of the post, ready to copy-paste.`,
		src.Title,
		Truncate(syn.ExecutiveSummary, budget(StageSocialPost, "summary")),
		points.String())
}

func articlePrompt(src *content.SourceContent) string {
	return fmt.Sprintf(`Write a high-impact long-form article based on this content.

CONTENT TITLE: %s

CONTENT:
%s

Requirements:
1. Headline: catchy, professional, click-worthy.
2. Introduction: engaging hook, context, and thesis statement.
3. Key points: extract 3-5 deep insights. For each, provide a title and a detail paragraph (3-4 sentences) explaining the nuance.
4. Conclusion: synthesize the insights.
5. Call to action: engagement prompt.
6. Visual concept: describe a single, unified visual metaphor that captures these key points. This description will be used to generate an illustration; make it artistic and symbolic.

Target audience: senior executives and industry leaders.`,
		src.Title, Truncate(src.Text, budget(StageArticle, "content")))
}
