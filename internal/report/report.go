// Package report defines the assembled report aggregate and its parts.
package report

import (
	"time"

	"github.com/brieflab/brief/internal/content"
)

// Takeaway is one key insight extracted from the source.
type Takeaway struct {
	Point      string `json:"point"`
	Importance string `json:"importance"` // high, medium, low
}

// SectionSummary is the structured summary of one source section.
// VisualConcept is a natural-language prompt fragment describing imagery
// for the section; it is always populated even when image generation is
// skipped or fails.
type SectionSummary struct {
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	KeyPoints     []string `json:"key_points"`
	VisualConcept string   `json:"visual_concept"`
}

// ExecutiveSynthesis is the report's top-level synthesis.
type ExecutiveSynthesis struct {
	ExecutiveSummary string   `json:"executive_summary"`
	DetailedAnalysis string   `json:"detailed_analysis"`
	Recommendations  []string `json:"recommendations"`
}

// KeyTerm is a term with its definition and usage context.
type KeyTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Context    string `json:"context"`
}

// CognitiveBias describes one bias identified in the source.
type CognitiveBias struct {
	Bias          string `json:"bias"`
	Manifestation string `json:"manifestation"`
	Impact        string `json:"impact"`
	Mitigation    string `json:"mitigation"`
}

// LimitationsAnalysis is the second-order critical review of the source.
type LimitationsAnalysis struct {
	MethodologicalLimitations []string        `json:"methodological_limitations"`
	CognitiveBiases           []CognitiveBias `json:"cognitive_biases"`
	MissingPerspectives       []string        `json:"missing_perspectives"`
	CriticalEvaluation        string          `json:"critical_evaluation"`
}

// SocialPost is a short-form post variant of the report.
type SocialPost struct {
	PostText string `json:"post_text"`
}

// ArticleKeyPoint is one point of a long-form article.
type ArticleKeyPoint struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Article is the long-form social variant of the report.
type Article struct {
	Headline      string            `json:"headline"`
	Introduction  string            `json:"introduction"`
	KeyPoints     []ArticleKeyPoint `json:"key_points"`
	Conclusion    string            `json:"conclusion"`
	CallToAction  string            `json:"call_to_action"`
	VisualConcept string            `json:"visual_concept"`
}

// GeneratedImage holds encoded image bytes and the prompt that produced
// them. Association to a section is weak: a failed generation never
// invalidates the owning section.
type GeneratedImage struct {
	SourcePrompt string `json:"source_prompt"`
	Data         []byte `json:"-"`
	Format       string `json:"format"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

// Section pairs a section summary with its optional illustration.
type Section struct {
	Summary SectionSummary  `json:"summary"`
	Image   *GeneratedImage `json:"image,omitempty"`
}

// Report is the aggregate root handed to the templating layer. It is
// immutable once assembled.
type Report struct {
	ID     string                 `json:"id"`
	Source *content.SourceContent `json:"source"`

	Takeaways   []Takeaway           `json:"takeaways"`
	Sections    []Section            `json:"sections"`
	Synthesis   *ExecutiveSynthesis  `json:"synthesis"`
	KeyTerms    []KeyTerm            `json:"key_terms,omitempty"`
	Limitations *LimitationsAnalysis `json:"limitations,omitempty"`
	Post        *SocialPost          `json:"post,omitempty"`
	Article     *Article             `json:"article,omitempty"`
	Hero        *GeneratedImage      `json:"hero,omitempty"`

	// Degraded lists the optional parts that failed and were marked
	// unavailable; a degraded run is still a successful run.
	Degraded []string `json:"degraded,omitempty"`

	Model       string        `json:"model"`
	ImageStyle  string        `json:"image_style,omitempty"`
	GeneratedAt time.Time     `json:"generated_at"`
	Elapsed     time.Duration `json:"elapsed"`
}
