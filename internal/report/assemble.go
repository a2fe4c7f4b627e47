package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/brieflab/brief/internal/content"
)

// ErrIncompleteReport indicates assembly was attempted before the
// load-bearing stages (takeaways, executive synthesis) completed.
var ErrIncompleteReport = errors.New("incomplete report")

// AssembleInput carries the pipeline outputs to be merged.
type AssembleInput struct {
	ID     string
	Source *content.SourceContent

	Takeaways []Takeaway
	Sections  []SectionSummary
	// Images holds one entry per section, in section order; nil entries
	// mark sections whose image generation failed or was skipped.
	Images    []*GeneratedImage
	Synthesis *ExecutiveSynthesis

	KeyTerms    []KeyTerm
	Limitations *LimitationsAnalysis
	Post        *SocialPost
	Article     *Article
	Hero        *GeneratedImage

	Degraded []string

	Model      string
	ImageStyle string
	Elapsed    time.Duration
}

// Assemble deterministically merges pipeline outputs into a frozen Report.
// Section order mirrors the input section order; images are matched by
// index, never by completion order. It fails only when a load-bearing
// upstream stage never completed.
func Assemble(in AssembleInput) (*Report, error) {
	if len(in.Takeaways) == 0 {
		return nil, fmt.Errorf("%w: takeaways missing", ErrIncompleteReport)
	}
	if in.Synthesis == nil {
		return nil, fmt.Errorf("%w: executive synthesis missing", ErrIncompleteReport)
	}
	if len(in.Images) > 0 && len(in.Images) != len(in.Sections) {
		return nil, fmt.Errorf("%w: %d images for %d sections", ErrIncompleteReport, len(in.Images), len(in.Sections))
	}

	sections := make([]Section, len(in.Sections))
	for i, s := range in.Sections {
		sections[i] = Section{Summary: s}
		if i < len(in.Images) {
			sections[i].Image = in.Images[i]
		}
	}

	r := &Report{
		ID:          in.ID,
		Source:      in.Source,
		Takeaways:   append([]Takeaway(nil), in.Takeaways...),
		Sections:    sections,
		Synthesis:   in.Synthesis,
		KeyTerms:    append([]KeyTerm(nil), in.KeyTerms...),
		Limitations: in.Limitations,
		Post:        in.Post,
		Article:     in.Article,
		Hero:        in.Hero,
		Degraded:    append([]string(nil), in.Degraded...),
		Model:       in.Model,
		ImageStyle:  in.ImageStyle,
		GeneratedAt: time.Now().UTC(),
		Elapsed:     in.Elapsed,
	}
	return r, nil
}
