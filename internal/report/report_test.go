package report

import (
	"errors"
	"testing"
	"time"

	"github.com/brieflab/brief/internal/content"
)

func validInput() AssembleInput {
	return AssembleInput{
		ID:     "run-1",
		Source: content.NewSourceContent("T", "body", "text input", nil, 0),
		Takeaways: []Takeaway{
			{Point: "p1", Importance: "high"},
		},
		Sections: []SectionSummary{
			{Title: "A", Summary: "sa", VisualConcept: "va"},
			{Title: "B", Summary: "sb", VisualConcept: "vb"},
		},
		Synthesis: &ExecutiveSynthesis{ExecutiveSummary: "es"},
		Model:     "test-model",
		Elapsed:   time.Second,
	}
}

func TestAssemble(t *testing.T) {
	in := validInput()
	in.Images = []*GeneratedImage{
		{SourcePrompt: "pa", Data: []byte("a")},
		nil, // failed image keeps its slot
	}

	rep, err := Assemble(in)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}

	if len(rep.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(rep.Sections))
	}
	if rep.Sections[0].Image == nil || string(rep.Sections[0].Image.Data) != "a" {
		t.Error("first section lost its image")
	}
	if rep.Sections[1].Image != nil {
		t.Error("failed image slot must stay empty")
	}
	if rep.GeneratedAt.IsZero() {
		t.Error("expected GeneratedAt to be stamped")
	}
}

func TestAssembleIncomplete(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AssembleInput)
	}{
		{"missing takeaways", func(in *AssembleInput) { in.Takeaways = nil }},
		{"missing synthesis", func(in *AssembleInput) { in.Synthesis = nil }},
		{"image count mismatch", func(in *AssembleInput) {
			in.Images = []*GeneratedImage{{SourcePrompt: "only one"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			if _, err := Assemble(in); !errors.Is(err, ErrIncompleteReport) {
				t.Fatalf("expected ErrIncompleteReport, got: %v", err)
			}
		})
	}
}

func TestAssembleCopiesSlices(t *testing.T) {
	in := validInput()
	rep, err := Assemble(in)
	if err != nil {
		t.Fatal(err)
	}

	in.Takeaways[0].Point = "mutated"
	if rep.Takeaways[0].Point == "mutated" {
		t.Error("report must not alias the input takeaways slice")
	}
}

func TestAssembleWithoutImages(t *testing.T) {
	rep, err := Assemble(validInput())
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	for i, s := range rep.Sections {
		if s.Image != nil {
			t.Errorf("section %d: expected no image", i)
		}
	}
}
