// Package metrics provides usage tracking for model calls: tokens, timing,
// and outcome per pipeline stage, kept in memory and queryable by run.
package metrics

import (
	"context"
	"sync"
	"time"
)

// Metric is a single recorded model call.
type Metric struct {
	// Attribution
	RunID string `json:"run_id,omitempty"`
	Stage string `json:"stage,omitempty"`

	// Provider info
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`

	// Token counts (completion calls only)
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`

	// Timing
	ExecutionSeconds float64 `json:"execution_seconds,omitempty"`

	// Status
	Success   bool   `json:"success"`
	ErrorType string `json:"error_type,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Filter selects metrics for listing and aggregation. Zero fields match
// everything.
type Filter struct {
	RunID string
	Stage string
}

func (f Filter) matches(m Metric) bool {
	if f.RunID != "" && m.RunID != f.RunID {
		return false
	}
	if f.Stage != "" && m.Stage != f.Stage {
		return false
	}
	return true
}

// Recorder accumulates metrics in memory. Safe for concurrent use.
type Recorder struct {
	mu      sync.RWMutex
	records []Metric
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends a metric, stamping CreatedAt if unset.
func (r *Recorder) Record(m Metric) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.mu.Lock()
	r.records = append(r.records, m)
	r.mu.Unlock()
}

// List returns metrics matching the filter, oldest first.
func (r *Recorder) List(f Filter) []Metric {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Metric
	for _, m := range r.records {
		if f.matches(m) {
			out = append(out, m)
		}
	}
	return out
}

// Summary aggregates metrics matching a filter.
type Summary struct {
	Count            int     `json:"count"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	TotalSeconds     float64 `json:"total_seconds"`
	SuccessCount     int     `json:"success_count"`
	ErrorCount       int     `json:"error_count"`

	ByStage map[string]StageSummary `json:"by_stage,omitempty"`
}

// StageSummary aggregates metrics for one stage.
type StageSummary struct {
	Count        int     `json:"count"`
	TotalTokens  int     `json:"total_tokens"`
	TotalSeconds float64 `json:"total_seconds"`
	ErrorCount   int     `json:"error_count"`
}

// Summarize aggregates all metrics matching the filter.
func (r *Recorder) Summarize(f Filter) Summary {
	s := Summary{ByStage: make(map[string]StageSummary)}
	for _, m := range r.List(f) {
		s.Count++
		s.PromptTokens += m.PromptTokens
		s.CompletionTokens += m.CompletionTokens
		s.TotalTokens += m.TotalTokens
		s.TotalSeconds += m.ExecutionSeconds
		if m.Success {
			s.SuccessCount++
		} else {
			s.ErrorCount++
		}

		st := s.ByStage[m.Stage]
		st.Count++
		st.TotalTokens += m.TotalTokens
		st.TotalSeconds += m.ExecutionSeconds
		if !m.Success {
			st.ErrorCount++
		}
		s.ByStage[m.Stage] = st
	}
	if s.Count == 0 {
		s.ByStage = nil
	}
	return s
}

type runKey struct{}

// WithRun tags a context with the run ID so call sites below the pipeline
// entry point can attribute their metrics.
func WithRun(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runKey{}, runID)
}

// RunFrom returns the run ID carried by the context, if any.
func RunFrom(ctx context.Context) string {
	id, _ := ctx.Value(runKey{}).(string)
	return id
}
