// Package jobs tracks in-memory run state for asynchronous summarization
// requests submitted over the HTTP API.
package jobs

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ErrNotFound indicates an unknown run id.
var ErrNotFound = errors.New("run not found")

// Run is one tracked summarization run.
type Run struct {
	ID          string     `json:"id"`
	Status      Status     `json:"status"`
	Source      string     `json:"source"`
	Progress    string     `json:"progress,omitempty"`
	Error       string     `json:"error,omitempty"`
	ReportPath  string     `json:"report_path,omitempty"`
	Degraded    []string   `json:"degraded,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Tracker is a concurrency-safe in-memory run store. Runs are not
// persisted: process restart loses status, the written report artifacts
// remain on disk.
type Tracker struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{runs: make(map[string]*Run)}
}

// Create registers a new pending run and returns its id.
func (t *Tracker) Create(source string) *Run {
	run := &Run{
		ID:        uuid.New().String(),
		Status:    StatusPending,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
	t.mu.Lock()
	t.runs[run.ID] = run
	t.mu.Unlock()
	return t.snapshot(run.ID)
}

// Get returns a copy of the run's current state.
func (t *Tracker) Get(id string) (*Run, error) {
	run := t.snapshot(id)
	if run == nil {
		return nil, ErrNotFound
	}
	return run, nil
}

// SetProcessing marks a run in progress with a human-readable step.
func (t *Tracker) SetProcessing(id, progress string) {
	t.update(id, func(r *Run) {
		r.Status = StatusProcessing
		r.Progress = progress
	})
}

// SetCompleted marks a run complete, recording the artifact path and any
// degraded parts.
func (t *Tracker) SetCompleted(id, reportPath string, degraded []string) {
	now := time.Now().UTC()
	t.update(id, func(r *Run) {
		r.Status = StatusCompleted
		r.Progress = ""
		r.ReportPath = reportPath
		r.Degraded = append([]string(nil), degraded...)
		r.CompletedAt = &now
	})
}

// SetFailed marks a run failed with its cause.
func (t *Tracker) SetFailed(id string, err error) {
	now := time.Now().UTC()
	t.update(id, func(r *Run) {
		r.Status = StatusFailed
		r.Progress = ""
		if err != nil {
			r.Error = err.Error()
		}
		r.CompletedAt = &now
	})
}

func (t *Tracker) update(id string, fn func(*Run)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if run, ok := t.runs[id]; ok {
		fn(run)
	}
}

func (t *Tracker) snapshot(id string) *Run {
	t.mu.RLock()
	defer t.mu.RUnlock()
	run, ok := t.runs[id]
	if !ok {
		return nil
	}
	cp := *run
	cp.Degraded = append([]string(nil), run.Degraded...)
	return &cp
}
