package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/brieflab/brief/internal/jobs"
	"github.com/brieflab/brief/internal/metrics"
	"github.com/brieflab/brief/internal/report"
)

// maxUploadBytes bounds uploaded document size.
const maxUploadBytes = 32 << 20

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/summarize/url", s.handleSummarizeURL)
	mux.HandleFunc("POST /api/summarize/text", s.handleSummarizeText)
	mux.HandleFunc("POST /api/summarize/file", s.handleSummarizeFile)
	mux.HandleFunc("GET /api/status/{id}", s.handleStatus)
	mux.HandleFunc("GET /api/report/{id}", s.handleReport)
	mux.HandleFunc("GET /api/report/{id}/download", s.handleReportDownload)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
}

// handleMetrics returns aggregated model usage, optionally filtered by run.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		writeJSON(w, http.StatusOK, metrics.Summary{})
		return
	}
	f := metrics.Filter{
		RunID: r.URL.Query().Get("run_id"),
		Stage: r.URL.Query().Get("stage"),
	}
	writeJSON(w, http.StatusOK, s.metrics.Summarize(f))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type urlInput struct {
	URL string `json:"url"`
}

func (s *Server) handleSummarizeURL(w http.ResponseWriter, r *http.Request) {
	var in urlInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.URL) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	run := s.tracker.Create(in.URL)
	s.startRun(run, func(ctx context.Context) (*report.Report, string, error) {
		return s.app.Summarize(ctx, in.URL)
	})
	writeJSON(w, http.StatusAccepted, run)
}

type textInput struct {
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
}

func (s *Server) handleSummarizeText(w http.ResponseWriter, r *http.Request) {
	var in textInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	run := s.tracker.Create("text input")
	s.startRun(run, func(ctx context.Context) (*report.Report, string, error) {
		return s.app.SummarizeText(ctx, in.Text, in.Title)
	})
	writeJSON(w, http.StatusAccepted, run)
}

func (s *Server) handleSummarizeFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	// Spool the upload to a temp file preserving the extension, so the
	// extractor can dispatch on it.
	tmp, err := os.CreateTemp("", "brief-upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	tmp.Close()

	run := s.tracker.Create(header.Filename)
	s.startRun(run, func(ctx context.Context) (*report.Report, string, error) {
		defer os.Remove(tmp.Name())
		return s.app.SummarizeFile(ctx, tmp.Name())
	})
	writeJSON(w, http.StatusAccepted, run)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	run, err := s.tracker.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown run id")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	path, ok := s.completedReportPath(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeFile(w, r, path)
}

func (s *Server) handleReportDownload(w http.ResponseWriter, r *http.Request) {
	path, ok := s.completedReportPath(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeFile(w, r, path)
}

func (s *Server) completedReportPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	run, err := s.tracker.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown run id")
		return "", false
	}
	if run.Status != jobs.StatusCompleted {
		writeError(w, http.StatusConflict, fmt.Sprintf("run is %s", run.Status))
		return "", false
	}
	return run.ReportPath, true
}

// startRun executes the pipeline in the background, updating the tracker as
// it goes. Runs are parented to the server's lifetime so shutdown cancels
// them; a cancelled run is recorded as failed and its partial output is
// discarded.
func (s *Server) startRun(run *jobs.Run, fn func(ctx context.Context) (*report.Report, string, error)) {
	go func() {
		s.tracker.SetProcessing(run.ID, "summarizing")
		rep, path, err := fn(s.runCtx)
		if err != nil {
			s.logger.Error("run failed", "run_id", run.ID, "error", err)
			s.tracker.SetFailed(run.ID, err)
			return
		}
		s.tracker.SetCompleted(run.ID, path, rep.Degraded)
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
