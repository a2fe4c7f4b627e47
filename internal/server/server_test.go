package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brieflab/brief/internal/app"
	"github.com/brieflab/brief/internal/content"
	"github.com/brieflab/brief/internal/jobs"
	"github.com/brieflab/brief/internal/metrics"
	"github.com/brieflab/brief/internal/pipeline"
	"github.com/brieflab/brief/internal/providers"
)

func scriptedMock() *providers.MockClient {
	m := providers.NewMockClient()
	m.Responses["key_takeaways"] = `{"takeaways":[{"point":"p","importance":"high"}]}`
	m.Responses["section_summaries"] = `{"sections":[]}`
	m.Responses["executive_summary"] = `{"executive_summary":"es","detailed_analysis":"da","recommendations":[]}`
	m.Responses["key_terms"] = `{"terms":[{"term":"t","definition":"d","context":"c"}]}`
	m.Responses["limitations_analysis"] = `{"methodological_limitations":[],"cognitive_biases":[],"missing_perspectives":[],"critical_evaluation":"ok"}`
	m.Responses["social_post"] = `{"post_text":"post"}`
	m.Responses["article"] = `{"headline":"h","introduction":"i","key_points":[],"conclusion":"c","call_to_action":"cta","visual_concept":"v"}`
	return m
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := scriptedMock()
	rec := metrics.NewRecorder()

	a := &app.App{
		Extractor: content.NewExtractor(content.ExtractorConfig{Logger: logger}),
		Pipeline: pipeline.New(m, m, pipeline.Config{
			Model:         "test-model",
			ImagesEnabled: false,
			RetryDelay:    time.Millisecond,
			Metrics:       rec,
			Logger:        logger,
		}),
		OutputDir: t.TempDir(),
		Logger:    logger,
	}

	s := New(Config{App: a, Metrics: rec, Logger: logger})
	ts := httptest.NewServer(s.httpServer.Handler)
	t.Cleanup(ts.Close)
	return s, ts
}

func waitForRun(t *testing.T, ts *httptest.Server, id string) *jobs.Run {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(ts.URL + "/api/status/" + id)
		if err != nil {
			t.Fatal(err)
		}
		var run jobs.Run
		json.NewDecoder(resp.Body).Decode(&run)
		resp.Body.Close()
		if run.Status == jobs.StatusCompleted || run.Status == jobs.StatusFailed {
			return &run
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("run did not finish in time")
	return nil
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestSummarizeTextFlow(t *testing.T) {
	_, ts := newTestServer(t)

	body := `{"text":"some text to summarize","title":"Notes"}`
	resp, err := http.Post(ts.URL+"/api/summarize/text", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	var run jobs.Run
	json.NewDecoder(resp.Body).Decode(&run)
	if run.ID == "" {
		t.Fatal("expected run id")
	}

	final := waitForRun(t, ts, run.ID)
	if final.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", final.Status, final.Error)
	}

	// Completed runs serve their rendered report.
	rr, err := http.Get(ts.URL + "/api/report/" + run.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer rr.Body.Close()
	if rr.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.StatusCode)
	}
	html, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(html), "Notes") {
		t.Error("report should contain the source title")
	}
}

func TestSummarizeTextValidation(t *testing.T) {
	_, ts := newTestServer(t)

	for _, body := range []string{``, `{}`, `{"text":"  "}`, `not json`} {
		resp, err := http.Post(ts.URL+"/api/summarize/text", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, resp.StatusCode)
		}
	}
}

func TestSummarizeURLValidation(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/summarize/url", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSummarizeFileFlow(t *testing.T) {
	_, ts := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "doc.txt")
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(fw, "file contents to summarize")
	mw.Close()

	resp, err := http.Post(ts.URL+"/api/summarize/file", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	var run jobs.Run
	json.NewDecoder(resp.Body).Decode(&run)
	final := waitForRun(t, ts, run.ID)
	if final.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", final.Status, final.Error)
	}
}

func TestStatusUnknownRun(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/status/no-such-run")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestReportBeforeCompletion(t *testing.T) {
	s, ts := newTestServer(t)

	run := s.tracker.Create("pending source")
	resp, err := http.Get(ts.URL + "/api/report/" + run.ID)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
}

func TestReportDownloadHeaders(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/summarize/text", "application/json",
		strings.NewReader(`{"text":"download me"}`))
	if err != nil {
		t.Fatal(err)
	}
	var run jobs.Run
	json.NewDecoder(resp.Body).Decode(&run)
	resp.Body.Close()

	final := waitForRun(t, ts, run.ID)
	if final.Status != jobs.StatusCompleted {
		t.Fatalf("run failed: %s", final.Error)
	}

	dl, err := http.Get(ts.URL + "/api/report/" + run.ID + "/download")
	if err != nil {
		t.Fatal(err)
	}
	defer dl.Body.Close()
	if got := dl.Header.Get("Content-Disposition"); !strings.Contains(got, "attachment") {
		t.Errorf("expected attachment disposition, got %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/summarize/text", "application/json",
		strings.NewReader(`{"text":"measure me"}`))
	if err != nil {
		t.Fatal(err)
	}
	var run jobs.Run
	json.NewDecoder(resp.Body).Decode(&run)
	resp.Body.Close()
	waitForRun(t, ts, run.ID)

	mr, err := http.Get(ts.URL + "/api/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer mr.Body.Close()

	var sum metrics.Summary
	if err := json.NewDecoder(mr.Body).Decode(&sum); err != nil {
		t.Fatal(err)
	}
	if sum.Count == 0 {
		t.Error("expected recorded model calls")
	}
}
