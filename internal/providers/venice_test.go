package providers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testAPIKey = "sk-test-credential-do-not-log"

func chatResponse(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "qwen3-235b",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     12,
			"completion_tokens": 7,
			"total_tokens":      19,
		},
	})
	return string(body)
}

func newTestClient(handler http.Handler) (*VeniceClient, *httptest.Server) {
	ts := httptest.NewServer(handler)
	client := NewVeniceClient(VeniceConfig{
		APIKey:            testAPIKey,
		BaseURL:           ts.URL,
		HTTPClient:        ts.Client(),
		RequestsPerSecond: 1000,
	})
	return client, ts
}

func TestCompleteStructured(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	client, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatResponse(`{"takeaways":[{"point":"p","importance":"high"}]}`))
	}))
	defer ts.Close()

	res, err := client.Complete(context.Background(), &CompletionRequest{
		Prompt:       "summarize this",
		SystemPrompt: "you are a summarizer",
		Temperature:  0.3,
		MaxTokens:    512,
		ResponseFormat: &ResponseFormat{
			Name:   "key_takeaways",
			Schema: json.RawMessage(takeawaysSchema),
		},
	})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}

	if gotAuth != "Bearer "+testAPIKey {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if res.ParsedJSON == nil {
		t.Fatal("expected ParsedJSON for structured request")
	}
	if res.TotalTokens != 19 {
		t.Errorf("expected 19 total tokens, got %d", res.TotalTokens)
	}

	// Strict schema must ride along on the wire request.
	rf, ok := gotBody["response_format"].(map[string]any)
	if !ok {
		t.Fatal("request missing response_format")
	}
	js, _ := rf["json_schema"].(map[string]any)
	if js["name"] != "key_takeaways" {
		t.Errorf("unexpected schema name: %v", js["name"])
	}
	if js["strict"] != true {
		t.Errorf("expected strict schema, got %v", js["strict"])
	}
}

func TestCompleteMalformedResponse(t *testing.T) {
	client, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatResponse("this is not the JSON you are looking for"))
	}))
	defer ts.Close()

	_, err := client.Complete(context.Background(), &CompletionRequest{
		Prompt: "summarize",
		ResponseFormat: &ResponseFormat{
			Name:   "key_takeaways",
			Schema: json.RawMessage(takeawaysSchema),
		},
	})

	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedResponseError, got: %v", err)
	}
	if malformed.Raw != "this is not the JSON you are looking for" {
		t.Errorf("raw text not preserved: %q", malformed.Raw)
	}
}

func TestCompleteErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		unavailable bool
	}{
		{"server error", http.StatusInternalServerError, true},
		{"bad gateway", http.StatusBadGateway, true},
		{"rate limited", http.StatusTooManyRequests, true},
		{"bad request", http.StatusBadRequest, false},
		{"unauthorized", http.StatusUnauthorized, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"error":{"message":"nope"}}`)
			}))
			defer ts.Close()

			_, err := client.Complete(context.Background(), &CompletionRequest{Prompt: "x"})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrRemoteUnavailable); got != tt.unavailable {
				t.Errorf("errors.Is(err, ErrRemoteUnavailable) = %v, want %v (err: %v)", got, tt.unavailable, err)
			}
			if strings.Contains(err.Error(), testAPIKey) {
				t.Errorf("error leaked credential: %v", err)
			}
		})
	}
}

func TestCompleteTransportFailure(t *testing.T) {
	client, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse connections

	_, err := client.Complete(context.Background(), &CompletionRequest{Prompt: "x"})
	if !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("expected ErrRemoteUnavailable, got: %v", err)
	}
}

func TestGenerateImage(t *testing.T) {
	imgBytes := []byte("webp-bytes")

	var gotReq veniceImageRequest
	client, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/image/generate") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer "+testAPIKey {
			t.Errorf("expected bearer auth, got %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(veniceImageResponse{
			Images: []string{base64.StdEncoding.EncodeToString(imgBytes)},
		})
	}))
	defer ts.Close()

	res, err := client.GenerateImage(context.Background(), &ImageRequest{
		Prompt:    "a lighthouse at dusk",
		Width:     1024,
		Height:    512,
		StyleHint: "Watercolor Whimsical",
	})
	if err != nil {
		t.Fatalf("GenerateImage() error: %v", err)
	}

	if string(res.Data) != string(imgBytes) {
		t.Errorf("decoded bytes mismatch: %q", res.Data)
	}
	if res.Format != "webp" {
		t.Errorf("expected webp, got %s", res.Format)
	}
	if gotReq.Width != 1024 || gotReq.Height != 512 {
		t.Errorf("dimensions not forwarded: %dx%d", gotReq.Width, gotReq.Height)
	}
	if !gotReq.SafeMode {
		t.Error("safe mode must be on")
	}
}

func TestGenerateImageErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		unavailable bool
	}{
		{"server error", http.StatusInternalServerError, "", true},
		{"bad request", http.StatusBadRequest, "", false},
		{"empty image list", http.StatusOK, `{"images":[]}`, false},
		{"bad base64", http.StatusOK, `{"images":["%%%"]}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			_, err := client.GenerateImage(context.Background(), &ImageRequest{Prompt: "x", Width: 64, Height: 64})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrRemoteUnavailable); got != tt.unavailable {
				t.Errorf("errors.Is(err, ErrRemoteUnavailable) = %v, want %v (err: %v)", got, tt.unavailable, err)
			}
			if strings.Contains(err.Error(), testAPIKey) {
				t.Errorf("error leaked credential: %v", err)
			}
		})
	}
}

func TestGenerateImageCancellation(t *testing.T) {
	client, ts := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GenerateImage(ctx, &ImageRequest{Prompt: "x", Width: 64, Height: 64})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
}
