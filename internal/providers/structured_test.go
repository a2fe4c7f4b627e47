package providers

import (
	"encoding/json"
	"testing"
)

const takeawaysSchema = `{
	"type": "object",
	"properties": {
		"takeaways": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"point": {"type": "string"},
					"importance": {"type": "string"}
				},
				"required": ["point", "importance"],
				"additionalProperties": false
			}
		}
	},
	"required": ["takeaways"],
	"additionalProperties": false
}`

func TestParseStructured(t *testing.T) {
	rf := &ResponseFormat{Name: "key_takeaways", Schema: json.RawMessage(takeawaysSchema)}
	valid := `{"takeaways":[{"point":"p","importance":"high"}]}`

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"plain JSON", valid, false},
		{"fenced JSON", "```json\n" + valid + "\n```", false},
		{"fence without language", "```\n" + valid + "\n```", false},
		{"not JSON", "sorry, no JSON today", true},
		{"empty", "   ", true},
		{"schema violation", `{"takeaways":[{"point":"p"}]}`, true},
		{"extra property", `{"takeaways":[],"extra":1}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := parseStructured(rf, tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var doc map[string]any
			if err := json.Unmarshal(parsed, &doc); err != nil {
				t.Fatalf("parsed output is not JSON: %v", err)
			}
		})
	}
}

func TestSalvageJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"plain object", `{"a":1}`, true},
		{"plain array", `[1,2]`, true},
		{"fenced", "```json\n{\"a\":1}\n```", true},
		{"prose around object", `Sure! Here it is: {"a":1} hope that helps`, true},
		{"prose around array", `The list: [1,2,3].`, true},
		{"no JSON at all", "there is nothing here", false},
		{"unbalanced", `{"a":`, false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SalvageJSON(tt.raw)
			if ok != tt.ok {
				t.Fatalf("SalvageJSON(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if ok && !json.Valid(got) {
				t.Errorf("salvaged output is not valid JSON: %s", got)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no fence", `{"a":1}`, ""},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"unterminated", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFences(tt.content); got != tt.want {
				t.Errorf("stripCodeFences(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestMalformedResponseErrorUnwrap(t *testing.T) {
	inner := &MalformedResponseError{Schema: "s", Raw: "raw", Reason: errTest}
	if inner.Unwrap() != errTest {
		t.Error("Unwrap should return the reason")
	}
	if inner.Error() == "" {
		t.Error("Error should describe the failure")
	}
}

var errTest = json.Unmarshal([]byte("x"), &struct{}{})
