package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// parseStructured parses and validates model output against the requested
// schema. Light recovery for markdown code fences is applied before parsing;
// anything beyond that is the caller's salvage problem.
func parseStructured(rf *ResponseFormat, content string) (json.RawMessage, error) {
	parsed, err := parseJSONContent(content)
	if err != nil {
		return nil, err
	}
	if err := validateAgainstSchema(rf.Schema, parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

func parseJSONContent(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty structured output")
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}

	for _, candidate := range candidates {
		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
			continue
		}
		normalized, err := json.Marshal(parsed)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize structured output: %w", err)
		}
		return normalized, nil
	}

	return nil, fmt.Errorf("response is not valid JSON")
}

// validateAgainstSchema checks parsed JSON against the canonical schema.
func validateAgainstSchema(schemaRaw, parsed json.RawMessage) error {
	if len(schemaRaw) == 0 || len(parsed) == 0 {
		return nil
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(schemaRaw)); err != nil {
		return fmt.Errorf("failed to load response schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("failed to compile response schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(parsed, &doc); err != nil {
		return fmt.Errorf("failed to decode structured JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("response does not match schema: %w", err)
	}
	return nil
}

func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// SalvageJSON attempts a best-effort extraction of a JSON document from raw
// model output: code fences are stripped and the outermost brace/bracket
// span is scanned. No schema validation is applied; callers decide what to
// do with partially conforming data. The second return is false when no
// parseable document could be recovered.
func SalvageJSON(raw string) (json.RawMessage, bool) {
	candidates := []string{strings.TrimSpace(raw)}
	if stripped := stripCodeFences(raw); stripped != "" {
		candidates = append(candidates, stripped)
	}
	for _, c := range candidates {
		if span := outermostJSONSpan(c); span != "" {
			candidates = append(candidates, span)
		}
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
			continue
		}
		normalized, err := json.Marshal(parsed)
		if err != nil {
			continue
		}
		return normalized, true
	}
	return nil, false
}

// outermostJSONSpan returns the substring from the first opening brace or
// bracket to the matching last closer, or "" when none is present.
func outermostJSONSpan(s string) string {
	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")

	start, closer := -1, ""
	switch {
	case objStart >= 0 && (arrStart < 0 || objStart < arrStart):
		start, closer = objStart, "}"
	case arrStart >= 0:
		start, closer = arrStart, "]"
	default:
		return ""
	}

	end := strings.LastIndex(s, closer)
	if end < start {
		return ""
	}
	return strings.TrimSpace(s[start : end+1])
}
