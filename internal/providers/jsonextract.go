package providers

import (
	"encoding/json"
	"strings"
)

// ParseObject parses one JSON object from model output, with lightweight
// recovery for markdown code fences and prose around the object.
func ParseObject(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, newError(ErrKindEmpty, "Empty response from AI.")
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}
	if sliced := sliceObject(content); sliced != "" && sliced != content {
		candidates = append(candidates, sliced)
	}

	for _, candidate := range candidates {
		var parsed map[string]json.RawMessage
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			// Re-marshal so downstream consumers see canonical JSON,
			// not whatever whitespace the model produced.
			normalized, mErr := json.Marshal(parsed)
			if mErr != nil {
				return nil, newError(ErrKindMalformedJSON, "AI returned malformed JSON.")
			}
			return normalized, nil
		}
	}

	return nil, newError(ErrKindMalformedJSON, "AI returned malformed JSON.")
}

// stripCodeFences removes a surrounding ``` or ```json fence, if present.
func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}

	// Drop first fence line.
	lines = lines[1:]
	// Drop trailing fence if present.
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// sliceObject recovers an object surrounded by prose by slicing from the
// first '{' to the last '}'.
func sliceObject(content string) string {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(trimmed, "}")
	if end < start {
		return ""
	}
	return strings.TrimSpace(trimmed[start : end+1])
}
