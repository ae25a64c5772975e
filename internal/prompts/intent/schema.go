package intent

// Schema is the validation schema for intent analysis output. It is kept
// loose on purpose: extraction fields are nullable and unknown extras are
// tolerated, only the structural essentials are enforced.
var Schema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"level":         map[string]any{"type": []string{"string", "null"}},
		"topic":         map[string]any{"type": []string{"string", "null"}},
		"activity_type": map[string]any{"type": []string{"string", "null"}},
		"audience":      map[string]any{"type": []string{"string", "null"}},
		"duration":      map[string]any{"type": []string{"string", "null"}},
		"source_type": map[string]any{
			"type": "string",
			"enum": []string{"from_scratch", "from_source"},
		},
		"missing_fields": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
		"summary": map[string]any{"type": "string"},
	},
	"required": []string{"source_type", "missing_fields", "summary"},
}
