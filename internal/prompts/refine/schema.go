package refine

// Schema validates refinement output.
var Schema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"blocks": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"technique":  map[string]any{"type": "string"},
					"content":    map[string]any{"type": "string"},
					"annotation": map[string]any{"type": "string"},
					"order":      map[string]any{"type": "integer"},
				},
				"required": []string{"technique", "content"},
			},
		},
		"changes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"technique": map[string]any{"type": "string"},
					"type": map[string]any{
						"type": "string",
						"enum": []string{"modified", "added", "removed"},
					},
					"reason": map[string]any{"type": "string"},
				},
				"required": []string{"technique", "type"},
			},
		},
		"tips": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required": []string{"blocks", "changes"},
}
