package assembly

// Schema validates assembly output. The result is a tagged union; "kind" is
// optional here because older payloads shipped the bare prompt object and
// the engine still coerces those.
var Schema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"kind": map[string]any{
			"type": "string",
			"enum": []string{"prompt", "ask_user"},
		},
		"prompt": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name": map[string]any{"type": "string"},
				"blocks": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"technique": map[string]any{
								"type": "string",
								"enum": []string{"role", "context", "examples", "constraints", "steps", "think_first"},
							},
							"content":    map[string]any{"type": "string"},
							"annotation": map[string]any{"type": "string"},
							"order":      map[string]any{"type": "integer"},
						},
						"required": []string{"technique", "content"},
					},
				},
			},
		},
		"questions": map[string]any{"type": "array"},
	},
}
