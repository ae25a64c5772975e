package questions

// Schema validates question generation output. Options are deliberately
// unconstrained: providers have shipped both bare strings and
// label/value/recommended objects, and the normalizer reconciles them.
var Schema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"questions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":       map[string]any{"type": "string"},
					"question": map[string]any{"type": "string"},
					"field":    map[string]any{"type": "string"},
					"options":  map[string]any{"type": "array"},
				},
				"required": []string{"question", "field"},
			},
		},
	},
	"required": []string{"questions"},
}
