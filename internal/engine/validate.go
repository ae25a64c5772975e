package engine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/promptomatic/promptomatic/internal/prompts/assembly"
	"github.com/promptomatic/promptomatic/internal/prompts/intent"
	"github.com/promptomatic/promptomatic/internal/prompts/questions"
	"github.com/promptomatic/promptomatic/internal/prompts/refine"
)

// Compiled output schemas, one per stage.
var (
	intentSchema    = mustCompile("intent.json", intent.Schema)
	questionsSchema = mustCompile("questions.json", questions.Schema)
	assemblySchema  = mustCompile("assembly.json", assembly.Schema)
	refineSchema    = mustCompile("refine.json", refine.Schema)
)

func mustCompile(name string, schema map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, bytes.NewReader(b)); err != nil {
		panic(err)
	}
	return c.MustCompile(name)
}

// validateShape checks a stage's parsed output against its schema. A miss
// counts as a stage failure so the lower-temperature retry gets a chance to
// produce a conforming object.
func validateShape(schema *jsonschema.Schema, raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decode stage output: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("AI returned an unexpected shape: %w", err)
	}
	return nil
}
