// Package intent builds the prompts for the intent analysis stage: free
// teacher text in, structured IntentAnalysis out.
package intent

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/promptomatic/promptomatic/internal/prompts"
	"github.com/promptomatic/promptomatic/internal/types"
)

//go:embed system.tmpl
var systemPromptTmpl string

var systemTemplate = template.Must(template.New("system").Parse(systemPromptTmpl))

// SystemPrompt renders the intent analysis system prompt.
func SystemPrompt(lang types.Language, profile *types.TeacherProfile) string {
	var buf bytes.Buffer
	if err := systemTemplate.Execute(&buf, prompts.NewSystemData(lang, profile)); err != nil {
		return systemPromptTmpl
	}
	return buf.String()
}

// UserPrompt is the teacher's free text, sent as-is.
func UserPrompt(text string) string {
	return text
}

// Prompt keys
const (
	SystemPromptKey = "stages.intent.system"
)

// SystemPromptHash links recorded calls to this template version.
func SystemPromptHash() string {
	return prompts.HashText(systemPromptTmpl)
}
