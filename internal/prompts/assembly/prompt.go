// Package assembly builds the prompts for the assembly stage: original text,
// intent and collected answers in, a finished teaching prompt (or one more
// round of questions) out.
package assembly

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/promptomatic/promptomatic/internal/prompts"
	"github.com/promptomatic/promptomatic/internal/types"
)

//go:embed system.tmpl
var systemPromptTmpl string

var systemTemplate = template.Must(template.New("system").Parse(systemPromptTmpl))

// SystemPrompt renders the assembly system prompt.
func SystemPrompt(lang types.Language, profile *types.TeacherProfile) string {
	var buf bytes.Buffer
	if err := systemTemplate.Execute(&buf, prompts.NewSystemData(lang, profile)); err != nil {
		return systemPromptTmpl
	}
	return buf.String()
}

// UserPrompt builds the user message. originalText is always the first text
// the teacher submitted, never an intermediate summary.
func UserPrompt(originalText, intentJSON, answersJSON string) string {
	return fmt.Sprintf(`Original teacher request:
%q

Intent analysis:
%s

Teacher's answers to follow-up questions:
%s

Assemble a complete, ready-to-use teaching prompt using the appropriate techniques.`,
		originalText, intentJSON, answersJSON)
}

// Prompt keys
const (
	SystemPromptKey = "stages.assembly.system"
)

// SystemPromptHash links recorded calls to this template version.
func SystemPromptHash() string {
	return prompts.HashText(systemPromptTmpl)
}
