// Package questions builds the prompts for the follow-up question stage:
// an intent analysis with missing fields in, a small question set out.
package questions

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/promptomatic/promptomatic/internal/prompts"
	"github.com/promptomatic/promptomatic/internal/types"
)

//go:embed system.tmpl
var systemPromptTmpl string

var systemTemplate = template.Must(template.New("system").Parse(systemPromptTmpl))

// SystemPrompt renders the question generation system prompt.
func SystemPrompt(lang types.Language, profile *types.TeacherProfile) string {
	var buf bytes.Buffer
	if err := systemTemplate.Execute(&buf, prompts.NewSystemData(lang, profile)); err != nil {
		return systemPromptTmpl
	}
	return buf.String()
}

// UserPrompt builds the user message from the serialized intent analysis
// and its missing-field list.
func UserPrompt(intentJSON string, missingFields []string) string {
	return fmt.Sprintf(`Here is the intent analysis:
%s

Missing fields to ask about: %s

Generate questions ONLY for the missing fields listed above.`,
		intentJSON, strings.Join(missingFields, ", "))
}

// Prompt keys
const (
	SystemPromptKey = "stages.questions.system"
)

// SystemPromptHash links recorded calls to this template version.
func SystemPromptHash() string {
	return prompts.HashText(systemPromptTmpl)
}
