// Package refine builds the prompts for the refinement stage: a stored
// prompt's blocks plus an issue report in, a revised block set with an
// accounting of every change out.
package refine

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

// SystemPrompt renders the refinement system prompt.
func SystemPrompt(lang types.Language, profile *types.TeacherProfile) string {
	var buf bytes.Buffer
	if err := systemTemplate.Execute(&buf, prompts.NewSystemData(lang, profile)); err != nil {
		return systemPromptTmpl
	}
	return buf.String()
}

// UserPrompt builds the user message from the serialized current blocks and
// the teacher's issue report. description and outputSample are optional.
func UserPrompt(blocksJSON, issueType, description, outputSample string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current prompt blocks:\n%s\n\nIssue type: %s\n", blocksJSON, issueType)
	if description != "" {
		fmt.Fprintf(&b, "Issue description: %s\n", description)
	}
	if outputSample != "" {
		fmt.Fprintf(&b, "AI output sample:\n%s\n", outputSample)
	}
	b.WriteString("\nRevise the prompt to fix this issue. Only change what needs changing.")
	return b.String()
}

// Prompt keys
const (
	SystemPromptKey = "stages.refine.system"
)

// SystemPromptHash links recorded calls to this template version.
func SystemPromptHash() string {
	return prompts.HashText(systemPromptTmpl)
}
