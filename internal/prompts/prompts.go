// Package prompts provides the embedded prompt templates for the interview
// pipeline stages. Each stage lives in its own subpackage with a system
// prompt template and a user prompt builder.
//
// All prompt text is English internally; the generated content's language is
// controlled per-call via the language instruction.
package prompts

import (
	"fmt"
	"strings"

	"github.com/promptomatic/promptomatic/internal/types"
)

// LangInstruction returns the output-language clause injected into every
// stage's system prompt.
func LangInstruction(lang types.Language) string {
	if lang == types.LanguageFrench {
		return "IMPORTANT: All your output text (questions, summaries, content, annotations) MUST be in idiomatic French — natural, fluent, as a native French speaker would write. Never translate literally from English."
	}
	return "All your output text must be in clear, natural English."
}

// SummaryLanguage names the language for one-off phrases inside prompts.
func SummaryLanguage(lang types.Language) string {
	if lang == types.LanguageFrench {
		return "French"
	}
	return "English"
}

// ProfileContext renders the teacher's profile as a prompt clause, or ""
// when no usable profile is available. Profile data biases defaults; it
// never overrides what the teacher wrote in the request itself.
func ProfileContext(p *types.TeacherProfile) string {
	if !p.Ready() {
		return ""
	}

	var lines []string
	if len(p.LanguagesTaught) > 0 {
		lines = append(lines, fmt.Sprintf("- Teaches: %s", strings.Join(p.LanguagesTaught, ", ")))
	}
	if len(p.TypicalLevels) > 0 {
		lines = append(lines, fmt.Sprintf("- Typical levels: %s", strings.Join(p.TypicalLevels, ", ")))
	}
	if p.TypicalAudience != "" {
		lines = append(lines, fmt.Sprintf("- Typical audience: %s", p.TypicalAudience))
	}
	if p.TypicalDuration != "" {
		lines = append(lines, fmt.Sprintf("- Typical activity duration: %s", p.TypicalDuration))
	}
	if p.TeachingContext != "" {
		lines = append(lines, fmt.Sprintf("- Teaching context: %s", p.TeachingContext))
	}
	if len(lines) == 0 {
		return ""
	}

	return "Teacher profile (use to resolve ambiguity and pick sensible defaults — the request text always wins over the profile):\n" +
		strings.Join(lines, "\n")
}

// SystemData is the data every stage's system template is rendered with.
type SystemData struct {
	LangInstruction string
	SummaryLanguage string
	ProfileContext  string
}

// NewSystemData builds template data for a language and optional profile.
func NewSystemData(lang types.Language, profile *types.TeacherProfile) SystemData {
	return SystemData{
		LangInstruction: LangInstruction(lang),
		SummaryLanguage: SummaryLanguage(lang),
		ProfileContext:  ProfileContext(profile),
	}
}
