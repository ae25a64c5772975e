// Package types holds domain types shared across the engine, the prompt
// builders, and the HTTP layer.
package types

// Language selects the language of generated content. It never affects
// control flow.
type Language string

const (
	LanguageFrench  Language = "fr"
	LanguageEnglish Language = "en"
)

// ParseLanguage normalizes a client-supplied language value. Anything that
// is not English is French, the product's default.
func ParseLanguage(s string) Language {
	if s == string(LanguageEnglish) {
		return LanguageEnglish
	}
	return LanguageFrench
}

// TeacherProfile is the optional read-only context used to bias defaults in
// every pipeline stage. A profile is only used once its setup is completed.
type TeacherProfile struct {
	LanguagesTaught []string `json:"languages_taught"`
	TypicalLevels   []string `json:"typical_levels"`
	TypicalAudience string   `json:"typical_audience"`
	TypicalDuration string   `json:"typical_duration"`
	TeachingContext string   `json:"teaching_context"`
	SetupCompleted  bool     `json:"setup_completed"`
}

// Ready reports whether the profile should be fed to the pipeline.
func (p *TeacherProfile) Ready() bool {
	return p != nil && p.SetupCompleted
}
