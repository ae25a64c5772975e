package engine

import "encoding/json"

// Technique names a prompt-block building technique.
type Technique string

const (
	TechniqueRole        Technique = "role"
	TechniqueContext     Technique = "context"
	TechniqueExamples    Technique = "examples"
	TechniqueConstraints Technique = "constraints"
	TechniqueSteps       Technique = "steps"
	TechniqueThinkFirst  Technique = "think_first"
)

// IntentAnalysis is the structured reading of a teacher's free-text request.
// It is produced once per conversation and carried forward unchanged into
// every subsequent stage. Nullable fields stay nil when the model could not
// extract them.
type IntentAnalysis struct {
	Level        *string `json:"level"`
	Topic        *string `json:"topic"`
	ActivityType *string `json:"activity_type"`
	Audience     *string `json:"audience"`
	Duration     *string `json:"duration"`

	// SourceType is "from_scratch" or "from_source".
	SourceType string `json:"source_type"`

	// MissingFields lists fields worth a clarifying question, in order.
	MissingFields []string `json:"missing_fields"`

	// Summary is a one-sentence restatement of the request.
	Summary string `json:"summary"`
}

// Option is one selectable answer for a follow-up question. Models have
// shipped options both as bare strings and as label/value objects; both
// forms decode here.
type Option struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Recommended *bool  `json:"recommended,omitempty"`
}

// UnmarshalJSON accepts either a bare string or an object.
func (o *Option) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		o.Label = s
		o.Value = s
		o.Recommended = nil
		return nil
	}

	type option Option
	var obj option
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*o = Option(obj)
	return nil
}

// Question is one clarifying question put to the teacher. Field ties the
// answer back to the intent analysis vocabulary. The boolean flags are
// pointers on purpose: absent means "unset", and callers apply their own
// default rather than the engine forcing false.
type Question struct {
	ID       string   `json:"id,omitempty"`
	Question string   `json:"question"`
	Field    string   `json:"field"`
	Options  []Option `json:"options"`

	MultiSelect      *bool  `json:"multi_select,omitempty"`
	AllowOther       *bool  `json:"allow_other,omitempty"`
	OtherPlaceholder string `json:"other_placeholder,omitempty"`

	// AllowFreetext is the legacy name for AllowOther. NormalizeQuestion
	// folds it into AllowOther and clears it.
	AllowFreetext *bool `json:"allow_freetext,omitempty"`
}

// PromptBlock is one technique-tagged section of an assembled prompt.
// Order defines concatenation sequence when the prompt is rendered.
type PromptBlock struct {
	Technique  Technique `json:"technique"`
	Content    string    `json:"content"`
	Annotation string    `json:"annotation,omitempty"`
	Order      int       `json:"order"`
}

// AssembledPrompt is the finished, reusable teaching prompt.
type AssembledPrompt struct {
	Name                      string        `json:"name"`
	Blocks                    []PromptBlock `json:"blocks"`
	Tips                      []string      `json:"tips,omitempty"`
	ModelRecommendation       string        `json:"model_recommendation,omitempty"`
	ModelRecommendationReason string        `json:"model_recommendation_reason,omitempty"`
	SourceType                string        `json:"source_type,omitempty"`
	SuggestedTags             []string      `json:"suggested_tags,omitempty"`
}

// AssembleResult kinds.
const (
	KindPrompt  = "prompt"
	KindAskUser = "ask_user"
)

// AssembleResult is the assembly stage's tagged union: either a finished
// prompt or a request for more clarification. This is the central branch
// point of the interview flow.
type AssembleResult struct {
	Kind      string           `json:"kind"`
	Prompt    *AssembledPrompt `json:"prompt,omitempty"`
	Questions []Question       `json:"questions,omitempty"`
}

// BlockChange change types.
const (
	ChangeModified = "modified"
	ChangeAdded    = "added"
	ChangeRemoved  = "removed"
)

// BlockChange records one difference between a prompt's blocks before and
// after refinement.
type BlockChange struct {
	Technique Technique `json:"technique"`
	Type      string    `json:"type"`
	Reason    string    `json:"reason,omitempty"`
}

// RefinedPrompt is the refinement stage's output. Changes must account for
// every block whose content differs from the input set and for every block
// removed from it.
type RefinedPrompt struct {
	Blocks  []PromptBlock `json:"blocks"`
	Changes []BlockChange `json:"changes"`
	Tips    []string      `json:"tips,omitempty"`
}

// decodeAssembleResult decodes an assembly stage payload, normalizing any
// ask_user questions. Payloads without a recognizable kind predate the
// tagged union and are coerced into a prompt result.
func decodeAssembleResult(raw json.RawMessage) (*AssembleResult, error) {
	var res AssembleResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, err
	}

	switch res.Kind {
	case KindAskUser:
		res.Questions = NormalizeQuestions(res.Questions)
		return &res, nil
	case KindPrompt:
		return &res, nil
	}

	var p AssembledPrompt
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &AssembleResult{Kind: KindPrompt, Prompt: &p}, nil
}
