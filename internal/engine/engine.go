// Package engine implements the interview turn executors: intent analysis,
// follow-up question generation, prompt assembly, and refinement. Each
// executor builds one system+user message pair, calls the completion client,
// and on any failure retries exactly once at a lower temperature before
// surfacing the error verbatim.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/promptomatic/promptomatic/internal/llmcall"
	"github.com/promptomatic/promptomatic/internal/prompts/assembly"
	"github.com/promptomatic/promptomatic/internal/prompts/intent"
	"github.com/promptomatic/promptomatic/internal/prompts/questions"
	"github.com/promptomatic/promptomatic/internal/prompts/refine"
	"github.com/promptomatic/promptomatic/internal/providers"
	"github.com/promptomatic/promptomatic/internal/types"
)

// Stage temperatures. The second value applies to the single retry.
const (
	analyzeTemp       = 0.3
	analyzeRetryTemp  = 0.2
	questionTemp      = 0.6
	questionRetryTemp = 0.4
	assembleTemp      = 0.5
	assembleRetryTemp = 0.4
	refineTemp        = 0.4
	refineRetryTemp   = 0.3
)

// Long-form stages need room to write full prompt blocks.
const longFormMaxTokens = 4096

// minTextLen is the shortest free-text request worth analyzing.
const minTextLen = 10

// Engine runs the four interview stages against a completion client.
// Engines are stateless across calls; all conversation state lives with
// the caller.
type Engine struct {
	client   providers.CompletionClient
	models   providers.ModelChain
	recorder llmcall.Recorder
	logger   *slog.Logger
}

// Config holds engine dependencies. Recorder may be nil to disable call
// recording.
type Config struct {
	Client   providers.CompletionClient
	Models   providers.ModelChain
	Recorder llmcall.Recorder
	Logger   *slog.Logger
}

// New creates an engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		client:   cfg.Client,
		models:   cfg.Models,
		recorder: cfg.Recorder,
		logger:   logger.With("component", "engine"),
	}
}

// AnalyzeIntent parses a teacher's free-text request into a structured
// intent. Text shorter than a meaningful minimum is rejected with a
// ValidationError before any upstream call.
func (e *Engine) AnalyzeIntent(ctx context.Context, text string, lang types.Language, profile *types.TeacherProfile) (*IntentAnalysis, error) {
	text = strings.TrimSpace(text)
	if len(text) < minTextLen {
		return nil, newValidationError("Please describe what you need in a bit more detail.")
	}

	raw, err := e.runStage(ctx, stage{
		name:       "analyze",
		promptKey:  intent.SystemPromptKey,
		promptHash: intent.SystemPromptHash(),
		system:     intent.SystemPrompt(lang, profile),
		user:       intent.UserPrompt(text),
		temps:      [2]float64{analyzeTemp, analyzeRetryTemp},
		schema:     intentSchema,
	})
	if err != nil {
		return nil, err
	}

	var out IntentAnalysis
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode intent analysis: %w", err)
	}
	return &out, nil
}

// GenerateQuestions produces clarifying questions for the intent's missing
// fields. An intent with no missing fields short-circuits to an empty set
// without any upstream call.
func (e *Engine) GenerateQuestions(ctx context.Context, analysis *IntentAnalysis, lang types.Language, profile *types.TeacherProfile) ([]Question, error) {
	if analysis == nil {
		return nil, newValidationError("Intent analysis is required.")
	}
	if len(analysis.MissingFields) == 0 {
		return []Question{}, nil
	}

	intentJSON, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode intent analysis: %w", err)
	}

	raw, err := e.runStage(ctx, stage{
		name:       "questions",
		promptKey:  questions.SystemPromptKey,
		promptHash: questions.SystemPromptHash(),
		system:     questions.SystemPrompt(lang, profile),
		user:       questions.UserPrompt(string(intentJSON), analysis.MissingFields),
		temps:      [2]float64{questionTemp, questionRetryTemp},
		schema:     questionsSchema,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Questions []Question `json:"questions"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return NormalizeQuestions(payload.Questions), nil
}

// Assemble builds the final prompt from the original request, the intent,
// and the collected answers. The result may instead ask for another round
// of clarification; callers loop on that branch.
func (e *Engine) Assemble(ctx context.Context, analysis *IntentAnalysis, answers map[string]string, originalText string, lang types.Language, profile *types.TeacherProfile) (*AssembleResult, error) {
	if analysis == nil || strings.TrimSpace(originalText) == "" {
		return nil, newValidationError("Intent and original text are required.")
	}
	if answers == nil {
		answers = map[string]string{}
	}

	intentJSON, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode intent analysis: %w", err)
	}
	answersJSON, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}

	raw, err := e.runStage(ctx, stage{
		name:       "assemble",
		promptKey:  assembly.SystemPromptKey,
		promptHash: assembly.SystemPromptHash(),
		system:     assembly.SystemPrompt(lang, profile),
		user:       assembly.UserPrompt(originalText, string(intentJSON), string(answersJSON)),
		temps:      [2]float64{assembleTemp, assembleRetryTemp},
		maxTokens:  longFormMaxTokens,
		schema:     assemblySchema,
	})
	if err != nil {
		return nil, err
	}

	res, err := decodeAssembleResult(raw)
	if err != nil {
		return nil, fmt.Errorf("decode assemble result: %w", err)
	}
	return res, nil
}

// Refine revises a stored prompt's blocks to address a reported issue.
// Blocks not needing change come back byte-identical; every difference is
// accounted for in the result's change list.
func (e *Engine) Refine(ctx context.Context, blocks []PromptBlock, issueType, description, outputSample string, lang types.Language, profile *types.TeacherProfile) (*RefinedPrompt, error) {
	if len(blocks) == 0 || strings.TrimSpace(issueType) == "" {
		return nil, newValidationError("Prompt blocks and issue type are required.")
	}

	blocksJSON, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode prompt blocks: %w", err)
	}

	raw, err := e.runStage(ctx, stage{
		name:       "refine",
		promptKey:  refine.SystemPromptKey,
		promptHash: refine.SystemPromptHash(),
		system:     refine.SystemPrompt(lang, profile),
		user:       refine.UserPrompt(string(blocksJSON), issueType, description, outputSample),
		temps:      [2]float64{refineTemp, refineRetryTemp},
		maxTokens:  longFormMaxTokens,
		schema:     refineSchema,
	})
	if err != nil {
		return nil, err
	}

	var out RefinedPrompt
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode refined prompt: %w", err)
	}
	return &out, nil
}

// stage bundles everything one completion call needs.
type stage struct {
	name       string
	promptKey  string
	promptHash string
	system     string
	user       string
	temps      [2]float64
	maxTokens  int
	schema     *jsonschema.Schema
}

// runStage makes the stage's completion call with the shared failure policy:
// exactly one retry at the lower temperature, same messages, same model
// chain, then the error is surfaced verbatim.
func (e *Engine) runStage(ctx context.Context, s stage) (json.RawMessage, error) {
	messages := []providers.Message{
		{Role: "system", Content: s.system},
		{Role: "user", Content: s.user},
	}

	var raw json.RawMessage
	attempts := 0
	err := retry.Do(
		func() error {
			temp := s.temps[0]
			if attempts > 0 {
				temp = s.temps[1]
			}
			attempts++

			result, err := e.client.Complete(ctx, &providers.ChatRequest{
				Messages:    messages,
				Models:      e.models,
				Temperature: temp,
				MaxTokens:   s.maxTokens,
				RequestID:   uuid.New().String(),
			})
			e.record(ctx, result, s, temp)
			if err != nil {
				return err
			}
			if err := validateShape(s.schema, result.Parsed); err != nil {
				return err
			}
			raw = result.Parsed
			return nil
		},
		retry.Attempts(2),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			e.logger.Warn("stage failed, retrying at lower temperature",
				"stage", s.name,
				"error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// record persists one call's metadata. Best effort.
func (e *Engine) record(ctx context.Context, result *providers.ChatResult, s stage, temp float64) {
	if e.recorder == nil || result == nil {
		return
	}
	e.recorder.RecordCall(ctx, llmcall.FromChatResult(result, llmcall.RecordOptions{
		Stage:       s.promptKey,
		PromptHash:  s.promptHash,
		Temperature: temp,
	}))
}
