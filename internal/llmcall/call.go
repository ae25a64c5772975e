// Package llmcall provides LLM call recording for traceability. Every
// upstream completion attempt is recorded with its stage, prompt version,
// and metrics, including the retry that follows a failed first attempt.
package llmcall

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/promptomatic/promptomatic/internal/providers"
)

// Call represents one recorded completion call.
type Call struct {
	// Unique identifier
	ID string `json:"id"`

	// Timing
	Timestamp time.Time `json:"timestamp"`
	LatencyMs int       `json:"latency_ms"`

	// Stage traceability
	Stage      string `json:"stage"`       // e.g. "stages.intent.system"
	PromptHash string `json:"prompt_hash"` // hash of the system template used

	// Model info
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`

	// Token usage
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	// Chain behavior
	RequestID string `json:"request_id"`
	Attempts  int    `json:"attempts"`

	// Status
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RecordOptions provides context for recording a completion call.
type RecordOptions struct {
	Stage       string
	PromptHash  string
	Temperature float64
}

// FromChatResult creates a Call from a ChatResult.
// Returns nil if result is nil.
func FromChatResult(result *providers.ChatResult, opts RecordOptions) *Call {
	if result == nil {
		return nil
	}

	return &Call{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		LatencyMs:    int(result.ExecutionTime.Milliseconds()),
		Stage:        opts.Stage,
		PromptHash:   opts.PromptHash,
		Provider:     result.Provider,
		Model:        result.ModelUsed,
		Temperature:  opts.Temperature,
		InputTokens:  result.PromptTokens,
		OutputTokens: result.CompletionTokens,
		RequestID:    result.RequestID,
		Attempts:     result.Attempts,
		Success:      result.Success,
		Error:        result.ErrorMessage,
	}
}

// Recorder persists calls. Recording is best-effort: implementations log
// failures instead of propagating them into the pipeline.
type Recorder interface {
	RecordCall(ctx context.Context, call *Call)
}
