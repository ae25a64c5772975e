package providers

import (
	"context"
	"encoding/json"
	"time"
)

// CompletionClient is the interface for single-turn chat completion requests.
// Implementations own timeout enforcement, the primary/fallback model chain,
// and tolerant JSON extraction; they know nothing about prompt semantics.
type CompletionClient interface {
	// Complete sends a chat completion request and returns the parsed
	// JSON object from the assistant's reply.
	Complete(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// Name returns the client identifier (e.g., "openrouter").
	Name() string
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ModelChain selects which models an attempt may use, in order.
type ModelChain struct {
	Primary  string
	Fallback string // empty or equal to Primary disables fallback
}

// Models returns the chain as an ordered, deduplicated slice.
func (mc ModelChain) Models() []string {
	if mc.Fallback == "" || mc.Fallback == mc.Primary {
		return []string{mc.Primary}
	}
	return []string{mc.Primary, mc.Fallback}
}

// ChatRequest is a request to the completion client.
type ChatRequest struct {
	// Messages are sent as-is. Constructed fresh per call.
	Messages []Message `json:"messages"`

	// Models overrides the client's configured chain when Primary is set.
	Models ModelChain `json:"-"`

	// Generation parameters.
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// Request tracking.
	RequestID string `json:"-"`
}

// ChatResult is the complete response from a completion call.
type ChatResult struct {
	// Content is the raw assistant text; Parsed is the recovered JSON object.
	Content string          `json:"content"`
	Parsed  json.RawMessage `json:"parsed,omitempty"`

	// Token counts as reported by the provider.
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Provider info.
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking. Attempts counts HTTP calls across the whole chain,
	// including JSON-mode downgrades.
	RequestID     string        `json:"request_id"`
	Attempts      int           `json:"attempts"`
	ExecutionTime time.Duration `json:"execution_time"`

	// Success/error. On failure the classified error is also returned.
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Unmarshal decodes the parsed JSON object into v.
func (r *ChatResult) Unmarshal(v any) error {
	return json.Unmarshal(r.Parsed, v)
}
