package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	OpenRouterName    = "openrouter"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// DefaultPrimaryModel is fast and cheap; most interview turns use it.
	DefaultPrimaryModel = "google/gemini-2.0-flash-001"

	// DefaultFallbackModel picks up turns the primary flubbed.
	DefaultFallbackModel = "anthropic/claude-sonnet-4"
)

// OpenRouterConfig holds configuration for the OpenRouter client.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Models  ModelChain
	// Timeout bounds each HTTP attempt. ReasoningTimeout applies instead
	// when the model is reasoning-capable, which needs a materially larger
	// budget before first output.
	Timeout          time.Duration
	ReasoningTimeout time.Duration
}

// OpenRouterClient implements CompletionClient against the OpenRouter API.
// One Complete call makes at most four HTTP attempts: primary with JSON mode,
// primary without, fallback with, fallback without.
type OpenRouterClient struct {
	apiKey           string
	baseURL          string
	models           ModelChain
	timeout          time.Duration
	reasoningTimeout time.Duration
	client           *http.Client
}

// NewOpenRouterClient creates a new OpenRouter client.
func NewOpenRouterClient(cfg OpenRouterConfig) *OpenRouterClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OpenRouterBaseURL
	}
	if cfg.Models.Primary == "" {
		cfg.Models.Primary = DefaultPrimaryModel
	}
	if cfg.Models.Fallback == "" {
		cfg.Models.Fallback = DefaultFallbackModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ReasoningTimeout == 0 {
		cfg.ReasoningTimeout = 120 * time.Second
	}

	return &OpenRouterClient{
		apiKey:           cfg.APIKey,
		baseURL:          cfg.BaseURL,
		models:           cfg.Models,
		timeout:          cfg.Timeout,
		reasoningTimeout: cfg.ReasoningTimeout,
		// Timeouts are enforced per attempt via context, not here.
		client: &http.Client{},
	}
}

// Name returns the client identifier.
func (c *OpenRouterClient) Name() string {
	return OpenRouterName
}

// Complete sends a chat completion request, walking the model chain.
// Retryable-class failures (timeout, empty, truncated, malformed JSON, 5xx)
// advance to the fallback model; everything else aborts the chain.
func (c *OpenRouterClient) Complete(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	result := &ChatResult{
		RequestID: requestID,
		Provider:  OpenRouterName,
	}

	if strings.TrimSpace(c.apiKey) == "" {
		err := newError(ErrKindConfig, "AI provider API key is not configured.")
		result.ErrorMessage = err.Message
		result.ExecutionTime = time.Since(start)
		return result, err
	}

	chain := req.Models
	if chain.Primary == "" {
		chain = c.models
	}

	var lastErr error
	for _, model := range chain.Models() {
		att, err := c.attemptModel(ctx, model, req)
		result.Attempts += att.attempts
		if err == nil {
			result.Success = true
			result.Content = att.content
			result.Parsed = att.parsed
			result.ModelUsed = model
			result.PromptTokens = att.usage.PromptTokens
			result.CompletionTokens = att.usage.CompletionTokens
			result.TotalTokens = att.usage.TotalTokens
			result.ExecutionTime = time.Since(start)
			return result, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			break
		}
	}

	result.ErrorMessage = lastErr.Error()
	result.ExecutionTime = time.Since(start)
	return result, lastErr
}

// attempt is the outcome of one model's attempt (including a possible
// JSON-mode downgrade, hence its own attempt count).
type attempt struct {
	parsed   json.RawMessage
	content  string
	usage    tokenUsage
	attempts int
}

// attemptModel issues one completion attempt against a single model,
// downgrading out of JSON mode once if the provider rejects it.
func (c *OpenRouterClient) attemptModel(ctx context.Context, model string, req *ChatRequest) (attempt, error) {
	att := attempt{attempts: 1}
	status, body, err := c.doPost(ctx, model, req, true)
	if err != nil {
		return att, err
	}

	if jsonModeRejected(status, body) {
		att.attempts++
		status, body, err = c.doPost(ctx, model, req, false)
		if err != nil {
			return att, err
		}
	}

	if status < 200 || status >= 300 {
		return att, classifyStatus(status, string(body))
	}

	content, finishReason, usage, terr := extractContent(body)
	if terr != nil {
		return att, terr
	}
	att.content = content
	att.usage = usage
	if strings.TrimSpace(content) == "" {
		if finishReason == "length" {
			return att, newError(ErrKindTruncated,
				"The AI ran out of room before answering. Please try again.")
		}
		return att, newError(ErrKindEmpty, "Empty response from AI.")
	}

	parsed, perr := ParseObject(content)
	if perr != nil {
		return att, perr
	}
	att.parsed = parsed
	return att, nil
}

// doPost makes one HTTP POST to /chat/completions, bounded by the
// per-model timeout. Returns the raw status and body; transport failures
// are classified here.
func (c *OpenRouterClient) doPost(ctx context.Context, model string, req *ChatRequest, jsonMode bool) (int, []byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeoutFor(model))
	defer cancel()

	orReq := openRouterRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if jsonMode {
		orReq.ResponseFormat = &openRouterResponseFormat{Type: "json_object"}
	}

	bodyBytes, err := json.Marshal(orReq)
	if err != nil {
		return 0, nil, newError(ErrKindRequest, "AI request failed: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return 0, nil, newError(ErrKindRequest, "AI request failed: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("HTTP-Referer", "https://github.com/promptomatic/promptomatic")
	httpReq.Header.Set("X-Title", "Promptomatic")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() != nil {
			return 0, nil, newError(ErrKindTimeout, "AI request timed out. Please try again.")
		}
		return 0, nil, newError(ErrKindTransient, "The AI service is temporarily unavailable. Please try again.")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, newError(ErrKindTransient, "The AI service is temporarily unavailable. Please try again.")
	}
	return resp.StatusCode, respBody, nil
}

// timeoutFor returns the attempt budget for a model.
func (c *OpenRouterClient) timeoutFor(model string) time.Duration {
	if isReasoningModel(model) {
		return c.reasoningTimeout
	}
	return c.timeout
}

// isReasoningModel recognizes models that think before emitting tokens.
func isReasoningModel(model string) bool {
	m := strings.ToLower(model)
	return strings.Contains(m, "thinking") ||
		strings.Contains(m, "reasoning") ||
		strings.HasPrefix(m, "openai/o1") ||
		strings.HasPrefix(m, "openai/o3")
}

// jsonModeRejected reports whether a 400/422 body complains about the
// structured response mode, in which case the same model is retried without it.
func jsonModeRejected(status int, body []byte) bool {
	if status != 400 && status != 422 {
		return false
	}
	b := strings.ToLower(string(body))
	return strings.Contains(b, "response_format") ||
		strings.Contains(b, "response format") ||
		strings.Contains(b, "json_object") ||
		strings.Contains(b, "json-object") ||
		strings.Contains(b, "json_schema") ||
		strings.Contains(b, "json schema")
}

// tokenUsage mirrors the usage block of a completion response.
type tokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// extractContent pulls the assistant text and finish reason out of a 2xx body.
func extractContent(body []byte) (content, finishReason string, usage tokenUsage, err error) {
	var orResp openRouterResponse
	if uerr := json.Unmarshal(body, &orResp); uerr != nil {
		return "", "", usage, newError(ErrKindTransient, "The AI service returned an unreadable response. Please try again.")
	}
	usage = orResp.Usage
	if len(orResp.Choices) == 0 {
		return "", "", usage, newError(ErrKindEmpty, "Empty response from AI.")
	}
	choice := orResp.Choices[0]
	return choice.Message.Content, choice.FinishReason, usage, nil
}

// OpenRouter API types

type openRouterRequest struct {
	Model          string                    `json:"model"`
	Messages       []Message                 `json:"messages"`
	Temperature    float64                   `json:"temperature,omitempty"`
	MaxTokens      int                       `json:"max_tokens,omitempty"`
	ResponseFormat *openRouterResponseFormat `json:"response_format,omitempty"`
}

type openRouterResponseFormat struct {
	Type string `json:"type"`
}

type openRouterResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage tokenUsage `json:"usage"`
}

// Verify interface
var _ CompletionClient = (*OpenRouterClient)(nil)
