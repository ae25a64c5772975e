package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is a CompletionClient for testing. Responses are scripted:
// each Complete call consumes the next queued response (or error); when the
// queue is empty the static ResponseJSON is returned.
type MockClient struct {
	// Static behavior when no scripted responses remain.
	Latency      time.Duration
	ShouldFail   bool
	ResponseJSON json.RawMessage

	mu     sync.Mutex
	queue  []mockResponse
	failed atomic.Int64

	requestCount atomic.Int64
}

type mockResponse struct {
	parsed json.RawMessage
	err    error
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		ResponseJSON: json.RawMessage(`{}`),
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// QueueJSON appends a successful scripted response.
func (c *MockClient) QueueJSON(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, mockResponse{parsed: json.RawMessage(raw)})
}

// QueueError appends a scripted failure.
func (c *MockClient) QueueError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, mockResponse{err: err})
}

// Complete returns the next scripted response.
func (c *MockClient) Complete(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	count := c.requestCount.Add(1)

	result := &ChatResult{
		RequestID: fmt.Sprintf("mock-%d", count),
		Provider:  MockClientName,
		ModelUsed: req.Models.Primary,
		Attempts:  1,
	}

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			result.ErrorMessage = ctx.Err().Error()
			return result, ctx.Err()
		}
	}

	c.mu.Lock()
	var next *mockResponse
	if len(c.queue) > 0 {
		next = &c.queue[0]
		c.queue = c.queue[1:]
	}
	c.mu.Unlock()

	if next != nil {
		if next.err != nil {
			result.ErrorMessage = next.err.Error()
			return result, next.err
		}
		result.Success = true
		result.Parsed = next.parsed
		result.Content = string(next.parsed)
		return result, nil
	}

	if c.ShouldFail {
		err := newError(ErrKindTransient, "mock client configured to fail")
		result.ErrorMessage = err.Message
		return result, err
	}

	result.Success = true
	result.Parsed = c.ResponseJSON
	result.Content = string(c.ResponseJSON)
	return result, nil
}

// RequestCount returns the number of Complete calls made.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Reset clears the script and the request counter.
func (c *MockClient) Reset() {
	c.mu.Lock()
	c.queue = nil
	c.mu.Unlock()
	c.requestCount.Store(0)
}

// Verify interface
var _ CompletionClient = (*MockClient)(nil)
