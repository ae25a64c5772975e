package providers

import (
	"context"
	"log/slog"
	"sync"
)

// Registry holds the active completion client and its model chain, and
// supports hot reload when configuration changes. It implements
// CompletionClient by delegating to the current client, so long-lived
// holders (the engine) pick up a reload transparently.
type Registry struct {
	mu     sync.RWMutex
	client CompletionClient
	models ModelChain
	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{logger: slog.Default()}
}

// SetLogger sets the registry logger.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if logger != nil {
		r.logger = logger
	}
}

// Reload replaces the active client with one built from cfg.
func (r *Registry) Reload(cfg OpenRouterConfig) {
	client := NewOpenRouterClient(cfg)
	r.mu.Lock()
	r.client = client
	r.models = cfg.Models
	r.mu.Unlock()
	r.logger.Info("completion client reloaded",
		"primary", cfg.Models.Primary,
		"fallback", cfg.Models.Fallback)
}

// Client returns the current completion client, nil before the first Reload.
func (r *Registry) Client() CompletionClient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.client
}

// Models returns the current model chain.
func (r *Registry) Models() ModelChain {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.models
}

// Complete delegates to the current client.
func (r *Registry) Complete(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	client := r.Client()
	if client == nil {
		err := newError(ErrKindConfig, "AI provider is not configured.")
		return &ChatResult{Provider: OpenRouterName, ErrorMessage: err.Message}, err
	}
	if req.Models.Primary == "" {
		req.Models = r.Models()
	}
	return client.Complete(ctx, req)
}

// Name identifies the active client.
func (r *Registry) Name() string {
	if client := r.Client(); client != nil {
		return client.Name()
	}
	return "unconfigured"
}

// Verify interface
var _ CompletionClient = (*Registry)(nil)
