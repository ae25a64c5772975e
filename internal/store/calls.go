package store

import (
	"context"
	"time"

	"github.com/promptomatic/promptomatic/internal/llmcall"
)

// RecordCall persists one LLM call record. Recording is best effort: a
// storage failure is logged, never propagated into the pipeline.
func (s *Store) RecordCall(ctx context.Context, call *llmcall.Call) {
	if call == nil {
		return
	}
	success := 0
	if call.Success {
		success = 1
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO llm_calls (id, timestamp, latency_ms, stage, prompt_hash, provider, model, temperature, input_tokens, output_tokens, request_id, attempts, success, error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		call.ID, call.Timestamp.UTC().Format(time.RFC3339Nano), call.LatencyMs,
		call.Stage, call.PromptHash, call.Provider, call.Model, call.Temperature,
		call.InputTokens, call.OutputTokens, call.RequestID, call.Attempts,
		success, call.Error)
	if err != nil {
		s.logger.Warn("failed to record llm call", "stage", call.Stage, "error", err)
	}
}

// ListCalls returns the most recent call records, newest first.
func (s *Store) ListCalls(ctx context.Context, limit int) ([]llmcall.Call, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, timestamp, latency_ms, stage, prompt_hash, provider, model, temperature, input_tokens, output_tokens, request_id, attempts, success, error
FROM llm_calls ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []llmcall.Call{}
	for rows.Next() {
		var c llmcall.Call
		var ts string
		var success int
		if err := rows.Scan(&c.ID, &ts, &c.LatencyMs, &c.Stage, &c.PromptHash,
			&c.Provider, &c.Model, &c.Temperature, &c.InputTokens, &c.OutputTokens,
			&c.RequestID, &c.Attempts, &success, &c.Error); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			c.Timestamp = t
		}
		c.Success = success == 1
		out = append(out, c)
	}
	return out, rows.Err()
}

// Verify interface
var _ llmcall.Recorder = (*Store)(nil)
