package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/promptomatic/promptomatic/internal/engine"
	"github.com/promptomatic/promptomatic/internal/types"
)

// ErrNothingToUpdate is returned when a partial update carries no fields.
var ErrNothingToUpdate = errors.New("nothing to update")

// Prompt is a stored, reusable teaching prompt.
type Prompt struct {
	ID                        string               `json:"id"`
	Name                      string               `json:"name"`
	Language                  types.Language       `json:"language"`
	Tags                      []string             `json:"tags"`
	Blocks                    []engine.PromptBlock `json:"blocks"`
	ModelRecommendation       string               `json:"model_recommendation,omitempty"`
	ModelRecommendationReason string               `json:"model_recommendation_reason,omitempty"`
	SourceType                string               `json:"source_type"`
	CreatedAt                 time.Time            `json:"created_at"`
	UpdatedAt                 time.Time            `json:"updated_at"`
}

// CreatePrompt is the input for CreatePrompt. Blocks are required.
type CreatePrompt struct {
	Name                      string               `json:"name"`
	Language                  types.Language       `json:"language"`
	Tags                      []string             `json:"tags"`
	Blocks                    []engine.PromptBlock `json:"blocks"`
	ModelRecommendation       string               `json:"model_recommendation"`
	ModelRecommendationReason string               `json:"model_recommendation_reason"`
	SourceType                string               `json:"source_type"`
}

// UpdatePrompt is a partial update: only non-nil fields change.
type UpdatePrompt struct {
	Name   *string               `json:"name"`
	Tags   *[]string             `json:"tags"`
	Blocks *[]engine.PromptBlock `json:"blocks"`
}

// CreatePrompt stores a new prompt.
func (s *Store) CreatePrompt(ctx context.Context, in CreatePrompt) (*Prompt, error) {
	if len(in.Blocks) == 0 {
		return nil, errors.New("blocks are required")
	}
	if in.Language == "" {
		in.Language = types.LanguageFrench
	}
	if in.SourceType == "" {
		in.SourceType = "from_scratch"
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}

	tagsJSON, err := json.Marshal(in.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	blocksJSON, err := json.Marshal(in.Blocks)
	if err != nil {
		return nil, fmt.Errorf("encode blocks: %w", err)
	}

	p := &Prompt{
		ID:                        uuid.New().String(),
		Name:                      in.Name,
		Language:                  in.Language,
		Tags:                      in.Tags,
		Blocks:                    in.Blocks,
		ModelRecommendation:       in.ModelRecommendation,
		ModelRecommendationReason: in.ModelRecommendationReason,
		SourceType:                in.SourceType,
		CreatedAt:                 time.Now().UTC(),
	}
	p.UpdatedAt = p.CreatedAt

	_, err = s.db.ExecContext(ctx, `
INSERT INTO prompts (id, name, language, tags, blocks, model_recommendation, model_recommendation_reason, source_type, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(p.Language), string(tagsJSON), string(blocksJSON),
		p.ModelRecommendation, p.ModelRecommendationReason, p.SourceType,
		p.CreatedAt.Format(time.RFC3339Nano), p.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert prompt: %w", err)
	}
	return p, nil
}

// ListPrompts returns all prompts, most recently updated first.
func (s *Store) ListPrompts(ctx context.Context) ([]Prompt, error) {
	rows, err := s.db.QueryContext(ctx, selectPrompt+` ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Prompt{}
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// GetPrompt fetches one prompt. The bool reports whether it exists.
func (s *Store) GetPrompt(ctx context.Context, id string) (*Prompt, bool, error) {
	row := s.db.QueryRowContext(ctx, selectPrompt+` WHERE id = ?`, id)
	p, err := scanPrompt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return p, true, nil
}

// UpdatePrompt applies a partial update and returns the updated prompt.
// The bool reports whether the prompt exists.
func (s *Store) UpdatePrompt(ctx context.Context, id string, in UpdatePrompt) (*Prompt, bool, error) {
	sets := []string{}
	args := []any{}

	if in.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *in.Name)
	}
	if in.Tags != nil {
		tagsJSON, err := json.Marshal(*in.Tags)
		if err != nil {
			return nil, false, fmt.Errorf("encode tags: %w", err)
		}
		sets = append(sets, "tags = ?")
		args = append(args, string(tagsJSON))
	}
	if in.Blocks != nil {
		blocksJSON, err := json.Marshal(*in.Blocks)
		if err != nil {
			return nil, false, fmt.Errorf("encode blocks: %w", err)
		}
		sets = append(sets, "blocks = ?")
		args = append(args, string(blocksJSON))
	}
	if len(sets) == 0 {
		return nil, false, ErrNothingToUpdate
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339Nano), id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE prompts SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, false, fmt.Errorf("update prompt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, false, nil
	}
	return s.GetPrompt(ctx, id)
}

// DeletePrompt removes a prompt. The bool reports whether it existed.
func (s *Store) DeletePrompt(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM prompts WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

const selectPrompt = `SELECT id, name, language, tags, blocks, model_recommendation, model_recommendation_reason, source_type, created_at, updated_at FROM prompts`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrompt(row rowScanner) (*Prompt, error) {
	var p Prompt
	var lang, tags, blocks, createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Name, &lang, &tags, &blocks,
		&p.ModelRecommendation, &p.ModelRecommendationReason, &p.SourceType,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.Language = types.Language(lang)
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if err := json.Unmarshal([]byte(blocks), &p.Blocks); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		p.UpdatedAt = t
	}
	return &p, nil
}
