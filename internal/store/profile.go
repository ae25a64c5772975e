package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/promptomatic/promptomatic/internal/types"
)

// ProfilePatch merges into the stored profile: only non-nil fields overwrite.
type ProfilePatch struct {
	LanguagesTaught *[]string `json:"languages_taught"`
	TypicalLevels   *[]string `json:"typical_levels"`
	TypicalAudience *string   `json:"typical_audience"`
	TypicalDuration *string   `json:"typical_duration"`
	TeachingContext *string   `json:"teaching_context"`
	SetupCompleted  *bool     `json:"setup_completed"`
}

// GetProfile returns the stored teacher profile, or an empty one if none
// has been saved yet.
func (s *Store) GetProfile(ctx context.Context) (*types.TeacherProfile, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM profile WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return emptyProfile(), nil
	}
	if err != nil {
		return nil, err
	}

	p := emptyProfile()
	if err := json.Unmarshal([]byte(data), p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}

// UpdateProfile merges the patch into the stored profile and returns the
// result. Fields absent from the patch keep their stored value.
func (s *Store) UpdateProfile(ctx context.Context, patch ProfilePatch) (*types.TeacherProfile, error) {
	p, err := s.GetProfile(ctx)
	if err != nil {
		return nil, err
	}

	if patch.LanguagesTaught != nil {
		p.LanguagesTaught = *patch.LanguagesTaught
	}
	if patch.TypicalLevels != nil {
		p.TypicalLevels = *patch.TypicalLevels
	}
	if patch.TypicalAudience != nil {
		p.TypicalAudience = *patch.TypicalAudience
	}
	if patch.TypicalDuration != nil {
		p.TypicalDuration = *patch.TypicalDuration
	}
	if patch.TeachingContext != nil {
		p.TeachingContext = *patch.TeachingContext
	}
	if patch.SetupCompleted != nil {
		p.SetupCompleted = *patch.SetupCompleted
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO profile (id, data, updated_at) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

func emptyProfile() *types.TeacherProfile {
	return &types.TeacherProfile{
		LanguagesTaught: []string{},
		TypicalLevels:   []string{},
	}
}
