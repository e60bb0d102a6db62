package storage

import (
	"context"

	"gorm.io/gorm"

	"carevoice/internal/platform/errors"
)

// TurnRepository persists voice turn history.
type TurnRepository interface {
	Save(ctx context.Context, turn *VoiceTurn) error
	ListBySession(ctx context.Context, sessionID string) ([]VoiceTurn, error)
	Recent(ctx context.Context, limit int) ([]VoiceTurn, error)
}

type turnRepository struct {
	db *gorm.DB
}

// NewTurnRepository creates a TurnRepository backed by db.
func NewTurnRepository(db *gorm.DB) TurnRepository {
	return &turnRepository{db: db}
}

func (r *turnRepository) Save(ctx context.Context, turn *VoiceTurn) error {
	if err := r.db.WithContext(ctx).Create(turn).Error; err != nil {
		return errors.Wrap(errors.KindStorage, "turn.save", "failed to save voice turn", err)
	}
	return nil
}

func (r *turnRepository) ListBySession(ctx context.Context, sessionID string) ([]VoiceTurn, error) {
	var turns []VoiceTurn
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at asc, id asc").
		Find(&turns).Error
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "turn.list_by_session", "failed to list voice turns", err)
	}
	return turns, nil
}

func (r *turnRepository) Recent(ctx context.Context, limit int) ([]VoiceTurn, error) {
	if limit <= 0 {
		limit = 50
	}
	var turns []VoiceTurn
	err := r.db.WithContext(ctx).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&turns).Error
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "turn.recent", "failed to list voice turns", err)
	}
	return turns, nil
}
