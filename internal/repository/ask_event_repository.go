package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"answerbridge/internal/model"
)

type AskEventRepository struct {
	db *gorm.DB
}

func NewAskEventRepository(db *gorm.DB) *AskEventRepository {
	return &AskEventRepository{db: db}
}

// Create stores an event. Redelivered events with a known id are ignored.
func (r *AskEventRepository) Create(ctx context.Context, event *model.AskEvent) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event).Error
	if err != nil {
		return fmt.Errorf("create ask event failed: %w", err)
	}
	return nil
}

// ObserveAsk records events directly when no broker sits in between.
func (r *AskEventRepository) ObserveAsk(ctx context.Context, event model.AskEvent) error {
	return r.Create(ctx, &event)
}
