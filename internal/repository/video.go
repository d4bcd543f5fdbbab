package repository

import (
	"context"

	"clipstream/internal/domain"
)

// VideoRepository exposes persistence operations for Video records.
type VideoRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, video *domain.Video) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Video, error)
	// ListByOwner returns the owner's videos ordered newest first.
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Video, error)
	// ListAll returns every video ordered newest first.
	ListAll(ctx context.Context) ([]domain.Video, error)
	IncrementViews(ctx context.Context, id int64) error
}
