package service

import (
	"context"
	"fmt"
	"strings"

	"clipstream/internal/domain"
	"clipstream/internal/repository"
)

// CreateVideoInput carries the caller-supplied fields for a new video.
// There is deliberately no owner field: ownership always comes from the
// authenticated session.
type CreateVideoInput struct {
	Title          string
	Description    string
	VideoURL       string
	ThumbnailURL   string
	Controls       *bool
	Transformation domain.Transformation
}

// VideoService coordinates video record operations backed by repositories.
type VideoService interface {
	Create(ctx context.Context, ownerID int64, input CreateVideoInput) (*domain.Video, error)
	Get(ctx context.Context, id int64) (*domain.Video, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Video, error)
	ListAll(ctx context.Context) ([]domain.Video, error)
}

type videoService struct {
	videos repository.VideoRepository
}

func NewVideoService(videos repository.VideoRepository) VideoService {
	return &videoService{videos: videos}
}

func (s *videoService) Create(ctx context.Context, ownerID int64, input CreateVideoInput) (*domain.Video, error) {
	if ownerID <= 0 {
		return nil, fmt.Errorf("%w: owner id is required", domain.ErrValidation)
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if strings.TrimSpace(input.VideoURL) == "" {
		return nil, fmt.Errorf("%w: video URL is required", domain.ErrValidation)
	}

	controls := true
	if input.Controls != nil {
		controls = *input.Controls
	}

	transformation := input.Transformation
	if transformation.Height == 0 {
		transformation.Height = domain.DefaultVideoHeight
	}
	if transformation.Width == 0 {
		transformation.Width = domain.DefaultVideoWidth
	}
	if transformation.Quality < 0 || transformation.Quality > 100 {
		return nil, fmt.Errorf("%w: quality must be between 1 and 100", domain.ErrValidation)
	}

	video := &domain.Video{
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		VideoURL:       strings.TrimSpace(input.VideoURL),
		ThumbnailURL:   strings.TrimSpace(input.ThumbnailURL),
		Controls:       controls,
		Transformation: transformation,
		OwnerID:        ownerID,
	}

	if _, err := s.videos.Create(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *videoService) Get(ctx context.Context, id int64) (*domain.Video, error) {
	video, err := s.videos.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Fetching a clip counts as a view; the bump is best effort.
	if err := s.videos.IncrementViews(ctx, id); err == nil {
		video.ViewsCount++
	}
	return video, nil
}

func (s *videoService) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Video, error) {
	return s.videos.ListByOwner(ctx, ownerID)
}

func (s *videoService) ListAll(ctx context.Context) ([]domain.Video, error) {
	return s.videos.ListAll(ctx)
}
