package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clipstream/internal/domain"
	"clipstream/internal/repository"
)

const createVideosTable = `
CREATE TABLE IF NOT EXISTS videos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	video_url TEXT NOT NULL,
	thumbnail_url TEXT NOT NULL DEFAULT '',
	controls INTEGER NOT NULL DEFAULT 1,
	transform_height INTEGER NOT NULL DEFAULT 0,
	transform_width INTEGER NOT NULL DEFAULT 0,
	transform_quality INTEGER NOT NULL DEFAULT 0,
	owner_id INTEGER NOT NULL REFERENCES users(id),
	views_count INTEGER NOT NULL DEFAULT 0,
	likes_count INTEGER NOT NULL DEFAULT 0,
	dislikes_count INTEGER NOT NULL DEFAULT 0,
	saved_count INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

const createVideosOwnerIndex = `
CREATE INDEX IF NOT EXISTS idx_videos_owner ON videos(owner_id, created_at DESC);
`

const selectVideoColumns = `
SELECT id, title, description, video_url, thumbnail_url, controls,
	transform_height, transform_width, transform_quality,
	owner_id, views_count, likes_count, dislikes_count, saved_count,
	created_at, updated_at
FROM videos`

type VideoRepository struct {
	conn *Connector
}

func NewVideoRepository(conn *Connector) repository.VideoRepository {
	return &VideoRepository{conn: conn}
}

func (r *VideoRepository) Init(ctx context.Context) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, createVideosTable); err != nil {
		return fmt.Errorf("create videos table: %w", err)
	}
	if _, err := db.ExecContext(ctx, createVideosOwnerIndex); err != nil {
		return fmt.Errorf("create videos owner index: %w", err)
	}
	return nil
}

func (r *VideoRepository) Create(ctx context.Context, video *domain.Video) (int64, error) {
	db, err := r.conn.DB()
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	video.CreatedAt = now
	video.UpdatedAt = now

	res, err := db.ExecContext(ctx, `
INSERT INTO videos (title, description, video_url, thumbnail_url, controls,
	transform_height, transform_width, transform_quality,
	owner_id, views_count, likes_count, dislikes_count, saved_count,
	created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.Title,
		video.Description,
		video.VideoURL,
		video.ThumbnailURL,
		video.Controls,
		video.Transformation.Height,
		video.Transformation.Width,
		video.Transformation.Quality,
		video.OwnerID,
		video.ViewsCount,
		video.LikesCount,
		video.DislikesCount,
		video.SavedCount,
		video.CreatedAt,
		video.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert video: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("video last insert id: %w", err)
	}
	video.ID = id
	return id, nil
}

func (r *VideoRepository) Get(ctx context.Context, id int64) (*domain.Video, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}
	row := db.QueryRowContext(ctx, selectVideoColumns+` WHERE id = ?`, id)
	return scanVideo(row)
}

func (r *VideoRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Video, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, selectVideoColumns+`
WHERE owner_id = ?
ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list videos by owner: %w", err)
	}
	defer rows.Close()
	return collectVideos(rows)
}

func (r *VideoRepository) ListAll(ctx context.Context) ([]domain.Video, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, selectVideoColumns+`
ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()
	return collectVideos(rows)
}

func (r *VideoRepository) IncrementViews(ctx context.Context, id int64) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `
UPDATE videos SET views_count = views_count + 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

func collectVideos(rows *sql.Rows) ([]domain.Video, error) {
	videos := []domain.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}

func scanVideo(row interface {
	Scan(dest ...any) error
}) (*domain.Video, error) {
	var video domain.Video
	if err := row.Scan(
		&video.ID,
		&video.Title,
		&video.Description,
		&video.VideoURL,
		&video.ThumbnailURL,
		&video.Controls,
		&video.Transformation.Height,
		&video.Transformation.Width,
		&video.Transformation.Quality,
		&video.OwnerID,
		&video.ViewsCount,
		&video.LikesCount,
		&video.DislikesCount,
		&video.SavedCount,
		&video.CreatedAt,
		&video.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVideoNotFound
		}
		return nil, fmt.Errorf("scan video: %w", err)
	}
	return &video, nil
}
