package domain

import "time"

// Default display transformation for uploaded clips (portrait).
const (
	DefaultVideoHeight = 1920
	DefaultVideoWidth  = 1080
)

// Transformation describes how the CDN should render a clip.
// Quality is 1-100; zero means "let the CDN decide".
type Transformation struct {
	Height  int
	Width   int
	Quality int
}

// Video is a piece of uploaded content. OwnerID is set at creation from
// the authenticated session and never changes afterwards.
type Video struct {
	ID             int64
	Title          string
	Description    string
	VideoURL       string
	ThumbnailURL   string
	Controls       bool
	Transformation Transformation
	OwnerID        int64
	ViewsCount     int64
	LikesCount     int64
	DislikesCount  int64
	SavedCount     int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
