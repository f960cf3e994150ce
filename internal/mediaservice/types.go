package mediaservice

import (
	"context"
	"database/sql"
	"time"
)

// Image is the stored metadata for one uploaded blog image. The binary
// itself lives in the blob store; only its public URL is kept here.
type Image struct {
	ID          int       `json:"id"`
	PostID      *int      `json:"post_id,omitempty"`
	Filename    string    `json:"filename"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int       `json:"size"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	CreatedAt   time.Time `json:"created_at"`
}

// BlobStore persists image bytes and returns a public URL for them.
type BlobStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

type ImageModel struct {
	db *sql.DB
}

type MediaService struct {
	m    *ImageModel
	blob BlobStore
}
