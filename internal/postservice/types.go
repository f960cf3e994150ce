package postservice

import (
	"database/sql"
	"time"

	"github.com/mwynn/toolgrid/internal/common"
	"github.com/mwynn/toolgrid/internal/editor"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Post is one blog post. Content holds the block document exactly as the
// editing surface produced it; Slug and ReadTime are derived at write
// time so reads stay cheap.
type Post struct {
	ID               int             `json:"id"`
	Title            string          `json:"title"`
	Slug             string          `json:"slug"`
	Excerpt          string          `json:"excerpt,omitempty"`
	Content          editor.Document `json:"content"`
	AuthorID         string          `json:"author_id"`
	Status           Status          `json:"status"`
	Category         string          `json:"category,omitempty"`
	FeaturedImageURL string          `json:"featured_image_url,omitempty"`
	ReadTime         int             `json:"read_time"`
	SEOTitle         string          `json:"seo_title,omitempty"`
	SEODescription   string          `json:"seo_description,omitempty"`
	PublishedAt      *time.Time      `json:"published_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

type PostModel struct {
	db *sql.DB
}

type PostService struct {
	m  *PostModel
	c  *common.Cache
	mb common.MessageProducer
}
