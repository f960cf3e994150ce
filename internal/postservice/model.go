package postservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/mwynn/toolgrid/internal/editor"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateSlug  = errors.New("a post with this slug already exists")
)

func newPostModel(db *sql.DB) *PostModel {
	return &PostModel{db: db}
}

// UniqueViolation is a helper function to check if the error is a unique
// constraint error on the named constraint.
func UniqueViolation(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

func marshalContent(doc editor.Document) ([]byte, error) {
	if doc.Blocks == nil {
		doc.Blocks = []editor.Block{}
	}
	return json.Marshal(doc)
}

func scanContent(raw []byte, doc *editor.Document) {
	// Content is stored opaquely; a row with malformed content still
	// reads back as an empty document.
	if err := json.Unmarshal(raw, doc); err != nil {
		*doc = editor.Document{Blocks: []editor.Block{}}
	}
}

const postColumns = `id, title, slug, excerpt, content, author_id, status, category, featured_image_url, read_time, seo_title, seo_description, published_at, created_at, updated_at, version`

func scanPost(row interface{ Scan(dest ...any) error }) (*Post, error) {
	var (
		p       Post
		content []byte
	)

	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &content, &p.AuthorID, &p.Status, &p.Category, &p.FeaturedImageURL, &p.ReadTime, &p.SEOTitle, &p.SEODescription, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt, &p.Version)
	if err != nil {
		return nil, err
	}

	scanContent(content, &p.Content)

	return &p, nil
}

func (m *PostModel) insert(ctx context.Context, p *Post) error {
	query := `
		INSERT INTO posts (title, slug, excerpt, content, author_id, status, category, featured_image_url, read_time, seo_title, seo_description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at, version`

	content, err := marshalContent(p.Content)
	if err != nil {
		return err
	}

	args := []any{p.Title, p.Slug, p.Excerpt, content, p.AuthorID, p.Status, p.Category, p.FeaturedImageURL, p.ReadTime, p.SEOTitle, p.SEODescription}

	err = m.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.Version)
	if err != nil {
		switch {
		case UniqueViolation(err, "posts_slug_key"):
			return ErrDuplicateSlug
		default:
			return err
		}
	}

	return nil
}

func (m *PostModel) getBySlug(ctx context.Context, slug string, publishedOnly bool) (*Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE slug = $1`
	if publishedOnly {
		query += ` AND status = 'published'`
	}

	p, err := scanPost(m.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return p, nil
}

func (m *PostModel) getByID(ctx context.Context, id int) (*Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE id = $1`

	p, err := scanPost(m.db.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return p, nil
}

func (m *PostModel) queryPosts(ctx context.Context, query string, args ...any) ([]Post, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

// getPublished returns published posts, newest publication first.
func (m *PostModel) getPublished(ctx context.Context, limit, offset int) ([]Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE status = 'published'
		ORDER BY published_at DESC
		LIMIT $1 OFFSET $2`

	return m.queryPosts(ctx, query, limit, offset)
}

func (m *PostModel) searchByTitle(ctx context.Context, title string, limit, offset int) ([]Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE status = 'published' AND title ILIKE $1
		ORDER BY published_at DESC
		LIMIT $2 OFFSET $3`

	return m.queryPosts(ctx, query, "%"+title+"%", limit, offset)
}

func (m *PostModel) getByAuthor(ctx context.Context, authorID string) ([]Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE author_id = $1
		ORDER BY created_at DESC`

	return m.queryPosts(ctx, query, authorID)
}

// update rewrites the mutable fields of a post. The slug is fixed at
// creation and never touched here.
func (m *PostModel) update(ctx context.Context, p *Post) error {
	query := `
		UPDATE posts
		SET title = $1, excerpt = $2, content = $3, category = $4, featured_image_url = $5, read_time = $6, seo_title = $7, seo_description = $8, updated_at = now(), version = version + 1
		WHERE id = $9 AND version = $10 AND author_id = $11
		RETURNING updated_at, version`

	content, err := marshalContent(p.Content)
	if err != nil {
		return err
	}

	args := []any{p.Title, p.Excerpt, content, p.Category, p.FeaturedImageURL, p.ReadTime, p.SEOTitle, p.SEODescription, p.ID, p.Version, p.AuthorID}

	err = m.db.QueryRowContext(ctx, query, args...).Scan(&p.UpdatedAt, &p.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

// setStatus moves a post between lifecycle states. The publish timestamp
// is stamped exactly once, on the first transition to published.
func (m *PostModel) setStatus(ctx context.Context, id int, authorID string, status Status) (*Post, error) {
	query := `
		UPDATE posts
		SET status = $1,
		    published_at = CASE WHEN $1 = 'published' THEN COALESCE(published_at, now()) ELSE published_at END,
		    updated_at = now(),
		    version = version + 1
		WHERE id = $2 AND author_id = $3
		RETURNING ` + postColumns

	p, err := scanPost(m.db.QueryRowContext(ctx, query, status, id, authorID))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return p, nil
}

func (m *PostModel) delete(ctx context.Context, id int, authorID string) error {
	query := `
		DELETE FROM posts
		WHERE id = $1 AND author_id = $2`

	res, err := m.db.ExecContext(ctx, query, id, authorID)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}
