package postservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/mwynn/toolgrid/internal/common"
	"github.com/mwynn/toolgrid/internal/editor"
)

// listCacheTTL bounds how stale a cached listing page may get; list
// pages are not invalidated per write the way slug lookups are.
const listCacheTTL = time.Minute

func NewPostService(db *sql.DB, c *common.Cache, mb common.MessageProducer) *PostService {
	return &PostService{m: newPostModel(db), c: c, mb: mb}
}

type CreatePostRequest struct {
	Title            string          `json:"title"`
	Excerpt          string          `json:"excerpt"`
	Content          editor.Document `json:"content"`
	Category         string          `json:"category"`
	FeaturedImageURL string          `json:"featured_image_url"`
	SEOTitle         string          `json:"seo_title"`
	SEODescription   string          `json:"seo_description"`
	AuthorID         string          `json:"author_id"`
}

// CreatePost creates a new draft post. The slug is derived from the
// title once, here; the read time is derived from the document and
// recomputed on every later content update.
func (s *PostService) CreatePost(ctx context.Context, req *CreatePostRequest) (*Post, error) {
	slug := editor.Slugify(req.Title)

	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateSlug(v, slug)
	validateExcerpt(v, req.Excerpt)
	validateAuthor(v, req.AuthorID)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	post := &Post{
		Title:            req.Title,
		Slug:             slug,
		Excerpt:          req.Excerpt,
		Content:          req.Content,
		AuthorID:         req.AuthorID,
		Status:           StatusDraft,
		Category:         req.Category,
		FeaturedImageURL: req.FeaturedImageURL,
		ReadTime:         editor.EstimateReadTime(req.Content),
		SEOTitle:         req.SEOTitle,
		SEODescription:   req.SEODescription,
	}

	if err := s.m.insert(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// GetPostBySlug returns one post. Anonymous readers only see published
// posts; includeUnpublished is set for the post's author.
func (s *PostService) GetPostBySlug(ctx context.Context, slug string, includeUnpublished bool) (*Post, error) {
	v := common.NewValidator()
	v.Check(slug != "", "slug", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	key := common.CacheKeyPostBySlug(slug)
	if !includeUnpublished && s.c != nil {
		if cached, ok := s.c.Get(key); ok {
			return cached.(*Post), nil
		}
	}

	post, err := s.m.getBySlug(ctx, slug, !includeUnpublished)
	if err != nil {
		return nil, err
	}

	applySEODefaults(post)

	if !includeUnpublished && s.c != nil {
		s.c.Set(key, post)
	}

	return post, nil
}

// GetPosts returns published posts. Default limit is 10 and default
// offset is 0. Pages are cached per window for listCacheTTL.
func (s *PostService) GetPosts(ctx context.Context, limit, offset *int) ([]Post, error) {
	l, o := normalizeWindow(limit, offset)

	key := common.CacheKeyPosts(l, o)
	if s.c != nil {
		if cached, ok := s.c.Get(key); ok {
			return cached.([]Post), nil
		}
	}

	posts, err := s.m.getPublished(ctx, l, o)
	if err != nil {
		return nil, err
	}

	for i := range posts {
		applySEODefaults(&posts[i])
	}

	if s.c != nil {
		s.c.Set(key, posts, listCacheTTL)
	}

	return posts, nil
}

func (s *PostService) SearchPosts(ctx context.Context, title string, limit, offset *int) ([]Post, error) {
	v := common.NewValidator()
	v.Check(title != "", "q", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	l, o := normalizeWindow(limit, offset)

	posts, err := s.m.searchByTitle(ctx, title, l, o)
	if err != nil {
		return nil, err
	}

	for i := range posts {
		applySEODefaults(&posts[i])
	}

	return posts, nil
}

// GetPostsByAuthor returns every post of one author, drafts included.
func (s *PostService) GetPostsByAuthor(ctx context.Context, authorID string) ([]Post, error) {
	v := common.NewValidator()
	validateAuthor(v, authorID)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getByAuthor(ctx, authorID)
}

func (s *PostService) GetPostByID(ctx context.Context, id int) (*Post, error) {
	v := common.NewValidator()
	validateID(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getByID(ctx, id)
}

// UpdatePost rewrites a post's content and metadata. The read time is
// re-derived from the new document; the slug never changes.
func (s *PostService) UpdatePost(ctx context.Context, post *Post) error {
	v := common.NewValidator()
	validateTitle(v, post.Title)
	validateExcerpt(v, post.Excerpt)
	validateID(v, post.ID, "id")
	validateAuthor(v, post.AuthorID)
	if !v.Valid() {
		return v.ValidationError()
	}

	post.ReadTime = editor.EstimateReadTime(post.Content)

	if err := s.m.update(ctx, post); err != nil {
		return err
	}

	s.invalidate(post.Slug)

	return nil
}

type postPublishedEvent struct {
	PostID int    `json:"post_id"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
}

// PublishPost transitions a post to published, stamping published_at on
// the first transition only, and emits a post.published event.
func (s *PostService) PublishPost(ctx context.Context, id int, authorID string) (*Post, error) {
	return s.setStatus(ctx, id, authorID, StatusPublished)
}

// ArchivePost retires a published post from the public listing.
func (s *PostService) ArchivePost(ctx context.Context, id int, authorID string) (*Post, error) {
	return s.setStatus(ctx, id, authorID, StatusArchived)
}

func (s *PostService) setStatus(ctx context.Context, id int, authorID string, status Status) (*Post, error) {
	v := common.NewValidator()
	validateID(v, id, "id")
	validateAuthor(v, authorID)
	validateStatus(v, status)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	post, err := s.m.setStatus(ctx, id, authorID, status)
	if err != nil {
		return nil, err
	}

	s.invalidate(post.Slug)

	if status == StatusPublished && s.mb != nil {
		msg, err := json.Marshal(postPublishedEvent{PostID: post.ID, Title: post.Title, Slug: post.Slug})
		if err == nil {
			// Event delivery is best-effort; the status change already
			// committed.
			_ = s.mb.Publish(ctx, msg, common.PostPublishedKey, common.ContentExchange)
		}
	}

	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, id int, authorID string) error {
	v := common.NewValidator()
	validateID(v, id, "id")
	validateAuthor(v, authorID)
	if !v.Valid() {
		return v.ValidationError()
	}

	post, err := s.m.getByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.m.delete(ctx, id, authorID); err != nil {
		return err
	}

	s.invalidate(post.Slug)

	return nil
}

func (s *PostService) invalidate(slug string) {
	if s.c != nil {
		s.c.Delete(common.CacheKeyPostBySlug(slug))
	}
}

// applySEODefaults fills the SEO fields from the title and excerpt when
// the author left them empty.
func applySEODefaults(p *Post) {
	if p.SEOTitle == "" {
		p.SEOTitle = p.Title
	}
	if p.SEODescription == "" {
		p.SEODescription = p.Excerpt
	}
}

// normalizeWindow resolves optional paging params to concrete values.
// Absent or out-of-range values fall back to a limit of 10 and an
// offset of 0.
func normalizeWindow(limit, offset *int) (int, int) {
	l, o := 10, 0

	if limit != nil && *limit >= 1 {
		l = *limit
	}

	if offset != nil && *offset > 0 {
		o = *offset
	}

	return l, o
}
