package commentservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/mwynn/toolgrid/internal/common"
)

// ErrForbidden is returned when a user tries to delete a comment that
// is not theirs.
var ErrForbidden = errors.New("not allowed to modify this comment")

func NewCommentService(db *sql.DB, c *common.Cache, mb common.MessageProducer) *CommentService {
	return &CommentService{m: newCommentModel(db), c: c, mb: mb}
}

type CreateCommentRequest struct {
	PostID   int    `json:"post_id"`
	ParentID *int   `json:"parent_id"`
	Content  string `json:"content"`
	AuthorID string `json:"author_id"`
}

type commentCreatedEvent struct {
	CommentID int    `json:"comment_id"`
	PostID    int    `json:"post_id"`
	AuthorID  string `json:"author_id"`
	Content   string `json:"content"`
}

// CreateComment adds a comment to a post and emits a comment.created
// event.
func (s *CommentService) CreateComment(ctx context.Context, req *CreateCommentRequest) (*Comment, error) {
	v := common.NewValidator()
	validateContent(v, req.Content)
	validateID(v, req.PostID, "post_id")
	validateAuthor(v, req.AuthorID)
	if req.ParentID != nil {
		validateID(v, *req.ParentID, "parent_id")
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	comment := &Comment{
		PostID:   req.PostID,
		ParentID: req.ParentID,
		AuthorID: req.AuthorID,
		Content:  req.Content,
	}

	if err := s.m.insert(ctx, comment); err != nil {
		return nil, err
	}

	s.invalidate(comment.PostID)

	if s.mb != nil {
		msg, err := json.Marshal(commentCreatedEvent{
			CommentID: comment.ID,
			PostID:    comment.PostID,
			AuthorID:  comment.AuthorID,
			Content:   comment.Content,
		})
		if err == nil {
			// Best-effort notification; the comment is already stored.
			_ = s.mb.Publish(ctx, msg, common.CommentCreatedKey, common.ContentExchange)
		}
	}

	return comment, nil
}

// GetCommentsByPost returns a post's approved comments in thread order.
// Results are cached per post until the next write against that post.
func (s *CommentService) GetCommentsByPost(ctx context.Context, postID int) ([]Comment, error) {
	v := common.NewValidator()
	validateID(v, postID, "post_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	key := common.CacheKeyCommentsByPost(postID)
	if s.c != nil {
		if cached, ok := s.c.Get(key); ok {
			return cached.([]Comment), nil
		}
	}

	comments, err := s.m.getByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if s.c != nil {
		s.c.Set(key, comments)
	}

	return comments, nil
}

// DeleteComment removes a comment. Only the comment's author or an admin
// may delete it.
func (s *CommentService) DeleteComment(ctx context.Context, id int, userID string, admin bool) error {
	v := common.NewValidator()
	validateID(v, id, "id")
	validateAuthor(v, userID)
	if !v.Valid() {
		return v.ValidationError()
	}

	comment, err := s.m.getByID(ctx, id)
	if err != nil {
		return err
	}

	if comment.AuthorID != userID && !admin {
		return ErrForbidden
	}

	if err := s.m.delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(comment.PostID)

	return nil
}

func (s *CommentService) invalidate(postID int) {
	if s.c != nil {
		s.c.Delete(common.CacheKeyCommentsByPost(postID))
	}
}
