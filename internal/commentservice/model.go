package commentservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrPostForeignKey    = errors.New("post_id does not exist")
	ErrCommentForeignKey = errors.New("parent_id does not exist")
)

func newCommentModel(db *sql.DB) *CommentModel {
	return &CommentModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign
// key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

func (m *CommentModel) insert(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (post_id, parent_id, author_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, approved, created_at`

	err := m.db.QueryRowContext(ctx, query, c.PostID, c.ParentID, c.AuthorID, c.Content).Scan(&c.ID, &c.Approved, &c.CreatedAt)
	if err != nil {
		switch {
		case ForeignKeyError(err, "comments_post_id_fkey"):
			return ErrPostForeignKey
		case ForeignKeyError(err, "comments_parent_id_fkey"):
			return ErrCommentForeignKey
		default:
			return err
		}
	}

	return nil
}

func (m *CommentModel) getByID(ctx context.Context, id int) (*Comment, error) {
	query := `
		SELECT id, post_id, parent_id, author_id, content, approved, created_at
		FROM comments
		WHERE id = $1`

	var c Comment
	err := m.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.PostID, &c.ParentID, &c.AuthorID, &c.Content, &c.Approved, &c.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &c, nil
}

// getByPostID returns a post's approved comments, oldest first, the order
// a comment thread reads in.
func (m *CommentModel) getByPostID(ctx context.Context, postID int) ([]Comment, error) {
	query := `
		SELECT id, post_id, parent_id, author_id, content, approved, created_at
		FROM comments
		WHERE post_id = $1 AND approved = true
		ORDER BY created_at ASC`

	rows, err := m.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		err := rows.Scan(&c.ID, &c.PostID, &c.ParentID, &c.AuthorID, &c.Content, &c.Approved, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

func (m *CommentModel) delete(ctx context.Context, id int) error {
	query := `
		DELETE FROM comments
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
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
