package commentservice

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwynn/toolgrid/internal/common"
)

const (
	testAuthorID  = "7f9c24e5-2f31-43d4-9c4e-2b1f0a9d3c11"
	otherAuthorID = "0a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9"
)

func setupTestPost(db *sql.DB) (*int, error) {
	query := `
		INSERT INTO posts (title, slug, content, author_id, status, read_time)
		VALUES ($1, $2, $3, $4, 'published', 1)
		RETURNING id`

	var id int
	err := db.QueryRow(query, "Test Post", "test-post", `{"blocks":[]}`, testAuthorID).Scan(&id)
	if err != nil {
		return nil, err
	}

	return &id, nil
}

func setupTestEnvironment(t *testing.T) (*CommentService, *sql.DB, func() error, *int) {
	db := common.TestDB("file://../../migrations", t)
	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	postID, err := setupTestPost(db)
	require.NoError(t, err)

	cleanup := func() error {
		_, err := db.Exec("DELETE FROM comments")
		if err != nil {
			return err
		}

		cache.Flush()

		return nil
	}

	return NewCommentService(db, cache, nil), db, cleanup, postID
}

func TestCreateComment(t *testing.T) {
	s, db, cleanup, postID := setupTestEnvironment(t)

	testCases := []struct {
		name        string
		req         *CreateCommentRequest
		expectedErr error
	}{
		{
			name: "valid comment",
			req: &CreateCommentRequest{
				PostID:   *postID,
				Content:  "Nice writeup.",
				AuthorID: testAuthorID,
			},
			expectedErr: nil,
		},
		{
			name: "empty content",
			req: &CreateCommentRequest{
				PostID:   *postID,
				AuthorID: testAuthorID,
			},
			expectedErr: common.ValidationError{Errors: map[string]string{"content": "must be provided"}},
		},
		{
			name: "missing post",
			req: &CreateCommentRequest{
				PostID:   999999,
				Content:  "orphan",
				AuthorID: testAuthorID,
			},
			expectedErr: ErrPostForeignKey,
		},
		{
			name: "missing author",
			req: &CreateCommentRequest{
				PostID:  *postID,
				Content: "anonymous",
			},
			expectedErr: common.ValidationError{Errors: map[string]string{"author_id": "must be provided"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()

			comment, err := s.CreateComment(ctx, tc.req)
			assert.Equal(t, tc.expectedErr, err)

			if err == nil {
				assert.NotZero(t, comment.ID)
				assert.True(t, comment.Approved)

				var count int
				err := db.QueryRow("SELECT COUNT(*) FROM comments").Scan(&count)
				assert.NoError(t, err)
				assert.Equal(t, 1, count)
			}

			t.Cleanup(func() {
				err := cleanup()
				assert.NoError(t, err)
			})
		})
	}
}

func TestCreateThreadedComment(t *testing.T) {
	s, _, cleanup, postID := setupTestEnvironment(t)
	ctx := context.Background()

	parent, err := s.CreateComment(ctx, &CreateCommentRequest{
		PostID:   *postID,
		Content:  "first",
		AuthorID: testAuthorID,
	})
	require.NoError(t, err)

	reply, err := s.CreateComment(ctx, &CreateCommentRequest{
		PostID:   *postID,
		ParentID: &parent.ID,
		Content:  "reply",
		AuthorID: otherAuthorID,
	})
	assert.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, parent.ID, *reply.ParentID)

	missing := 999999
	_, err = s.CreateComment(ctx, &CreateCommentRequest{
		PostID:   *postID,
		ParentID: &missing,
		Content:  "dangling reply",
		AuthorID: otherAuthorID,
	})
	assert.Equal(t, ErrCommentForeignKey, err)

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})
}

func TestGetCommentsByPost(t *testing.T) {
	s, db, cleanup, postID := setupTestEnvironment(t)
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		_, err := s.CreateComment(ctx, &CreateCommentRequest{
			PostID:   *postID,
			Content:  content,
			AuthorID: testAuthorID,
		})
		require.NoError(t, err)
	}

	// Unapproved comments stay hidden from readers.
	_, err := db.Exec("UPDATE comments SET approved = false WHERE content = 'two'")
	require.NoError(t, err)

	comments, err := s.GetCommentsByPost(ctx, *postID)
	assert.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "one", comments[0].Content)
	assert.Equal(t, "three", comments[1].Content)

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})
}

func TestGetCommentsByPostCacheInvalidation(t *testing.T) {
	s, _, cleanup, postID := setupTestEnvironment(t)
	ctx := context.Background()

	first, err := s.CreateComment(ctx, &CreateCommentRequest{
		PostID:   *postID,
		Content:  "first",
		AuthorID: testAuthorID,
	})
	require.NoError(t, err)

	comments, err := s.GetCommentsByPost(ctx, *postID)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	// A new comment must show up on the next read, not a cached copy.
	_, err = s.CreateComment(ctx, &CreateCommentRequest{
		PostID:   *postID,
		Content:  "second",
		AuthorID: otherAuthorID,
	})
	require.NoError(t, err)

	comments, err = s.GetCommentsByPost(ctx, *postID)
	require.NoError(t, err)
	assert.Len(t, comments, 2)

	// Deletion drops the cached list as well.
	err = s.DeleteComment(ctx, first.ID, testAuthorID, false)
	require.NoError(t, err)

	comments, err = s.GetCommentsByPost(ctx, *postID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
	assert.Equal(t, "second", comments[0].Content)

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})
}

func TestDeleteComment(t *testing.T) {
	s, _, cleanup, postID := setupTestEnvironment(t)
	ctx := context.Background()

	comment, err := s.CreateComment(ctx, &CreateCommentRequest{
		PostID:   *postID,
		Content:  "delete me",
		AuthorID: testAuthorID,
	})
	require.NoError(t, err)

	// Someone else cannot delete it.
	err = s.DeleteComment(ctx, comment.ID, otherAuthorID, false)
	assert.Equal(t, ErrForbidden, err)

	// An admin can.
	err = s.DeleteComment(ctx, comment.ID, otherAuthorID, true)
	assert.NoError(t, err)

	err = s.DeleteComment(ctx, comment.ID, testAuthorID, false)
	assert.Equal(t, ErrRecordNotFound, err)

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})
}
