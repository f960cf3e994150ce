package main

import (
	"bytes"
	"database/sql"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContent() map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			{"type": "header", "data": map[string]any{"text": "Intro", "level": 2}},
			{"type": "paragraph", "data": map[string]any{"text": "Hello &amp; welcome"}},
		},
	}
}

func seedPost(t *testing.T, db *sql.DB, title, slug, status, authorID string) int {
	t.Helper()

	query := `
		INSERT INTO posts (title, slug, content, author_id, status, read_time, published_at)
		VALUES ($1, $2, $3, $4, $5, 1, CASE WHEN $5 = 'published' THEN now() ELSE NULL END)
		RETURNING id`

	var id int
	err := db.QueryRow(query, title, slug, `{"blocks":[]}`, authorID, status).Scan(&id)
	require.NoError(t, err)

	return id
}

func seedComment(t *testing.T, db *sql.DB, postID int, authorID, content string) int {
	t.Helper()

	var id int
	err := db.QueryRow(`INSERT INTO comments (post_id, author_id, content) VALUES ($1, $2, $3) RETURNING id`, postID, authorID, content).Scan(&id)
	require.NoError(t, err)

	return id
}

func TestHealthCheckHandler(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	status, _, body := ts.get(t, "/v1/healthcheck", "")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "available", body["status"])
}

func TestCreatePostHandler(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	testCases := []struct {
		name           string
		payload        map[string]any
		token          string
		expectedStatus int
	}{
		{
			name:           "valid post",
			payload:        map[string]any{"title": "My First Post", "excerpt": "a short summary", "content": testContent()},
			token:          authorToken,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing token",
			payload:        map[string]any{"title": "My First Post", "content": testContent()},
			token:          "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "rejected token",
			payload:        map[string]any{"title": "My First Post", "content": testContent()},
			token:          "forged-token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "title too short",
			payload:        map[string]any{"title": "ab", "content": testContent()},
			token:          authorToken,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "duplicate slug",
			payload:        map[string]any{"title": "My First Post!!", "content": testContent()},
			token:          authorToken,
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, _, body := ts.post(t, "/v1/posts", tc.payload, tc.token)

			assert.Equal(t, tc.expectedStatus, status)

			if status == http.StatusCreated {
				post := body["post"].(map[string]any)
				assert.Equal(t, "my-first-post", post["slug"])
				assert.Equal(t, "draft", post["status"])
				assert.Equal(t, testAuthorID, post["author_id"])
				assert.Nil(t, post["published_at"])
			}
		})
	}
}

func TestGetPostHandler(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	seedPost(t, db, "Published Post", "published-post", "published", testAuthorID)
	seedPost(t, db, "Draft Post", "draft-post", "draft", testAuthorID)

	testCases := []struct {
		name           string
		slug           string
		token          string
		expectedStatus int
	}{
		{
			name:           "published post is public",
			slug:           "published-post",
			token:          "",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "draft hidden from anonymous readers",
			slug:           "draft-post",
			token:          "",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "draft visible to its author",
			slug:           "draft-post",
			token:          authorToken,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "draft visible to admins",
			slug:           "draft-post",
			token:          adminToken,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown slug",
			slug:           "no-such-post",
			token:          "",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, _, body := ts.get(t, "/v1/posts/"+tc.slug, tc.token)

			assert.Equal(t, tc.expectedStatus, status)

			if status == http.StatusOK {
				post := body["post"].(map[string]any)
				assert.Equal(t, tc.slug, post["slug"])
				// missing SEO fields fall back to title and excerpt
				assert.Equal(t, post["title"], post["seo_title"])
			}
		})
	}
}

func TestListPostsHandler(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	seedPost(t, db, "Go Generics Deep Dive", "go-generics-deep-dive", "published", testAuthorID)
	seedPost(t, db, "Intro to SQL", "intro-to-sql", "published", testAuthorID)
	seedPost(t, db, "Unfinished Draft", "unfinished-draft", "draft", testAuthorID)

	t.Run("lists published posts only", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/posts", "")

		assert.Equal(t, http.StatusOK, status)
		assert.Len(t, body["posts"], 2)
	})

	t.Run("search by title", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/posts?q=generics", "")

		assert.Equal(t, http.StatusOK, status)

		posts := body["posts"].([]any)
		require.Len(t, posts, 1)
		assert.Equal(t, "go-generics-deep-dive", posts[0].(map[string]any)["slug"])
	})

	t.Run("search misses drafts", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/posts?q=unfinished", "")

		assert.Equal(t, http.StatusOK, status)
		assert.Len(t, body["posts"], 0)
	})

	t.Run("invalid limit", func(t *testing.T) {
		status, _, _ := ts.get(t, "/v1/posts?limit=abc", "")

		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestUpdatePostHandler(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	id := seedPost(t, db, "Original Title", "original-title", "draft", testAuthorID)

	payload := map[string]any{
		"title":   "Renamed Title",
		"excerpt": "updated",
		"content": testContent(),
	}

	t.Run("author updates own post", func(t *testing.T) {
		status, _, body := ts.put(t, fmt.Sprintf("/v1/posts/%d", id), payload, authorToken)

		assert.Equal(t, http.StatusOK, status)

		post := body["post"].(map[string]any)
		assert.Equal(t, "Renamed Title", post["title"])
		// the slug is fixed at creation
		assert.Equal(t, "original-title", post["slug"])
	})

	t.Run("non-owner gets not found", func(t *testing.T) {
		otherID := seedPost(t, db, "Someone Elses", "someone-elses", "draft", "b1ffc2aa-0000-4000-8000-000000000001")

		status, _, _ := ts.put(t, fmt.Sprintf("/v1/posts/%d", otherID), payload, authorToken)

		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestPublishPostHandler(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	id := seedPost(t, db, "Launch Notes", "launch-notes", "draft", testAuthorID)

	t.Run("author publishes draft", func(t *testing.T) {
		status, _, body := ts.post(t, fmt.Sprintf("/v1/posts/%d/publish", id), nil, authorToken)

		assert.Equal(t, http.StatusOK, status)

		post := body["post"].(map[string]any)
		assert.Equal(t, "published", post["status"])
		assert.NotNil(t, post["published_at"])
	})

	t.Run("archive keeps published_at", func(t *testing.T) {
		status, _, body := ts.post(t, fmt.Sprintf("/v1/posts/%d/archive", id), nil, authorToken)

		assert.Equal(t, http.StatusOK, status)

		post := body["post"].(map[string]any)
		assert.Equal(t, "archived", post["status"])
		assert.NotNil(t, post["published_at"])
	})

	t.Run("non-owner cannot publish", func(t *testing.T) {
		otherID := seedPost(t, db, "Not Yours", "not-yours", "draft", "b1ffc2aa-0000-4000-8000-000000000001")

		status, _, _ := ts.post(t, fmt.Sprintf("/v1/posts/%d/publish", otherID), nil, authorToken)

		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestDeletePostHandler(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	id := seedPost(t, db, "Doomed Post", "doomed-post", "draft", testAuthorID)

	status, _, _ := ts.delete(t, fmt.Sprintf("/v1/posts/%d", id), authorToken)
	assert.Equal(t, http.StatusOK, status)

	status, _, _ = ts.get(t, "/v1/posts/doomed-post", authorToken)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestListAuthorPostsHandler(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	seedPost(t, db, "Public One", "public-one", "published", testAuthorID)
	seedPost(t, db, "Private One", "private-one", "draft", testAuthorID)

	t.Run("anonymous sees published only", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/authors/"+testAuthorID+"/posts", "")

		assert.Equal(t, http.StatusOK, status)
		assert.Len(t, body["posts"], 1)
	})

	t.Run("author sees drafts too", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/authors/"+testAuthorID+"/posts", authorToken)

		assert.Equal(t, http.StatusOK, status)
		assert.Len(t, body["posts"], 2)
	})
}

func TestCommentHandlers(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	postID := seedPost(t, db, "Discussed Post", "discussed-post", "published", testAuthorID)

	t.Run("create and list", func(t *testing.T) {
		payload := map[string]any{"post_id": postID, "content": "great writeup"}

		status, _, body := ts.post(t, "/v1/comments", payload, authorToken)
		require.Equal(t, http.StatusCreated, status)

		comment := body["comment"].(map[string]any)
		assert.Equal(t, testAuthorID, comment["author_id"])

		status, _, body = ts.get(t, "/v1/posts/discussed-post/comments", "")
		assert.Equal(t, http.StatusOK, status)
		assert.Len(t, body["comments"], 1)
	})

	t.Run("comment on missing post", func(t *testing.T) {
		payload := map[string]any{"post_id": 999999, "content": "hello?"}

		status, _, _ := ts.post(t, "/v1/comments", payload, authorToken)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
	})

	t.Run("anonymous cannot comment", func(t *testing.T) {
		payload := map[string]any{"post_id": postID, "content": "drive-by"}

		status, _, _ := ts.post(t, "/v1/comments", payload, "")
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("delete permissions", func(t *testing.T) {
		otherAuthor := "b1ffc2aa-0000-4000-8000-000000000001"
		commentID := seedComment(t, db, postID, otherAuthor, "not yours to remove")

		status, _, _ := ts.delete(t, fmt.Sprintf("/v1/comments/%d", commentID), authorToken)
		assert.Equal(t, http.StatusUnauthorized, status)

		status, _, _ = ts.delete(t, fmt.Sprintf("/v1/comments/%d", commentID), adminToken)
		assert.Equal(t, http.StatusOK, status)
	})
}

func encodeTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func (ts *testServer) upload(t *testing.T, fieldContentType string, data []byte, token string) (int, http.Header, envelope) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="upload.png"`)
	header.Set("Content-Type", fieldContentType)

	part, err := mw.CreatePart(header)
	require.NoError(t, err)

	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/v1/uploads", &buf)
	require.NoError(t, err)

	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Client().Do(req)
	require.NoError(t, err)

	return readResponse(t, res)
}

func TestUploadImageHandler(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	t.Run("valid png", func(t *testing.T) {
		status, _, body := ts.upload(t, "image/png", encodeTestPNG(t, 32, 32), authorToken)

		require.Equal(t, http.StatusCreated, status)

		img := body["image"].(map[string]any)
		assert.Contains(t, img["url"], app.config.UploadBaseURL)
		assert.Equal(t, "image/jpeg", img["content_type"])
	})

	t.Run("rejected content type", func(t *testing.T) {
		status, _, _ := ts.upload(t, "image/svg+xml", []byte("<svg/>"), authorToken)

		assert.Equal(t, http.StatusUnprocessableEntity, status)
	})

	t.Run("anonymous rejected", func(t *testing.T) {
		status, _, _ := ts.upload(t, "image/png", encodeTestPNG(t, 8, 8), "")

		assert.Equal(t, http.StatusUnauthorized, status)
	})
}
