package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mwynn/toolgrid/internal/commentservice"
	"github.com/mwynn/toolgrid/internal/common"
	"github.com/mwynn/toolgrid/internal/identity"
	"github.com/mwynn/toolgrid/internal/mediaservice"
	"github.com/mwynn/toolgrid/internal/postservice"
)

const (
	testAuthorID = "7f8d9e1a-2b3c-4d5e-8f9a-0b1c2d3e4f5a"
	testAdminID  = "1a2b3c4d-5e6f-4a8b-9c0d-1e2f3a4b5c6d"

	authorToken = "author-token"
	adminToken  = "admin-token"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

// newIdentityProvider fakes the token verification endpoint so handler
// tests can authenticate without a live provider.
func newIdentityProvider(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer " + authorToken:
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"id":%q,"email":"author@example.com","app_metadata":{}}`, testAuthorID)
		case "Bearer " + adminToken:
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"id":%q,"email":"admin@example.com","app_metadata":{"role":"admin"}}`, testAdminID)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))

	t.Cleanup(srv.Close)

	return srv
}

func newTestApplication(t *testing.T) (*application, *sql.DB) {
	db := common.TestDB("file://../../migrations", t)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	provider := newIdentityProvider(t)

	cfg := &Config{
		Environment:    "test",
		Version:        "test",
		IdentityURL:    provider.URL,
		IdentityAPIKey: "test-api-key",
		UploadDir:      t.TempDir(),
		UploadBaseURL:  "http://localhost:4000/static",
		LimiterRPS:     100,
		LimiterBurst:   100,
		LimiterEnabled: false,
	}

	blobStore, err := mediaservice.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL)
	require.NoError(t, err)

	app := &application{
		config:         cfg,
		logger:         logger,
		identity:       identity.NewClient(cfg.IdentityURL, cfg.IdentityAPIKey, cache),
		postService:    postservice.NewPostService(db, cache, nil),
		commentService: commentservice.NewCommentService(db, cache, nil),
		mediaService:   mediaservice.NewMediaService(db, blobStore),
	}

	return app, db
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, envelope
}

func (ts *testServer) do(t *testing.T, method, path string, payload any, token string) (int, http.Header, envelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) get(t *testing.T, path string, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, nil, token)
}

func (ts *testServer) post(t *testing.T, path string, payload any, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPost, path, payload, token)
}

func (ts *testServer) put(t *testing.T, path string, payload any, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPut, path, payload, token)
}

func (ts *testServer) delete(t *testing.T, path string, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodDelete, path, nil, token)
}
