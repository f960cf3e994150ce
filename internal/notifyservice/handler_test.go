package notifyservice

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestService(body []byte) (*NotifyService, *MockMailer) {
	mailer := new(MockMailer)
	ctx, cancel := context.WithCancel(context.Background())

	s := &NotifyService{
		mb:         &MockMessageConsumer{Body: body},
		m:          mailer,
		adminEmail: "admin@example.com",
		logger:     slog.New(slog.NewTextHandler(os.Stdout, nil)),
		ctx:        ctx,
		cancel:     cancel,
	}

	return s, mailer
}

func TestSendCommentNotification(t *testing.T) {
	s, mailer := newTestService([]byte(`{"comment_id": 1, "post_id": 2, "author_id": "user-123", "content": "hi"}`))

	go s.SendCommentNotification()

	time.Sleep(1 * time.Second)

	assert.True(t, mailer.IsCalled())
	assert.Equal(t, "admin@example.com", mailer.GetEmail())
	assert.Equal(t, "comment_created.html", mailer.GetTemplate())

	t.Cleanup(func() {
		s.Close()
	})
}

func TestSendPostPublishedNotification(t *testing.T) {
	s, mailer := newTestService([]byte(`{"post_id": 2, "title": "Hello", "slug": "hello"}`))

	go s.SendPostPublishedNotification()

	time.Sleep(1 * time.Second)

	assert.True(t, mailer.IsCalled())
	assert.Equal(t, "post_published.html", mailer.GetTemplate())

	t.Cleanup(func() {
		s.Close()
	})
}

func TestMalformedEventDoesNotSend(t *testing.T) {
	s, mailer := newTestService([]byte(`not json`))

	go s.SendCommentNotification()

	time.Sleep(1 * time.Second)

	assert.False(t, mailer.IsCalled())

	t.Cleanup(func() {
		s.Close()
	})
}
