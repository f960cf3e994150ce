package notifyservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/exp/rand"

	"github.com/mwynn/toolgrid/internal/common"
)

func NewNotifyService(mb common.MessageConsumer, host, username, password, sender, adminEmail string, port int, logger *slog.Logger) *NotifyService {
	ctx, cancel := context.WithCancel(context.Background())
	return &NotifyService{
		mb:         mb,
		m:          NewMailer(host, port, username, password, sender, NewTemplate()),
		adminEmail: adminEmail,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

type commentCreatedEvent struct {
	CommentID int    `json:"comment_id"`
	PostID    int    `json:"post_id"`
	AuthorID  string `json:"author_id"`
	Content   string `json:"content"`
}

type postPublishedEvent struct {
	PostID int    `json:"post_id"`
	Title  string `json:"title"`
	Slug   string `json:"slug"`
}

// SendCommentNotification consumes comment.created events and emails the
// admin about each one.
func (s *NotifyService) SendCommentNotification() {
	s.consume(common.CommentCreatedKey, common.CommentCreatedQueue, "comment notification", func(body []byte) (any, error) {
		var event commentCreatedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return nil, err
		}
		return event, nil
	}, "comment_created.html")
}

// SendPostPublishedNotification consumes post.published events and emails
// the admin about each one.
func (s *NotifyService) SendPostPublishedNotification() {
	s.consume(common.PostPublishedKey, common.PostPublishedQueue, "post published notification", func(body []byte) (any, error) {
		var event postPublishedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return nil, err
		}
		return event, nil
	}, "post_published.html")
}

func (s *NotifyService) consume(key common.BindingKey, queue common.Queue, what string, decode func([]byte) (any, error), templateFile string) {
	msgs, err := s.mb.Consume(key, common.ContentExchange, queue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				payload, err := decode(msg.Body)
				if err != nil {
					s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
					msg.Ack(false)
					continue
				}

				// exponential backoff with jitter
				const maxRetries = 5
				const baseDelay = 500 * time.Millisecond

				var attempt int
				for attempt = 0; attempt < maxRetries; attempt++ {
					err = s.m.send(s.adminEmail, payload, templateFile)
					if err == nil {
						s.logger.Info(what+" sent", slog.String("email", s.adminEmail))
						msg.Ack(false)
						break
					}

					delay := time.Duration(rand.Int63n(int64(baseDelay) << uint(attempt)))
					s.logger.Info("delaying "+what, slog.Int("attempt", attempt), slog.Duration("delay", delay))
					time.Sleep(delay)
				}

				if attempt == maxRetries {
					s.logger.Error("could not send "+what, slog.String("email", s.adminEmail))
					msg.Ack(false)
				}

			case <-s.ctx.Done():
				s.logger.Info("stopping consumer due to context cancellation", slog.String("queue", string(queue)))
				return
			}
		}
	}()
}

func (s *NotifyService) Close() {
	s.cancel()
}
