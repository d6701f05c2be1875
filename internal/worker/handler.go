package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"blogsite-backend/internal/model"
	"blogsite-backend/internal/queue"
)

// SubscriberProvider returns the users who opted in to new-post
// notifications. Abstracts the repository so workers don't depend on the DB
// layer directly.
type SubscriberProvider interface {
	GetNotifiableIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Notifier records a notification and bumps the recipient's unread counter.
type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, notifType, message, relatedPostSlug string, relatedCommentID *uuid.UUID) error
}

// Handler processes events from the notification stream.
type Handler struct {
	subscribers SubscriberProvider
	notifier    Notifier
}

func NewHandler(subscribers SubscriberProvider, notifier Notifier) *Handler {
	return &Handler{
		subscribers: subscribers,
		notifier:    notifier,
	}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.Event) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventPostPublished:
		err = h.handlePostPublished(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

// handlePostPublished fans a NEW_POST notification out to every subscribed
// user except the author. Per-recipient failures are logged and skipped so
// one bad row doesn't stall the fan-out.
func (h *Handler) handlePostPublished(ctx context.Context, event queue.Event) error {
	log.Printf("[Worker] PostPublished: post=%s slug=%s author=%s", event.PostID, event.Slug, event.AuthorID)

	recipients, err := h.subscribers.GetNotifiableIDs(ctx)
	if err != nil {
		return fmt.Errorf("get subscribers: %w", err)
	}

	message := newPostMessage(event.Title)

	var failCount int
	for _, recipientID := range recipients {
		if recipientID == event.AuthorID {
			continue
		}
		err := h.notifier.Notify(ctx, recipientID, model.NotificationTypeNewPost, message, event.Slug, nil)
		if err != nil {
			log.Printf("[Worker] PostPublished: failed to notify user=%s err=%v", recipientID, err)
			failCount++
		}
	}

	log.Printf("[Worker] PostPublished DONE: post=%s recipients=%d failed=%d",
		event.PostID, len(recipients), failCount)
	return nil
}

func newPostMessage(title string) string {
	return fmt.Sprintf("New post published: %q", title)
}
