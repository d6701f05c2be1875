package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"blogsite-backend/internal/model"
	"blogsite-backend/internal/queue"
)

type mockSubscriberProvider struct {
	ids []uuid.UUID
	err error
}

func (m *mockSubscriberProvider) GetNotifiableIDs(ctx context.Context) ([]uuid.UUID, error) {
	return m.ids, m.err
}

type recordedNotification struct {
	RecipientID uuid.UUID
	Type        string
	Message     string
	PostSlug    string
}

type mockNotifier struct {
	notifications []recordedNotification
	failFor       map[uuid.UUID]error
}

func (m *mockNotifier) Notify(ctx context.Context, recipientID uuid.UUID, notifType, message, relatedPostSlug string, relatedCommentID *uuid.UUID) error {
	if err, ok := m.failFor[recipientID]; ok {
		return err
	}
	m.notifications = append(m.notifications, recordedNotification{
		RecipientID: recipientID,
		Type:        notifType,
		Message:     message,
		PostSlug:    relatedPostSlug,
	})
	return nil
}

func TestHandler_PostPublished_FansOutToSubscribers(t *testing.T) {
	author := uuid.New()
	sub1, sub2 := uuid.New(), uuid.New()

	subscribers := &mockSubscriberProvider{ids: []uuid.UUID{sub1, author, sub2}}
	notifier := &mockNotifier{}
	h := NewHandler(subscribers, notifier)

	event := queue.NewPostPublishedEvent(uuid.New(), "hello-world", "Hello World", author)

	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(notifier.notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifier.notifications))
	}
	for _, n := range notifier.notifications {
		if n.RecipientID == author {
			t.Error("author must not be notified about their own post")
		}
		if n.Type != model.NotificationTypeNewPost {
			t.Errorf("type = %q, want %q", n.Type, model.NotificationTypeNewPost)
		}
		if n.PostSlug != "hello-world" {
			t.Errorf("slug = %q, want %q", n.PostSlug, "hello-world")
		}
	}
}

func TestHandler_PostPublished_SkipsFailedRecipients(t *testing.T) {
	author := uuid.New()
	good, bad := uuid.New(), uuid.New()

	subscribers := &mockSubscriberProvider{ids: []uuid.UUID{bad, good}}
	notifier := &mockNotifier{
		failFor: map[uuid.UUID]error{bad: errors.New("db down")},
	}
	h := NewHandler(subscribers, notifier)

	event := queue.NewPostPublishedEvent(uuid.New(), "slug", "Title", author)

	// A per-recipient failure must not fail the whole fan-out
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(notifier.notifications) != 1 || notifier.notifications[0].RecipientID != good {
		t.Fatalf("expected one delivery to %s, got %v", good, notifier.notifications)
	}
}

func TestHandler_PostPublished_SubscriberLookupFailure(t *testing.T) {
	subscribers := &mockSubscriberProvider{err: errors.New("db down")}
	h := NewHandler(subscribers, &mockNotifier{})

	event := queue.NewPostPublishedEvent(uuid.New(), "slug", "Title", uuid.New())

	if err := h.HandleEvent(context.Background(), event); err == nil {
		t.Fatal("expected error when subscriber lookup fails")
	}
}

func TestHandler_UnknownEventType(t *testing.T) {
	h := NewHandler(&mockSubscriberProvider{}, &mockNotifier{})

	err := h.HandleEvent(context.Background(), queue.Event{Type: "mystery"})

	if err == nil {
		t.Fatal("expected error for unknown event type")
	}
}
