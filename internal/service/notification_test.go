package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"blogsite-backend/internal/model"
)

type mockNotificationRepository struct {
	getByIDFn      func(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	listByUserIDFn func(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)

	markReadCalls []uuid.UUID
}

func (m *mockNotificationRepository) Create(ctx context.Context, tx *sqlx.Tx, n *model.Notification) error {
	return errors.New("not implemented")
}

func (m *mockNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrNotificationNotFound
}

func (m *mockNotificationRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	if m.listByUserIDFn != nil {
		return m.listByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	m.markReadCalls = append(m.markReadCalls, id)
	return nil
}

func (m *mockNotificationRepository) MarkAllRead(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	return nil
}

func TestNotificationService_MarkRead_NotFound(t *testing.T) {
	svc := NewNotificationService(&mockNotificationRepository{}, &mockUserRepository{}, nil)

	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())

	if !errors.Is(err, model.ErrNotificationNotFound) {
		t.Fatalf("expected ErrNotificationNotFound, got: %v", err)
	}
}

func TestNotificationService_MarkRead_WrongOwner(t *testing.T) {
	ownerID := uuid.New()
	notifRepo := &mockNotificationRepository{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
			return &model.Notification{ID: id, UserID: ownerID, IsRead: false}, nil
		},
	}
	svc := NewNotificationService(notifRepo, &mockUserRepository{}, nil)

	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())

	if !errors.Is(err, model.ErrNotNotificationOwner) {
		t.Fatalf("expected ErrNotNotificationOwner, got: %v", err)
	}
	if len(notifRepo.markReadCalls) != 0 {
		t.Error("mark read must not run for a foreign notification")
	}
}

func TestNotificationService_MarkRead_AlreadyReadIsNoOp(t *testing.T) {
	userID := uuid.New()
	notifRepo := &mockNotificationRepository{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
			return &model.Notification{ID: id, UserID: userID, IsRead: true}, nil
		},
	}
	svc := NewNotificationService(notifRepo, &mockUserRepository{}, nil)

	// db is nil: a second mark-read must return before any transaction,
	// otherwise the counter would be decremented twice
	if err := svc.MarkRead(context.Background(), uuid.New(), userID); err != nil {
		t.Fatalf("marking an already-read notification must be a no-op, got: %v", err)
	}
	if len(notifRepo.markReadCalls) != 0 {
		t.Error("mark read must not run again for an already-read notification")
	}
}

func TestNotificationService_MarkRead_DecrementsCounterOnce(t *testing.T) {
	userID := uuid.New()
	notifID := uuid.New()
	notifRepo := &mockNotificationRepository{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
			return &model.Notification{ID: id, UserID: userID, IsRead: false}, nil
		},
	}
	userRepo := &mockUserRepository{}
	svc := NewNotificationService(notifRepo, userRepo, newTxDB(t))

	if err := svc.MarkRead(context.Background(), notifID, userID); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(notifRepo.markReadCalls) != 1 || notifRepo.markReadCalls[0] != notifID {
		t.Fatalf("expected one mark-read of %s, got %v", notifID, notifRepo.markReadCalls)
	}
	if len(userRepo.decrementCalls) != 1 || userRepo.decrementCalls[0] != userID {
		t.Fatalf("expected exactly one counter decrement for %s, got %v", userID, userRepo.decrementCalls)
	}
}

func TestNotificationService_UnreadCount_ReadsCachedCounter(t *testing.T) {
	userID := uuid.New()
	userRepo := &mockUserRepository{
		getUnreadCountFn: func(ctx context.Context, id uuid.UUID) (int, error) {
			if id != userID {
				t.Errorf("unexpected user id %s", id)
			}
			return 7, nil
		},
	}
	svc := NewNotificationService(&mockNotificationRepository{}, userRepo, nil)

	count, err := svc.UnreadCount(context.Background(), userID)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if count != 7 {
		t.Errorf("count = %d, want 7", count)
	}
}

func TestNotificationService_List_NewestFirstFromRepo(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	notifRepo := &mockNotificationRepository{
		listByUserIDFn: func(ctx context.Context, id uuid.UUID) ([]model.Notification, error) {
			return []model.Notification{
				{ID: uuid.New(), UserID: id, CreatedAt: now},
				{ID: uuid.New(), UserID: id, CreatedAt: now.Add(-time.Hour)},
			}, nil
		},
	}
	svc := NewNotificationService(notifRepo, &mockUserRepository{}, nil)

	notifications, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifications))
	}
	if notifications[0].CreatedAt.Before(notifications[1].CreatedAt) {
		t.Error("notifications should come back newest first")
	}
}

func TestNotificationService_MarkAllRead_UnknownUser(t *testing.T) {
	svc := NewNotificationService(&mockNotificationRepository{}, &mockUserRepository{}, nil)

	err := svc.MarkAllRead(context.Background(), uuid.New())

	if !errors.Is(err, model.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}
