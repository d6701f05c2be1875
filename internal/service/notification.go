package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"blogsite-backend/internal/model"
	"blogsite-backend/internal/repository"
)

// NotificationService is the append-only notification ledger. Every write
// that touches a notification row also maintains the recipient's denormalized
// unread counter in the same transaction, so the two can never drift apart
// through this service.
type NotificationService struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	db        *sqlx.DB
}

func NewNotificationService(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	db *sqlx.DB,
) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		db:        db,
	}
}

// Notify appends an unread notification and increments the recipient's
// counter as one atomic unit.
func (s *NotificationService) Notify(ctx context.Context, recipientID uuid.UUID, notifType, message, relatedPostSlug string, relatedCommentID *uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	n := &model.Notification{
		UserID:           recipientID,
		Type:             notifType,
		Message:          message,
		RelatedPostSlug:  relatedPostSlug,
		RelatedCommentID: relatedCommentID,
	}
	if err := s.notifRepo.Create(ctx, tx, n); err != nil {
		return err
	}
	if err := s.userRepo.IncrementUnreadCount(ctx, tx, recipientID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	log.Printf("[NotificationService] %s notification for user %s", notifType, recipientID)
	return nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	return s.notifRepo.ListByUserID(ctx, userID)
}

// UnreadCount returns the cached counter from the user row, not a recount.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.userRepo.GetUnreadCount(ctx, userID)
}

// MarkRead flips one notification to read and decrements the recipient's
// counter (floored at zero) in one transaction. Marking an already-read
// notification is a no-op, so calling it twice decrements only once.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	n, err := s.notifRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err // ErrNotificationNotFound or wrapped error
	}
	if n.UserID != userID {
		return model.ErrNotNotificationOwner
	}
	if n.IsRead {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.notifRepo.MarkRead(ctx, tx, notificationID); err != nil {
		return err
	}
	if err := s.userRepo.DecrementUnreadCount(ctx, tx, userID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// MarkAllRead flips every unread notification of the user and resets the
// counter to exactly 0 in one transaction. A notification arriving
// concurrently can be flattened to 0 by the reset; that race is accepted
// rather than locked against.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err // ErrUserNotFound or wrapped error
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.notifRepo.MarkAllRead(ctx, tx, userID); err != nil {
		return err
	}
	if err := s.userRepo.ResetUnreadCount(ctx, tx, userID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	log.Printf("[NotificationService] Marked all notifications read for user %s", userID)
	return nil
}
