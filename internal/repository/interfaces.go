package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"blogsite-backend/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetFirst returns the oldest user in the system (the seeded site owner).
	GetFirst(ctx context.Context) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// GetNotifiableIDs returns ids of users who opted in to new-post notifications.
	GetNotifiableIDs(ctx context.Context) ([]uuid.UUID, error)

	// Unread counter maintenance. The single-statement UPDATEs take the user
	// row lock, which serializes concurrent mutators per user.
	IncrementUnreadCount(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error
	// DecrementUnreadCount is floored at zero: it is a no-op when the counter
	// is already 0.
	DecrementUnreadCount(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error
	ResetUnreadCount(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error
	// GetUnreadCount reads the cached counter column, not a row recount.
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

type PostRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, post *model.Post) error
	Update(ctx context.Context, tx *sqlx.Tx, post *model.Post) error
	GetBySlug(ctx context.Context, slug string) (*model.Post, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, status string, cursor *string, limit int) ([]model.Post, *string, error)
	SetTags(ctx context.Context, tx *sqlx.Tx, postID uuid.UUID, tagIDs []uuid.UUID) error
	SetCategories(ctx context.Context, tx *sqlx.Tx, postID uuid.UUID, categoryIDs []uuid.UUID) error
	GetTags(ctx context.Context, postID uuid.UUID) ([]model.Tag, error)
	GetCategories(ctx context.Context, postID uuid.UUID) ([]model.Category, error)
	// AddViewCounts folds Redis-accumulated view counters into the posts table.
	AddViewCounts(ctx context.Context, counts map[string]int64) error
}

type CommentRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, postID, authorID uuid.UUID, content string, parentID *uuid.UUID) (*model.Comment, error)
	// SetMentions replaces the mention association rows for a comment. An
	// empty id set still commits (clears the associations).
	SetMentions(ctx context.Context, tx *sqlx.Tx, commentID uuid.UUID, userIDs []uuid.UUID) error
	GetByID(ctx context.Context, commentID uuid.UUID) (*model.Comment, error)
	// GetActiveByPostID returns only is_active comments, author joined;
	// order unspecified (the tree builder re-sorts roots).
	GetActiveByPostID(ctx context.Context, postID uuid.UUID) ([]model.Comment, error)
	// SoftDelete flips is_active and stamps deleted_at; content and author
	// are preserved.
	SoftDelete(ctx context.Context, commentID uuid.UUID) error
}

type NotificationRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, n *model.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	// ListByUserID returns the user's notifications newest first.
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
	MarkRead(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error
	MarkAllRead(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error
}

type TagRepository interface {
	Create(ctx context.Context, tag *model.Tag) error
	GetBySlug(ctx context.Context, slug string) (*model.Tag, error)
	List(ctx context.Context) ([]model.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}
