package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Notification types
const (
	NotificationTypeMention = "MENTION"
	NotificationTypeReply   = "REPLY"
	NotificationTypeNewPost = "NEW_POST"
)

// Notification is a single entry in a user's notification ledger. Entries are
// append-only; the only mutation is the mark-as-read flip.
type Notification struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	UserID           uuid.UUID  `db:"user_id" json:"-"` // Recipient
	Type             string     `db:"type" json:"type"`
	Message          string     `db:"message" json:"message"`
	RelatedPostSlug  string     `db:"related_post_slug" json:"related_post_slug"`
	RelatedCommentID *uuid.UUID `db:"related_comment_id" json:"related_comment_id,omitempty"`
	IsRead           bool       `db:"is_read" json:"is_read"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// UnreadCountResponse is the badge count payload.
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// Notification errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotNotificationOwner = errors.New("not the recipient of this notification")
)
