package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Comment represents a comment on a post. Comments are never physically
// deleted; soft delete flips IsActive and stamps DeletedAt while keeping the
// row for history.
type Comment struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PostID          uuid.UUID  `db:"post_id" json:"post_id"`
	AuthorID        uuid.UUID  `db:"author_id" json:"-"`
	Content         string     `db:"content" json:"content"`
	ParentCommentID *uuid.UUID `db:"parent_comment_id" json:"parent_comment_id,omitempty"`
	IsActive        bool       `db:"is_active" json:"-"`
	DeletedAt       *time.Time `db:"deleted_at" json:"-"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`

	Author *UserSummary `json:"author,omitempty"` // Joined field
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Content  string     `json:"content"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

// CommentResponse is a rendered comment carrying its nested replies.
// A freshly created comment has an empty Replies list.
type CommentResponse struct {
	ID        uuid.UUID          `json:"id"`
	Content   string             `json:"content"`
	CreatedAt time.Time          `json:"created_at"`
	Author    *UserSummary       `json:"author,omitempty"`
	ParentID  *uuid.UUID         `json:"parent_id,omitempty"`
	Replies   []*CommentResponse `json:"replies"`
}

// Comment constraints
const (
	MaxCommentLength = 2000
)

// Comment errors
var (
	ErrCommentNotFound    = errors.New("comment not found")
	ErrContentRequired    = errors.New("comment content is required")
	ErrContentTooLong     = errors.New("comment content too long")
	ErrParentPostMismatch = errors.New("parent comment belongs to a different post")
)
