package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Post statuses
const (
	PostStatusDraft     = "DRAFT"
	PostStatusPublished = "PUBLISHED"
	PostStatusDeleted   = "DELETED"
)

// Post represents a blog post addressed by its slug.
type Post struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	AuthorID      uuid.UUID  `db:"author_id" json:"author_id"`
	Title         string     `db:"title" json:"title"`
	Slug          string     `db:"slug" json:"slug"`
	Content       string     `db:"content" json:"content"`
	Excerpt       *string    `db:"excerpt" json:"excerpt,omitempty"`
	FeaturedImage *string    `db:"featured_image" json:"featured_image,omitempty"`
	Status        string     `db:"status" json:"status"`
	PublishedAt   *time.Time `db:"published_at" json:"published_at,omitempty"`
	ViewCount     int64      `db:"view_count" json:"view_count"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`

	// Joined fields
	Author     *UserSummary `json:"author,omitempty"`
	Tags       []Tag        `json:"tags,omitempty"`
	Categories []Category   `json:"categories,omitempty"`
}

// IsPublished reports whether the post is publicly visible.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Title         string      `json:"title"`
	Content       string      `json:"content"`
	Excerpt       *string     `json:"excerpt"`
	FeaturedImage *string     `json:"featured_image"`
	Publish       bool        `json:"publish"`
	TagIDs        []uuid.UUID `json:"tag_ids"`
	CategoryIDs   []uuid.UUID `json:"category_ids"`
}

// UpdatePostRequest is the request body for updating a post. Nil fields are
// left untouched.
type UpdatePostRequest struct {
	Title         *string     `json:"title"`
	Content       *string     `json:"content"`
	Excerpt       *string     `json:"excerpt"`
	FeaturedImage *string     `json:"featured_image"`
	Publish       *bool       `json:"publish"`
	TagIDs        []uuid.UUID `json:"tag_ids"`
	CategoryIDs   []uuid.UUID `json:"category_ids"`
}

// PostListResponse is the paginated post list response.
type PostListResponse struct {
	Posts      []Post  `json:"posts"`
	NextCursor *string `json:"next_cursor,omitempty"`
	HasMore    bool    `json:"has_more"`
}

// Post constraints
const (
	MaxPostTitleLength = 500
)

// Post errors
var (
	ErrPostNotFound  = errors.New("post not found")
	ErrSlugExists    = errors.New("post slug already exists")
	ErrTitleRequired = errors.New("post title is required")
	ErrTitleTooLong  = errors.New("post title too long")
)
