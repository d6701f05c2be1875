package model

import (
	"errors"

	"github.com/google/uuid"
)

// Tag is a flat label attached to posts.
type Tag struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
	Slug string    `db:"slug" json:"slug"`
}

// Category is a flat grouping attached to posts.
type Category struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
	Slug string    `db:"slug" json:"slug"`
}

// CreateTaxonomyRequest is the shared request body for creating a tag or category.
type CreateTaxonomyRequest struct {
	Name string `json:"name"`
}

// Taxonomy errors
var (
	ErrTagNotFound      = errors.New("tag not found")
	ErrTagExists        = errors.New("tag already exists")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrNameRequired     = errors.New("name is required")
)
