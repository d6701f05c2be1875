package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"blogsite-backend/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, author_id, title, slug, content, excerpt, featured_image, status,
	published_at, view_count, created_at, updated_at`

// Create inserts a post inside the caller's transaction so the row and its
// tag/category associations commit together.
func (r *postRepository) Create(ctx context.Context, tx *sqlx.Tx, post *model.Post) error {
	query := `
		INSERT INTO posts (author_id, title, slug, content, excerpt, featured_image, status, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + postColumns
	err := tx.GetContext(ctx, post, query,
		post.AuthorID, post.Title, post.Slug, post.Content, post.Excerpt,
		post.FeaturedImage, post.Status, post.PublishedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return model.ErrSlugExists
		}
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *postRepository) Update(ctx context.Context, tx *sqlx.Tx, post *model.Post) error {
	query := `
		UPDATE posts
		SET title = $1, content = $2, excerpt = $3, featured_image = $4,
		    status = $5, published_at = $6, updated_at = now()
		WHERE id = $7
		RETURNING ` + postColumns
	err := tx.GetContext(ctx, post, query,
		post.Title, post.Content, post.Excerpt, post.FeaturedImage,
		post.Status, post.PublishedAt, post.ID)
	if err == sql.ErrNoRows {
		return model.ErrPostNotFound
	}
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var post model.Post
	err := r.db.GetContext(ctx, &post, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post by slug: %w", err)
	}
	return &post, nil
}

func (r *postRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1)`, slug)
	if err != nil {
		return false, fmt.Errorf("check slug exists: %w", err)
	}
	return exists, nil
}

// List returns posts of the given status, newest first, keyset-paginated on
// (created_at, id).
func (r *postRepository) List(ctx context.Context, status string, cursor *string, limit int) ([]model.Post, *string, error) {
	var query string
	var args []interface{}

	if cursor == nil {
		query = `
			SELECT ` + postColumns + ` FROM posts
			WHERE status = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		`
		args = []interface{}{status, limit + 1}
	} else {
		ts, id, err := parsePostCursor(*cursor)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cursor: %w", err)
		}
		query = `
			SELECT ` + postColumns + ` FROM posts
			WHERE status = $1 AND (created_at, id) < ($2, $3)
			ORDER BY created_at DESC, id DESC
			LIMIT $4
		`
		args = []interface{}{status, ts, id, limit + 1}
	}

	var posts []model.Post
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, nil, fmt.Errorf("list posts: %w", err)
	}

	var nextCursor *string
	if len(posts) > limit {
		posts = posts[:limit]
		last := posts[len(posts)-1]
		c := formatPostCursor(last.CreatedAt, last.ID)
		nextCursor = &c
	}

	return posts, nextCursor, nil
}

func (r *postRepository) SetTags(ctx context.Context, tx *sqlx.Tx, postID uuid.UUID, tagIDs []uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)`, postID, tagID); err != nil {
			return fmt.Errorf("insert post tag: %w", err)
		}
	}
	return nil
}

func (r *postRepository) SetCategories(ctx context.Context, tx *sqlx.Tx, postID uuid.UUID, categoryIDs []uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM post_categories WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post categories: %w", err)
	}
	for _, categoryID := range categoryIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO post_categories (post_id, category_id) VALUES ($1, $2)`, postID, categoryID); err != nil {
			return fmt.Errorf("insert post category: %w", err)
		}
	}
	return nil
}

func (r *postRepository) GetTags(ctx context.Context, postID uuid.UUID) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.SelectContext(ctx, &tags, `
		SELECT t.id, t.name, t.slug
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.name
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("get post tags: %w", err)
	}
	return tags, nil
}

func (r *postRepository) GetCategories(ctx context.Context, postID uuid.UUID) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.SelectContext(ctx, &categories, `
		SELECT c.id, c.name, c.slug
		FROM categories c
		JOIN post_categories pc ON pc.category_id = c.id
		WHERE pc.post_id = $1
		ORDER BY c.name
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("get post categories: %w", err)
	}
	return categories, nil
}

// AddViewCounts folds accumulated per-slug view counters into the posts table.
func (r *postRepository) AddViewCounts(ctx context.Context, counts map[string]int64) error {
	if len(counts) == 0 {
		return nil
	}
	for slug, delta := range counts {
		_, err := r.db.ExecContext(ctx, `
			UPDATE posts SET view_count = view_count + $1 WHERE slug = $2
		`, delta, slug)
		if err != nil {
			return fmt.Errorf("add view count for %s: %w", slug, err)
		}
	}
	return nil
}

// Helper: parse post cursor "timestamp:id"
func parsePostCursor(cursor string) (time.Time, uuid.UUID, error) {
	parts := strings.SplitN(cursor, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, uuid.Nil, fmt.Errorf("invalid cursor format")
	}
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}
	return time.Unix(ts, 0), id, nil
}

// Helper: format post cursor "timestamp:id"
func formatPostCursor(t time.Time, id uuid.UUID) string {
	return fmt.Sprintf("%d:%s", t.Unix(), id)
}
