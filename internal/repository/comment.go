package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"blogsite-backend/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new active comment inside the caller's transaction so the
// row and its mention associations commit together.
func (r *commentRepository) Create(ctx context.Context, tx *sqlx.Tx, postID, authorID uuid.UUID, content string, parentID *uuid.UUID) (*model.Comment, error) {
	query := `
		INSERT INTO post_comments (post_id, author_id, content, parent_comment_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, post_id, author_id, content, parent_comment_id, is_active, deleted_at, created_at
	`
	var comment model.Comment
	err := tx.GetContext(ctx, &comment, query, postID, authorID, content, parentID)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &comment, nil
}

// SetMentions replaces the comment's mention rows. Called in the same
// transaction as Create; an empty set still commits and leaves no rows.
func (r *commentRepository) SetMentions(ctx context.Context, tx *sqlx.Tx, commentID uuid.UUID, userIDs []uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM comment_mentions WHERE comment_id = $1`, commentID); err != nil {
		return fmt.Errorf("clear mentions: %w", err)
	}
	for _, userID := range userIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO comment_mentions (comment_id, user_id) VALUES ($1, $2)
		`, commentID, userID)
		if err != nil {
			return fmt.Errorf("insert mention: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a single comment, active or not.
func (r *commentRepository) GetByID(ctx context.Context, commentID uuid.UUID) (*model.Comment, error) {
	query := `
		SELECT id, post_id, author_id, content, parent_comment_id, is_active, deleted_at, created_at
		FROM post_comments
		WHERE id = $1
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}

// GetActiveByPostID returns the active comments of a post with the author
// joined in. Row order is unspecified; the tree builder sorts roots itself.
func (r *commentRepository) GetActiveByPostID(ctx context.Context, postID uuid.UUID) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.author_id, c.content, c.parent_comment_id, c.is_active, c.deleted_at, c.created_at,
		       u.id as "author.id", u.username as "author.username",
		       u.first_name as "author.first_name", u.last_name as "author.last_name"
		FROM post_comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1 AND c.is_active = true
	`

	// Struct that can scan the joined author data
	type commentRow struct {
		ID              uuid.UUID  `db:"id"`
		PostID          uuid.UUID  `db:"post_id"`
		AuthorID        uuid.UUID  `db:"author_id"`
		Content         string     `db:"content"`
		ParentCommentID *uuid.UUID `db:"parent_comment_id"`
		IsActive        bool       `db:"is_active"`
		DeletedAt       *time.Time `db:"deleted_at"`
		CreatedAt       time.Time  `db:"created_at"`
		AuthorJoinedID  uuid.UUID  `db:"author.id"`
		AuthorUsername  string     `db:"author.username"`
		AuthorFirstName *string    `db:"author.first_name"`
		AuthorLastName  *string    `db:"author.last_name"`
	}

	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, postID); err != nil {
		return nil, fmt.Errorf("get active comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		author := model.User{
			ID:        row.AuthorJoinedID,
			Username:  row.AuthorUsername,
			FirstName: row.AuthorFirstName,
			LastName:  row.AuthorLastName,
		}
		comments[i] = model.Comment{
			ID:              row.ID,
			PostID:          row.PostID,
			AuthorID:        row.AuthorID,
			Content:         row.Content,
			ParentCommentID: row.ParentCommentID,
			IsActive:        row.IsActive,
			DeletedAt:       row.DeletedAt,
			CreatedAt:       row.CreatedAt,
			Author: &model.UserSummary{
				ID:       author.ID,
				Username: author.Username,
				FullName: author.FullName(),
			},
		}
	}

	return comments, nil
}

// SoftDelete deactivates a comment and stamps deleted_at. Content and author
// are untouched; replies keep their parent link.
func (r *commentRepository) SoftDelete(ctx context.Context, commentID uuid.UUID) error {
	// Zero affected rows means the comment was already inactive (deleted by
	// a concurrent admin); both resolve to the same end state, so no error.
	_, err := r.db.ExecContext(ctx, `
		UPDATE post_comments
		SET is_active = false, deleted_at = now()
		WHERE id = $1 AND is_active = true
	`, commentID)
	if err != nil {
		return fmt.Errorf("soft delete comment: %w", err)
	}
	return nil
}
