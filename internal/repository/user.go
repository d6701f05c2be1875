package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"blogsite-backend/internal/model"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, email, password_hashed, first_name, last_name, role,
	email_notifications_enabled, unread_notification_count, created_at, updated_at`

// Create inserts a new user. Username and email carry unique constraints;
// violations map to the model sentinel errors.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (username, email, password_hashed, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	err := r.db.GetContext(ctx, user, query,
		user.Username, user.Email, user.PasswordHashed, user.FirstName, user.LastName, user.Role)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "users_email_key":
				return model.ErrEmailExists
			default:
				return model.ErrUsernameExists
			}
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &user, nil
}

// GetFirst returns the oldest user row. Used as the attribution target for
// anonymous comments.
func (r *userRepository) GetFirst(ctx context.Context) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC LIMIT 1`)
	if err == sql.ErrNoRows {
		return nil, model.ErrNoUsers
	}
	if err != nil {
		return nil, fmt.Errorf("get first user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
	if err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}
	return exists, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

func (r *userRepository) GetNotifiableIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM users WHERE email_notifications_enabled = true`)
	if err != nil {
		return nil, fmt.Errorf("get notifiable users: %w", err)
	}
	return ids, nil
}

// IncrementUnreadCount adds one to the denormalized unread counter.
func (r *userRepository) IncrementUnreadCount(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE users SET unread_notification_count = unread_notification_count + 1 WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("increment unread count: %w", err)
	}
	return requireUserRow(res)
}

// DecrementUnreadCount subtracts one, skipping the write when the counter is
// already 0 so it can never go negative.
func (r *userRepository) DecrementUnreadCount(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users SET unread_notification_count = unread_notification_count - 1
		WHERE id = $1 AND unread_notification_count > 0
	`, userID)
	if err != nil {
		return fmt.Errorf("decrement unread count: %w", err)
	}
	return nil
}

// ResetUnreadCount sets the counter to exactly 0 regardless of its value.
func (r *userRepository) ResetUnreadCount(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE users SET unread_notification_count = 0 WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("reset unread count: %w", err)
	}
	return requireUserRow(res)
}

// GetUnreadCount returns the cached counter column. Callers rely on the
// ledger keeping it in sync; this is deliberately not a COUNT(*) recount.
func (r *userRepository) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT unread_notification_count FROM users WHERE id = $1`, userID)
	if err == sql.ErrNoRows {
		return 0, model.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get unread count: %w", err)
	}
	return count, nil
}

func requireUserRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
