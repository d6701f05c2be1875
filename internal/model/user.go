package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User represents a user in the system
type User struct {
	ID                        uuid.UUID `db:"id" json:"id"`
	Username                  string    `db:"username" json:"username"`
	Email                     string    `db:"email" json:"email"`
	PasswordHashed            string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	FirstName                 *string   `db:"first_name" json:"first_name"`
	LastName                  *string   `db:"last_name" json:"last_name"`
	Role                      string    `db:"role" json:"role"`
	EmailNotificationsEnabled bool      `db:"email_notifications_enabled" json:"email_notifications_enabled"`
	UnreadNotificationCount   int       `db:"unread_notification_count" json:"unread_notification_count"`
	CreatedAt                 time.Time `db:"created_at" json:"created_at"`
	UpdatedAt                 time.Time `db:"updated_at" json:"updated_at"`
}

// FullName returns the display name: "First Last" when both parts are set,
// a single part when only one is, and the username as a last resort.
func (u *User) FullName() string {
	switch {
	case u.FirstName != nil && u.LastName != nil:
		return *u.FirstName + " " + *u.LastName
	case u.FirstName != nil:
		return *u.FirstName
	case u.LastName != nil:
		return *u.LastName
	default:
		return u.Username
	}
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserSummary is the lightweight author view embedded in comments.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
}

// AuthorRef identifies who is writing a comment: an authenticated user or an
// anonymous visitor. Anonymous comments are attributed to the seeded site
// owner (the first user in the system) by CommentService.
type AuthorRef struct {
	userID *uuid.UUID
}

// AuthenticatedAuthor builds an AuthorRef for a known user.
func AuthenticatedAuthor(userID uuid.UUID) AuthorRef {
	return AuthorRef{userID: &userID}
}

// AnonymousAuthor builds an AuthorRef for an unauthenticated visitor.
func AnonymousAuthor() AuthorRef {
	return AuthorRef{}
}

// UserID returns the referenced user id and whether the author is authenticated.
func (a AuthorRef) UserID() (uuid.UUID, bool) {
	if a.userID == nil {
		return uuid.Nil, false
	}
	return *a.userID, true
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrEmailExists is returned when attempting to create a user with a taken email
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoUsers is returned when an anonymous comment arrives and the system
	// has no users to attribute it to
	ErrNoUsers = errors.New("no users found in the system")

	// ErrNotAdmin is returned when an operation requires the admin role
	ErrNotAdmin = errors.New("admin privilege required")
)
