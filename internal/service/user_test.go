package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"blogsite-backend/internal/model"
)

func TestUserService_Register_Success(t *testing.T) {
	mockRepo := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			user.ID = uuid.New()
			user.CreatedAt = time.Now()
			user.UpdatedAt = time.Now()
			return nil
		},
	}
	svc := NewUserService(mockRepo)

	first := "Test"
	req := &model.RegisterRequest{
		Username:  "testuser",
		Email:     "test@example.com",
		Password:  "securepassword123",
		FirstName: &first,
	}

	user, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if user.Username != req.Username {
		t.Errorf("username = %q, want %q", user.Username, req.Username)
	}
	if user.Role != model.RoleUser {
		t.Errorf("role = %q, want %q", user.Role, model.RoleUser)
	}
	if !user.EmailNotificationsEnabled {
		t.Error("new accounts should default to email notifications enabled")
	}

	// Password must be hashed, and the hash must verify
	if user.PasswordHashed == req.Password {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestUserService_Register_UsernameTaken(t *testing.T) {
	mockRepo := &mockUserRepository{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return true, nil
		},
	}
	svc := NewUserService(mockRepo)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username: "taken",
		Email:    "new@example.com",
		Password: "pw",
	})

	if !errors.Is(err, model.ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got: %v", err)
	}
}

func TestUserService_Register_EmailTaken(t *testing.T) {
	mockRepo := &mockUserRepository{
		existsByEmailFn: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	svc := NewUserService(mockRepo)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Username: "fresh",
		Email:    "taken@example.com",
		Password: "pw",
	})

	if !errors.Is(err, model.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got: %v", err)
	}
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.DefaultCost)
	mockRepo := &mockUserRepository{
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: uuid.New(), Username: username, PasswordHashed: string(hash)}, nil
		},
	}
	svc := NewUserService(mockRepo)

	_, err := svc.Login(context.Background(), &model.LoginRequest{Username: "u", Password: "wrong"})

	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestUserService_Login_UnknownUsernameLooksLikeBadCredentials(t *testing.T) {
	svc := NewUserService(&mockUserRepository{})

	_, err := svc.Login(context.Background(), &model.LoginRequest{Username: "ghost", Password: "pw"})

	// Must not leak whether the username exists
	if !errors.Is(err, model.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestUser_FullName(t *testing.T) {
	first, last := "Ada", "Lovelace"

	tests := []struct {
		name string
		user model.User
		want string
	}{
		{"both parts", model.User{Username: "ada", FirstName: &first, LastName: &last}, "Ada Lovelace"},
		{"first only", model.User{Username: "ada", FirstName: &first}, "Ada"},
		{"last only", model.User{Username: "ada", LastName: &last}, "Lovelace"},
		{"username fallback", model.User{Username: "ada"}, "ada"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.FullName(); got != tt.want {
				t.Errorf("FullName() = %q, want %q", got, tt.want)
			}
		})
	}
}
