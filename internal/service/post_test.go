package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"blogsite-backend/internal/model"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"  Leading & Trailing!  ", "leading-trailing"},
		{"Already-Slugged", "already-slugged"},
		{"Crème Brûlée 101", "cr-me-br-l-e-101"},
		{"UPPER CASE", "upper-case"},
		{"a  b   c", "a-b-c"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.title); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestPostService_Create_TitleRequired(t *testing.T) {
	svc := NewPostService(&mockPostRepository{}, &mockUserRepository{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), uuid.New(), model.CreatePostRequest{Title: "  "})

	if !errors.Is(err, model.ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got: %v", err)
	}
}

func TestPostService_Create_TitleTooLong(t *testing.T) {
	svc := NewPostService(&mockPostRepository{}, &mockUserRepository{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), uuid.New(), model.CreatePostRequest{
		Title: strings.Repeat("t", model.MaxPostTitleLength+1),
	})

	if !errors.Is(err, model.ErrTitleTooLong) {
		t.Fatalf("expected ErrTitleTooLong, got: %v", err)
	}
}

func TestPostService_Create_SlugCollision(t *testing.T) {
	postRepo := &mockPostRepository{
		existsBySlugFn: func(ctx context.Context, slug string) (bool, error) {
			return slug == "taken-title", nil
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), uuid.New(), model.CreatePostRequest{Title: "Taken Title"})

	if !errors.Is(err, model.ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got: %v", err)
	}
}

func TestPostService_GetBySlug_HidesDraftsFromPublic(t *testing.T) {
	postRepo := &mockPostRepository{
		getBySlugFn: func(ctx context.Context, slug string) (*model.Post, error) {
			return &model.Post{Slug: slug, Status: model.PostStatusDraft}, nil
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{}, nil, nil, nil)

	_, err := svc.GetBySlug(context.Background(), "secret-draft", false)

	if !errors.Is(err, model.ErrPostNotFound) {
		t.Fatalf("draft must look like 404 to the public, got: %v", err)
	}
}

func TestPostService_GetBySlug_AdminSeesDrafts(t *testing.T) {
	postRepo := &mockPostRepository{
		getBySlugFn: func(ctx context.Context, slug string) (*model.Post, error) {
			return &model.Post{Slug: slug, Status: model.PostStatusDraft}, nil
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{}, nil, nil, nil)

	post, err := svc.GetBySlug(context.Background(), "secret-draft", true)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if post.Status != model.PostStatusDraft {
		t.Errorf("status = %q, want draft", post.Status)
	}
}
