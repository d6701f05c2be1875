package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"blogsite-backend/internal/cache"
	"blogsite-backend/internal/model"
	"blogsite-backend/internal/queue"
	"blogsite-backend/internal/repository"
)

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// PostService handles blog post CRUD. Publishing a post emits an event to the
// notification stream; workers fan NEW_POST notifications out from there.
type PostService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	db        *sqlx.DB
	publisher queue.Publisher // can be nil when Redis is not configured
	views     cache.ViewCache // can be nil when Redis is not configured
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	db *sqlx.DB,
	publisher queue.Publisher,
	views cache.ViewCache,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		db:        db,
		publisher: publisher,
		views:     views,
	}
}

// Create inserts a post with its tag and category associations in one
// transaction. The slug is derived from the title and must be unique.
func (s *PostService) Create(ctx context.Context, authorID uuid.UUID, req model.CreatePostRequest) (*model.Post, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, model.ErrTitleRequired
	}
	if len(req.Title) > model.MaxPostTitleLength {
		return nil, model.ErrTitleTooLong
	}

	slug := Slugify(req.Title)
	exists, err := s.postRepo.ExistsBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("check slug: %w", err)
	}
	if exists {
		return nil, model.ErrSlugExists
	}

	post := &model.Post{
		AuthorID:      authorID,
		Title:         req.Title,
		Slug:          slug,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		Status:        model.PostStatusDraft,
	}
	if req.Publish {
		now := time.Now()
		post.Status = model.PostStatusPublished
		post.PublishedAt = &now
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.postRepo.Create(ctx, tx, post); err != nil {
		return nil, err
	}
	if err := s.postRepo.SetTags(ctx, tx, post.ID, req.TagIDs); err != nil {
		return nil, err
	}
	if err := s.postRepo.SetCategories(ctx, tx, post.ID, req.CategoryIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	log.Printf("[PostService] User %s created post %s (status=%s)", authorID, post.Slug, post.Status)

	if post.IsPublished() {
		s.announcePublished(ctx, post)
	}

	return s.withAssociations(ctx, post)
}

// GetBySlug returns a post for public reading. Drafts and deleted posts are
// hidden unless includeHidden is set (admin views). Reads are counted
// best-effort in the view cache.
func (s *PostService) GetBySlug(ctx context.Context, slug string, includeHidden bool) (*model.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() && !includeHidden {
		return nil, model.ErrPostNotFound
	}

	if s.views != nil && post.IsPublished() {
		if err := s.views.Record(ctx, slug); err != nil {
			log.Printf("[PostService] Failed to record view for %s: %v", slug, err)
		}
	}

	return s.withAssociations(ctx, post)
}

// List returns published posts newest first, keyset-paginated.
func (s *PostService) List(ctx context.Context, cursor *string, limit int) (*model.PostListResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	posts, nextCursor, err := s.postRepo.List(ctx, model.PostStatusPublished, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return &model.PostListResponse{
		Posts:      posts,
		NextCursor: nextCursor,
		HasMore:    nextCursor != nil,
	}, nil
}

// Update patches a post. A draft transitioning to published gets a
// published_at stamp and triggers the NEW_POST fan-out.
func (s *PostService) Update(ctx context.Context, slug string, req model.UpdatePostRequest) (*model.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, model.ErrTitleRequired
		}
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Excerpt != nil {
		post.Excerpt = req.Excerpt
	}
	if req.FeaturedImage != nil {
		post.FeaturedImage = req.FeaturedImage
	}

	justPublished := false
	if req.Publish != nil && *req.Publish && !post.IsPublished() {
		now := time.Now()
		post.Status = model.PostStatusPublished
		post.PublishedAt = &now
		justPublished = true
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.postRepo.Update(ctx, tx, post); err != nil {
		return nil, err
	}
	if req.TagIDs != nil {
		if err := s.postRepo.SetTags(ctx, tx, post.ID, req.TagIDs); err != nil {
			return nil, err
		}
	}
	if req.CategoryIDs != nil {
		if err := s.postRepo.SetCategories(ctx, tx, post.ID, req.CategoryIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	if justPublished {
		s.announcePublished(ctx, post)
	}

	return s.withAssociations(ctx, post)
}

// Delete marks the post deleted. Comments and notifications that reference
// the slug stay in place.
func (s *PostService) Delete(ctx context.Context, slug string) error {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if post.Status == model.PostStatusDeleted {
		return nil
	}
	post.Status = model.PostStatusDeleted

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.postRepo.Update(ctx, tx, post); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	log.Printf("[PostService] Post %s marked deleted", slug)
	return nil
}

// Trending returns the slugs of the most viewed published posts. Empty when
// Redis is not configured.
func (s *PostService) Trending(ctx context.Context, limit int) ([]string, error) {
	if s.views == nil {
		return []string{}, nil
	}
	return s.views.Trending(ctx, limit)
}

// FlushViewCounts drains the Redis view counters into the posts table.
// Called periodically by the server.
func (s *PostService) FlushViewCounts(ctx context.Context) error {
	if s.views == nil {
		return nil
	}
	counts, err := s.views.Drain(ctx)
	if err != nil {
		return fmt.Errorf("drain views: %w", err)
	}
	if len(counts) == 0 {
		return nil
	}
	if err := s.postRepo.AddViewCounts(ctx, counts); err != nil {
		return err
	}
	log.Printf("[PostService] Flushed view counts for %d posts", len(counts))
	return nil
}

// announcePublished emits the post_published event; best-effort, failures
// are logged and not surfaced to the caller since the post is committed.
func (s *PostService) announcePublished(ctx context.Context, post *model.Post) {
	if s.publisher == nil {
		return
	}
	event := queue.NewPostPublishedEvent(post.ID, post.Slug, post.Title, post.AuthorID)
	if _, err := s.publisher.Publish(ctx, queue.StreamNotifications, event); err != nil {
		log.Printf("[PostService] Failed to publish post_published event for %s: %v", post.Slug, err)
	}
}

func (s *PostService) withAssociations(ctx context.Context, post *model.Post) (*model.Post, error) {
	tags, err := s.postRepo.GetTags(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	categories, err := s.postRepo.GetCategories(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	post.Tags = tags
	post.Categories = categories

	if author, err := s.userRepo.GetByID(ctx, post.AuthorID); err == nil {
		post.Author = &model.UserSummary{
			ID:       author.ID,
			Username: author.Username,
			FullName: author.FullName(),
		}
	}
	return post, nil
}

// Slugify lowercases the title and collapses every non-alphanumeric run into
// a single dash.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugCleaner.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
