package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"blogsite-backend/internal/mention"
	"blogsite-backend/internal/model"
	"blogsite-backend/internal/repository"
)

// mentionMessageLimit is how much of the comment text is quoted in a mention
// notification before being cut off.
const mentionMessageLimit = 50

// Notifier appends entries to recipients' notification ledgers.
// Implemented by NotificationService.
type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, notifType, message, relatedPostSlug string, relatedCommentID *uuid.UUID) error
}

// CommentService orchestrates comment creation, tree rendering and soft
// deletion for a post's comment section.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	extractor   *mention.Extractor
	notifier    Notifier
	db          *sqlx.DB
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	extractor *mention.Extractor,
	notifier Notifier,
	db *sqlx.DB,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		extractor:   extractor,
		notifier:    notifier,
		db:          db,
	}
}

// Create adds a comment to the post addressed by slug. The comment row and
// its mention associations commit in one transaction; mention notifications
// are appended after the commit, one ledger entry per mentioned user,
// skipping the author.
func (s *CommentService) Create(ctx context.Context, postSlug string, author model.AuthorRef, req model.CreateCommentRequest) (*model.CommentResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, model.ErrContentRequired
	}
	if len(req.Content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	post, err := s.postRepo.GetBySlug(ctx, postSlug)
	if err != nil {
		return nil, err // ErrPostNotFound or wrapped error
	}

	authorUser, err := s.resolveAuthor(ctx, author)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err // ErrCommentNotFound or wrapped error
		}
		if parent.PostID != post.ID {
			return nil, model.ErrParentPostMismatch
		}
	}

	mentioned, err := s.extractor.Extract(ctx, req.Content)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	comment, err := s.commentRepo.Create(ctx, tx, post.ID, authorUser.ID, req.Content, req.ParentID)
	if err != nil {
		return nil, err
	}

	// An empty mention set still commits (clears any stale rows).
	mentionIDs := make([]uuid.UUID, len(mentioned))
	for i, u := range mentioned {
		mentionIDs[i] = u.ID
	}
	if err := s.commentRepo.SetMentions(ctx, tx, comment.ID, mentionIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	// Notifications reference the committed comment id, so they only start
	// once the comment exists. Each Notify is its own atomic ledger write and
	// is best-effort: the comment is already committed, so a failed fan-out
	// is logged per recipient instead of failing the creation.
	for _, recipient := range mentionRecipients(authorUser, mentioned) {
		message := mentionMessage(authorUser, req.Content)
		if err := s.notifier.Notify(ctx, recipient.ID, model.NotificationTypeMention, message, postSlug, &comment.ID); err != nil {
			log.Printf("[CommentService] Failed to notify mentioned user %s for comment %s: %v", recipient.ID, comment.ID, err)
		}
	}

	comment.Author = &model.UserSummary{
		ID:       authorUser.ID,
		Username: authorUser.Username,
		FullName: authorUser.FullName(),
	}

	log.Printf("[CommentService] User %s commented on post %s (mentions=%d)", authorUser.ID, postSlug, len(mentioned))
	return commentToResponse(comment), nil
}

// GetForPost returns the comment forest of a post: active comments only,
// roots newest first.
func (s *CommentService) GetForPost(ctx context.Context, postSlug string) ([]*model.CommentResponse, error) {
	post, err := s.postRepo.GetBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.GetActiveByPostID(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}

	return buildCommentTree(comments), nil
}

// Delete soft-deletes a comment. Only admins may delete; deleting an already
// deleted comment is a no-op (the original deleted_at is preserved).
func (s *CommentService) Delete(ctx context.Context, commentID, requestingUserID uuid.UUID) error {
	requester, err := s.userRepo.GetByID(ctx, requestingUserID)
	if err != nil {
		return err // ErrUserNotFound or wrapped error
	}
	if !requester.IsAdmin() {
		return model.ErrNotAdmin
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err // ErrCommentNotFound or wrapped error
	}
	if !comment.IsActive {
		return nil // already deleted
	}

	if err := s.commentRepo.SoftDelete(ctx, commentID); err != nil {
		return err
	}

	log.Printf("[CommentService] Admin %s soft-deleted comment %s", requestingUserID, commentID)
	return nil
}

// resolveAuthor maps an AuthorRef to a concrete user. Anonymous comments are
// attributed to the first user in the system (the seeded site owner).
func (s *CommentService) resolveAuthor(ctx context.Context, author model.AuthorRef) (*model.User, error) {
	if id, ok := author.UserID(); ok {
		return s.userRepo.GetByID(ctx, id)
	}
	return s.userRepo.GetFirst(ctx) // ErrNoUsers when the system is empty
}

// mentionRecipients filters the author out of the mentioned set: nobody gets
// notified about mentioning themselves.
func mentionRecipients(author *model.User, mentioned []*model.User) []*model.User {
	recipients := make([]*model.User, 0, len(mentioned))
	for _, u := range mentioned {
		if u.ID != author.ID {
			recipients = append(recipients, u)
		}
	}
	return recipients
}

func mentionMessage(author *model.User, content string) string {
	return fmt.Sprintf("%s mentioned you in a comment: \"%s\"",
		author.FullName(), truncateMessage(content, mentionMessageLimit))
}

// truncateMessage cuts the quoted content at maxLength characters, not
// bytes, so multibyte text is never split mid-rune.
func truncateMessage(message string, maxLength int) string {
	runes := []rune(message)
	if len(runes) <= maxLength {
		return message
	}
	return string(runes[:maxLength]) + "..."
}
