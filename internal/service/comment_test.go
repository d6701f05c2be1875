package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"blogsite-backend/internal/mention"
	"blogsite-backend/internal/model"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Function-field mocks: each test overrides only the methods it cares about,
// the rest fall back to not-found / zero values.

type mockCommentRepository struct {
	createFn            func(ctx context.Context, tx *sqlx.Tx, postID, authorID uuid.UUID, content string, parentID *uuid.UUID) (*model.Comment, error)
	getByIDFn           func(ctx context.Context, commentID uuid.UUID) (*model.Comment, error)
	getActiveByPostIDFn func(ctx context.Context, postID uuid.UUID) ([]model.Comment, error)
	softDeleteFn        func(ctx context.Context, commentID uuid.UUID) error

	softDeleteCalls []uuid.UUID
}

func (m *mockCommentRepository) Create(ctx context.Context, tx *sqlx.Tx, postID, authorID uuid.UUID, content string, parentID *uuid.UUID) (*model.Comment, error) {
	if m.createFn != nil {
		return m.createFn(ctx, tx, postID, authorID, content, parentID)
	}
	return nil, errors.New("not implemented")
}

func (m *mockCommentRepository) SetMentions(ctx context.Context, tx *sqlx.Tx, commentID uuid.UUID, userIDs []uuid.UUID) error {
	return nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, commentID uuid.UUID) (*model.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, commentID)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) GetActiveByPostID(ctx context.Context, postID uuid.UUID) ([]model.Comment, error) {
	if m.getActiveByPostIDFn != nil {
		return m.getActiveByPostIDFn(ctx, postID)
	}
	return nil, nil
}

func (m *mockCommentRepository) SoftDelete(ctx context.Context, commentID uuid.UUID) error {
	m.softDeleteCalls = append(m.softDeleteCalls, commentID)
	if m.softDeleteFn != nil {
		return m.softDeleteFn(ctx, commentID)
	}
	return nil
}

type mockPostRepository struct {
	getBySlugFn    func(ctx context.Context, slug string) (*model.Post, error)
	existsBySlugFn func(ctx context.Context, slug string) (bool, error)
}

func (m *mockPostRepository) Create(ctx context.Context, tx *sqlx.Tx, post *model.Post) error {
	return errors.New("not implemented")
}

func (m *mockPostRepository) Update(ctx context.Context, tx *sqlx.Tx, post *model.Post) error {
	return errors.New("not implemented")
}

func (m *mockPostRepository) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	if m.getBySlugFn != nil {
		return m.getBySlugFn(ctx, slug)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	if m.existsBySlugFn != nil {
		return m.existsBySlugFn(ctx, slug)
	}
	return false, nil
}

func (m *mockPostRepository) List(ctx context.Context, status string, cursor *string, limit int) ([]model.Post, *string, error) {
	return nil, nil, nil
}

func (m *mockPostRepository) SetTags(ctx context.Context, tx *sqlx.Tx, postID uuid.UUID, tagIDs []uuid.UUID) error {
	return nil
}

func (m *mockPostRepository) SetCategories(ctx context.Context, tx *sqlx.Tx, postID uuid.UUID, categoryIDs []uuid.UUID) error {
	return nil
}

func (m *mockPostRepository) GetTags(ctx context.Context, postID uuid.UUID) ([]model.Tag, error) {
	return nil, nil
}

func (m *mockPostRepository) GetCategories(ctx context.Context, postID uuid.UUID) ([]model.Category, error) {
	return nil, nil
}

func (m *mockPostRepository) AddViewCounts(ctx context.Context, counts map[string]int64) error {
	return nil
}

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id uuid.UUID) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	getFirstFn         func(ctx context.Context) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	getUnreadCountFn   func(ctx context.Context, userID uuid.UUID) (int, error)
	notifiableIDsFn    func(ctx context.Context) ([]uuid.UUID, error)

	decrementCalls []uuid.UUID
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return errors.New("not implemented")
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetFirst(ctx context.Context) (*model.User, error) {
	if m.getFirstFn != nil {
		return m.getFirstFn(ctx)
	}
	return nil, model.ErrNoUsers
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) GetNotifiableIDs(ctx context.Context) ([]uuid.UUID, error) {
	if m.notifiableIDsFn != nil {
		return m.notifiableIDsFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepository) IncrementUnreadCount(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	return nil
}

func (m *mockUserRepository) DecrementUnreadCount(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	m.decrementCalls = append(m.decrementCalls, userID)
	return nil
}

func (m *mockUserRepository) ResetUnreadCount(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	return nil
}

func (m *mockUserRepository) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.getUnreadCountFn != nil {
		return m.getUnreadCountFn(ctx, userID)
	}
	return 0, nil
}

type notifyCall struct {
	recipientID      uuid.UUID
	notifType        string
	message          string
	relatedPostSlug  string
	relatedCommentID *uuid.UUID
}

type mockNotifier struct {
	failFor map[uuid.UUID]error

	calls []notifyCall
}

func (m *mockNotifier) Notify(ctx context.Context, recipientID uuid.UUID, notifType, message, relatedPostSlug string, relatedCommentID *uuid.UUID) error {
	if err, ok := m.failFor[recipientID]; ok {
		return err
	}
	m.calls = append(m.calls, notifyCall{recipientID, notifType, message, relatedPostSlug, relatedCommentID})
	return nil
}

// =============================================================================
// TEST HELPERS
// =============================================================================

// newTxDB returns a *sqlx.DB expecting exactly one begin/commit pair, for
// tests that drive a service transaction with the repository calls mocked.
func newTxDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	mock.ExpectBegin()
	mock.ExpectCommit()
	return sqlx.NewDb(db, "sqlmock")
}

func testUser(role string) *model.User {
	first, last := "Test", "User"
	return &model.User{
		ID:        uuid.New(),
		Username:  "testuser",
		FirstName: &first,
		LastName:  &last,
		Role:      role,
		CreatedAt: time.Now(),
	}
}

func newCommentService(commentRepo *mockCommentRepository, postRepo *mockPostRepository, userRepo *mockUserRepository) *CommentService {
	return NewCommentService(commentRepo, postRepo, userRepo, mention.NewExtractor(userRepo), nil, nil)
}

// =============================================================================
// CREATE VALIDATION TESTS
// =============================================================================

func TestCommentService_Create_EmptyContent(t *testing.T) {
	svc := newCommentService(&mockCommentRepository{}, &mockPostRepository{}, &mockUserRepository{})

	_, err := svc.Create(context.Background(), "my-post", model.AnonymousAuthor(), model.CreateCommentRequest{
		Content: "   ",
	})

	if !errors.Is(err, model.ErrContentRequired) {
		t.Fatalf("expected ErrContentRequired, got: %v", err)
	}
}

func TestCommentService_Create_ContentTooLong(t *testing.T) {
	svc := newCommentService(&mockCommentRepository{}, &mockPostRepository{}, &mockUserRepository{})

	_, err := svc.Create(context.Background(), "my-post", model.AnonymousAuthor(), model.CreateCommentRequest{
		Content: strings.Repeat("a", model.MaxCommentLength+1),
	})

	if !errors.Is(err, model.ErrContentTooLong) {
		t.Fatalf("expected ErrContentTooLong, got: %v", err)
	}
}

func TestCommentService_Create_PostNotFound(t *testing.T) {
	svc := newCommentService(&mockCommentRepository{}, &mockPostRepository{}, &mockUserRepository{})

	_, err := svc.Create(context.Background(), "missing", model.AnonymousAuthor(), model.CreateCommentRequest{
		Content: "hello",
	})

	if !errors.Is(err, model.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got: %v", err)
	}
}

func TestCommentService_Create_AnonymousWithNoUsers(t *testing.T) {
	postID := uuid.New()
	postRepo := &mockPostRepository{
		getBySlugFn: func(ctx context.Context, slug string) (*model.Post, error) {
			return &model.Post{ID: postID, Slug: slug}, nil
		},
	}
	svc := newCommentService(&mockCommentRepository{}, postRepo, &mockUserRepository{})

	_, err := svc.Create(context.Background(), "my-post", model.AnonymousAuthor(), model.CreateCommentRequest{
		Content: "hello",
	})

	if !errors.Is(err, model.ErrNoUsers) {
		t.Fatalf("expected ErrNoUsers, got: %v", err)
	}
}

func TestCommentService_Create_ParentFromOtherPost(t *testing.T) {
	postID := uuid.New()
	otherPostID := uuid.New()
	parentID := uuid.New()
	author := testUser(model.RoleUser)

	postRepo := &mockPostRepository{
		getBySlugFn: func(ctx context.Context, slug string) (*model.Post, error) {
			return &model.Post{ID: postID, Slug: slug}, nil
		},
	}
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.User, error) {
			return author, nil
		},
	}
	commentRepo := &mockCommentRepository{
		getByIDFn: func(ctx context.Context, commentID uuid.UUID) (*model.Comment, error) {
			return &model.Comment{ID: commentID, PostID: otherPostID, IsActive: true}, nil
		},
	}
	svc := newCommentService(commentRepo, postRepo, userRepo)

	_, err := svc.Create(context.Background(), "my-post", model.AuthenticatedAuthor(author.ID), model.CreateCommentRequest{
		Content:  "a reply",
		ParentID: &parentID,
	})

	if !errors.Is(err, model.ErrParentPostMismatch) {
		t.Fatalf("expected ErrParentPostMismatch, got: %v", err)
	}
}

func TestCommentService_Create_ParentNotFound(t *testing.T) {
	postID := uuid.New()
	parentID := uuid.New()
	author := testUser(model.RoleUser)

	postRepo := &mockPostRepository{
		getBySlugFn: func(ctx context.Context, slug string) (*model.Post, error) {
			return &model.Post{ID: postID, Slug: slug}, nil
		},
	}
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.User, error) {
			return author, nil
		},
	}
	svc := newCommentService(&mockCommentRepository{}, postRepo, userRepo)

	_, err := svc.Create(context.Background(), "my-post", model.AuthenticatedAuthor(author.ID), model.CreateCommentRequest{
		Content:  "a reply",
		ParentID: &parentID,
	})

	if !errors.Is(err, model.ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got: %v", err)
	}
}

// =============================================================================
// CREATE FAN-OUT TESTS
// =============================================================================

// fanOutFixture wires a service whose repositories accept everything, with
// author "testuser" plus resolvable users bob and carol.
func fanOutFixture(t *testing.T, notifier *mockNotifier) (*CommentService, *model.User, *model.User, *model.User, uuid.UUID) {
	t.Helper()
	author := testUser(model.RoleUser)
	bob := &model.User{ID: uuid.New(), Username: "bob"}
	carol := &model.User{ID: uuid.New(), Username: "carol"}
	commentID := uuid.New()

	postRepo := &mockPostRepository{
		getBySlugFn: func(ctx context.Context, slug string) (*model.Post, error) {
			return &model.Post{ID: uuid.New(), Slug: slug}, nil
		},
	}
	users := map[string]*model.User{"bob": bob, "carol": carol, author.Username: author}
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.User, error) {
			return author, nil
		},
		getByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			if u, ok := users[username]; ok {
				return u, nil
			}
			return nil, model.ErrUserNotFound
		},
	}
	commentRepo := &mockCommentRepository{
		createFn: func(ctx context.Context, tx *sqlx.Tx, postID, authorID uuid.UUID, content string, parentID *uuid.UUID) (*model.Comment, error) {
			return &model.Comment{ID: commentID, PostID: postID, AuthorID: authorID, Content: content, IsActive: true}, nil
		},
	}
	svc := NewCommentService(commentRepo, postRepo, userRepo, mention.NewExtractor(userRepo), notifier, newTxDB(t))
	return svc, author, bob, carol, commentID
}

func TestCommentService_Create_NotifiesEachMentionedUser(t *testing.T) {
	notifier := &mockNotifier{}
	svc, author, bob, carol, commentID := fanOutFixture(t, notifier)

	resp, err := svc.Create(context.Background(), "my-post", model.AuthenticatedAuthor(author.ID), model.CreateCommentRequest{
		Content: "cc @bob @carol, again @bob, and @testuser",
	})

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if resp == nil || resp.ID != commentID {
		t.Fatalf("expected the created comment view, got: %+v", resp)
	}
	if len(notifier.calls) != 2 {
		t.Fatalf("two users besides the author were mentioned, expected exactly 2 notifications, got %d", len(notifier.calls))
	}

	byRecipient := make(map[uuid.UUID]notifyCall, len(notifier.calls))
	for _, c := range notifier.calls {
		byRecipient[c.recipientID] = c
		if c.notifType != model.NotificationTypeMention {
			t.Errorf("notification type = %q, want %q", c.notifType, model.NotificationTypeMention)
		}
		if c.relatedCommentID == nil || *c.relatedCommentID != commentID {
			t.Errorf("notification must reference comment %s", commentID)
		}
		if c.relatedPostSlug != "my-post" {
			t.Errorf("related post slug = %q, want %q", c.relatedPostSlug, "my-post")
		}
	}
	if _, ok := byRecipient[bob.ID]; !ok {
		t.Error("bob was mentioned but not notified")
	}
	if _, ok := byRecipient[carol.ID]; !ok {
		t.Error("carol was mentioned but not notified")
	}
	if _, ok := byRecipient[author.ID]; ok {
		t.Error("the author must not be notified about their own mention")
	}
}

func TestCommentService_Create_NotifyFailureDoesNotFailCreation(t *testing.T) {
	notifier := &mockNotifier{}
	svc, author, bob, carol, commentID := fanOutFixture(t, notifier)
	notifier.failFor = map[uuid.UUID]error{bob.ID: errors.New("db connection lost")}

	resp, err := svc.Create(context.Background(), "my-post", model.AuthenticatedAuthor(author.ID), model.CreateCommentRequest{
		Content: "cc @bob and @carol",
	})

	if err != nil {
		t.Fatalf("a failed notification must not fail the committed comment, got: %v", err)
	}
	if resp == nil || resp.ID != commentID {
		t.Fatalf("expected the created comment view, got: %+v", resp)
	}
	if len(notifier.calls) != 1 || notifier.calls[0].recipientID != carol.ID {
		t.Fatalf("remaining recipients must still be notified, got %+v", notifier.calls)
	}
}

// =============================================================================
// DELETE TESTS
// =============================================================================

func TestCommentService_Delete_NonAdminForbidden(t *testing.T) {
	user := testUser(model.RoleUser)
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.User, error) {
			return user, nil
		},
	}
	commentRepo := &mockCommentRepository{}
	svc := newCommentService(commentRepo, &mockPostRepository{}, userRepo)

	err := svc.Delete(context.Background(), uuid.New(), user.ID)

	if !errors.Is(err, model.ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got: %v", err)
	}
	if len(commentRepo.softDeleteCalls) != 0 {
		t.Error("soft delete must not run for non-admins")
	}
}

func TestCommentService_Delete_AdminSoftDeletes(t *testing.T) {
	admin := testUser(model.RoleAdmin)
	commentID := uuid.New()

	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.User, error) {
			return admin, nil
		},
	}
	commentRepo := &mockCommentRepository{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
			return &model.Comment{ID: id, IsActive: true}, nil
		},
	}
	svc := newCommentService(commentRepo, &mockPostRepository{}, userRepo)

	if err := svc.Delete(context.Background(), commentID, admin.ID); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(commentRepo.softDeleteCalls) != 1 || commentRepo.softDeleteCalls[0] != commentID {
		t.Fatalf("expected one soft delete of %s, got %v", commentID, commentRepo.softDeleteCalls)
	}
}

func TestCommentService_Delete_AlreadyDeletedIsNoOp(t *testing.T) {
	admin := testUser(model.RoleAdmin)
	deletedAt := time.Now().Add(-time.Hour)

	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.User, error) {
			return admin, nil
		},
	}
	commentRepo := &mockCommentRepository{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
			return &model.Comment{ID: id, IsActive: false, DeletedAt: &deletedAt}, nil
		},
	}
	svc := newCommentService(commentRepo, &mockPostRepository{}, userRepo)

	if err := svc.Delete(context.Background(), uuid.New(), admin.ID); err != nil {
		t.Fatalf("double delete must be a no-op, got: %v", err)
	}
	if len(commentRepo.softDeleteCalls) != 0 {
		t.Error("soft delete must not run again for an already deleted comment")
	}
}

func TestCommentService_Delete_CommentNotFound(t *testing.T) {
	admin := testUser(model.RoleAdmin)
	userRepo := &mockUserRepository{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*model.User, error) {
			return admin, nil
		},
	}
	svc := newCommentService(&mockCommentRepository{}, &mockPostRepository{}, userRepo)

	err := svc.Delete(context.Background(), uuid.New(), admin.ID)

	if !errors.Is(err, model.ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got: %v", err)
	}
}

// =============================================================================
// MENTION HELPER TESTS
// =============================================================================

func TestMentionRecipients_ExcludesAuthor(t *testing.T) {
	author := testUser(model.RoleUser)
	other := testUser(model.RoleUser)

	recipients := mentionRecipients(author, []*model.User{author, other})

	if len(recipients) != 1 {
		t.Fatalf("expected 1 recipient, got %d", len(recipients))
	}
	if recipients[0].ID != other.ID {
		t.Errorf("recipient = %s, want %s", recipients[0].ID, other.ID)
	}
}

func TestMentionMessage_ShortContentKeptWhole(t *testing.T) {
	author := testUser(model.RoleUser)

	got := mentionMessage(author, "hello @bob")

	want := `Test User mentioned you in a comment: "hello @bob"`
	if got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestMentionMessage_LongContentTruncated(t *testing.T) {
	author := testUser(model.RoleUser)
	content := strings.Repeat("x", 80)

	got := mentionMessage(author, content)

	wantQuote := strings.Repeat("x", 50) + "..."
	if !strings.Contains(got, wantQuote) {
		t.Errorf("message %q should quote the first 50 chars followed by ellipsis", got)
	}
	if strings.Contains(got, strings.Repeat("x", 51)) {
		t.Errorf("message %q quotes more than 50 chars", got)
	}
}

func TestTruncateMessage_ExactLimitUntouched(t *testing.T) {
	msg := strings.Repeat("y", 50)
	if got := truncateMessage(msg, 50); got != msg {
		t.Errorf("truncate at exact limit changed the message: %q", got)
	}
}

func TestTruncateMessage_MultibyteContentStaysValid(t *testing.T) {
	content := strings.Repeat("気", 60)

	got := truncateMessage(content, 50)

	if !utf8.ValidString(got) {
		t.Fatalf("truncated message is not valid UTF-8: %q", got)
	}
	want := strings.Repeat("気", 50) + "..."
	if got != want {
		t.Errorf("truncate = %q, want %q", got, want)
	}
}
