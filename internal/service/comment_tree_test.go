package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"blogsite-backend/internal/model"
)

func makeComment(id uuid.UUID, parentID *uuid.UUID, createdAt time.Time) model.Comment {
	return model.Comment{
		ID:              id,
		PostID:          uuid.New(),
		Content:         "content of " + id.String()[:8],
		ParentCommentID: parentID,
		IsActive:        true,
		CreatedAt:       createdAt,
	}
}

func TestBuildCommentTree_RootsNewestFirst(t *testing.T) {
	base := time.Now()
	t1, t2, t3 := uuid.New(), uuid.New(), uuid.New()

	// Insert oldest first; the tree must come back newest first
	comments := []model.Comment{
		makeComment(t1, nil, base),
		makeComment(t2, nil, base.Add(time.Minute)),
		makeComment(t3, nil, base.Add(2*time.Minute)),
	}

	tree := buildCommentTree(comments)

	if len(tree) != 3 {
		t.Fatalf("expected 3 roots, got %d", len(tree))
	}
	want := []uuid.UUID{t3, t2, t1}
	for i, root := range tree {
		if root.ID != want[i] {
			t.Errorf("root[%d] = %s, want %s", i, root.ID, want[i])
		}
	}
}

func TestBuildCommentTree_RepliesKeepInsertionOrder(t *testing.T) {
	base := time.Now()
	rootID := uuid.New()
	r1, r2, r3 := uuid.New(), uuid.New(), uuid.New()

	comments := []model.Comment{
		makeComment(rootID, nil, base),
		makeComment(r1, &rootID, base.Add(time.Minute)),
		makeComment(r2, &rootID, base.Add(2*time.Minute)),
		makeComment(r3, &rootID, base.Add(3*time.Minute)),
	}

	tree := buildCommentTree(comments)

	if len(tree) != 1 {
		t.Fatalf("expected 1 root, got %d", len(tree))
	}
	replies := tree[0].Replies
	if len(replies) != 3 {
		t.Fatalf("expected 3 replies, got %d", len(replies))
	}
	want := []uuid.UUID{r1, r2, r3}
	for i, reply := range replies {
		if reply.ID != want[i] {
			t.Errorf("reply[%d] = %s, want %s", i, reply.ID, want[i])
		}
	}
}

func TestBuildCommentTree_NestedReplies(t *testing.T) {
	base := time.Now()
	rootID := uuid.New()
	childID := uuid.New()
	grandchildID := uuid.New()

	comments := []model.Comment{
		makeComment(rootID, nil, base),
		makeComment(childID, &rootID, base.Add(time.Minute)),
		makeComment(grandchildID, &childID, base.Add(2*time.Minute)),
	}

	tree := buildCommentTree(comments)

	if len(tree) != 1 {
		t.Fatalf("expected 1 root, got %d", len(tree))
	}
	if len(tree[0].Replies) != 1 || tree[0].Replies[0].ID != childID {
		t.Fatalf("expected child %s under root", childID)
	}
	if len(tree[0].Replies[0].Replies) != 1 || tree[0].Replies[0].Replies[0].ID != grandchildID {
		t.Fatalf("expected grandchild %s under child", grandchildID)
	}
}

func TestBuildCommentTree_OrphansOfMissingParentDropped(t *testing.T) {
	base := time.Now()
	rootID := uuid.New()
	deletedParentID := uuid.New() // not in the snapshot
	orphanID := uuid.New()

	comments := []model.Comment{
		makeComment(rootID, nil, base),
		makeComment(orphanID, &deletedParentID, base.Add(time.Minute)),
	}

	tree := buildCommentTree(comments)

	if len(tree) != 1 {
		t.Fatalf("expected 1 root, got %d", len(tree))
	}
	if tree[0].ID != rootID {
		t.Errorf("root = %s, want %s", tree[0].ID, rootID)
	}
	// The orphan must not be promoted to root
	for _, root := range tree {
		if root.ID == orphanID {
			t.Error("orphan was promoted to root")
		}
	}
}

func TestBuildCommentTree_Empty(t *testing.T) {
	tree := buildCommentTree(nil)
	if tree == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(tree) != 0 {
		t.Fatalf("expected 0 roots, got %d", len(tree))
	}
}
