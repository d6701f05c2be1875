package service

import (
	"sort"

	"github.com/google/uuid"

	"blogsite-backend/internal/model"
)

// buildCommentTree assembles a flat snapshot of active comments into a forest
// of root comments, each carrying its replies recursively.
//
// A comment whose parent id is missing from the snapshot (the parent was soft
// deleted) is dropped entirely: it is neither promoted to root nor reattached.
// Roots are sorted newest first; reply lists keep encounter order.
func buildCommentTree(comments []model.Comment) []*model.CommentResponse {
	nodes := make(map[uuid.UUID]*model.CommentResponse, len(comments))
	for i := range comments {
		nodes[comments[i].ID] = commentToResponse(&comments[i])
	}

	roots := []*model.CommentResponse{}
	for i := range comments {
		node := nodes[comments[i].ID]
		parentID := comments[i].ParentCommentID
		if parentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*parentID]
		if !ok {
			continue // orphan of a deleted parent
		}
		parent.Replies = append(parent.Replies, node)
	}

	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].CreatedAt.After(roots[j].CreatedAt)
	})

	return roots
}

func commentToResponse(c *model.Comment) *model.CommentResponse {
	return &model.CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		Author:    c.Author,
		ParentID:  c.ParentCommentID,
		Replies:   []*model.CommentResponse{},
	}
}
