package forum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openagora/forum/models"
)

func ptr(id uint) *uint { return &id }

func TestBuildCommentTreeNesting(t *testing.T) {
	comments := []models.Comment{
		{ID: 1, ThreadID: 1, Depth: 0},
		{ID: 2, ThreadID: 1, ParentID: ptr(1), Depth: 1},
		{ID: 3, ThreadID: 1, ParentID: ptr(1), Depth: 1},
		{ID: 4, ThreadID: 1, ParentID: ptr(2), Depth: 2},
		{ID: 5, ThreadID: 1, Depth: 0},
	}

	roots := BuildCommentTree(comments)
	require.Len(t, roots, 2)

	first := roots[0]
	assert.Equal(t, uint(1), first.Comment.ID)
	require.Len(t, first.Replies, 2)
	assert.Equal(t, uint(2), first.Replies[0].Comment.ID)
	assert.Equal(t, uint(3), first.Replies[1].Comment.ID)
	require.Len(t, first.Replies[0].Replies, 1)
	assert.Equal(t, uint(4), first.Replies[0].Replies[0].Comment.ID)

	assert.Equal(t, uint(5), roots[1].Comment.ID)
	assert.Empty(t, roots[1].Replies)
}

func TestBuildCommentTreePreservesEveryComment(t *testing.T) {
	comments := []models.Comment{
		{ID: 1},
		{ID: 2, ParentID: ptr(1)},
		{ID: 3, ParentID: ptr(2)},
		{ID: 4, ParentID: ptr(99)}, // parent never existed
		{ID: 5},
	}

	roots := BuildCommentTree(comments)
	assert.Equal(t, len(comments), countNodes(roots))
}

func TestBuildCommentTreeOrphanPromotedToRoot(t *testing.T) {
	comments := []models.Comment{
		{ID: 1},
		{ID: 2, ParentID: ptr(50), Depth: 3},
	}

	roots := BuildCommentTree(comments)
	require.Len(t, roots, 2)
	assert.Equal(t, uint(2), roots[1].Comment.ID)
}

func TestBuildCommentTreeDeepChain(t *testing.T) {
	var comments []models.Comment
	comments = append(comments, models.Comment{ID: 1, Depth: 0})
	for i := uint(2); i <= 40; i++ {
		parent := i - 1
		comments = append(comments, models.Comment{ID: i, ParentID: &parent, Depth: int(i) - 1})
	}

	roots := BuildCommentTree(comments)
	require.Len(t, roots, 1)

	depth := 0
	node := roots[0]
	for len(node.Replies) > 0 {
		require.Len(t, node.Replies, 1)
		node = node.Replies[0]
		depth++
	}
	assert.Equal(t, 39, depth)
	assert.Empty(t, VerifyCommentDepths(roots))
}

func TestBuildCommentTreeSiblingOrderStable(t *testing.T) {
	comments := []models.Comment{
		{ID: 10},
		{ID: 11, ParentID: ptr(10)},
		{ID: 12, ParentID: ptr(10)},
		{ID: 13, ParentID: ptr(10)},
	}

	roots := BuildCommentTree(comments)
	require.Len(t, roots, 1)
	require.Len(t, roots[0].Replies, 3)
	for i, want := range []uint{11, 12, 13} {
		assert.Equal(t, want, roots[0].Replies[i].Comment.ID)
	}
}

func TestVerifyCommentDepths(t *testing.T) {
	comments := []models.Comment{
		{ID: 1, Depth: 0},
		{ID: 2, ParentID: ptr(1), Depth: 1},
		{ID: 3, ParentID: ptr(2), Depth: 5}, // stored depth is wrong
		{ID: 4, ParentID: ptr(9), Depth: 2}, // orphan, implied depth 0
	}

	roots := BuildCommentTree(comments)
	mismatched := VerifyCommentDepths(roots)
	assert.ElementsMatch(t, []uint{3, 4}, mismatched)
}

func TestBuildCommentTreeEmptyInput(t *testing.T) {
	assert.Empty(t, BuildCommentTree(nil))
	assert.Empty(t, BuildCommentTree([]models.Comment{}))
}

func countNodes(nodes []*CommentNode) int {
	n := 0
	for _, node := range nodes {
		n += 1 + countNodes(node.Replies)
	}
	return n
}
