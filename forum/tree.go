package forum

import "github.com/openagora/forum/models"

// CommentNode is one comment plus its ordered replies.
type CommentNode struct {
	Comment models.Comment `json:"comment"`
	Replies []*CommentNode `json:"replies"`
}

// BuildCommentTree reshapes a flat, parent-referencing comment list into a
// forest of reply trees. Sibling order follows input order, so callers that
// want chronological traversal pass the list sorted by created_at. A comment
// whose ParentID does not resolve to anything in the input is promoted to a
// root rather than dropped. Nesting depth is unbounded.
func BuildCommentTree(comments []models.Comment) []*CommentNode {
	nodes := make(map[uint]*CommentNode, len(comments))
	ordered := make([]*CommentNode, 0, len(comments))
	for _, comment := range comments {
		node := &CommentNode{Comment: comment, Replies: []*CommentNode{}}
		nodes[comment.ID] = node
		ordered = append(ordered, node)
	}

	roots := make([]*CommentNode, 0, len(comments))
	for _, node := range ordered {
		parentID := node.Comment.ParentID
		if parentID != nil {
			if parent, ok := nodes[*parentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
			// Orphan: parent was removed or never existed. Keep it visible.
		}
		roots = append(roots, node)
	}
	return roots
}

// VerifyCommentDepths walks a built forest and returns the IDs of comments
// whose stored Depth disagrees with their actual position. The builder
// itself trusts the stored field; this is a data-integrity probe for callers
// that want the signal. Orphans sit at the root, so their implied depth is 0
// regardless of what their missing ancestry once was.
func VerifyCommentDepths(roots []*CommentNode) []uint {
	var mismatched []uint
	var walk func(node *CommentNode, depth int)
	walk = func(node *CommentNode, depth int) {
		if node.Comment.Depth != depth {
			mismatched = append(mismatched, node.Comment.ID)
		}
		for _, reply := range node.Replies {
			walk(reply, depth+1)
		}
	}
	for _, root := range roots {
		walk(root, 0)
	}
	return mismatched
}
