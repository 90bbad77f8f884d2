package models

import "time"

// Upvote records a single user's upvote on either a thread or a comment.
// Exactly one of ThreadID/CommentID is set. The paired unique indexes allow
// at most one active upvote per (user, target); Postgres treats NULLs as
// distinct, so a user's thread upvotes never collide on the comment index
// and vice versa.
type Upvote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_upvote_user_thread;uniqueIndex:idx_upvote_user_comment" json:"user_id"`
	ThreadID  *uint     `gorm:"index;uniqueIndex:idx_upvote_user_thread" json:"thread_id"`
	CommentID *uint     `gorm:"index;uniqueIndex:idx_upvote_user_comment" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}
