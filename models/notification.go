package models

import "time"

type NotificationType string

const (
	// NotificationTypeCommentThread is sent to thread subscribers when a new
	// comment lands on a thread they follow.
	NotificationTypeCommentThread NotificationType = "comment_thread"
	// NotificationTypeReplyComment is sent to the author of a comment that
	// received a direct reply.
	NotificationTypeReplyComment NotificationType = "reply_comment"
)

// Notification is an inbox entry for a user. ActorID is the user whose
// action produced it; delivery beyond this table is someone else's job.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	ActorID   *uint            `gorm:"index" json:"actor_id"`
	ThreadID  uint             `gorm:"not null;index" json:"thread_id"`
	CommentID *uint            `gorm:"index" json:"comment_id"`
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	IsRead    bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
