package models

import "time"

// Flag statuses. The only legal transition is pending -> resolved.
const (
	FlagStatusPending  = "pending"
	FlagStatusResolved = "resolved"
)

// Flag is a user report against a thread or a comment. Exactly one of
// ThreadID/CommentID is set. Flags are create-only from the reporter's
// side; a moderator resolves them, which stamps ModeratorID and ResolvedAt.
type Flag struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	ThreadID    *uint      `gorm:"index" json:"thread_id"`
	CommentID   *uint      `gorm:"index" json:"comment_id"`
	Reason      string     `gorm:"size:200;not null" json:"reason"`
	Status      string     `gorm:"size:16;index;default:'pending';not null" json:"status"`
	ModeratorID *uint      `gorm:"index" json:"moderator_id"`
	ResolvedAt  *time.Time `json:"resolved_at"`
	CreatedAt   time.Time  `json:"created_at"`
}
