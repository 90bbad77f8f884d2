package models

import "time"

// Subscription marks a user as opted in to notifications for a thread.
// Presence of a row means subscribed; the unique pair index keeps at most
// one row per (thread, user).
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ThreadID  uint      `gorm:"not null;index;uniqueIndex:idx_sub_thread_user" json:"thread_id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_sub_thread_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
