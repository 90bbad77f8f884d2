package models

import "time"

// Comment represents a reply inside a thread. ParentID is nil for top-level
// comments. Depth is the nesting level (root = 0) and always equals the
// parent's depth plus one; the service computes it at creation time.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ThreadID    uint      `gorm:"index;not null" json:"thread_id"`
	ParentID    *uint     `gorm:"index" json:"parent_id"`
	AuthorID    uint      `gorm:"index;not null" json:"author_id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Depth       int       `gorm:"default:0" json:"depth"`
	UpvoteCount int       `gorm:"default:0" json:"upvote_count"`
	FlagCount   int       `gorm:"default:0" json:"flag_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Author      User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`

	ContentHTML string `gorm:"-" json:"content_html,omitempty"`
}
