package models

import "time"

// Thread represents a top-level forum post that owns a tree of comments.
// UpvoteCount and FlagCount are cached aggregates; the store keeps them in
// sync with the upvotes and flags tables inside the same transaction that
// mutates those tables.
type Thread struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AuthorID    uint      `gorm:"index;not null" json:"author_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Category    string    `gorm:"size:32;index;default:'general'" json:"category"`
	Tags        []string  `gorm:"serializer:json" json:"tags"`
	IsVisible   bool      `gorm:"default:true;index" json:"is_visible"`
	UpvoteCount int       `gorm:"default:0" json:"upvote_count"`
	FlagCount   int       `gorm:"default:0" json:"flag_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Author      User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`

	// Filled at query time, not persisted.
	CommentCount int    `gorm:"-" json:"comment_count"`
	ContentHTML  string `gorm:"-" json:"content_html,omitempty"`
}
