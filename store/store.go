package store

import (
	"context"
	"errors"
	"time"

	"github.com/openagora/forum/models"
)

// Store level sentinel errors. The service layer translates these into its
// own taxonomy; nothing above the service should match on them.
var (
	ErrNotFound     = errors.New("store: record not found")
	ErrFlagResolved = errors.New("store: flag already resolved")
)

// ThreadFilter narrows and paginates thread listings.
type ThreadFilter struct {
	Category      string
	Search        string
	AuthorID      uint
	IncludeHidden bool
	Page          int
	PageSize      int
}

// Normalize clamps pagination to sane bounds.
func (f *ThreadFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
}

// Store is the persistence boundary: plain CRUD over the domain tables plus
// the two toggle operations that must be atomic at the store layer so that
// concurrent retries from the same user cannot double count.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)

	// Threads
	CreateThread(ctx context.Context, thread *models.Thread) error
	GetThread(ctx context.Context, id uint) (*models.Thread, error)
	ListThreads(ctx context.Context, filter ThreadFilter) ([]models.Thread, int64, error)
	SetThreadVisibility(ctx context.Context, id uint, visible bool) error
	CountThreads(ctx context.Context) (int64, error)

	// Comments
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id uint) (*models.Comment, error)
	ListThreadComments(ctx context.Context, threadID uint) ([]models.Comment, error)
	CountThreadComments(ctx context.Context, threadID uint) (int64, error)
	CountComments(ctx context.Context) (int64, error)

	// Upvotes. ToggleUpvote inserts or removes the (user, target) row and
	// adjusts the target's cached counter in one transaction, returning the
	// new state (true = now upvoted).
	ToggleUpvote(ctx context.Context, userID uint, threadID, commentID *uint) (bool, error)

	// Flags
	CreateFlag(ctx context.Context, flag *models.Flag) error
	ResolveFlag(ctx context.Context, flagID, moderatorID uint, at time.Time) (*models.Flag, error)
	ListFlags(ctx context.Context, status string) ([]models.Flag, error)

	// Subscriptions
	ToggleSubscription(ctx context.Context, threadID, userID uint) (bool, error)
	IsSubscribed(ctx context.Context, threadID, userID uint) (bool, error)
	ListSubscribers(ctx context.Context, threadID uint) ([]uint, error)

	// Notifications
	CreateNotifications(ctx context.Context, notifications []models.Notification) error
	ListNotifications(ctx context.Context, userID uint, onlyUnread bool) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID uint) error
}
