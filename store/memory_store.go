package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/openagora/forum/models"
)

var (
	_ Store = (*GormStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// MemoryStore is an in-memory Store used by tests. A single mutex guards
// every operation, so the toggle methods serialize exactly like their SQL
// counterparts do under the unique constraints.
type MemoryStore struct {
	mu sync.Mutex

	users         map[uint]models.User
	threads       map[uint]models.Thread
	comments      map[uint]models.Comment
	upvotes       map[uint]models.Upvote
	flags         map[uint]models.Flag
	subscriptions map[uint]models.Subscription
	notifications map[uint]models.Notification

	nextID map[string]uint
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         map[uint]models.User{},
		threads:       map[uint]models.Thread{},
		comments:      map[uint]models.Comment{},
		upvotes:       map[uint]models.Upvote{},
		flags:         map[uint]models.Flag{},
		subscriptions: map[uint]models.Subscription{},
		notifications: map[uint]models.Notification{},
		nextID:        map[string]uint{},
	}
}

func (s *MemoryStore) id(table string) uint {
	s.nextID[table]++
	return s.nextID[table]
}

// Users

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.id("users")
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

// Threads

func (s *MemoryStore) CreateThread(ctx context.Context, thread *models.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	thread.ID = s.id("threads")
	now := time.Now()
	thread.CreatedAt, thread.UpdatedAt = now, now
	s.threads[thread.ID] = *thread
	return nil
}

func (s *MemoryStore) GetThread(ctx context.Context, id uint) (*models.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	thread, ok := s.threads[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &thread, nil
}

func (s *MemoryStore) ListThreads(ctx context.Context, filter ThreadFilter) ([]models.Thread, int64, error) {
	filter.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Thread
	for _, thread := range s.threads {
		if !filter.IncludeHidden && !thread.IsVisible {
			continue
		}
		if filter.Category != "" && thread.Category != filter.Category {
			continue
		}
		if filter.AuthorID != 0 && thread.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(thread.Title), needle) &&
				!strings.Contains(strings.ToLower(thread.Content), needle) {
				continue
			}
		}
		matched = append(matched, thread)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.PageSize
	if start >= len(matched) {
		return []models.Thread{}, total, nil
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *MemoryStore) SetThreadVisibility(ctx context.Context, id uint, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	thread, ok := s.threads[id]
	if !ok {
		return ErrNotFound
	}
	thread.IsVisible = visible
	thread.UpdatedAt = time.Now()
	s.threads[id] = thread
	return nil
}

func (s *MemoryStore) CountThreads(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.threads)), nil
}

// Comments

func (s *MemoryStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment.ID = s.id("comments")
	now := time.Now()
	comment.CreatedAt, comment.UpdatedAt = now, now
	s.comments[comment.ID] = *comment
	return nil
}

func (s *MemoryStore) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comment, ok := s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &comment, nil
}

func (s *MemoryStore) ListThreadComments(ctx context.Context, threadID uint) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var comments []models.Comment
	for _, comment := range s.comments {
		if comment.ThreadID == threadID {
			comments = append(comments, comment)
		}
	}
	// IDs are assigned in insertion order, which matches created_at ASC.
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func (s *MemoryStore) CountThreadComments(ctx context.Context, threadID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, comment := range s.comments {
		if comment.ThreadID == threadID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountComments(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.comments)), nil
}

// Upvotes

func (s *MemoryStore) ToggleUpvote(ctx context.Context, userID uint, threadID, commentID *uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, upvote := range s.upvotes {
		if upvote.UserID != userID {
			continue
		}
		if threadID != nil && upvote.ThreadID != nil && *upvote.ThreadID == *threadID {
			delete(s.upvotes, id)
			s.adjustUpvoteCountLocked(threadID, commentID, -1)
			return false, nil
		}
		if commentID != nil && upvote.CommentID != nil && *upvote.CommentID == *commentID {
			delete(s.upvotes, id)
			s.adjustUpvoteCountLocked(threadID, commentID, -1)
			return false, nil
		}
	}

	upvote := models.Upvote{
		ID:        s.id("upvotes"),
		UserID:    userID,
		ThreadID:  threadID,
		CommentID: commentID,
		CreatedAt: time.Now(),
	}
	s.upvotes[upvote.ID] = upvote
	s.adjustUpvoteCountLocked(threadID, commentID, 1)
	return true, nil
}

func (s *MemoryStore) adjustUpvoteCountLocked(threadID, commentID *uint, delta int) {
	if threadID != nil {
		if thread, ok := s.threads[*threadID]; ok {
			thread.UpvoteCount += delta
			s.threads[*threadID] = thread
		}
		return
	}
	if comment, ok := s.comments[*commentID]; ok {
		comment.UpvoteCount += delta
		s.comments[*commentID] = comment
	}
}

// Flags

func (s *MemoryStore) CreateFlag(ctx context.Context, flag *models.Flag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	flag.ID = s.id("flags")
	if flag.Status == "" {
		flag.Status = models.FlagStatusPending
	}
	flag.CreatedAt = time.Now()
	s.flags[flag.ID] = *flag
	if flag.ThreadID != nil {
		if thread, ok := s.threads[*flag.ThreadID]; ok {
			thread.FlagCount++
			s.threads[*flag.ThreadID] = thread
		}
	} else if flag.CommentID != nil {
		if comment, ok := s.comments[*flag.CommentID]; ok {
			comment.FlagCount++
			s.comments[*flag.CommentID] = comment
		}
	}
	return nil
}

func (s *MemoryStore) ResolveFlag(ctx context.Context, flagID, moderatorID uint, at time.Time) (*models.Flag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flag, ok := s.flags[flagID]
	if !ok {
		return nil, ErrNotFound
	}
	if flag.Status == models.FlagStatusResolved {
		return nil, ErrFlagResolved
	}
	flag.Status = models.FlagStatusResolved
	flag.ModeratorID = &moderatorID
	flag.ResolvedAt = &at
	s.flags[flagID] = flag
	return &flag, nil
}

func (s *MemoryStore) ListFlags(ctx context.Context, status string) ([]models.Flag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var flags []models.Flag
	for _, flag := range s.flags {
		if status == "" || flag.Status == status {
			flags = append(flags, flag)
		}
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i].ID < flags[j].ID })
	return flags, nil
}

// Subscriptions

func (s *MemoryStore) ToggleSubscription(ctx context.Context, threadID, userID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sub := range s.subscriptions {
		if sub.ThreadID == threadID && sub.UserID == userID {
			delete(s.subscriptions, id)
			return false, nil
		}
	}
	sub := models.Subscription{
		ID:        s.id("subscriptions"),
		ThreadID:  threadID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	s.subscriptions[sub.ID] = sub
	return true, nil
}

func (s *MemoryStore) IsSubscribed(ctx context.Context, threadID, userID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subscriptions {
		if sub.ThreadID == threadID && sub.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) ListSubscribers(ctx context.Context, threadID uint) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var subs []models.Subscription
	for _, sub := range s.subscriptions {
		if sub.ThreadID == threadID {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	userIDs := make([]uint, 0, len(subs))
	for _, sub := range subs {
		userIDs = append(userIDs, sub.UserID)
	}
	return userIDs, nil
}

// Notifications

func (s *MemoryStore) CreateNotifications(ctx context.Context, notifications []models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range notifications {
		notifications[i].ID = s.id("notifications")
		notifications[i].CreatedAt = time.Now()
		s.notifications[notifications[i].ID] = notifications[i]
	}
	return nil
}

func (s *MemoryStore) ListNotifications(ctx context.Context, userID uint, onlyUnread bool) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var notifications []models.Notification
	for _, n := range s.notifications {
		if n.UserID != userID {
			continue
		}
		if onlyUnread && n.IsRead {
			continue
		}
		notifications = append(notifications, n)
	}
	sort.Slice(notifications, func(i, j int) bool { return notifications[i].ID > notifications[j].ID })
	return notifications, nil
}

func (s *MemoryStore) MarkNotificationsRead(ctx context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			s.notifications[id] = n
		}
	}
	return nil
}
