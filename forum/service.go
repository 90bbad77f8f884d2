package forum

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/openagora/forum/models"
	"github.com/openagora/forum/store"
	"github.com/openagora/forum/utils"
)

// Service implements the forum operations on top of an injected Store. All
// methods return a value or an error from the taxonomy in errors.go; they
// never touch HTTP. Mutating methods take the acting user's ID and fail
// with ErrUnauthenticated when it is zero.
type Service struct {
	store store.Store
}

// NewService builds a Service around the given store.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Target selects a thread or a comment for upvote/flag operations.
// Exactly one of the two IDs must be set.
type Target struct {
	ThreadID  *uint `json:"thread_id,omitempty"`
	CommentID *uint `json:"comment_id,omitempty"`
}

// ThreadTarget and CommentTarget are convenience constructors.
func ThreadTarget(id uint) Target  { return Target{ThreadID: &id} }
func CommentTarget(id uint) Target { return Target{CommentID: &id} }

func (t Target) validate() error {
	if (t.ThreadID == nil) == (t.CommentID == nil) {
		return validationf("exactly one of thread_id or comment_id must be set")
	}
	return nil
}

// resolveTarget checks that the targeted record exists.
func (s *Service) resolveTarget(ctx context.Context, t Target) error {
	if t.ThreadID != nil {
		_, err := s.store.GetThread(ctx, *t.ThreadID)
		return wrapStore(err)
	}
	_, err := s.store.GetComment(ctx, *t.CommentID)
	return wrapStore(err)
}

// ThreadInput is the payload for CreateThread.
type ThreadInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// CreateThread screens the title and body through AutoMod and persists the
// thread when both come back clean. Non-clean verdicts surface as a
// *ModerationError and nothing is written.
func (s *Service) CreateThread(ctx context.Context, userID uint, in ThreadInput) (*models.Thread, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validationf("title is required")
	}
	if res := Moderate(title); !res.Clean() {
		return nil, &ModerationError{Result: res}
	}
	if res := Moderate(in.Content); !res.Clean() {
		return nil, &ModerationError{Result: res}
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = "general"
	}

	thread := &models.Thread{
		AuthorID:  userID,
		Title:     title,
		Content:   in.Content,
		Category:  category,
		Tags:      uniqueStrings(in.Tags),
		IsVisible: true,
	}
	if err := s.store.CreateThread(ctx, thread); err != nil {
		return nil, wrapStore(err)
	}
	return thread, nil
}

// GetThread returns a single thread with its comment count filled in.
func (s *Service) GetThread(ctx context.Context, threadID uint) (*models.Thread, error) {
	thread, err := s.store.GetThread(ctx, threadID)
	if err != nil {
		return nil, wrapStore(err)
	}
	count, err := s.store.CountThreadComments(ctx, threadID)
	if err != nil {
		return nil, wrapStore(err)
	}
	thread.CommentCount = int(count)
	return thread, nil
}

// GetThreadWithComments returns the thread plus its full flat comment list
// ordered by creation time. Callers run BuildCommentTree over the list when
// they need the nested shape.
func (s *Service) GetThreadWithComments(ctx context.Context, threadID uint) (*models.Thread, []models.Comment, error) {
	thread, err := s.store.GetThread(ctx, threadID)
	if err != nil {
		return nil, nil, wrapStore(err)
	}
	comments, err := s.store.ListThreadComments(ctx, threadID)
	if err != nil {
		return nil, nil, wrapStore(err)
	}
	thread.CommentCount = len(comments)
	return thread, comments, nil
}

// ListThreads pages through visible threads, newest first.
func (s *Service) ListThreads(ctx context.Context, filter store.ThreadFilter) ([]models.Thread, int64, error) {
	threads, total, err := s.store.ListThreads(ctx, filter)
	if err != nil {
		return nil, 0, wrapStore(err)
	}
	for i := range threads {
		count, err := s.store.CountThreadComments(ctx, threads[i].ID)
		if err != nil {
			return nil, 0, wrapStore(err)
		}
		threads[i].CommentCount = int(count)
	}
	return threads, total, nil
}

// CreateComment validates the thread and optional parent, screens the body
// through AutoMod, persists the comment and fans notifications out to thread
// subscribers in the background.
func (s *Service) CreateComment(ctx context.Context, userID, threadID uint, parentID *uint, content string) (*models.Comment, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	if _, err := s.store.GetThread(ctx, threadID); err != nil {
		return nil, wrapStore(err)
	}

	if res := Moderate(content); !res.Clean() {
		return nil, &ModerationError{Result: res}
	}

	depth := 0
	if parentID != nil {
		parent, err := s.store.GetComment(ctx, *parentID)
		if err != nil {
			return nil, wrapStore(err)
		}
		if parent.ThreadID != threadID {
			return nil, validationf("parent comment %d belongs to another thread", *parentID)
		}
		depth = parent.Depth + 1
	}

	comment := &models.Comment{
		ThreadID: threadID,
		ParentID: parentID,
		AuthorID: userID,
		Content:  content,
		Depth:    depth,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, wrapStore(err)
	}

	go s.fanoutCommentNotifications(context.Background(), *comment)

	return comment, nil
}

// fanoutCommentNotifications writes one inbox entry per thread subscriber
// (minus the comment author) and a reply notification to the parent
// comment's author. Failures are logged and dropped; notification delivery
// is best effort and never blocks comment creation.
func (s *Service) fanoutCommentNotifications(ctx context.Context, comment models.Comment) {
	actorID := comment.AuthorID
	var notifications []models.Notification
	notified := map[uint]bool{actorID: true}

	if comment.ParentID != nil {
		if parent, err := s.store.GetComment(ctx, *comment.ParentID); err == nil && parent.AuthorID != actorID {
			notifications = append(notifications, models.Notification{
				UserID:    parent.AuthorID,
				ActorID:   &actorID,
				ThreadID:  comment.ThreadID,
				CommentID: &comment.ID,
				Type:      models.NotificationTypeReplyComment,
			})
			notified[parent.AuthorID] = true
		}
	}

	subscribers, err := s.store.ListSubscribers(ctx, comment.ThreadID)
	if err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("subscriber lookup failed for thread %d: %v", comment.ThreadID, err)
		}
		return
	}
	for _, userID := range utils.UniqueUint(subscribers) {
		if notified[userID] {
			continue
		}
		notifications = append(notifications, models.Notification{
			UserID:    userID,
			ActorID:   &actorID,
			ThreadID:  comment.ThreadID,
			CommentID: &comment.ID,
			Type:      models.NotificationTypeCommentThread,
		})
		notified[userID] = true
	}

	if err := s.store.CreateNotifications(ctx, notifications); err != nil && utils.Sugar != nil {
		utils.Sugar.Warnf("notification fanout failed for comment %d: %v", comment.ID, err)
	}
}

// ToggleUpvote flips the acting user's upvote on the target and returns the
// new state (true = now upvoted). The store guarantees idempotency under
// concurrent retries; two rapid toggles always land on a consistent count.
func (s *Service) ToggleUpvote(ctx context.Context, userID uint, target Target) (bool, error) {
	if userID == 0 {
		return false, ErrUnauthenticated
	}
	if err := target.validate(); err != nil {
		return false, err
	}
	if err := s.resolveTarget(ctx, target); err != nil {
		return false, err
	}
	upvoted, err := s.store.ToggleUpvote(ctx, userID, target.ThreadID, target.CommentID)
	if err != nil {
		return false, wrapStore(err)
	}
	return upvoted, nil
}

// FlagContent files a report against the target. Flags are create-only for
// the reporter: there is no un-flag, and every call produces a fresh pending
// row and bumps the target's flag counter.
func (s *Service) FlagContent(ctx context.Context, userID uint, target Target, reason string) (*models.Flag, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	if err := target.validate(); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, validationf("flag reason is required")
	}
	if err := s.resolveTarget(ctx, target); err != nil {
		return nil, err
	}

	flag := &models.Flag{
		UserID:    userID,
		ThreadID:  target.ThreadID,
		CommentID: target.CommentID,
		Reason:    reason,
		Status:    models.FlagStatusPending,
	}
	if err := s.store.CreateFlag(ctx, flag); err != nil {
		return nil, wrapStore(err)
	}
	return flag, nil
}

// ResolveFlag moves a pending flag to resolved on behalf of a moderator.
// Resolution is terminal: a second attempt fails with a validation error.
func (s *Service) ResolveFlag(ctx context.Context, moderatorID, flagID uint) (*models.Flag, error) {
	if _, err := s.requireModerator(ctx, moderatorID); err != nil {
		return nil, err
	}
	flag, err := s.store.ResolveFlag(ctx, flagID, moderatorID, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrFlagResolved) {
			return nil, validationf("flag %d is already resolved", flagID)
		}
		return nil, wrapStore(err)
	}
	return flag, nil
}

// PendingFlags lists unresolved flags for the moderation queue.
func (s *Service) PendingFlags(ctx context.Context, moderatorID uint) ([]models.Flag, error) {
	if _, err := s.requireModerator(ctx, moderatorID); err != nil {
		return nil, err
	}
	flags, err := s.store.ListFlags(ctx, models.FlagStatusPending)
	if err != nil {
		return nil, wrapStore(err)
	}
	return flags, nil
}

// SetThreadVisibility lets a moderator hide or restore a thread.
func (s *Service) SetThreadVisibility(ctx context.Context, moderatorID, threadID uint, visible bool) error {
	if _, err := s.requireModerator(ctx, moderatorID); err != nil {
		return err
	}
	return wrapStore(s.store.SetThreadVisibility(ctx, threadID, visible))
}

func (s *Service) requireModerator(ctx context.Context, userID uint) (*models.User, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, wrapStore(err)
	}
	if !user.IsModerator() {
		return nil, ErrPermission
	}
	return user, nil
}

// ToggleSubscription flips the user's subscription to a thread and returns
// the new state (true = now subscribed).
func (s *Service) ToggleSubscription(ctx context.Context, userID, threadID uint) (bool, error) {
	if userID == 0 {
		return false, ErrUnauthenticated
	}
	if _, err := s.store.GetThread(ctx, threadID); err != nil {
		return false, wrapStore(err)
	}
	subscribed, err := s.store.ToggleSubscription(ctx, threadID, userID)
	if err != nil {
		return false, wrapStore(err)
	}
	return subscribed, nil
}

// IsSubscribed reports the user's current subscription state for a thread.
func (s *Service) IsSubscribed(ctx context.Context, userID, threadID uint) (bool, error) {
	if userID == 0 {
		return false, ErrUnauthenticated
	}
	subscribed, err := s.store.IsSubscribed(ctx, threadID, userID)
	if err != nil {
		return false, wrapStore(err)
	}
	return subscribed, nil
}

// Notifications returns the user's inbox, newest first.
func (s *Service) Notifications(ctx context.Context, userID uint, onlyUnread bool) ([]models.Notification, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	notifications, err := s.store.ListNotifications(ctx, userID, onlyUnread)
	if err != nil {
		return nil, wrapStore(err)
	}
	return notifications, nil
}

// MarkNotificationsRead marks the user's whole inbox as read.
func (s *Service) MarkNotificationsRead(ctx context.Context, userID uint) error {
	if userID == 0 {
		return ErrUnauthenticated
	}
	return wrapStore(s.store.MarkNotificationsRead(ctx, userID))
}

// RegisterUser creates a local account. Usernames are unique and screened
// through AutoMod like any other user-submitted text.
func (s *Service) RegisterUser(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 64 {
		return nil, validationf("username must be between 3 and 64 characters")
	}
	if res := Moderate(username); !res.Clean() {
		return nil, &ModerationError{Result: res}
	}
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, validationf("a valid email is required")
	}
	if len(password) < 8 {
		return nil, validationf("password must be at least 8 characters")
	}

	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return nil, validationf("username %q is taken", username)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, wrapStore(err)
	}
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, wrapStore(err)
	}
	return user, nil
}

// Authenticate verifies credentials and returns the account. The caller
// issues the session token.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// GetUser loads an account by ID.
func (s *Service) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, wrapStore(err)
	}
	return user, nil
}

// Stats aggregates basic forum counts.
type Stats struct {
	Users    int64 `json:"user_count"`
	Threads  int64 `json:"thread_count"`
	Comments int64 `json:"comment_count"`
}

// GetStats returns forum-wide totals.
func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats
	var err error
	if stats.Users, err = s.store.CountUsers(ctx); err != nil {
		return stats, wrapStore(err)
	}
	if stats.Threads, err = s.store.CountThreads(ctx); err != nil {
		return stats, wrapStore(err)
	}
	if stats.Comments, err = s.store.CountComments(ctx); err != nil {
		return stats, wrapStore(err)
	}
	return stats, nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
