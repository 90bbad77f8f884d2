package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/openagora/forum/models"
)

// GormStore is the production Store backed by Postgres through gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an initialized gorm handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Users

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

// Threads

func (s *GormStore) CreateThread(ctx context.Context, thread *models.Thread) error {
	return s.db.WithContext(ctx).Create(thread).Error
}

func (s *GormStore) GetThread(ctx context.Context, id uint) (*models.Thread, error) {
	var thread models.Thread
	if err := s.db.WithContext(ctx).Preload("Author").First(&thread, id).Error; err != nil {
		return nil, translate(err)
	}
	return &thread, nil
}

func (s *GormStore) ListThreads(ctx context.Context, filter ThreadFilter) ([]models.Thread, int64, error) {
	filter.Normalize()

	query := s.db.WithContext(ctx).Model(&models.Thread{})
	if !filter.IncludeHidden {
		query = query.Where("is_visible = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.AuthorID != 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var threads []models.Thread
	offset := (filter.Page - 1) * filter.PageSize
	err := query.Preload("Author").
		Order("created_at DESC").
		Offset(offset).Limit(filter.PageSize).
		Find(&threads).Error
	if err != nil {
		return nil, 0, err
	}
	return threads, total, nil
}

func (s *GormStore) SetThreadVisibility(ctx context.Context, id uint, visible bool) error {
	res := s.db.WithContext(ctx).Model(&models.Thread{}).Where("id = ?", id).
		UpdateColumn("is_visible", visible)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CountThreads(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Thread{}).Count(&n).Error
	return n, err
}

// Comments

func (s *GormStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	return s.db.WithContext(ctx).Create(comment).Error
}

func (s *GormStore) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (s *GormStore) ListThreadComments(ctx context.Context, threadID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("Author").
		Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

func (s *GormStore) CountThreadComments(ctx context.Context, threadID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Comment{}).Where("thread_id = ?", threadID).Count(&n).Error
	return n, err
}

func (s *GormStore) CountComments(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Comment{}).Count(&n).Error
	return n, err
}

// Upvotes

// ToggleUpvote relies on the partial unique indexes over (user_id,
// thread_id) and (user_id, comment_id): the insert runs with ON CONFLICT DO
// NOTHING, and a zero row count means the upvote already existed and must be
// removed instead. Counter maintenance happens in the same transaction so
// the cached counts always match the upvotes table.
func (s *GormStore) ToggleUpvote(ctx context.Context, userID uint, threadID, commentID *uint) (bool, error) {
	var upvoted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upvote := models.Upvote{UserID: userID, ThreadID: threadID, CommentID: commentID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&upvote)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected > 0 {
			upvoted = true
			return adjustUpvoteCount(tx, threadID, commentID, 1)
		}

		// Already upvoted: remove the existing row and decrement. ON
		// CONFLICT DO NOTHING takes no lock on the conflicting row, so a
		// concurrent toggle may delete it between our insert and this
		// DELETE. Only decrement when this transaction removed the row,
		// otherwise the counter drops twice for one upvote.
		del := tx.Where("user_id = ?", userID)
		if threadID != nil {
			del = del.Where("thread_id = ?", *threadID)
		} else {
			del = del.Where("comment_id = ?", *commentID)
		}
		res = del.Delete(&models.Upvote{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race: the row is gone, so this toggle flips the
			// state back on by retrying the insert.
			retry := models.Upvote{UserID: userID, ThreadID: threadID, CommentID: commentID}
			res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&retry)
			if res.Error != nil {
				return res.Error
			}
			upvoted = true
			if res.RowsAffected == 0 {
				// A third writer re-inserted first; the row and its
				// counter increment are already accounted for.
				return nil
			}
			return adjustUpvoteCount(tx, threadID, commentID, 1)
		}
		upvoted = false
		return adjustUpvoteCount(tx, threadID, commentID, -1)
	})
	return upvoted, err
}

func adjustUpvoteCount(tx *gorm.DB, threadID, commentID *uint, delta int) error {
	expr := gorm.Expr("upvote_count + ?", delta)
	if threadID != nil {
		return tx.Model(&models.Thread{}).Where("id = ?", *threadID).
			UpdateColumn("upvote_count", expr).Error
	}
	return tx.Model(&models.Comment{}).Where("id = ?", *commentID).
		UpdateColumn("upvote_count", expr).Error
}

// Flags

func (s *GormStore) CreateFlag(ctx context.Context, flag *models.Flag) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if flag.Status == "" {
			flag.Status = models.FlagStatusPending
		}
		if err := tx.Create(flag).Error; err != nil {
			return err
		}
		expr := gorm.Expr("flag_count + ?", 1)
		if flag.ThreadID != nil {
			return tx.Model(&models.Thread{}).Where("id = ?", *flag.ThreadID).
				UpdateColumn("flag_count", expr).Error
		}
		return tx.Model(&models.Comment{}).Where("id = ?", *flag.CommentID).
			UpdateColumn("flag_count", expr).Error
	})
}

func (s *GormStore) ResolveFlag(ctx context.Context, flagID, moderatorID uint, at time.Time) (*models.Flag, error) {
	var flag models.Flag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&flag, flagID).Error; err != nil {
			return translate(err)
		}
		if flag.Status == models.FlagStatusResolved {
			return ErrFlagResolved
		}
		flag.Status = models.FlagStatusResolved
		flag.ModeratorID = &moderatorID
		flag.ResolvedAt = &at
		return tx.Model(&models.Flag{}).Where("id = ?", flagID).Updates(map[string]interface{}{
			"status":       flag.Status,
			"moderator_id": moderatorID,
			"resolved_at":  at,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &flag, nil
}

func (s *GormStore) ListFlags(ctx context.Context, status string) ([]models.Flag, error) {
	query := s.db.WithContext(ctx).Model(&models.Flag{}).Order("created_at ASC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var flags []models.Flag
	err := query.Find(&flags).Error
	return flags, err
}

// Subscriptions

func (s *GormStore) ToggleSubscription(ctx context.Context, threadID, userID uint) (bool, error) {
	var subscribed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := models.Subscription{ThreadID: threadID, UserID: userID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&sub)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			subscribed = true
			return nil
		}
		subscribed = false
		return tx.Where("thread_id = ? AND user_id = ?", threadID, userID).
			Delete(&models.Subscription{}).Error
	})
	return subscribed, err
}

func (s *GormStore) IsSubscribed(ctx context.Context, threadID, userID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Count(&n).Error
	return n > 0, err
}

func (s *GormStore) ListSubscribers(ctx context.Context, threadID uint) ([]uint, error) {
	var userIDs []uint
	err := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("thread_id = ?", threadID).
		Order("created_at ASC").
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

// Notifications

func (s *GormStore) CreateNotifications(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&notifications).Error
}

func (s *GormStore) ListNotifications(ctx context.Context, userID uint, onlyUnread bool) ([]models.Notification, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if onlyUnread {
		query = query.Where("is_read = ?", false)
	}
	var notifications []models.Notification
	err := query.Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

func (s *GormStore) MarkNotificationsRead(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		UpdateColumn("is_read", true).Error
}
