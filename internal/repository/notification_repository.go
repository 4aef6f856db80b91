package repository

import (
	"context"
	"errors"
	"time"

	"github.com/autohive/automarket-backend/internal/model"
	"gorm.io/gorm"
)

// ListOptions narrows a user's notification list. Zero values mean "no filter".
type ListOptions struct {
	UnreadOnly bool
	Type       model.NotificationType
	Priority   model.NotificationPriority
	Limit      int
	Offset     int
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	FindByID(ctx context.Context, id string) (*model.Notification, error)
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkRead flips the given ids to read, scoped to userID and to rows that
	// are still unread. Returns the number of rows actually changed.
	MarkRead(ctx context.Context, userID string, ids []string, at time.Time) (int64, error)
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
	Delete(ctx context.Context, userID, id string) (int64, error)
	// DeleteExpired removes rows already read and created before readCutoff,
	// plus any row whose expires_at is in the past. Returns rows deleted.
	DeleteExpired(ctx context.Context, readCutoff, now time.Time) (int64, error)
	SetDB(db *gorm.DB)
}

// ErrNotReady is returned while the DB connection has not been injected yet;
// the server starts serving before the async connect completes.
var ErrNotReady = errors.New("database not ready")

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if r.db == nil {
		return ErrNotReady
	}
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) FindByID(ctx context.Context, id string) (*model.Notification, error) {
	if r.db == nil {
		return nil, ErrNotReady
	}
	var n model.Notification
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]model.Notification, error) {
	if r.db == nil {
		return nil, ErrNotReady
	}
	limit := opts.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	q := r.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", userID)
	if opts.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if opts.Type != "" {
		q = q.Where("type = ?", opts.Type)
	}
	if opts.Priority != "" {
		q = q.Where("priority = ?", opts.Priority)
	}
	var list []model.Notification
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	if r.db == nil {
		return 0, ErrNotReady
	}
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID string, ids []string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if r.db == nil {
		return 0, ErrNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND id IN ? AND is_read = ?", userID, ids, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	if r.db == nil {
		return 0, ErrNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) Delete(ctx context.Context, userID, id string) (int64, error) {
	if r.db == nil {
		return 0, ErrNotReady
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&model.Notification{})
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) DeleteExpired(ctx context.Context, readCutoff, now time.Time) (int64, error) {
	if r.db == nil {
		return 0, ErrNotReady
	}
	res := r.db.WithContext(ctx).
		Where("(is_read = ? AND created_at < ?) OR (expires_at IS NOT NULL AND expires_at < ?)", true, readCutoff, now).
		Delete(&model.Notification{})
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) SetDB(db *gorm.DB) {
	r.db = db
}
