package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/autohive/automarket-backend/internal/model"
	"github.com/autohive/automarket-backend/internal/realtime"
	"github.com/autohive/automarket-backend/internal/repository"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// ErrStoreUnavailable wraps durable-store failures. These always surface:
// a notification that was not durably written must fail loudly.
var ErrStoreUnavailable = errors.New("store unavailable")

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Publisher pushes an event to every live session of a user. Implementations
// must treat delivery as best-effort; the service never checks the outcome.
type Publisher interface {
	Push(userID, event string, payload interface{})
}

// CreateOptions carries the optional fields of a notification.
type CreateOptions struct {
	Priority    model.NotificationPriority
	ActionURL   *string
	RelatedID   *string
	RelatedType *string
	// Data is a type-specific payload; it is marshaled to JSON at the store
	// boundary and otherwise opaque to the service.
	Data      interface{}
	ExpiresAt *time.Time
}

type NotificationService interface {
	Create(ctx context.Context, userID string, typ model.NotificationType, title, body string, opts CreateOptions) (*model.Notification, error)
	List(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID string, ids []string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, id string) error
	CleanupExpired(ctx context.Context, retentionDays int) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
	pub  Publisher
}

func NewNotificationService(repo repository.NotificationRepository, pub Publisher) NotificationService {
	return &notificationService{repo: repo, pub: pub}
}

// Create validates and durably persists a notification, then recomputes the
// owner's unread count and pushes both the record and the fresh count to any
// live sessions. The persisted record is the source of truth; push failures
// never fail the call.
func (s *notificationService) Create(ctx context.Context, userID string, typ model.NotificationType, title, body string, opts CreateOptions) (*model.Notification, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "userId", Reason: "required"}
	}
	if !typ.Valid() {
		return nil, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown type %q", typ)}
	}
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "required"}
	}
	if utf8.RuneCountInString(title) > model.NotificationTitleMaxLen {
		return nil, &ValidationError{Field: "title", Reason: fmt.Sprintf("exceeds %d characters", model.NotificationTitleMaxLen)}
	}
	if utf8.RuneCountInString(body) > model.NotificationBodyMaxLen {
		return nil, &ValidationError{Field: "body", Reason: fmt.Sprintf("exceeds %d characters", model.NotificationBodyMaxLen)}
	}
	priority := opts.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, &ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", priority)}
	}

	var data json.RawMessage
	if opts.Data != nil {
		b, err := json.Marshal(opts.Data)
		if err != nil {
			return nil, &ValidationError{Field: "data", Reason: "not serializable"}
		}
		data = b
	}

	n := &model.Notification{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        typ,
		Title:       title,
		Body:        body,
		Data:        data,
		Priority:    priority,
		ActionURL:   opts.ActionURL,
		RelatedID:   opts.RelatedID,
		RelatedType: opts.RelatedType,
		ExpiresAt:   opts.ExpiresAt,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.pub.Push(userID, realtime.EventNotification, n)
	s.pushUnreadCount(ctx, userID)
	return n, nil
}

func (s *notificationService) List(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Notification, int64, error) {
	if userID == "" {
		return nil, 0, nil
	}
	list, err := s.repo.ListByUser(ctx, userID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	cnt, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return list, 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return list, cnt, nil
}

// GetUnreadCount is a pure query; the count is always computed live from the
// store, never kept as a mutable counter.
func (s *notificationService) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	cnt, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return cnt, nil
}

// MarkRead flips the given notifications to read. Ids owned by another user
// or already read are silently skipped, which makes the call idempotent.
func (s *notificationService) MarkRead(ctx context.Context, userID string, ids []string) error {
	if userID == "" || len(ids) == 0 {
		return nil
	}
	if _, err := s.repo.MarkRead(ctx, userID, ids, time.Now()); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.pushUnreadCount(ctx, userID)
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if _, err := s.repo.MarkAllRead(ctx, userID, time.Now()); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.pushUnreadCount(ctx, userID)
	return nil
}

func (s *notificationService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" || id == "" {
		return ErrNotFound
	}
	rows, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	s.pushUnreadCount(ctx, userID)
	return nil
}

// CleanupExpired removes read notifications older than the retention window
// and any notification whose expiry instant has passed. Safe to run
// alongside normal traffic: rows eligible for deletion are never re-read.
func (s *notificationService) CleanupExpired(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	now := time.Now()
	cutoff := now.AddDate(0, 0, -retentionDays)
	deleted, err := s.repo.DeleteExpired(ctx, cutoff, now)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return deleted, nil
}

// pushUnreadCount recomputes the user's unread count and fans it out so every
// open session converges on the same number. Best-effort: failures are logged
// by the publisher, never returned.
func (s *notificationService) pushUnreadCount(ctx context.Context, userID string) {
	cnt, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		log.Printf("notification: unread count recompute for user %s failed: %v", userID, err)
		return
	}
	s.pub.Push(userID, realtime.EventCountUpdate, map[string]int64{"unreadCount": cnt})
}
