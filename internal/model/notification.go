package model

import (
	"encoding/json"
	"time"
)

type NotificationType string

const (
	NotificationTypeMessage         NotificationType = "message"
	NotificationTypeProjectUpdate   NotificationType = "project_update"
	NotificationTypeMilestoneUpdate NotificationType = "milestone_update"
	NotificationTypeExpertMatch     NotificationType = "expert_match"
	NotificationTypePayment         NotificationType = "payment"
	NotificationTypeSystem          NotificationType = "system"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeMessage, NotificationTypeProjectUpdate, NotificationTypeMilestoneUpdate,
		NotificationTypeExpertMatch, NotificationTypePayment, NotificationTypeSystem:
		return true
	}
	return false
}

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

func (p NotificationPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

const (
	NotificationTitleMaxLen = 200
	NotificationBodyMaxLen  = 1000
)

// Notification is both the persisted record and the wire shape: pushed
// events and REST fetches marshal the same struct, so clients reconcile a
// missed push against an identical JSON layout. The owner id stays off the
// wire; sessions only ever receive their own records.
type Notification struct {
	ID          string               `gorm:"primaryKey;size:36" json:"id"`
	UserID      string               `gorm:"column:user_id;size:128;index:idx_user_read;not null" json:"-"`
	Type        NotificationType     `gorm:"column:type;size:32;index;not null" json:"type"`
	Title       string               `gorm:"column:title;size:200;not null" json:"title"`
	Body        string               `gorm:"column:body;size:1000" json:"body"`
	Data        json.RawMessage      `gorm:"column:data;type:json" json:"data,omitempty"`
	Priority    NotificationPriority `gorm:"column:priority;size:16;not null;default:medium" json:"priority"`
	IsRead      bool                 `gorm:"column:is_read;index:idx_user_read;not null;default:false" json:"isRead"`
	ActionURL   *string              `gorm:"column:action_url;size:512" json:"actionUrl,omitempty"`
	RelatedID   *string              `gorm:"column:related_id;size:128;index" json:"relatedId,omitempty"`
	RelatedType *string              `gorm:"column:related_type;size:64" json:"relatedType,omitempty"`
	ExpiresAt   *time.Time           `gorm:"column:expires_at;index" json:"expiresAt,omitempty"`
	ReadAt      *time.Time           `gorm:"column:read_at" json:"readAt,omitempty"`
	CreatedAt   time.Time            `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}
