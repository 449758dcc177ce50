package model

import "time"

// NotificationType tags an in-app notification.
type NotificationType string

const (
	NotificationRideAccepted   NotificationType = "ride_accepted"
	NotificationOfferWithdrawn NotificationType = "offer_withdrawn"
	NotificationRideCancelled  NotificationType = "ride_cancelled"
	NotificationRideCompleted  NotificationType = "ride_completed"
	NotificationAdmin          NotificationType = "admin"
)

// IsValid reports whether t is one of the known notification types.
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationRideAccepted, NotificationOfferWithdrawn, NotificationRideCancelled,
		NotificationRideCompleted, NotificationAdmin:
		return true
	}
	return false
}

// Notification is a durable in-app message addressed to exactly one user.
type Notification struct {
	ID        string           `gorm:"primaryKey;size:36" json:"id"`
	UserID    string           `gorm:"size:64;not null;index:idx_notifications_user_created,priority:1" json:"user_id"`
	Type      NotificationType `gorm:"size:32;not null;index" json:"type"`
	Title     string           `gorm:"size:256;not null" json:"title"`
	Body      string           `gorm:"type:text;not null" json:"body"`
	RelatedID *string          `gorm:"size:36" json:"related_id,omitempty"`
	CreatedAt time.Time        `gorm:"not null;index:idx_notifications_user_created,priority:2,sort:desc" json:"created_at"`
}
