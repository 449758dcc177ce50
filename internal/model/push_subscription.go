package model

import "time"

// PushSubscription holds the information for one device's browser push subscription.
type PushSubscription struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	UserID     string     `gorm:"size:64;not null;index" json:"user_id"`
	DeviceID   string     `gorm:"size:128;not null" json:"device_id"`
	Endpoint   string     `gorm:"uniqueIndex;size:1024;not null" json:"endpoint"`
	P256DH     string     `gorm:"column:p256dh;not null" json:"-"`
	Auth       string     `gorm:"not null" json:"-"`
	Enabled    bool       `gorm:"not null;default:true" json:"enabled"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null" json:"updated_at"`
}
