package model

import "time"

// RideStatus is the lifecycle state of a ride.
type RideStatus string

const (
	RideStatusPending   RideStatus = "pending"
	RideStatusAccepted  RideStatus = "accepted"
	RideStatusCompleted RideStatus = "completed"
	RideStatusCancelled RideStatus = "cancelled"
)

// IsValid reports whether s is one of the known statuses.
func (s RideStatus) IsValid() bool {
	switch s {
	case RideStatusPending, RideStatusAccepted, RideStatusCompleted, RideStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition may leave s.
func (s RideStatus) IsTerminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

// RideDetails holds the route, time and capacity of a ride. The lifecycle never inspects it.
type RideDetails struct {
	Origin      string    `gorm:"size:256;not null" json:"origin"`
	Destination string    `gorm:"size:256;not null" json:"destination"`
	DepartAt    time.Time `gorm:"not null" json:"depart_at"`
	Seats       int       `gorm:"not null;default:1" json:"seats"`
	Note        string    `gorm:"size:1024" json:"note"`
}

// Ride is a ride request moving from creation to completion or cancellation.
type Ride struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	RequesterID string     `gorm:"size:64;not null;index" json:"requester_id"`
	AccepterID  *string    `gorm:"size:64;index" json:"accepter_id"`
	Status      RideStatus `gorm:"size:16;not null;index" json:"status"`
	Version     int64      `gorm:"not null;default:0" json:"version"`
	IsEdited    bool       `gorm:"not null;default:false" json:"is_edited"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
	EditedAt    *time.Time `json:"edited_at,omitempty"`

	Details RideDetails `gorm:"embedded;embeddedPrefix:detail_" json:"details"`
}

// HasAccepter reports whether an accepter is recorded on the ride.
func (r *Ride) HasAccepter() bool {
	return r.AccepterID != nil && *r.AccepterID != ""
}

// IsAccepter reports whether userID is the recorded accepter.
func (r *Ride) IsAccepter(userID string) bool {
	return r.HasAccepter() && *r.AccepterID == userID
}
