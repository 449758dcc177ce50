package store

import (
	"time"

	"gorm.io/gorm"

	"rideshare-backend/internal/model"
)

// Guard is the state a ride row must still be in for a conditional write to apply.
type Guard struct {
	Status  model.RideStatus
	Version int64
}

// RidePatch describes the columns a lifecycle operation changes.
type RidePatch struct {
	Status model.RideStatus

	// SetAccepter writes AccepterID, which may be nil to clear it.
	SetAccepter bool
	AccepterID  *string

	Details    *model.RideDetails
	MarkEdited bool

	At time.Time
}

// columns renders the patch as an update map. The version bump is always included.
func (p RidePatch) columns() map[string]any {
	cols := map[string]any{
		"version":    gorm.Expr("version + ?", 1),
		"updated_at": p.At,
	}
	if p.Status != "" {
		cols["status"] = p.Status
	}
	if p.SetAccepter {
		if p.AccepterID == nil {
			cols["accepter_id"] = nil
		} else {
			cols["accepter_id"] = *p.AccepterID
		}
	}
	if p.Details != nil {
		cols["detail_origin"] = p.Details.Origin
		cols["detail_destination"] = p.Details.Destination
		cols["detail_depart_at"] = p.Details.DepartAt
		cols["detail_seats"] = p.Details.Seats
		cols["detail_note"] = p.Details.Note
	}
	if p.MarkEdited {
		cols["is_edited"] = true
		cols["edited_at"] = p.At
	}
	return cols
}

// ApplyTo returns a copy of ride as it looks after the patch has been written.
func (p RidePatch) ApplyTo(ride model.Ride) model.Ride {
	ride.Version++
	ride.UpdatedAt = p.At
	if p.Status != "" {
		ride.Status = p.Status
	}
	if p.SetAccepter {
		if p.AccepterID == nil {
			ride.AccepterID = nil
		} else {
			id := *p.AccepterID
			ride.AccepterID = &id
		}
	}
	if p.Details != nil {
		ride.Details = *p.Details
	}
	if p.MarkEdited {
		ride.IsEdited = true
		at := p.At
		ride.EditedAt = &at
	}
	return ride
}

// ListFilter narrows a notification listing. Zero values mean no restriction.
type ListFilter struct {
	Type  model.NotificationType
	Since time.Time
	Limit int
}
