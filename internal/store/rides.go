package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"rideshare-backend/internal/model"
)

// CreateRide inserts a new ride, assigning an ID when none is set.
func (s *gormStore) CreateRide(ctx context.Context, ride *model.Ride) error {
	if ride.ID == "" {
		ride.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(ride).Error; err != nil {
		return errors.Wrapf(err, "unable to create ride %s", ride.ID)
	}
	return nil
}

// GetRide loads a ride by ID.
func (s *gormStore) GetRide(ctx context.Context, id string) (*model.Ride, error) {
	var ride model.Ride
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&ride).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load ride %s", id)
	}
	return &ride, nil
}

// ConditionalUpdateRide issues a single UPDATE ... WHERE id AND status AND version.
func (s *gormStore) ConditionalUpdateRide(ctx context.Context, id string, guard Guard, patch RidePatch) (bool, error) {
	wrapMsg := "unable to update ride " + id

	result := s.db.WithContext(ctx).
		Model(&model.Ride{}).
		Where("id = ? AND status = ? AND version = ?", id, guard.Status, guard.Version).
		Updates(patch.columns())
	if result.Error != nil {
		return false, errors.Wrap(result.Error, wrapMsg)
	}
	return result.RowsAffected == 1, nil
}
