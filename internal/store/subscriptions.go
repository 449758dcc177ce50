package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm/clause"

	"rideshare-backend/internal/model"
)

// ListEnabledSubscriptions returns every enabled push subscription of a user.
func (s *gormStore) ListEnabledSubscriptions(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND enabled = ?", userID, true).
		Order("created_at").
		Find(&subs).Error
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list subscriptions for user %s", userID)
	}
	return subs, nil
}

// DeleteSubscriptions removes the given subscriptions in one statement.
func (s *gormStore) DeleteSubscriptions(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.PushSubscription{}).Error; err != nil {
		return errors.Wrapf(err, "unable to delete %d subscriptions", len(ids))
	}
	return nil
}

// TouchSubscriptions records a successful delivery time on the given subscriptions.
func (s *gormStore) TouchSubscriptions(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Model(&model.PushSubscription{}).
		Where("id IN ?", ids).
		UpdateColumn("last_used_at", at).Error
	if err != nil {
		return errors.Wrapf(err, "unable to touch %d subscriptions", len(ids))
	}
	return nil
}

// UpsertSubscription creates or replaces the subscription registered for an endpoint.
// An endpoint owned by another user is left untouched and ErrEndpointTaken is returned.
// On return sub holds the stored row.
func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	wrapMsg := "unable to save subscription"

	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	sub.Enabled = true

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"device_id", "p256dh", "auth", "enabled", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "push_subscriptions.user_id = excluded.user_id"},
		}},
	}).Create(sub).Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}

	// The conflicting row keeps its original ID, so reload by endpoint.
	var stored model.PushSubscription
	if err := s.db.WithContext(ctx).Where("endpoint = ?", sub.Endpoint).Take(&stored).Error; err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	if stored.UserID != sub.UserID {
		return ErrEndpointTaken
	}
	*sub = stored
	return nil
}

// DeleteSubscriptionByEndpoint removes a user's subscription by endpoint.
// It reports whether a row was removed.
func (s *gormStore) DeleteSubscriptionByEndpoint(ctx context.Context, userID, endpoint string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&model.PushSubscription{})
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "unable to delete subscription")
	}
	return result.RowsAffected > 0, nil
}
