package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"rideshare-backend/internal/model"
)

const maxNotificationPage = 200

// InsertNotification appends a notification record.
func (s *gormStore) InsertNotification(ctx context.Context, n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return errors.Wrapf(err, "unable to save notification for user %s", n.UserID)
	}
	return nil
}

// ListNotifications returns a user's notifications, newest first.
func (s *gormStore) ListNotifications(ctx context.Context, userID string, filter ListFilter) ([]model.Notification, error) {
	limit := filter.Limit
	if limit <= 0 || limit > maxNotificationPage {
		limit = maxNotificationPage
	}

	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if !filter.Since.IsZero() {
		q = q.Where("created_at >= ?", filter.Since)
	}

	var out []model.Notification
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, errors.Wrapf(err, "unable to list notifications for user %s", userID)
	}
	return out, nil
}
