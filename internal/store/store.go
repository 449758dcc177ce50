package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"rideshare-backend/internal/model"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrEndpointTaken is returned when a push endpoint is already registered to another user.
	ErrEndpointTaken = errors.New("push endpoint registered to another user")
)

// RideStore persists rides. All lifecycle writes go through ConditionalUpdateRide.
type RideStore interface {
	CreateRide(ctx context.Context, ride *model.Ride) error
	GetRide(ctx context.Context, id string) (*model.Ride, error)
	// ConditionalUpdateRide applies patch only if the row still matches guard.
	// It reports false, with a nil error, when the guard no longer holds.
	ConditionalUpdateRide(ctx context.Context, id string, guard Guard, patch RidePatch) (bool, error)
}

// NotificationStore persists in-app notifications.
type NotificationStore interface {
	InsertNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, userID string, filter ListFilter) ([]model.Notification, error)
}

// SubscriptionStore persists per-device push subscriptions.
type SubscriptionStore interface {
	ListEnabledSubscriptions(ctx context.Context, userID string) ([]model.PushSubscription, error)
	DeleteSubscriptions(ctx context.Context, ids []string) error
	TouchSubscriptions(ctx context.Context, ids []string, at time.Time) error
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscriptionByEndpoint(ctx context.Context, userID, endpoint string) (bool, error)
}

// Store defines the interface for all database operations.
type Store interface {
	RideStore
	NotificationStore
	SubscriptionStore
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}
