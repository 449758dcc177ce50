package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rideshare-backend/internal/model"
)

// newSQLiteDB opens a private in-memory database with the service tables.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&model.Ride{}, &model.Notification{}, &model.PushSubscription{}))

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return gormDB
}

// A helper function to create a mock database connection.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func newPendingRide(requester string) *model.Ride {
	return &model.Ride{
		RequesterID: requester,
		Status:      model.RideStatusPending,
		Details: model.RideDetails{
			Origin:      "Campus",
			Destination: "Airport",
			DepartAt:    time.Now().Add(2 * time.Hour).UTC(),
			Seats:       2,
		},
	}
}

func TestGormStore_Rides(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(newSQLiteDB(t))

	ride := newPendingRide("u1")
	require.NoError(t, s.CreateRide(ctx, ride))
	require.NotEmpty(t, ride.ID)

	t.Run("get returns the stored ride", func(t *testing.T) {
		got, err := s.GetRide(ctx, ride.ID)
		require.NoError(t, err)
		assert.Equal(t, "u1", got.RequesterID)
		assert.Equal(t, model.RideStatusPending, got.Status)
		assert.Equal(t, "Airport", got.Details.Destination)
		assert.Nil(t, got.AccepterID)
		assert.Equal(t, int64(0), got.Version)
	})

	t.Run("get of unknown id is ErrNotFound", func(t *testing.T) {
		_, err := s.GetRide(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("guarded update applies once", func(t *testing.T) {
		accepter := "u2"
		patch := RidePatch{
			Status:      model.RideStatusAccepted,
			SetAccepter: true,
			AccepterID:  &accepter,
			At:          time.Now().UTC(),
		}
		guard := Guard{Status: model.RideStatusPending, Version: 0}

		applied, err := s.ConditionalUpdateRide(ctx, ride.ID, guard, patch)
		require.NoError(t, err)
		assert.True(t, applied)

		// Same guard again: the row moved on, so nothing is written.
		applied, err = s.ConditionalUpdateRide(ctx, ride.ID, guard, patch)
		require.NoError(t, err)
		assert.False(t, applied)

		got, err := s.GetRide(ctx, ride.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RideStatusAccepted, got.Status)
		require.NotNil(t, got.AccepterID)
		assert.Equal(t, "u2", *got.AccepterID)
		assert.Equal(t, int64(1), got.Version)
	})

	t.Run("stale version is rejected even with matching status", func(t *testing.T) {
		applied, err := s.ConditionalUpdateRide(ctx, ride.ID,
			Guard{Status: model.RideStatusAccepted, Version: 0},
			RidePatch{Status: model.RideStatusPending, SetAccepter: true, At: time.Now().UTC()})
		require.NoError(t, err)
		assert.False(t, applied)
	})

	t.Run("clearing the accepter writes NULL", func(t *testing.T) {
		applied, err := s.ConditionalUpdateRide(ctx, ride.ID,
			Guard{Status: model.RideStatusAccepted, Version: 1},
			RidePatch{Status: model.RideStatusPending, SetAccepter: true, At: time.Now().UTC()})
		require.NoError(t, err)
		assert.True(t, applied)

		got, err := s.GetRide(ctx, ride.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RideStatusPending, got.Status)
		assert.Nil(t, got.AccepterID)
	})

	t.Run("edit replaces details and marks the ride", func(t *testing.T) {
		details := model.RideDetails{Origin: "Library", Destination: "Station", DepartAt: time.Now().UTC(), Seats: 3}
		applied, err := s.ConditionalUpdateRide(ctx, ride.ID,
			Guard{Status: model.RideStatusPending, Version: 2},
			RidePatch{Details: &details, MarkEdited: true, At: time.Now().UTC()})
		require.NoError(t, err)
		assert.True(t, applied)

		got, err := s.GetRide(ctx, ride.ID)
		require.NoError(t, err)
		assert.True(t, got.IsEdited)
		assert.NotNil(t, got.EditedAt)
		assert.Equal(t, "Station", got.Details.Destination)
		assert.Equal(t, 3, got.Details.Seats)
		assert.Equal(t, model.RideStatusPending, got.Status)
	})
}

func TestGormStore_ConditionalUpdateSQL(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "rides" SET .* WHERE .*id = \$[0-9]+ AND status = \$[0-9]+ AND version = \$[0-9]+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	applied, err := s.ConditionalUpdateRide(context.Background(), "r1",
		Guard{Status: model.RideStatusPending, Version: 4},
		RidePatch{Status: model.RideStatusCancelled, At: time.Now()})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_UpdateErrorIsWrapped(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "rides"`).WillReturnError(fmt.Errorf("connection reset"))
	mock.ExpectRollback()

	_, err := s.ConditionalUpdateRide(context.Background(), "r1",
		Guard{Status: model.RideStatusPending}, RidePatch{Status: model.RideStatusCancelled, At: time.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to update ride r1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_Notifications(t *testing.T) {
	ctx := context.Background()
	s := NewGormStore(newSQLiteDB(t))
	base := time.Now().UTC().Add(-time.Hour)

	records := []model.Notification{
		{UserID: "u1", Type: model.NotificationRideAccepted, Title: "a", Body: "1", CreatedAt: base},
		{UserID: "u1", Type: model.NotificationRideCompleted, Title: "b", Body: "2", CreatedAt: base.Add(time.Minute)},
		{UserID: "u1", Type: model.NotificationRideAccepted, Title: "c", Body: "3", CreatedAt: base.Add(2 * time.Minute)},
		{UserID: "u2", Type: model.NotificationRideAccepted, Title: "d", Body: "4", CreatedAt: base},
	}
	for i := range records {
		require.NoError(t, s.InsertNotification(ctx, &records[i]))
		assert.NotEmpty(t, records[i].ID)
	}

	t.Run("newest first", func(t *testing.T) {
		got, err := s.ListNotifications(ctx, "u1", ListFilter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "c", got[0].Title)
		assert.Equal(t, "a", got[2].Title)
	})

	t.Run("by type and limit", func(t *testing.T) {
		got, err := s.ListNotifications(ctx, "u1", ListFilter{Type: model.NotificationRideAccepted, Limit: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "c", got[0].Title)
	})

	t.Run("since", func(t *testing.T) {
		got, err := s.ListNotifications(ctx, "u1", ListFilter{Since: base.Add(30 * time.Second)})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func TestGormStore_Subscriptions(t *testing.T) {
	ctx := context.Background()
	gormDB := newSQLiteDB(t)
	s := NewGormStore(gormDB)

	phone := &model.PushSubscription{UserID: "u1", DeviceID: "phone", Endpoint: "https://push.example/phone", P256DH: "k1", Auth: "a1"}
	laptop := &model.PushSubscription{UserID: "u1", DeviceID: "laptop", Endpoint: "https://push.example/laptop", P256DH: "k2", Auth: "a2"}
	tablet := &model.PushSubscription{UserID: "u1", DeviceID: "tablet", Endpoint: "https://push.example/tablet", P256DH: "k3", Auth: "a3"}
	for _, sub := range []*model.PushSubscription{phone, laptop, tablet} {
		require.NoError(t, s.UpsertSubscription(ctx, sub))
		assert.True(t, sub.Enabled)
	}
	require.NoError(t, gormDB.Model(&model.PushSubscription{}).Where("id = ?", tablet.ID).Update("enabled", false).Error)

	t.Run("only enabled subscriptions are listed", func(t *testing.T) {
		subs, err := s.ListEnabledSubscriptions(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, subs, 2)
		assert.ElementsMatch(t, []string{phone.ID, laptop.ID}, []string{subs[0].ID, subs[1].ID})
	})

	t.Run("re-registering an endpoint replaces its keys", func(t *testing.T) {
		again := &model.PushSubscription{UserID: "u1", DeviceID: "phone", Endpoint: phone.Endpoint, P256DH: "k1-new", Auth: "a1-new"}
		require.NoError(t, s.UpsertSubscription(ctx, again))
		assert.Equal(t, phone.ID, again.ID)
		assert.Equal(t, "k1-new", again.P256DH)

		var count int64
		gormDB.Model(&model.PushSubscription{}).Where("endpoint = ?", phone.Endpoint).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("another user cannot take over an endpoint", func(t *testing.T) {
		hijack := &model.PushSubscription{UserID: "u2", DeviceID: "other", Endpoint: phone.Endpoint, P256DH: "k-evil", Auth: "a-evil"}
		err := s.UpsertSubscription(ctx, hijack)
		assert.ErrorIs(t, err, ErrEndpointTaken)

		var got model.PushSubscription
		require.NoError(t, gormDB.Where("endpoint = ?", phone.Endpoint).Take(&got).Error)
		assert.Equal(t, "u1", got.UserID)
		assert.Equal(t, "k1-new", got.P256DH)
	})

	t.Run("touch stamps last use", func(t *testing.T) {
		at := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, s.TouchSubscriptions(ctx, []string{laptop.ID}, at))

		var got model.PushSubscription
		require.NoError(t, gormDB.Where("id = ?", laptop.ID).Take(&got).Error)
		require.NotNil(t, got.LastUsedAt)
		assert.WithinDuration(t, at, *got.LastUsedAt, time.Second)
	})

	t.Run("batch delete", func(t *testing.T) {
		require.NoError(t, s.DeleteSubscriptions(ctx, nil))
		require.NoError(t, s.DeleteSubscriptions(ctx, []string{phone.ID, laptop.ID}))

		subs, err := s.ListEnabledSubscriptions(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, subs)
	})

	t.Run("delete by endpoint is scoped to the owner", func(t *testing.T) {
		removed, err := s.DeleteSubscriptionByEndpoint(ctx, "u2", tablet.Endpoint)
		require.NoError(t, err)
		assert.False(t, removed)

		removed, err = s.DeleteSubscriptionByEndpoint(ctx, "u1", tablet.Endpoint)
		require.NoError(t, err)
		assert.True(t, removed)
	})
}
