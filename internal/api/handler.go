package api

import (
	"context"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"rideshare-backend/internal/model"
	"rideshare-backend/internal/store"
)

// RideService is the ride lifecycle as seen by the HTTP layer.
type RideService interface {
	Create(ctx context.Context, actorID string, details model.RideDetails) (*model.Ride, error)
	Get(ctx context.Context, rideID string) (*model.Ride, error)
	Accept(ctx context.Context, rideID, actorID string) (*model.Ride, error)
	CancelOffer(ctx context.Context, rideID, actorID string) (*model.Ride, error)
	CancelRequest(ctx context.Context, rideID, actorID string) (*model.Ride, error)
	Finish(ctx context.Context, rideID, actorID string) (*model.Ride, error)
	Edit(ctx context.Context, rideID, actorID string, details model.RideDetails) (*model.Ride, error)
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	rides   RideService
	store   store.Store
	webpush *webpush.Options
	log     *zap.SugaredLogger
}

// NewHandler creates a new API handler.
func NewHandler(rides RideService, s store.Store, webpushOptions *webpush.Options, log *zap.SugaredLogger) *Handler {
	return &Handler{
		rides:   rides,
		store:   s,
		webpush: webpushOptions,
		log:     log,
	}
}
