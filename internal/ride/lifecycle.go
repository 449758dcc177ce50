package ride

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"rideshare-backend/internal/events"
	"rideshare-backend/internal/model"
	"rideshare-backend/internal/notification"
	"rideshare-backend/internal/store"
)

// Notifier delivers a notification to one user.
type Notifier interface {
	Notify(ctx context.Context, msg notification.Message) (*model.Notification, error)
}

// Manager owns the ride state machine. Every transition is a single guarded
// write, so concurrent callers never both win the same ride.
type Manager struct {
	rides          store.RideStore
	notifier       Notifier
	publisher      events.Publisher
	publishTimeout time.Duration
	log            *zap.SugaredLogger
	now            func() time.Time
}

const defaultPublishTimeout = 3 * time.Second

func NewManager(rides store.RideStore, notifier Notifier, publisher events.Publisher, log *zap.SugaredLogger) *Manager {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Manager{
		rides:          rides,
		notifier:       notifier,
		publisher:      publisher,
		publishTimeout: defaultPublishTimeout,
		log:            log,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new pending ride owned by actorID.
func (m *Manager) Create(ctx context.Context, actorID string, details model.RideDetails) (*model.Ride, error) {
	if actorID == "" {
		return nil, newError(OpCreate, nil, "", ErrForbidden, nil)
	}
	if err := validateDetails(details); err != nil {
		return nil, newError(OpCreate, nil, "", ErrInvalidInput, err)
	}

	now := m.now()
	ride := &model.Ride{
		RequesterID: actorID,
		Status:      model.RideStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		Details:     details,
	}
	if err := m.rides.CreateRide(ctx, ride); err != nil {
		return nil, newError(OpCreate, nil, "", ErrStoreFailure, err)
	}

	m.log.Infow("ride created", "ride_id", ride.ID, "user_id", actorID)
	return ride, nil
}

// Get returns the current snapshot of a ride.
func (m *Manager) Get(ctx context.Context, rideID string) (*model.Ride, error) {
	ride, err := m.rides.GetRide(ctx, rideID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(OpGet, nil, rideID, ErrNotFound, nil)
		}
		return nil, newError(OpGet, nil, rideID, ErrStoreFailure, err)
	}
	return ride, nil
}

// Accept assigns actorID as the accepter of a pending ride and notifies the requester.
func (m *Manager) Accept(ctx context.Context, rideID, actorID string) (*model.Ride, error) {
	return m.transition(ctx, OpAccept, rideID, actorID, nil)
}

// CancelOffer lets the accepter back out, returning the ride to pending.
func (m *Manager) CancelOffer(ctx context.Context, rideID, actorID string) (*model.Ride, error) {
	return m.transition(ctx, OpCancelOffer, rideID, actorID, nil)
}

// CancelRequest cancels the ride on behalf of its requester. A recorded accepter is notified.
func (m *Manager) CancelRequest(ctx context.Context, rideID, actorID string) (*model.Ride, error) {
	return m.transition(ctx, OpCancelRequest, rideID, actorID, nil)
}

// Finish marks an accepted ride completed and notifies the other party.
func (m *Manager) Finish(ctx context.Context, rideID, actorID string) (*model.Ride, error) {
	return m.transition(ctx, OpFinish, rideID, actorID, nil)
}

// Edit replaces the details of a pending ride.
func (m *Manager) Edit(ctx context.Context, rideID, actorID string, details model.RideDetails) (*model.Ride, error) {
	if err := validateDetails(details); err != nil {
		return nil, newError(OpEdit, nil, rideID, ErrInvalidInput, err)
	}
	return m.transition(ctx, OpEdit, rideID, actorID, &details)
}

// transition runs one row of the rule table. On a notification store failure
// the committed ride is returned together with the error.
func (m *Manager) transition(ctx context.Context, op Operation, rideID, actorID string, details *model.RideDetails) (*model.Ride, error) {
	r, ok := rules[op]
	if !ok {
		return nil, fmt.Errorf("unknown ride operation %q", op)
	}

	current, err := m.rides.GetRide(ctx, rideID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(op, nil, rideID, ErrNotFound, nil)
		}
		return nil, newError(op, nil, rideID, ErrStoreFailure, err)
	}

	if actorID == "" || !r.actor.holds(current, actorID) {
		return nil, newError(op, current, rideID, ErrForbidden, nil)
	}
	if !r.allows(current.Status) {
		return nil, newError(op, current, rideID, ErrInvalidState, nil)
	}

	patch := r.patch(actorID, details, m.now())
	applied, err := m.rides.ConditionalUpdateRide(ctx, rideID, store.Guard{Status: current.Status, Version: current.Version}, patch)
	if err != nil {
		return nil, newError(op, current, rideID, ErrStoreFailure, err)
	}
	if !applied {
		m.log.Infow("ride changed concurrently", "ride_id", rideID, "user_id", actorID, "op", op)
		return nil, newError(op, current, rideID, ErrConflict, nil)
	}

	updated := patch.ApplyTo(*current)
	m.log.Infow("ride transitioned",
		"ride_id", rideID,
		"user_id", actorID,
		"op", op,
		"from", current.Status,
		"to", updated.Status,
		"version", updated.Version,
	)

	notifyErr := m.notify(ctx, r.notice, current, &updated, actorID)
	m.publish(ctx, op, current.Status, &updated, actorID)

	if notifyErr != nil {
		return &updated, newError(op, &updated, rideID, ErrStoreFailure, notifyErr)
	}
	return &updated, nil
}

func (r rule) patch(actorID string, details *model.RideDetails, at time.Time) store.RidePatch {
	p := store.RidePatch{Status: r.target, At: at}
	switch r.accepter {
	case accepterSetActor:
		id := actorID
		p.SetAccepter = true
		p.AccepterID = &id
	case accepterClear:
		p.SetAccepter = true
	}
	if r.edit {
		p.Details = details
		p.MarkEdited = true
	}
	return p
}

func (m *Manager) notify(ctx context.Context, n notice, before, ride *model.Ride, actorID string) error {
	if n.to == recipientNone {
		return nil
	}
	target := n.recipientOf(before, actorID)
	if target == "" {
		return nil
	}

	rideID := ride.ID
	_, err := m.notifier.Notify(ctx, notification.Message{
		UserID:    target,
		Title:     n.title,
		Body:      n.text(ride),
		Type:      n.kind,
		RelatedID: &rideID,
	})
	if err != nil {
		m.log.Errorw("failed to record notification", "ride_id", ride.ID, "user_id", target, "error", err)
		return err
	}
	return nil
}

// publish emits the transition event within publishTimeout. Failures are logged;
// the ride is already committed.
func (m *Manager) publish(ctx context.Context, op Operation, from model.RideStatus, ride *model.Ride, actorID string) {
	event := events.RideEvent{
		RideID:      ride.ID,
		Operation:   string(op),
		From:        from,
		To:          ride.Status,
		ActorID:     actorID,
		RequesterID: ride.RequesterID,
		AccepterID:  ride.AccepterID,
		Version:     ride.Version,
		At:          ride.UpdatedAt,
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.publishTimeout)
	defer cancel()
	if err := m.publisher.Publish(ctx, event); err != nil {
		m.log.Warnw("failed to publish ride event", "ride_id", ride.ID, "op", op, "error", err)
	}
}

func validateDetails(d model.RideDetails) error {
	switch {
	case strings.TrimSpace(d.Origin) == "":
		return errors.New("origin is required")
	case strings.TrimSpace(d.Destination) == "":
		return errors.New("destination is required")
	case d.DepartAt.IsZero():
		return errors.New("departure time is required")
	case d.Seats < 1:
		return errors.New("at least one seat is required")
	}
	return nil
}
