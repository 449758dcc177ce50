package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rideshare-backend/internal/model"
	"rideshare-backend/internal/store"
)

// Message is one notification addressed to a single user.
type Message struct {
	UserID    string
	Title     string
	Body      string
	Type      model.NotificationType
	RelatedID *string
}

// pushPayload is the JSON body pushed to devices.
type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Dispatcher persists in-app notifications and fans them out to the target's devices.
type Dispatcher struct {
	notifications store.NotificationStore
	subscriptions store.SubscriptionStore
	gateway       Gateway
	concurrency   int
	log           *zap.SugaredLogger
	now           func() time.Time
}

// NewDispatcher creates a dispatcher. concurrency bounds the number of in-flight deliveries per call.
func NewDispatcher(notifications store.NotificationStore, subscriptions store.SubscriptionStore, gateway Gateway, concurrency int, log *zap.SugaredLogger) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Dispatcher{
		notifications: notifications,
		subscriptions: subscriptions,
		gateway:       gateway,
		concurrency:   concurrency,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Notify stores the notification and then attempts push delivery to every enabled
// subscription of the target user. Only a failure to store the record is returned;
// push problems are logged and absorbed.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) (*model.Notification, error) {
	if msg.UserID == "" {
		return nil, errors.New("notification has no target user")
	}

	record := &model.Notification{
		UserID:    msg.UserID,
		Type:      msg.Type,
		Title:     msg.Title,
		Body:      msg.Body,
		RelatedID: msg.RelatedID,
		CreatedAt: d.now(),
	}
	if err := d.notifications.InsertNotification(ctx, record); err != nil {
		return nil, fmt.Errorf("persist notification: %w", err)
	}

	// The record is committed; a caller hanging up must not cut the push short.
	d.push(context.WithoutCancel(ctx), msg)
	return record, nil
}

func (d *Dispatcher) push(ctx context.Context, msg Message) {
	log := d.log.With("user_id", msg.UserID, "type", msg.Type)

	subs, err := d.subscriptions.ListEnabledSubscriptions(ctx, msg.UserID)
	if err != nil {
		log.Warnw("could not load push subscriptions", "error", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(pushPayload{Title: msg.Title, Body: msg.Body})
	if err != nil {
		log.Errorw("could not encode push payload", "error", err)
		return
	}

	outcomes := d.fanOut(ctx, subs, payload, log)

	var gone, delivered []string
	for i, outcome := range outcomes {
		switch outcome {
		case OutcomeGone:
			gone = append(gone, subs[i].ID)
		case OutcomeDelivered:
			delivered = append(delivered, subs[i].ID)
		}
	}
	log.Infow("push fan-out finished",
		"subscriptions", len(subs), "delivered", len(delivered), "gone", len(gone))

	if len(gone) > 0 {
		if err := d.subscriptions.DeleteSubscriptions(ctx, gone); err != nil {
			log.Warnw("could not prune expired subscriptions", "ids", gone, "error", err)
		}
	}
	if len(delivered) > 0 {
		if err := d.subscriptions.TouchSubscriptions(ctx, delivered, d.now()); err != nil {
			log.Warnw("could not record subscription use", "error", err)
		}
	}
}

// fanOut delivers to every subscription concurrently and returns once all attempts are done.
// outcomes[i] belongs to subs[i].
func (d *Dispatcher) fanOut(ctx context.Context, subs []model.PushSubscription, payload []byte, log *zap.SugaredLogger) []Outcome {
	outcomes := make([]Outcome, len(subs))

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, sub := range subs {
		i, sub := i, sub
		g.Go(func() error {
			outcome, err := d.gateway.Deliver(ctx, sub, payload)
			outcomes[i] = outcome
			if err != nil {
				log.Infow("push delivery failed",
					"subscription_id", sub.ID, "device_id", sub.DeviceID, "outcome", outcome.String(), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}
