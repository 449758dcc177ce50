package notification

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"rideshare-backend/internal/model"
)

// Outcome classifies a single push delivery attempt.
type Outcome int

const (
	// OutcomeDelivered means the push service accepted the message.
	OutcomeDelivered Outcome = iota
	// OutcomeTransient covers timeouts, network errors and unexpected statuses. Never pruned.
	OutcomeTransient
	// OutcomeGone means the endpoint is permanently invalid and must be removed.
	OutcomeGone
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeGone:
		return "gone"
	default:
		return "transient"
	}
}

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(ctx context.Context, payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(ctx context.Context, payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotificationWithContext(ctx, payload, sub, options)
}

// Gateway delivers one payload to one push subscription.
type Gateway interface {
	Deliver(ctx context.Context, sub model.PushSubscription, payload []byte) (Outcome, error)
}

// WebPushGateway delivers through the Web Push protocol with a per-attempt timeout.
type WebPushGateway struct {
	sender  NotificationSender
	options *webpush.Options
	timeout time.Duration
}

// NewWebPushGateway creates a gateway backed by the real webpush sender.
func NewWebPushGateway(options *webpush.Options, timeout time.Duration) *WebPushGateway {
	return &WebPushGateway{
		sender:  &WebPushSender{},
		options: options,
		timeout: timeout,
	}
}

// Deliver sends payload to sub and classifies the response.
func (g *WebPushGateway) Deliver(ctx context.Context, sub model.PushSubscription, payload []byte) (Outcome, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	// Manually construct the webpush.Subscription object
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := g.sender.Send(ctx, payload, wpSub, g.options)
	if err != nil {
		return OutcomeTransient, fmt.Errorf("send to %s: %w", sub.Endpoint, err)
	}
	if resp.Body != nil {
		defer resp.Body.Close()
	}
	return Classify(resp.StatusCode)
}

// Classify maps a push service HTTP status onto an Outcome.
// Only 404 and 410 mean the subscription is gone; anything ambiguous is transient.
func Classify(status int) (Outcome, error) {
	switch {
	case status >= 200 && status < 300:
		return OutcomeDelivered, nil
	case status == http.StatusNotFound || status == http.StatusGone:
		return OutcomeGone, fmt.Errorf("push endpoint gone: status %d", status)
	default:
		return OutcomeTransient, fmt.Errorf("push service returned status %d", status)
	}
}
