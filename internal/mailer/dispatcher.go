package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/heliohq/claims-portal/pkg/events"
	"github.com/heliohq/claims-portal/pkg/logger"
)

const (
	dispatcherQueue = "mailer"
	maxAttempts     = 3
)

// Dispatcher consumes notification events off the bus and turns them into
// emails. Running it in a queue group means one delivery per event no
// matter how many instances are up.
type Dispatcher struct {
	bus    events.Subscriber
	mailer Mailer
}

func NewDispatcher(bus events.Subscriber, mailer Mailer) *Dispatcher {
	return &Dispatcher{bus: bus, mailer: mailer}
}

func (d *Dispatcher) Start() error {
	return d.bus.QueueSubscribe(events.NotifySend, dispatcherQueue, d.handle)
}

func (d *Dispatcher) handle(msg *events.Message) {
	var event events.NotificationEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("failed to decode notification event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := d.deliver(ctx, &event); err != nil {
		logger.Error("giving up on notification delivery",
			"kind", event.Kind,
			"to", event.Email,
			"error", err,
		)
	}
}

// deliver retries transient failures with doubling backoff before giving up.
func (d *Dispatcher) deliver(ctx context.Context, event *events.NotificationEvent) error {
	var err error
	backoff := time.Second

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = d.send(ctx, event)
		if err == nil {
			return nil
		}
		logger.Warn("notification delivery failed",
			"kind", event.Kind,
			"to", event.Email,
			"attempt", attempt,
			"error", err,
		)
		if attempt < maxAttempts {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}
	}
	return err
}

func (d *Dispatcher) send(ctx context.Context, event *events.NotificationEvent) error {
	switch event.Kind {
	case events.NotifyVerification:
		return d.mailer.SendVerificationEmail(ctx, event.Name, event.Email, event.Token)
	case events.NotifyPasswordReset:
		return d.mailer.SendPasswordResetEmail(ctx, event.Name, event.Email, event.Token)
	default:
		return fmt.Errorf("unknown notification kind %q", event.Kind)
	}
}
