package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/heliohq/claims-portal/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject)

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Subjects
const (
	UserRegistered = "user.registered"
	KycSubmitted   = "kyc.submitted"
	FormCreated    = "form.created"

	// NotifySend is consumed by the mail dispatcher queue group.
	NotifySend = "notify.send"
)

// Notification kinds carried on NotifySend.
const (
	NotifyVerification  = "verification"
	NotifyPasswordReset = "password_reset"
)

type UserRegisteredEvent struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type KycSubmittedEvent struct {
	UserID      string    `json:"user_id"`
	KycID       string    `json:"kyc_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type FormCreatedEvent struct {
	FormID           string    `json:"form_id"`
	UserID           string    `json:"user_id"`
	TotalClaimAmount float64   `json:"total_claim_amount"`
	ClaimCount       int       `json:"claim_count"`
	CreatedAt        time.Time `json:"created_at"`
}

// NotificationEvent carries everything the mail dispatcher needs; the raw
// token only ever travels on this subject and in the resulting email.
type NotificationEvent struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}
