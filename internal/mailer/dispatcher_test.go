package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/heliohq/claims-portal/pkg/events"
)

type sentMail struct {
	kind  string
	name  string
	email string
	token string
}

// flakyMailer fails the first failures deliveries, then succeeds.
type flakyMailer struct {
	failures int
	calls    int
	sent     []sentMail
}

func (m *flakyMailer) record(kind, name, email, token string) error {
	m.calls++
	if m.calls <= m.failures {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{kind: kind, name: name, email: email, token: token})
	return nil
}

func (m *flakyMailer) SendVerificationEmail(_ context.Context, name, email, token string) error {
	return m.record(events.NotifyVerification, name, email, token)
}

func (m *flakyMailer) SendPasswordResetEmail(_ context.Context, name, email, token string) error {
	return m.record(events.NotifyPasswordReset, name, email, token)
}

func TestSendDispatchesByKind(t *testing.T) {
	mail := &flakyMailer{}
	d := NewDispatcher(nil, mail)

	event := &events.NotificationEvent{
		Kind:  events.NotifyPasswordReset,
		Name:  "Asha",
		Email: "asha@example.com",
		Token: "raw-token",
	}
	if err := d.send(context.Background(), event); err != nil {
		t.Fatalf("send: %v", err)
	}

	event.Kind = events.NotifyVerification
	if err := d.send(context.Background(), event); err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(mail.sent) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(mail.sent))
	}
	if mail.sent[0].kind != events.NotifyPasswordReset || mail.sent[1].kind != events.NotifyVerification {
		t.Fatalf("wrong dispatch order: %+v", mail.sent)
	}
	if mail.sent[0].email != "asha@example.com" || mail.sent[0].token != "raw-token" {
		t.Fatalf("payload not forwarded: %+v", mail.sent[0])
	}

	event.Kind = "carrier_pigeon"
	if err := d.send(context.Background(), event); err == nil {
		t.Fatal("unknown kind must error")
	}
}

func TestDeliverRetriesTransientFailures(t *testing.T) {
	mail := &flakyMailer{failures: 1}
	d := NewDispatcher(nil, mail)

	err := d.deliver(context.Background(), &events.NotificationEvent{
		Kind:  events.NotifyVerification,
		Email: "asha@example.com",
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if mail.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", mail.calls)
	}
}

func TestDeliverStopsWhenContextExpires(t *testing.T) {
	mail := &flakyMailer{failures: maxAttempts}
	d := NewDispatcher(nil, mail)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := d.deliver(ctx, &events.NotificationEvent{
		Kind:  events.NotifyVerification,
		Email: "asha@example.com",
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if mail.calls != 1 {
		t.Fatalf("expected a single attempt before the deadline, got %d", mail.calls)
	}
}

func TestHandleDecodesNotification(t *testing.T) {
	mail := &flakyMailer{}
	d := NewDispatcher(nil, mail)

	payload, err := json.Marshal(events.NotificationEvent{
		Kind:  events.NotifyVerification,
		Name:  "Asha",
		Email: "asha@example.com",
		Token: "raw-token",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	d.handle(&events.Message{Subject: events.NotifySend, Data: payload})

	if len(mail.sent) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(mail.sent))
	}

	// Garbage payloads are dropped without a send attempt.
	d.handle(&events.Message{Subject: events.NotifySend, Data: []byte("{not json")})
	if mail.calls != 1 {
		t.Fatalf("expected no extra attempts, got %d", mail.calls)
	}
}

func TestLinksPointAtFrontendRoutes(t *testing.T) {
	link := verificationLink("https://portal.example.com", "tok123")
	if link != "https://portal.example.com/verifyEmail?token=tok123" {
		t.Fatalf("unexpected verification link: %s", link)
	}

	link = resetLink("https://portal.example.com", "tok123")
	if !strings.HasSuffix(link, "/resetPassword?token=tok123") {
		t.Fatalf("unexpected reset link: %s", link)
	}
}
