package mailer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"

	"github.com/heliohq/claims-portal/pkg/config"
)

// MailerSendMailer delivers through the MailerSend API.
type MailerSendMailer struct {
	client      *mailersend.Mailersend
	from        mailersend.From
	frontendURL string
}

func NewMailerSendMailer(cfg config.EmailConfig, frontendURL string) *MailerSendMailer {
	return &MailerSendMailer{
		client: mailersend.NewMailersend(cfg.MailerSendKey),
		from: mailersend.From{
			Name:  cfg.FromName,
			Email: cfg.FromEmail,
		},
		frontendURL: frontendURL,
	}
}

func (m *MailerSendMailer) SendVerificationEmail(ctx context.Context, name, email, token string) error {
	subject, text, html := verificationBody(name, verificationLink(m.frontendURL, token))
	return m.send(ctx, name, email, subject, text, html)
}

func (m *MailerSendMailer) SendPasswordResetEmail(ctx context.Context, name, email, token string) error {
	subject, text, html := resetBody(name, resetLink(m.frontendURL, token))
	return m.send(ctx, name, email, subject, text, html)
}

func (m *MailerSendMailer) send(ctx context.Context, name, email, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: name, Email: email}})
	msg.SetSubject(subject)
	msg.SetText(text)
	msg.SetHTML(html)

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
