package mailer

import (
	"context"
	"fmt"

	"github.com/heliohq/claims-portal/pkg/config"
)

// Mailer delivers the two transactional emails the portal sends. Raw
// tokens only ever appear inside these messages.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, name, email, token string) error
	SendPasswordResetEmail(ctx context.Context, name, email, token string) error
}

// New picks an implementation from config: explicit dev mode prints to
// the log, a MailerSend key selects the API sender, otherwise SMTP.
func New(cfg config.EmailConfig, frontendURL string) Mailer {
	if cfg.DevMode {
		return NewDevMailer(frontendURL)
	}
	if cfg.MailerSendKey != "" {
		return NewMailerSendMailer(cfg, frontendURL)
	}
	return NewSMTPMailer(cfg, frontendURL)
}

func verificationLink(frontendURL, token string) string {
	return fmt.Sprintf("%s/verifyEmail?token=%s", frontendURL, token)
}

func resetLink(frontendURL, token string) string {
	return fmt.Sprintf("%s/resetPassword?token=%s", frontendURL, token)
}

func verificationBody(name, link string) (subject, text, html string) {
	subject = "Verify your email address"
	text = fmt.Sprintf("Hi %s,\n\nPlease verify your email address by visiting the link below. The link is valid for 10 minutes.\n\n%s\n\nIf you did not create an account, you can ignore this email.", name, link)
	html = fmt.Sprintf(`<p>Hi %s,</p><p>Please verify your email address by clicking the link below. The link is valid for 10 minutes.</p><p><a href="%s">Verify email</a></p><p>If you did not create an account, you can ignore this email.</p>`, name, link)
	return subject, text, html
}

func resetBody(name, link string) (subject, text, html string) {
	subject = "Reset your password"
	text = fmt.Sprintf("Hi %s,\n\nYou requested a password reset. Visit the link below to choose a new password. The link is valid for 10 minutes.\n\n%s\n\nIf you did not request this, you can ignore this email.", name, link)
	html = fmt.Sprintf(`<p>Hi %s,</p><p>You requested a password reset. Click the link below to choose a new password. The link is valid for 10 minutes.</p><p><a href="%s">Reset password</a></p><p>If you did not request this, you can ignore this email.</p>`, name, link)
	return subject, text, html
}
