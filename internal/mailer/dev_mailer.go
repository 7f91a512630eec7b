package mailer

import (
	"context"

	"github.com/heliohq/claims-portal/pkg/logger"
)

// DevMailer writes emails to the log instead of sending them.
type DevMailer struct {
	frontendURL string
}

func NewDevMailer(frontendURL string) *DevMailer {
	return &DevMailer{frontendURL: frontendURL}
}

func (d *DevMailer) SendVerificationEmail(ctx context.Context, name, email, token string) error {
	logger.InfoContext(ctx, "[DEV MAIL] verification email",
		"to", email,
		"name", name,
		"verify_url", verificationLink(d.frontendURL, token),
	)
	return nil
}

func (d *DevMailer) SendPasswordResetEmail(ctx context.Context, name, email, token string) error {
	logger.InfoContext(ctx, "[DEV MAIL] password reset email",
		"to", email,
		"name", name,
		"reset_url", resetLink(d.frontendURL, token),
	)
	return nil
}
