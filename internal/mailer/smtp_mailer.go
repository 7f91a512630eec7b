package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/heliohq/claims-portal/pkg/config"
)

// SMTPMailer delivers through a plain SMTP relay, falling back to
// implicit TLS when configured.
type SMTPMailer struct {
	host        string
	port        int
	from        string
	user        string
	pass        string
	useTLS      bool
	frontendURL string
}

func NewSMTPMailer(cfg config.EmailConfig, frontendURL string) *SMTPMailer {
	return &SMTPMailer{
		host:        strings.TrimSpace(cfg.SMTPHost),
		port:        cfg.SMTPPort,
		from:        strings.TrimSpace(cfg.SMTPFrom),
		user:        strings.TrimSpace(cfg.SMTPUser),
		pass:        strings.TrimSpace(cfg.SMTPPass),
		useTLS:      cfg.SMTPUseTLS,
		frontendURL: frontendURL,
	}
}

func (s *SMTPMailer) SendVerificationEmail(ctx context.Context, name, email, token string) error {
	subject, text, html := verificationBody(name, verificationLink(s.frontendURL, token))
	return s.send(email, subject, text, html)
}

func (s *SMTPMailer) SendPasswordResetEmail(ctx context.Context, name, email, token string) error {
	subject, text, html := resetBody(name, resetLink(s.frontendURL, token))
	return s.send(email, subject, text, html)
}

func (s *SMTPMailer) send(toEmail, subject, text, html string) error {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return fmt.Errorf("empty recipient email")
	}

	var buf bytes.Buffer
	boundary := "mixed-boundary"

	fmt.Fprintf(&buf, "From: %s\r\n", s.from)
	fmt.Fprintf(&buf, "To: %s\r\n", toEmail)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", text)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/html; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", html)

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	// Development relay such as Mailpit: no auth, no TLS.
	if !s.useTLS && s.user == "" {
		return smtp.SendMail(addr, nil, s.from, []string{toEmail}, buf.Bytes())
	}

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}

	// STARTTLS path first.
	sendErr := smtp.SendMail(addr, auth, s.from, []string{toEmail}, buf.Bytes())
	if sendErr == nil {
		return nil
	}

	// Fallback to implicit TLS (port 465).
	if s.useTLS {
		conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.host})
		if err != nil {
			return err
		}
		defer conn.Close()

		c, err := smtp.NewClient(conn, s.host)
		if err != nil {
			return err
		}
		defer c.Quit()

		if s.user != "" {
			if err := c.Auth(auth); err != nil {
				return err
			}
		}

		if err := c.Mail(s.from); err != nil {
			return err
		}
		if err := c.Rcpt(toEmail); err != nil {
			return err
		}

		w, err := c.Data()
		if err != nil {
			return err
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		return w.Close()
	}

	return fmt.Errorf("smtp send failed: %w", sendErr)
}
