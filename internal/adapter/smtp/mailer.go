// Package smtp delivers OTP mail over plain SMTP with STARTTLS.
package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"

	"bazaarly-core/config"
	"bazaarly-core/internal/core/domain"
)

// Mailer implements ports.OtpMailer over net/smtp.
type Mailer struct {
	cfg config.SMTPConfig
}

// NewMailer creates a new SMTP mailer.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

var subjects = map[domain.OtpPurpose]string{
	domain.OtpPurposeSignup:        "Verify your Bazaarly account",
	domain.OtpPurposeLogin:         "Your Bazaarly sign-in code",
	domain.OtpPurposePasswordReset: "Reset your Bazaarly password",
}

// SendOtp delivers a one-time code to the recipient. The context bounds
// the dial; SMTP protocol steps after that run on the connection's own
// deadlines.
func (m *Mailer) SendOtp(ctx context.Context, email, code string, purpose domain.OtpPurpose) error {
	subject, ok := subjects[purpose]
	if !ok {
		subject = "Your Bazaarly verification code"
	}
	body := otpBody(code)

	msg := []byte(
		fmt.Sprintf("From: %s\r\n", m.cfg.From) +
			fmt.Sprintf("To: %s\r\n", email) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", m.cfg.Addr())
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Quit()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(email); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return nil
}

func otpBody(code string) string {
	return fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:480px;margin:0 auto">
<h2>Bazaarly</h2>
<p>Use this code to continue. It expires in 10 minutes.</p>
<p style="font-size:32px;letter-spacing:8px;font-weight:bold">%s</p>
<p>If you did not request this code, you can ignore this email.</p>
</div>`, code)
}
