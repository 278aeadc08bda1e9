package service

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/config"
	"github.com/zahrastore/storeapi/internal/domain"
)

// Mailer sends transactional email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	addr   string
	auth   smtp.Auth
	from   string
	logger *zap.Logger
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.Logger) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		addr:   cfg.Host + ":" + cfg.Port,
		auth:   auth,
		from:   cfg.From,
		logger: logger,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if m.addr == ":" || strings.HasPrefix(m.addr, ":") {
		return fmt.Errorf("smtp not configured")
	}

	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", to, err)
	}
	return nil
}

// orderConfirmationBody builds the plain-text order confirmation message.
func orderConfirmationBody(order *domain.Order, items []*domain.OrderItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order!\n\nOrder %s\n\n", order.ID)
	for _, item := range items {
		fmt.Fprintf(&b, "  %d x %s @ %.2f\n", item.Quantity, item.Name, item.UnitPrice)
	}
	fmt.Fprintf(&b, "\nTotal: %.2f\n", float64(order.TotalMinor)/100)
	b.WriteString("\nWe'll email you again when your order ships.\n")
	return b.String()
}

// passwordResetBody builds the plain-text reset message carrying the raw token.
func passwordResetBody(token string) string {
	return fmt.Sprintf(
		"We received a request to reset your password.\n\n"+
			"Your reset code is: %s\n\n"+
			"The code expires in one hour and can be used once. "+
			"If you didn't request this, you can ignore this email.\n", token)
}
