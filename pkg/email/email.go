// Package email delivers transactional mail through SendGrid.
package email

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/pawfund/pawfund-backend/pkg/breaker"
	"github.com/pawfund/pawfund-backend/pkg/config"
	"github.com/pawfund/pawfund-backend/pkg/logger"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sony/gobreaker"
)

const breakerTimeout = 30 * time.Second

// Message is a single plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message or reports why it could not.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendgridAPI interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridSender sends through the SendGrid v3 API behind a circuit breaker.
type SendGridSender struct {
	api  sendgridAPI
	from *mail.Email
	cb   *gobreaker.CircuitBreaker
}

// NewSender picks the SendGrid sender when an API key is configured and email
// is enabled. Otherwise messages are only logged.
func NewSender(cfg config.SendgridConfig, flags config.FeatureFlagsConfig, logg *logger.Logger) Sender {
	if !flags.EmailEnabled || strings.TrimSpace(cfg.APIKey) == "" {
		return NewLogSender(logg)
	}
	return &SendGridSender{
		api:  sendgrid.NewSendClient(cfg.APIKey),
		from: mail.NewEmail(cfg.FromName, cfg.DefaultFrom),
		cb:   breaker.New("sendgrid", breakerTimeout, logg),
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	payload := mail.NewSingleEmail(s.from, msg.Subject, mail.NewEmail("", msg.To), msg.Body, toHTML(msg.Body))
	_, err := s.cb.Execute(func() (any, error) {
		resp, err := s.api.SendWithContext(ctx, payload)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
		}
		return resp, nil
	})
	if err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}
	return nil
}

// LogSender writes messages to the structured log instead of sending them.
type LogSender struct {
	logg *logger.Logger
}

func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"to": msg.To, "subject": msg.Subject})
		s.logg.Info(ctx, "email.logged")
	}
	return nil
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("email recipient is required")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("email subject is required")
	}
	return nil
}

func toHTML(body string) string {
	escaped := html.EscapeString(body)
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}
