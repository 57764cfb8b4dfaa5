// Package mailer renders transactional emails and delivers them through
// Resend.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

var (
	ErrNoRecipients = errors.New("mailer: at least one recipient is required")
	ErrNoSubject    = errors.New("mailer: subject is required")
	ErrNoBody       = errors.New("mailer: html or text body is required")
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// Validate checks that the message can be handed to a provider.
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	for _, to := range m.To {
		if strings.TrimSpace(to) == "" {
			return ErrNoRecipients
		}
	}
	if strings.TrimSpace(m.Subject) == "" {
		return ErrNoSubject
	}
	if m.HTML == "" && m.Text == "" {
		return ErrNoBody
	}
	return nil
}

// Sender delivers a message and returns the provider message ID.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ResendSender delivers mail through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

// NewResendSender wraps a Resend client. from is the envelope sender, for
// example "AquaSync <no-reply@aquasync.app>".
func NewResendSender(client *resend.Client, from string, logger *zap.Logger) *ResendSender {
	return &ResendSender{client: client, from: from, logger: logger}
}

// Send implements Sender.
func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	resp, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return "", fmt.Errorf("resend: send email: %w", err)
	}

	s.logger.Info("email sent",
		zap.String("provider", "resend"),
		zap.String("message_id", resp.Id),
		zap.Int("recipients", len(msg.To)))
	return resp.Id, nil
}

// LogSender writes messages to the log instead of delivering them. It is
// used when no Resend API key is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	id := "log-" + uuid.NewString()
	s.logger.Info("email not delivered, no provider configured",
		zap.String("message_id", id),
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text))
	return id, nil
}
