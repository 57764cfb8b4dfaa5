package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/aquasync/backend/internal/observability"
	"github.com/aquasync/backend/jobs"
	"github.com/aquasync/backend/mailer"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Recipients is a list of addresses. In JSON it is either one address or an
// array of them.
type Recipients []string

// UnmarshalJSON accepts "a@b.c" as well as ["a@b.c", ...].
func (r *Recipients) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*r = Recipients{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.New("to must be an email address or a list of addresses")
	}
	*r = many
	return nil
}

// SendEmailRequest is a templated email addressed to one or more recipients.
// Internal callers may leave Subject empty to use the template default.
type SendEmailRequest struct {
	To       Recipients          `json:"to" validate:"required,min=1,dive,email"`
	Subject  string              `json:"subject" validate:"required,max=255"`
	Template string              `json:"template" validate:"required"`
	Data     mailer.TemplateData `json:"templateData"`
}

// EmailEnqueuer hands an email to the background worker.
type EmailEnqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// EmailService renders templated emails and delivers them through the queue
// when one is configured, or directly through the sender otherwise.
type EmailService struct {
	renderer *mailer.Renderer
	sender   mailer.Sender
	queue    EmailEnqueuer
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewEmailService creates a new EmailService instance. queue may be nil.
func NewEmailService(renderer *mailer.Renderer, sender mailer.Sender, queue EmailEnqueuer, metrics *observability.Metrics, logger *zap.Logger) *EmailService {
	return &EmailService{renderer: renderer, sender: sender, queue: queue, metrics: metrics, logger: logger}
}

// SendTemplate renders req and delivers it.
func (s *EmailService) SendTemplate(ctx context.Context, req SendEmailRequest) error {
	msg, err := s.renderer.Render(req.Template, req.To, req.Subject, req.Data)
	if err != nil {
		if errors.Is(err, mailer.ErrUnknownTemplate) {
			return WithCause(ErrUnknownTemplate, err).WithDetail("template", req.Template)
		}
		return WithCause(ErrInvalidInput, err).WithDetail("reason", err.Error())
	}
	if err := msg.Validate(); err != nil {
		return WithCause(ErrInvalidInput, err).WithDetail("reason", err.Error())
	}

	if s.queue != nil {
		info, err := s.queue.EnqueueSendEmail(ctx, jobs.SendEmailPayload{Template: req.Template, Message: msg})
		if err != nil {
			s.metrics.RecordEmail(req.Template, "failed")
			return WithCause(ErrEmailDelivery, err)
		}
		s.metrics.RecordEmail(req.Template, "queued")
		s.logger.Info("email queued", zap.String("template", req.Template), zap.String("task_id", info.ID))
		return nil
	}

	id, err := s.sender.Send(ctx, msg)
	if err != nil {
		s.metrics.RecordEmail(req.Template, "failed")
		return WithCause(ErrEmailDelivery, err)
	}
	s.metrics.RecordEmail(req.Template, "sent")
	s.logger.Info("email sent", zap.String("template", req.Template), zap.String("message_id", id))
	return nil
}
