// Package jobs runs transactional email delivery on asynq.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aquasync/backend/internal/observability"
	"github.com/aquasync/backend/mailer"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "email:send"
)

// SendEmailPayload carries a rendered message through the queue.
type SendEmailPayload struct {
	Template string         `json:"template,omitempty"`
	Message  mailer.Message `json:"message"`
}

// NewSendEmailTask constructs an asynq task. Delivery is retried up to five
// times and dropped after a day.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data,
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
		asynq.Retention(24*time.Hour),
		asynq.Queue(QueueDefault),
	), nil
}

// EmailHandler delivers TaskTypeSendEmail tasks through a Sender.
type EmailHandler struct {
	sender  mailer.Sender
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewEmailHandler creates an EmailHandler.
func NewEmailHandler(sender mailer.Sender, metrics *observability.Metrics, logger *zap.Logger) *EmailHandler {
	return &EmailHandler{sender: sender, metrics: metrics, logger: logger}
}

// ProcessTask implements asynq.Handler. Malformed payloads and invalid
// messages are not retried.
func (h *EmailHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("discarding malformed email task", zap.Error(err))
		return fmt.Errorf("decode payload: %w: %w", err, asynq.SkipRetry)
	}
	if err := payload.Message.Validate(); err != nil {
		h.logger.Error("discarding invalid email task", zap.Error(err))
		h.metrics.RecordEmail(payload.Template, "failed")
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	id, err := h.sender.Send(ctx, payload.Message)
	if err != nil {
		h.metrics.RecordEmail(payload.Template, "failed")
		h.logger.Warn("email delivery failed, will retry",
			zap.String("template", payload.Template),
			zap.Error(err))
		return err
	}

	h.metrics.RecordEmail(payload.Template, "sent")
	h.logger.Debug("email task processed", zap.String("message_id", id), zap.String("template", payload.Template))
	return nil
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an asynq client.
func NewClient(redisOpts asynq.RedisConnOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueSendEmail enqueues a send-email task.
func (c *Client) EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs: client not configured")
	}
	task, err := NewSendEmailTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task)
}

// Close releases the client connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
