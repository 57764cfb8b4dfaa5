package handlers

import (
	"context"
	"net/http"

	"github.com/aquasync/backend/internal/observability"
	"github.com/aquasync/backend/services"
	"github.com/aquasync/backend/utils"
	"go.uber.org/zap"
)

// EmailService sends templated emails
type EmailService interface {
	SendTemplate(ctx context.Context, req services.SendEmailRequest) error
}

// EmailHandler handles POST /api/email
type EmailHandler struct {
	svc    EmailService
	logger *zap.Logger
}

// NewEmailHandler creates a new EmailHandler
func NewEmailHandler(svc EmailService, logger *zap.Logger) *EmailHandler {
	return &EmailHandler{svc: svc, logger: logger}
}

// HandleSend renders and delivers a templated email
func (h *EmailHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	var req services.SendEmailRequest
	if err := decodeBody(w, r, &req); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	if err := h.svc.SendTemplate(r.Context(), req); err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	_ = utils.WriteJSON(w, http.StatusAccepted, utils.SuccessResponse{Success: true, Message: "Email accepted for delivery"})
}
