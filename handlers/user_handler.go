package handlers

import (
	"context"
	"net/http"

	"github.com/aquasync/backend/internal/observability"
	"github.com/aquasync/backend/middleware"
	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProfileService loads user profiles
type ProfileService interface {
	Me(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	svc    ProfileService
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(svc ProfileService, logger *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// HandleMe handles GET /api/users/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	if userID == uuid.Nil {
		_ = utils.WriteMissingToken(w)
		return
	}

	profile, err := h.svc.Me(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, err, observability.Logger(r.Context(), h.logger))
		return
	}
	_ = utils.WriteOK(w, profile)
}
