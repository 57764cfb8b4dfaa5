package handlers

import (
	"context"
	"net/http"

	"github.com/aquasync/backend/internal/observability"
	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/services"
	"github.com/aquasync/backend/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BuildingService defines building operations
type BuildingService interface {
	List(ctx context.Context) ([]*models.Building, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Building, error)
	Create(ctx context.Context, in services.BuildingInput) (*models.Building, error)
	Update(ctx context.Context, id uuid.UUID, in services.BuildingInput) (*models.Building, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BuildingHandler handles building-related HTTP requests
type BuildingHandler struct {
	svc    BuildingService
	logger *zap.Logger
}

// NewBuildingHandler creates a new BuildingHandler
func NewBuildingHandler(svc BuildingService, logger *zap.Logger) *BuildingHandler {
	return &BuildingHandler{svc: svc, logger: logger}
}

// HandleList handles GET /api/buildings
func (h *BuildingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	buildings, err := h.svc.List(r.Context())
	if err != nil {
		HandleServiceError(w, err, observability.Logger(r.Context(), h.logger))
		return
	}
	_ = utils.WriteOK(w, buildings)
}

// HandleGet handles GET /api/buildings/{buildingID}
func (h *BuildingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	id, err := pathUUID(r, "buildingID")
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	_ = utils.WriteOK(w, b)
}

// HandleCreate handles POST /api/buildings
func (h *BuildingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	var in services.BuildingInput
	if err := decodeBody(w, r, &in); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	b, err := h.svc.Create(r.Context(), in)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	_ = utils.WriteCreated(w, b)
}

// HandleUpdate handles PUT /api/buildings/{buildingID}
func (h *BuildingHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	id, err := pathUUID(r, "buildingID")
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}
	var in services.BuildingInput
	if err := decodeBody(w, r, &in); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	b, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	_ = utils.WriteOK(w, b)
}

// HandleDelete handles DELETE /api/buildings/{buildingID}
func (h *BuildingHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	id, err := pathUUID(r, "buildingID")
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	utils.WriteNoContent(w)
}
