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

// ApartmentService defines apartment operations
type ApartmentService interface {
	ListByBuilding(ctx context.Context, buildingID uuid.UUID) ([]*models.Apartment, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Apartment, error)
	Create(ctx context.Context, buildingID uuid.UUID, in services.ApartmentInput) (*models.Apartment, error)
	Update(ctx context.Context, id uuid.UUID, in services.ApartmentInput) (*models.Apartment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AssignOwner(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) (*models.Apartment, error)
}

// ApartmentHandler handles apartment-related HTTP requests
type ApartmentHandler struct {
	svc    ApartmentService
	logger *zap.Logger
}

// NewApartmentHandler creates a new ApartmentHandler
func NewApartmentHandler(svc ApartmentService, logger *zap.Logger) *ApartmentHandler {
	return &ApartmentHandler{svc: svc, logger: logger}
}

// HandleListByBuilding handles GET /api/buildings/{buildingID}/apartments
func (h *ApartmentHandler) HandleListByBuilding(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	buildingID, err := pathUUID(r, "buildingID")
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	apartments, err := h.svc.ListByBuilding(r.Context(), buildingID)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	_ = utils.WriteOK(w, apartments)
}

// HandleCreate handles POST /api/buildings/{buildingID}/apartments
func (h *ApartmentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	buildingID, err := pathUUID(r, "buildingID")
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}
	var in services.ApartmentInput
	if err := decodeBody(w, r, &in); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	a, err := h.svc.Create(r.Context(), buildingID, in)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	_ = utils.WriteCreated(w, a)
}

// HandleGet handles GET /api/apartments/{apartmentID}
func (h *ApartmentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	id, err := pathUUID(r, "apartmentID")
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	a, err := h.svc.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	_ = utils.WriteOK(w, a)
}

// HandleUpdate handles PUT /api/apartments/{apartmentID}
func (h *ApartmentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	id, err := pathUUID(r, "apartmentID")
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}
	var in services.ApartmentInput
	if err := decodeBody(w, r, &in); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	a, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	_ = utils.WriteOK(w, a)
}

// HandleDelete handles DELETE /api/apartments/{apartmentID}
func (h *ApartmentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	id, err := pathUUID(r, "apartmentID")
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

// HandleAssignOwner handles PUT /api/apartments/{apartmentID}/owner
func (h *ApartmentHandler) HandleAssignOwner(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	id, err := pathUUID(r, "apartmentID")
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}
	var in services.AssignOwnerInput
	if err := decodeBody(w, r, &in); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	a, err := h.svc.AssignOwner(r.Context(), id, in.OwnerID)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	_ = utils.WriteOK(w, a)
}
