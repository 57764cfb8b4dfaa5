package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/aquasync/backend/internal/observability"
	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/repositories"
	"github.com/aquasync/backend/services"
	"github.com/aquasync/backend/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReadingService defines water reading operations
type ReadingService interface {
	List(ctx context.Context, actor services.Actor, filter repositories.ReadingFilter) ([]*models.WaterReading, error)
	Submit(ctx context.Context, actor services.Actor, in services.SubmitReadingInput) (*models.WaterReading, error)
	Approve(ctx context.Context, actor services.Actor, id uuid.UUID) (*models.WaterReading, error)
	Reject(ctx context.Context, actor services.Actor, id uuid.UUID, in services.RejectReadingInput) (*models.WaterReading, error)
}

// ReadingHandler handles water reading HTTP requests
type ReadingHandler struct {
	svc    ReadingService
	logger *zap.Logger
}

// NewReadingHandler creates a new ReadingHandler
func NewReadingHandler(svc ReadingService, logger *zap.Logger) *ReadingHandler {
	return &ReadingHandler{svc: svc, logger: logger}
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &utils.ValidationError{
			Message: "Validation failed",
			Fields:  map[string]string{name: name + " must be a non-negative integer"},
		}
	}
	return n, nil
}

func readingFilter(r *http.Request) (repositories.ReadingFilter, error) {
	var f repositories.ReadingFilter
	var err error

	if f.BuildingID, err = queryUUID(r, "buildingId"); err != nil {
		return f, err
	}
	if f.ApartmentID, err = queryUUID(r, "apartmentId"); err != nil {
		return f, err
	}
	f.Period = r.URL.Query().Get("period")
	f.Status = models.ReadingStatus(strings.ToUpper(r.URL.Query().Get("status")))
	if f.Limit, err = queryInt(r, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = queryInt(r, "offset"); err != nil {
		return f, err
	}
	return f, nil
}

// HandleList handles GET /api/readings
func (h *ReadingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	filter, err := readingFilter(r)
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	readings, err := h.svc.List(r.Context(), actor(r), filter)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	_ = utils.WriteOK(w, readings)
}

// HandlePending handles GET /api/readings/pending, the review queue. Any
// reviewer sees every pending reading, whichever review action they hold.
func (h *ReadingHandler) HandlePending(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	filter, err := readingFilter(r)
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}
	filter.Status = models.ReadingPending

	caller := actor(r)
	caller.Reviewer = true
	readings, err := h.svc.List(r.Context(), caller, filter)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	_ = utils.WriteOK(w, readings)
}

// HandleSubmit handles POST /api/readings
func (h *ReadingHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	var in services.SubmitReadingInput
	if err := decodeBody(w, r, &in); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	reading, err := h.svc.Submit(r.Context(), actor(r), in)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	_ = utils.WriteCreated(w, reading)
}

// HandleApprove handles POST /api/readings/{readingID}/approve
func (h *ReadingHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	id, err := pathUUID(r, "readingID")
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	reading, err := h.svc.Approve(r.Context(), actor(r), id)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	_ = utils.WriteOK(w, reading)
}

// HandleReject handles POST /api/readings/{readingID}/reject
func (h *ReadingHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	id, err := pathUUID(r, "readingID")
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}
	var in services.RejectReadingInput
	if err := decodeBody(w, r, &in); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	reading, err := h.svc.Reject(r.Context(), actor(r), id, in)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	_ = utils.WriteOK(w, reading)
}
