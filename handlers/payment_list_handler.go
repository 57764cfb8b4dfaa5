package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aquasync/backend/internal/observability"
	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/services"
	"github.com/aquasync/backend/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentListService defines payment list operations
type PaymentListService interface {
	List(ctx context.Context, buildingID *uuid.UUID) ([]*models.PaymentList, error)
	Get(ctx context.Context, id uuid.UUID) (*services.PaymentListDetail, error)
	Create(ctx context.Context, actor services.Actor, in services.CreatePaymentListInput) (*models.PaymentList, error)
	Approve(ctx context.Context, actor services.Actor, id uuid.UUID) (*models.PaymentList, error)
	Export(ctx context.Context, id uuid.UUID) (*services.PaymentListDetail, error)
}

var csvHeader = []string{"apartment", "floor", "owner_email", "cold_water", "hot_water"}

// PaymentListHandler handles payment list HTTP requests
type PaymentListHandler struct {
	svc    PaymentListService
	logger *zap.Logger
}

// NewPaymentListHandler creates a new PaymentListHandler
func NewPaymentListHandler(svc PaymentListService, logger *zap.Logger) *PaymentListHandler {
	return &PaymentListHandler{svc: svc, logger: logger}
}

// HandleList handles GET /api/payment-lists
func (h *PaymentListHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	buildingID, err := queryUUID(r, "buildingId")
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	lists, err := h.svc.List(r.Context(), buildingID)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	_ = utils.WriteOK(w, lists)
}

// HandleGet handles GET /api/payment-lists/{listID}
func (h *PaymentListHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	id, err := pathUUID(r, "listID")
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	detail, err := h.svc.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	_ = utils.WriteOK(w, detail)
}

// HandleCreate handles POST /api/payment-lists
func (h *PaymentListHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	var in services.CreatePaymentListInput
	if err := decodeBody(w, r, &in); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	list, err := h.svc.Create(r.Context(), actor(r), in)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	_ = utils.WriteCreated(w, list)
}

// HandleApprove handles POST /api/payment-lists/{listID}/approve
func (h *PaymentListHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	id, err := pathUUID(r, "listID")
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	list, err := h.svc.Approve(r.Context(), actor(r), id)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}
	_ = utils.WriteOK(w, list)
}

// HandleExport handles GET /api/payment-lists/{listID}/export as text/csv
func (h *PaymentListHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	id, err := pathUUID(r, "listID")
	if err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	detail, err := h.svc.Export(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="payment-list-%s.csv"`, detail.Period))
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write(csvHeader)
	for _, line := range detail.Lines {
		_ = cw.Write([]string{
			line.ApartmentNumber,
			strconv.Itoa(line.Floor),
			line.OwnerEmail,
			strconv.FormatFloat(line.ColdWater, 'f', -1, 64),
			strconv.FormatFloat(line.HotWater, 'f', -1, 64),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logger.Warn("failed to write payment list export", zap.Error(err))
	}
}
