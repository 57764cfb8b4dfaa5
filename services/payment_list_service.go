package services

import (
	"context"
	"errors"
	"time"

	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreatePaymentListInput is the payload of a new payment list.
type CreatePaymentListInput struct {
	BuildingID uuid.UUID `json:"buildingId" validate:"required"`
	Period     string    `json:"period" validate:"required,period"`
}

// PaymentListDetail is a list together with its export lines.
type PaymentListDetail struct {
	*models.PaymentList
	Lines []models.PaymentListLine `json:"lines"`
}

// PaymentListService manages monthly payment lists.
type PaymentListService struct {
	lists     repositories.PaymentListRepository
	buildings repositories.BuildingRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewPaymentListService creates a new PaymentListService instance
func NewPaymentListService(lists repositories.PaymentListRepository, buildings repositories.BuildingRepository, logger *zap.Logger) *PaymentListService {
	return &PaymentListService{lists: lists, buildings: buildings, logger: logger, now: time.Now}
}

// List returns payment lists, optionally for one building.
func (s *PaymentListService) List(ctx context.Context, buildingID *uuid.UUID) ([]*models.PaymentList, error) {
	lists, err := s.lists.List(ctx, buildingID)
	if err != nil {
		return nil, WrapInternal("failed to list payment lists", err)
	}
	if lists == nil {
		lists = []*models.PaymentList{}
	}
	return lists, nil
}

// Get returns a list with its lines.
func (s *PaymentListService) Get(ctx context.Context, id uuid.UUID) (*PaymentListDetail, error) {
	list, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	lines, err := s.lines(ctx, list)
	if err != nil {
		return nil, err
	}
	return &PaymentListDetail{PaymentList: list, Lines: lines}, nil
}

// Create opens a draft list for a building and period. A building has at
// most one list per period.
func (s *PaymentListService) Create(ctx context.Context, actor Actor, in CreatePaymentListInput) (*models.PaymentList, error) {
	if err := models.ValidatePeriod(in.Period); err != nil {
		return nil, WithCause(ErrInvalidPeriod, err)
	}
	if _, err := s.buildings.GetByID(ctx, in.BuildingID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBuildingNotFound
		}
		return nil, WrapInternal("failed to load building", err)
	}

	list := models.NewPaymentList(in.BuildingID, actor.UserID, in.Period)
	if err := s.lists.Create(ctx, list); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicatePaymentList
		}
		return nil, WrapInternal("failed to create payment list", err)
	}
	s.logger.Info("payment list created",
		zap.String("payment_list_id", list.ID.String()),
		zap.String("building_id", list.BuildingID.String()),
		zap.String("period", list.Period))
	return list, nil
}

// Approve finalizes a draft list.
func (s *PaymentListService) Approve(ctx context.Context, actor Actor, id uuid.UUID) (*models.PaymentList, error) {
	list, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if list.Status != models.PaymentListDraft {
		return nil, ErrPaymentListNotDraft
	}

	at := s.now()
	list.Status = models.PaymentListApproved
	list.ApprovedBy = &actor.UserID
	list.ApprovedAt = &at
	if err := s.lists.Approve(ctx, list); err != nil {
		if errors.Is(err, repositories.ErrStale) {
			return nil, ErrPaymentListNotDraft
		}
		return nil, WrapInternal("failed to approve payment list", err)
	}
	s.logger.Info("payment list approved", zap.String("payment_list_id", list.ID.String()))
	return list, nil
}

// Export returns the list and its lines for rendering as CSV.
func (s *PaymentListService) Export(ctx context.Context, id uuid.UUID) (*PaymentListDetail, error) {
	return s.Get(ctx, id)
}

func (s *PaymentListService) get(ctx context.Context, id uuid.UUID) (*models.PaymentList, error) {
	list, err := s.lists.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPaymentListNotFound
		}
		return nil, WrapInternal("failed to load payment list", err)
	}
	return list, nil
}

func (s *PaymentListService) lines(ctx context.Context, list *models.PaymentList) ([]models.PaymentListLine, error) {
	lines, err := s.lists.Lines(ctx, list)
	if err != nil {
		return nil, WrapInternal("failed to load payment list lines", err)
	}
	if lines == nil {
		lines = []models.PaymentListLine{}
	}
	return lines, nil
}
