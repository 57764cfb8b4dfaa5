package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultReadingLimit = 50
	maxReadingLimit     = 500
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uuid.UUID
	// Reviewer is set for callers allowed to approve readings. Other
	// callers only act on apartments they own.
	Reviewer bool
}

// SubmitReadingInput is the payload of a new reading.
type SubmitReadingInput struct {
	ApartmentID uuid.UUID `json:"apartmentId" validate:"required"`
	Period      string    `json:"period" validate:"required,period"`
	ColdWater   float64   `json:"coldWater" validate:"min=0"`
	HotWater    float64   `json:"hotWater" validate:"min=0"`
}

// RejectReadingInput carries the rejection reason.
type RejectReadingInput struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

// ReadingService manages the submission and review of water readings.
type ReadingService struct {
	readings   repositories.ReadingRepository
	apartments repositories.ApartmentRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewReadingService creates a new ReadingService instance
func NewReadingService(readings repositories.ReadingRepository, apartments repositories.ApartmentRepository, logger *zap.Logger) *ReadingService {
	return &ReadingService{readings: readings, apartments: apartments, logger: logger, now: time.Now}
}

// List returns readings matching filter. Non-reviewers only see their own
// submissions.
func (s *ReadingService) List(ctx context.Context, actor Actor, filter repositories.ReadingFilter) ([]*models.WaterReading, error) {
	if filter.Period != "" {
		if err := models.ValidatePeriod(filter.Period); err != nil {
			return nil, WithCause(ErrInvalidPeriod, err)
		}
	}
	switch filter.Status {
	case "", models.ReadingPending, models.ReadingApproved, models.ReadingRejected:
	default:
		return nil, WithCause(ErrInvalidInput, nil).WithDetail("status", string(filter.Status))
	}
	if !actor.Reviewer {
		filter.SubmittedBy = &actor.UserID
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultReadingLimit
	}
	if filter.Limit > maxReadingLimit {
		filter.Limit = maxReadingLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	readings, err := s.readings.List(ctx, filter)
	if err != nil {
		return nil, WrapInternal("failed to list readings", err)
	}
	if readings == nil {
		readings = []*models.WaterReading{}
	}
	return readings, nil
}

// Submit records a pending reading. Values must fit between the approved
// readings of the surrounding periods.
func (s *ReadingService) Submit(ctx context.Context, actor Actor, in SubmitReadingInput) (*models.WaterReading, error) {
	if err := models.ValidatePeriod(in.Period); err != nil {
		return nil, WithCause(ErrInvalidPeriod, err)
	}
	if in.ColdWater < 0 || in.HotWater < 0 {
		return nil, WithCause(ErrInvalidInput, nil).WithDetail("reason", "readings must not be negative")
	}

	apartment, err := s.apartments.GetByID(ctx, in.ApartmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrApartmentNotFound
		}
		return nil, WrapInternal("failed to load apartment", err)
	}
	if !actor.Reviewer && !apartment.IsOwnedBy(actor.UserID) {
		return nil, WithCause(ErrForbidden, nil).WithDetail("reason", "apartment is not owned by the caller")
	}

	if err := s.checkSequence(ctx, apartment.ID, in.Period, in.ColdWater, in.HotWater); err != nil {
		return nil, err
	}

	reading := models.NewWaterReading(apartment.ID, actor.UserID, in.Period, in.ColdWater, in.HotWater)
	if err := s.readings.Create(ctx, reading); err != nil {
		return nil, WrapInternal("failed to create reading", err)
	}
	s.logger.Info("water reading submitted",
		zap.String("reading_id", reading.ID.String()),
		zap.String("apartment_id", apartment.ID.String()),
		zap.String("period", reading.Period))
	return reading, nil
}

// Approve moves a pending reading to APPROVED.
func (s *ReadingService) Approve(ctx context.Context, actor Actor, id uuid.UUID) (*models.WaterReading, error) {
	return s.review(ctx, actor, id, models.ReadingApproved, "")
}

// Reject moves a pending reading to REJECTED with a reason.
func (s *ReadingService) Reject(ctx context.Context, actor Actor, id uuid.UUID, in RejectReadingInput) (*models.WaterReading, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, WithCause(ErrInvalidInput, nil).WithDetail("reason", "required")
	}
	return s.review(ctx, actor, id, models.ReadingRejected, reason)
}

func (s *ReadingService) review(ctx context.Context, actor Actor, id uuid.UUID, status models.ReadingStatus, reason string) (*models.WaterReading, error) {
	reading, err := s.readings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrReadingNotFound
		}
		return nil, WrapInternal("failed to load reading", err)
	}
	if !reading.IsPending() {
		return nil, ErrReadingNotPending
	}
	if status == models.ReadingApproved {
		if err := s.checkSequence(ctx, reading.ApartmentID, reading.Period, reading.ColdWater, reading.HotWater); err != nil {
			return nil, err
		}
	}

	reading.Review(status, actor.UserID, reason, s.now())
	if err := s.readings.Review(ctx, reading); err != nil {
		switch {
		case errors.Is(err, repositories.ErrStale):
			return nil, ErrReadingNotPending
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, NewDomainError(ErrorTypeConflict, "a reading is already approved for this period", err)
		}
		return nil, WrapInternal("failed to review reading", err)
	}

	s.logger.Info("water reading reviewed",
		zap.String("reading_id", reading.ID.String()),
		zap.String("status", string(status)),
		zap.String("reviewer_id", actor.UserID.String()))
	return reading, nil
}

// checkSequence keeps approved readings non-decreasing by period. A value
// for period may not be below the approved reading at or before it, nor
// above the first approved reading after it.
func (s *ReadingService) checkSequence(ctx context.Context, apartmentID uuid.UUID, period string, cold, hot float64) error {
	prev, err := s.readings.ApprovedUpTo(ctx, apartmentID, period)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
	case err != nil:
		return WrapInternal("failed to load previous approved reading", err)
	case prev.Period == period:
		return NewDomainError(ErrorTypeConflict, "a reading is already approved for this period", nil)
	case cold < prev.ColdWater || hot < prev.HotWater:
		return WithCause(ErrReadingBelowPrevious, nil).
			WithDetail("previousPeriod", prev.Period).
			WithDetail("previousColdWater", prev.ColdWater).
			WithDetail("previousHotWater", prev.HotWater)
	}

	next, err := s.readings.ApprovedAfter(ctx, apartmentID, period)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
	case err != nil:
		return WrapInternal("failed to load next approved reading", err)
	case cold > next.ColdWater || hot > next.HotWater:
		return WithCause(ErrReadingAboveNext, nil).
			WithDetail("nextPeriod", next.Period).
			WithDetail("nextColdWater", next.ColdWater).
			WithDetail("nextHotWater", next.HotWater)
	}
	return nil
}
