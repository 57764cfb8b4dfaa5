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

// ApartmentInput is the payload to create or replace an apartment.
type ApartmentInput struct {
	Number string `json:"number" validate:"required,min=1,max=20"`
	Floor  int    `json:"floor" validate:"min=0"`
}

// AssignOwnerInput sets or clears the owner of an apartment.
type AssignOwnerInput struct {
	OwnerID *uuid.UUID `json:"ownerId"`
}

// ApartmentService manages apartments inside buildings.
type ApartmentService struct {
	buildings  repositories.BuildingRepository
	apartments repositories.ApartmentRepository
	users      repositories.UserRepository
	logger     *zap.Logger
}

// NewApartmentService creates a new ApartmentService instance
func NewApartmentService(
	buildings repositories.BuildingRepository,
	apartments repositories.ApartmentRepository,
	users repositories.UserRepository,
	logger *zap.Logger,
) *ApartmentService {
	return &ApartmentService{buildings: buildings, apartments: apartments, users: users, logger: logger}
}

func (s *ApartmentService) building(ctx context.Context, id uuid.UUID) (*models.Building, error) {
	b, err := s.buildings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBuildingNotFound
		}
		return nil, WrapInternal("failed to load building", err)
	}
	return b, nil
}

func checkFloor(b *models.Building, floor int) error {
	if floor < 0 || floor > b.Floors {
		return WithCause(ErrFloorOutOfRange, nil).
			WithDetail("floor", floor).
			WithDetail("floors", b.Floors)
	}
	return nil
}

// ListByBuilding returns the apartments of a building ordered by number.
func (s *ApartmentService) ListByBuilding(ctx context.Context, buildingID uuid.UUID) ([]*models.Apartment, error) {
	if _, err := s.building(ctx, buildingID); err != nil {
		return nil, err
	}
	apartments, err := s.apartments.ListByBuilding(ctx, buildingID)
	if err != nil {
		return nil, WrapInternal("failed to list apartments", err)
	}
	if apartments == nil {
		apartments = []*models.Apartment{}
	}
	return apartments, nil
}

// Get returns one apartment.
func (s *ApartmentService) Get(ctx context.Context, id uuid.UUID) (*models.Apartment, error) {
	a, err := s.apartments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrApartmentNotFound
		}
		return nil, WrapInternal("failed to load apartment", err)
	}
	return a, nil
}

// Create adds an apartment to a building. The number must be unique within
// the building and the floor must fit the building layout.
func (s *ApartmentService) Create(ctx context.Context, buildingID uuid.UUID, in ApartmentInput) (*models.Apartment, error) {
	b, err := s.building(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	if err := checkFloor(b, in.Floor); err != nil {
		return nil, err
	}

	a := models.NewApartment(b.ID, strings.TrimSpace(in.Number), in.Floor)
	if err := s.apartments.Create(ctx, a); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateApartment
		}
		return nil, WrapInternal("failed to create apartment", err)
	}
	s.logger.Info("apartment created",
		zap.String("building_id", b.ID.String()),
		zap.String("apartment_id", a.ID.String()))
	return a, nil
}

// Update replaces the number and floor of an apartment.
func (s *ApartmentService) Update(ctx context.Context, id uuid.UUID, in ApartmentInput) (*models.Apartment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	b, err := s.building(ctx, a.BuildingID)
	if err != nil {
		return nil, err
	}
	if err := checkFloor(b, in.Floor); err != nil {
		return nil, err
	}

	a.Number = strings.TrimSpace(in.Number)
	a.Floor = in.Floor
	a.UpdatedAt = time.Now()
	if err := s.apartments.Update(ctx, a); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, ErrDuplicateApartment
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrApartmentNotFound
		}
		return nil, WrapInternal("failed to update apartment", err)
	}
	return a, nil
}

// Delete removes an apartment. Apartments with readings cannot be removed.
func (s *ApartmentService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.apartments.Delete(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return ErrApartmentNotFound
	case errors.Is(err, repositories.ErrInUse):
		return NewDomainError(ErrorTypeConflict, "apartment has water readings", err)
	default:
		return WrapInternal("failed to delete apartment", err)
	}
}

// AssignOwner sets the owner of an apartment, or clears it when ownerID is nil.
func (s *ApartmentService) AssignOwner(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) (*models.Apartment, error) {
	if ownerID != nil {
		if _, err := s.users.GetByID(ctx, *ownerID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, WrapInternal("failed to load owner", err)
		}
	}

	if err := s.apartments.AssignOwner(ctx, id, ownerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrApartmentNotFound
		}
		return nil, WrapInternal("failed to assign owner", err)
	}

	owner := "none"
	if ownerID != nil {
		owner = ownerID.String()
	}
	s.logger.Info("apartment owner assigned", zap.String("apartment_id", id.String()), zap.String("owner_id", owner))
	return s.Get(ctx, id)
}
