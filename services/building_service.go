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

// BuildingInput is the payload to create or replace a building.
type BuildingInput struct {
	Name               string `json:"name" validate:"required,min=1,max=255"`
	Address            string `json:"address" validate:"required,min=1,max=500"`
	Floors             int    `json:"floors" validate:"required,min=1,max=200"`
	ApartmentsPerFloor int    `json:"apartmentsPerFloor" validate:"required,min=1,max=100"`
}

// BuildingService manages buildings.
type BuildingService struct {
	buildings repositories.BuildingRepository
	logger    *zap.Logger
}

// NewBuildingService creates a new BuildingService instance
func NewBuildingService(buildings repositories.BuildingRepository, logger *zap.Logger) *BuildingService {
	return &BuildingService{buildings: buildings, logger: logger}
}

// List returns every building with its apartments.
func (s *BuildingService) List(ctx context.Context) ([]*models.Building, error) {
	buildings, err := s.buildings.List(ctx)
	if err != nil {
		return nil, WrapInternal("failed to list buildings", err)
	}
	if buildings == nil {
		buildings = []*models.Building{}
	}
	return buildings, nil
}

// Get returns one building with its apartments.
func (s *BuildingService) Get(ctx context.Context, id uuid.UUID) (*models.Building, error) {
	b, err := s.buildings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBuildingNotFound
		}
		return nil, WrapInternal("failed to load building", err)
	}
	return b, nil
}

// Create adds a building.
func (s *BuildingService) Create(ctx context.Context, in BuildingInput) (*models.Building, error) {
	b := models.NewBuilding(strings.TrimSpace(in.Name), strings.TrimSpace(in.Address), in.Floors, in.ApartmentsPerFloor)
	if err := s.buildings.Create(ctx, b); err != nil {
		return nil, WrapInternal("failed to create building", err)
	}
	s.logger.Info("building created", zap.String("building_id", b.ID.String()))
	return b, nil
}

// Update replaces the attributes of a building. Shrinking the layout below
// an existing apartment's floor is rejected.
func (s *BuildingService) Update(ctx context.Context, id uuid.UUID, in BuildingInput) (*models.Building, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, a := range b.Apartments {
		if a.Floor > in.Floors {
			return nil, WithCause(ErrFloorOutOfRange, nil).WithDetail("apartment", a.Number)
		}
	}

	b.Name = strings.TrimSpace(in.Name)
	b.Address = strings.TrimSpace(in.Address)
	b.Floors = in.Floors
	b.ApartmentsPerFloor = in.ApartmentsPerFloor
	b.UpdatedAt = time.Now()

	if err := s.buildings.Update(ctx, b); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBuildingNotFound
		}
		return nil, WrapInternal("failed to update building", err)
	}
	return b, nil
}

// Delete removes a building without apartments.
func (s *BuildingService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.buildings.Delete(ctx, id)
	switch {
	case err == nil:
		s.logger.Info("building deleted", zap.String("building_id", id.String()))
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return ErrBuildingNotFound
	case errors.Is(err, repositories.ErrInUse):
		return ErrBuildingNotEmpty
	default:
		return WrapInternal("failed to delete building", err)
	}
}
