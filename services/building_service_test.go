package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestBuildingService_List(t *testing.T) {
	repo := new(MockBuildingRepository)
	svc := NewBuildingService(repo, zaptest.NewLogger(t))

	repo.On("List", mock.Anything).Return(nil, nil).Once()
	buildings, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, buildings)
	assert.Empty(t, buildings)

	repo.On("List", mock.Anything).Return(nil, errors.New("boom")).Once()
	_, err = svc.List(context.Background())
	assert.True(t, IsInternalError(err))
}

func TestBuildingService_Create(t *testing.T) {
	repo := new(MockBuildingRepository)
	svc := NewBuildingService(repo, zaptest.NewLogger(t))

	repo.On("Create", mock.Anything, mock.MatchedBy(func(b *models.Building) bool {
		return b.Name == "Block A" && b.Floors == 4 && b.ApartmentsPerFloor == 3
	})).Return(nil)

	b, err := svc.Create(context.Background(), BuildingInput{Name: " Block A ", Address: "Main 1", Floors: 4, ApartmentsPerFloor: 3})
	require.NoError(t, err)
	assert.Equal(t, 12, b.Capacity())
	repo.AssertExpectations(t)
}

func TestBuildingService_Get(t *testing.T) {
	repo := new(MockBuildingRepository)
	svc := NewBuildingService(repo, zaptest.NewLogger(t))
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(nil, repositories.ErrNotFound)

	_, err := svc.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrBuildingNotFound)
}

func TestBuildingService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects shrinking below an apartment floor", func(t *testing.T) {
		repo := new(MockBuildingRepository)
		svc := NewBuildingService(repo, zaptest.NewLogger(t))
		b := models.NewBuilding("A", "Main 1", 5, 2)
		b.Apartments = []*models.Apartment{models.NewApartment(b.ID, "5A", 5)}
		repo.On("GetByID", mock.Anything, b.ID).Return(b, nil)

		_, err := svc.Update(ctx, b.ID, BuildingInput{Name: "A", Address: "Main 1", Floors: 3, ApartmentsPerFloor: 2})
		assert.ErrorIs(t, err, ErrFloorOutOfRange)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("updates attributes", func(t *testing.T) {
		repo := new(MockBuildingRepository)
		svc := NewBuildingService(repo, zaptest.NewLogger(t))
		b := models.NewBuilding("A", "Main 1", 5, 2)
		repo.On("GetByID", mock.Anything, b.ID).Return(b, nil)
		repo.On("Update", mock.Anything, b).Return(nil)

		updated, err := svc.Update(ctx, b.ID, BuildingInput{Name: "B", Address: "Main 2", Floors: 6, ApartmentsPerFloor: 2})
		require.NoError(t, err)
		assert.Equal(t, "B", updated.Name)
		assert.Equal(t, 6, updated.Floors)
	})
}

func TestBuildingService_Delete(t *testing.T) {
	tests := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{"deleted", nil, nil},
		{"not found", repositories.ErrNotFound, ErrBuildingNotFound},
		{"has apartments", repositories.ErrInUse, ErrBuildingNotEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockBuildingRepository)
			svc := NewBuildingService(repo, zaptest.NewLogger(t))
			id := uuid.New()
			repo.On("Delete", mock.Anything, id).Return(tt.repoErr)

			err := svc.Delete(context.Background(), id)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
