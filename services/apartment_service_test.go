package services

import (
	"context"
	"testing"

	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type apartmentFixture struct {
	buildings  *MockBuildingRepository
	apartments *MockApartmentRepository
	users      *MockUserRepository
	svc        *ApartmentService
}

func newApartmentFixture(t *testing.T) *apartmentFixture {
	f := &apartmentFixture{
		buildings:  new(MockBuildingRepository),
		apartments: new(MockApartmentRepository),
		users:      new(MockUserRepository),
	}
	f.svc = NewApartmentService(f.buildings, f.apartments, f.users, zaptest.NewLogger(t))
	return f
}

func TestApartmentService_Create(t *testing.T) {
	ctx := context.Background()
	building := models.NewBuilding("A", "Main 1", 4, 2)

	tests := []struct {
		name    string
		input   ApartmentInput
		repoErr error
		wantErr error
	}{
		{"created", ApartmentInput{Number: "2B", Floor: 2}, nil, nil},
		{"ground floor", ApartmentInput{Number: "0A", Floor: 0}, nil, nil},
		{"floor above layout", ApartmentInput{Number: "9A", Floor: 9}, nil, ErrFloorOutOfRange},
		{"duplicate number", ApartmentInput{Number: "2B", Floor: 2}, repositories.ErrDuplicate, ErrDuplicateApartment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newApartmentFixture(t)
			f.buildings.On("GetByID", mock.Anything, building.ID).Return(building, nil)
			f.apartments.On("Create", mock.Anything, mock.Anything).Return(tt.repoErr)

			a, err := f.svc.Create(ctx, building.ID, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, building.ID, a.BuildingID)
			assert.Equal(t, tt.input.Number, a.Number)
		})
	}
}

func TestApartmentService_Create_UnknownBuilding(t *testing.T) {
	f := newApartmentFixture(t)
	id := uuid.New()
	f.buildings.On("GetByID", mock.Anything, id).Return(nil, repositories.ErrNotFound)

	_, err := f.svc.Create(context.Background(), id, ApartmentInput{Number: "1A", Floor: 1})
	assert.ErrorIs(t, err, ErrBuildingNotFound)
}

func TestApartmentService_AssignOwner(t *testing.T) {
	ctx := context.Background()
	apartment := models.NewApartment(uuid.New(), "1A", 1)
	owner := uuid.New()

	t.Run("assigns an existing user", func(t *testing.T) {
		f := newApartmentFixture(t)
		f.users.On("GetByID", mock.Anything, owner).Return(&models.User{ID: owner}, nil)
		f.apartments.On("AssignOwner", mock.Anything, apartment.ID, &owner).Return(nil)
		assigned := *apartment
		assigned.OwnerID = &owner
		f.apartments.On("GetByID", mock.Anything, apartment.ID).Return(&assigned, nil)

		a, err := f.svc.AssignOwner(ctx, apartment.ID, &owner)
		require.NoError(t, err)
		assert.True(t, a.IsOwnedBy(owner))
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newApartmentFixture(t)
		f.users.On("GetByID", mock.Anything, owner).Return(nil, repositories.ErrNotFound)

		_, err := f.svc.AssignOwner(ctx, apartment.ID, &owner)
		assert.ErrorIs(t, err, ErrUserNotFound)
		f.apartments.AssertNotCalled(t, "AssignOwner", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("clears the owner", func(t *testing.T) {
		f := newApartmentFixture(t)
		f.apartments.On("AssignOwner", mock.Anything, apartment.ID, (*uuid.UUID)(nil)).Return(nil)
		f.apartments.On("GetByID", mock.Anything, apartment.ID).Return(apartment, nil)

		a, err := f.svc.AssignOwner(ctx, apartment.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, a.OwnerID)
		f.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown apartment", func(t *testing.T) {
		f := newApartmentFixture(t)
		f.apartments.On("AssignOwner", mock.Anything, apartment.ID, (*uuid.UUID)(nil)).Return(repositories.ErrNotFound)

		_, err := f.svc.AssignOwner(ctx, apartment.ID, nil)
		assert.ErrorIs(t, err, ErrApartmentNotFound)
	})
}

func TestApartmentService_Delete(t *testing.T) {
	f := newApartmentFixture(t)
	id := uuid.New()
	f.apartments.On("Delete", mock.Anything, id).Return(repositories.ErrInUse)

	err := f.svc.Delete(context.Background(), id)
	assert.True(t, IsConflictError(err))
}
