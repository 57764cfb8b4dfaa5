package handlers

import (
	"context"
	"net/http"

	"github.com/aquasync/backend/middleware"
	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/repositories"
	"github.com/aquasync/backend/services"
	"github.com/aquasync/backend/token"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// withURLParams attaches chi route parameters to r.
func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// asPrincipal authenticates r as userID holding perms.
func asPrincipal(r *http.Request, userID uuid.UUID, perms ...string) *http.Request {
	if perms == nil {
		perms = []string{}
	}
	p := &middleware.Principal{
		Identity:    token.Identity{ID: userID, Email: "caller@example.com", RoleID: uuid.New(), Role: models.RoleOwner},
		Permissions: perms,
	}
	return r.WithContext(middleware.WithPrincipal(r.Context(), p))
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) VerifyEmail(ctx context.Context, raw string) error {
	return m.Called(ctx, raw).Error(0)
}

func (m *MockAuthService) Login(ctx context.Context, in services.LoginInput) (*services.Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Session), args.Error(1)
}

func (m *MockAuthService) Session(ctx context.Context, raw string) token.AuthResult {
	return m.Called(ctx, raw).Get(0).(token.AuthResult)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Me(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

type MockBuildingService struct {
	mock.Mock
}

func (m *MockBuildingService) List(ctx context.Context) ([]*models.Building, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Building), args.Error(1)
}

func (m *MockBuildingService) Get(ctx context.Context, id uuid.UUID) (*models.Building, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Building), args.Error(1)
}

func (m *MockBuildingService) Create(ctx context.Context, in services.BuildingInput) (*models.Building, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Building), args.Error(1)
}

func (m *MockBuildingService) Update(ctx context.Context, id uuid.UUID, in services.BuildingInput) (*models.Building, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Building), args.Error(1)
}

func (m *MockBuildingService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockApartmentService struct {
	mock.Mock
}

func (m *MockApartmentService) ListByBuilding(ctx context.Context, buildingID uuid.UUID) ([]*models.Apartment, error) {
	args := m.Called(ctx, buildingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Apartment), args.Error(1)
}

func (m *MockApartmentService) Get(ctx context.Context, id uuid.UUID) (*models.Apartment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Apartment), args.Error(1)
}

func (m *MockApartmentService) Create(ctx context.Context, buildingID uuid.UUID, in services.ApartmentInput) (*models.Apartment, error) {
	args := m.Called(ctx, buildingID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Apartment), args.Error(1)
}

func (m *MockApartmentService) Update(ctx context.Context, id uuid.UUID, in services.ApartmentInput) (*models.Apartment, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Apartment), args.Error(1)
}

func (m *MockApartmentService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockApartmentService) AssignOwner(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) (*models.Apartment, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Apartment), args.Error(1)
}

type MockReadingService struct {
	mock.Mock
}

func (m *MockReadingService) List(ctx context.Context, actor services.Actor, filter repositories.ReadingFilter) ([]*models.WaterReading, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WaterReading), args.Error(1)
}

func (m *MockReadingService) Submit(ctx context.Context, actor services.Actor, in services.SubmitReadingInput) (*models.WaterReading, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WaterReading), args.Error(1)
}

func (m *MockReadingService) Approve(ctx context.Context, actor services.Actor, id uuid.UUID) (*models.WaterReading, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WaterReading), args.Error(1)
}

func (m *MockReadingService) Reject(ctx context.Context, actor services.Actor, id uuid.UUID, in services.RejectReadingInput) (*models.WaterReading, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WaterReading), args.Error(1)
}

type MockPaymentListService struct {
	mock.Mock
}

func (m *MockPaymentListService) List(ctx context.Context, buildingID *uuid.UUID) ([]*models.PaymentList, error) {
	args := m.Called(ctx, buildingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PaymentList), args.Error(1)
}

func (m *MockPaymentListService) Get(ctx context.Context, id uuid.UUID) (*services.PaymentListDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PaymentListDetail), args.Error(1)
}

func (m *MockPaymentListService) Create(ctx context.Context, actor services.Actor, in services.CreatePaymentListInput) (*models.PaymentList, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentList), args.Error(1)
}

func (m *MockPaymentListService) Approve(ctx context.Context, actor services.Actor, id uuid.UUID) (*models.PaymentList, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentList), args.Error(1)
}

func (m *MockPaymentListService) Export(ctx context.Context, id uuid.UUID) (*services.PaymentListDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PaymentListDetail), args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendTemplate(ctx context.Context, req services.SendEmailRequest) error {
	return m.Called(ctx, req).Error(0)
}
