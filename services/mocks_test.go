package services

import (
	"context"
	"time"

	"github.com/aquasync/backend/jobs"
	"github.com/aquasync/backend/mailer"
	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/repositories"
	"github.com/aquasync/backend/token"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) MarkVerified(ctx context.Context, email string, at time.Time) error {
	return m.Called(ctx, email, at).Error(0)
}

type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*models.Role), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	args := m.Called(ctx, name)
	if r := args.Get(0); r != nil {
		return r.(*models.Role), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoleRepository) Permissions(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, roleID)
	if p := args.Get(0); p != nil {
		return p.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRoleRepository) Upsert(ctx context.Context, role *models.Role) error {
	return m.Called(ctx, role).Error(0)
}

func (m *MockRoleRepository) UpsertPermission(ctx context.Context, perm models.Permission) error {
	return m.Called(ctx, perm).Error(0)
}

func (m *MockRoleRepository) SetPermissions(ctx context.Context, roleID uuid.UUID, perms []models.Permission) error {
	return m.Called(ctx, roleID, perms).Error(0)
}

type MockVerificationTokenRepository struct {
	mock.Mock
}

func (m *MockVerificationTokenRepository) Create(ctx context.Context, vt *models.VerificationToken) error {
	return m.Called(ctx, vt).Error(0)
}

func (m *MockVerificationTokenRepository) Get(ctx context.Context, raw string) (*models.VerificationToken, error) {
	args := m.Called(ctx, raw)
	if vt := args.Get(0); vt != nil {
		return vt.(*models.VerificationToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVerificationTokenRepository) Delete(ctx context.Context, raw string) error {
	return m.Called(ctx, raw).Error(0)
}

type MockBuildingRepository struct {
	mock.Mock
}

func (m *MockBuildingRepository) List(ctx context.Context) ([]*models.Building, error) {
	args := m.Called(ctx)
	if b := args.Get(0); b != nil {
		return b.([]*models.Building), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBuildingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Building, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*models.Building), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBuildingRepository) Create(ctx context.Context, b *models.Building) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBuildingRepository) Update(ctx context.Context, b *models.Building) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBuildingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockApartmentRepository struct {
	mock.Mock
}

func (m *MockApartmentRepository) ListByBuilding(ctx context.Context, buildingID uuid.UUID) ([]*models.Apartment, error) {
	args := m.Called(ctx, buildingID)
	if a := args.Get(0); a != nil {
		return a.([]*models.Apartment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockApartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Apartment, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*models.Apartment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockApartmentRepository) Create(ctx context.Context, a *models.Apartment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockApartmentRepository) Update(ctx context.Context, a *models.Apartment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockApartmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockApartmentRepository) AssignOwner(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) error {
	return m.Called(ctx, id, ownerID).Error(0)
}

type MockReadingRepository struct {
	mock.Mock
}

func (m *MockReadingRepository) List(ctx context.Context, filter repositories.ReadingFilter) ([]*models.WaterReading, error) {
	args := m.Called(ctx, filter)
	if r := args.Get(0); r != nil {
		return r.([]*models.WaterReading), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReadingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WaterReading, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*models.WaterReading), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReadingRepository) Create(ctx context.Context, r *models.WaterReading) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReadingRepository) Review(ctx context.Context, r *models.WaterReading) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReadingRepository) ApprovedUpTo(ctx context.Context, apartmentID uuid.UUID, period string) (*models.WaterReading, error) {
	args := m.Called(ctx, apartmentID, period)
	if r := args.Get(0); r != nil {
		return r.(*models.WaterReading), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReadingRepository) ApprovedAfter(ctx context.Context, apartmentID uuid.UUID, period string) (*models.WaterReading, error) {
	args := m.Called(ctx, apartmentID, period)
	if r := args.Get(0); r != nil {
		return r.(*models.WaterReading), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPaymentListRepository struct {
	mock.Mock
}

func (m *MockPaymentListRepository) List(ctx context.Context, buildingID *uuid.UUID) ([]*models.PaymentList, error) {
	args := m.Called(ctx, buildingID)
	if l := args.Get(0); l != nil {
		return l.([]*models.PaymentList), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentListRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentList, error) {
	args := m.Called(ctx, id)
	if l := args.Get(0); l != nil {
		return l.(*models.PaymentList), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPaymentListRepository) Create(ctx context.Context, l *models.PaymentList) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockPaymentListRepository) Approve(ctx context.Context, l *models.PaymentList) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockPaymentListRepository) Lines(ctx context.Context, l *models.PaymentList) ([]models.PaymentListLine, error) {
	args := m.Called(ctx, l)
	if lines := args.Get(0); lines != nil {
		return lines.([]models.PaymentListLine), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(identity token.Identity, permissions []string) (string, time.Time, error) {
	args := m.Called(identity, permissions)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenIssuer) Verify(ctx context.Context, raw string) token.AuthResult {
	return m.Called(ctx, raw).Get(0).(token.AuthResult)
}

type MockPermissionSource struct {
	mock.Mock
}

func (m *MockPermissionSource) Permissions(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, roleID)
	if p := args.Get(0); p != nil {
		return p.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockEmailDispatcher struct {
	mock.Mock
}

func (m *MockEmailDispatcher) SendTemplate(ctx context.Context, req SendEmailRequest) error {
	return m.Called(ctx, req).Error(0)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg mailer.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, payload)
	if info := args.Get(0); info != nil {
		return info.(*asynq.TaskInfo), args.Error(1)
	}
	return nil, args.Error(1)
}
