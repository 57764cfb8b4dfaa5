package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/aquasync/backend/models"
	"github.com/google/uuid"
)

// Storage-level errors. Services translate these into domain errors.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrInUse is returned when a delete is blocked by dependent records.
	ErrInUse = errors.New("record is in use")
	// ErrStale is returned when a guarded update matched no row because the
	// record left the expected state.
	ErrStale = errors.New("record changed state")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)
}

// Transaction represents a database transaction
type Transaction interface {
	Commit() error
	Rollback() error
	Context() context.Context
}

type transactionContextKey struct{}

// ContextWithTransaction returns a context that routes repository calls
// through tx.
func ContextWithTransaction(ctx context.Context, tx Transaction) context.Context {
	return context.WithValue(ctx, transactionContextKey{}, tx)
}

// TransactionFromContext returns the transaction bound to ctx, if any.
func TransactionFromContext(ctx context.Context) (Transaction, bool) {
	tx, ok := ctx.Value(transactionContextKey{}).(Transaction)
	return tx, ok
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create creates a new user. Returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, user *models.User) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Update updates name, role, password hash and activation state
	Update(ctx context.Context, user *models.User) error

	// MarkVerified sets the verification time and activates the account
	MarkVerified(ctx context.Context, email string, at time.Time) error
}

// RoleRepository handles roles and their permission sets
type RoleRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)

	// Permissions returns the "RESOURCE:ACTION" strings granted to the role
	Permissions(ctx context.Context, roleID uuid.UUID) ([]string, error)

	// Upsert creates the role by name or updates its description. The
	// stored ID is written back into role.
	Upsert(ctx context.Context, role *models.Role) error

	// UpsertPermission registers a permission in the catalog
	UpsertPermission(ctx context.Context, perm models.Permission) error

	// SetPermissions replaces the role's permission set
	SetPermissions(ctx context.Context, roleID uuid.UUID, perms []models.Permission) error
}

// VerificationTokenRepository handles email verification tokens
type VerificationTokenRepository interface {
	Create(ctx context.Context, token *models.VerificationToken) error
	Get(ctx context.Context, token string) (*models.VerificationToken, error)
	Delete(ctx context.Context, token string) error
}

// BuildingRepository handles buildings
type BuildingRepository interface {
	// List returns all buildings with their apartments
	List(ctx context.Context) ([]*models.Building, error)

	// GetByID returns the building with its apartments
	GetByID(ctx context.Context, id uuid.UUID) (*models.Building, error)

	Create(ctx context.Context, building *models.Building) error
	Update(ctx context.Context, building *models.Building) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ApartmentRepository handles apartments
type ApartmentRepository interface {
	ListByBuilding(ctx context.Context, buildingID uuid.UUID) ([]*models.Apartment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Apartment, error)

	// Create returns ErrDuplicate when the number exists in the building
	Create(ctx context.Context, apartment *models.Apartment) error
	Update(ctx context.Context, apartment *models.Apartment) error
	Delete(ctx context.Context, id uuid.UUID) error

	// AssignOwner sets or clears (nil) the apartment owner
	AssignOwner(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) error
}

// ReadingFilter narrows reading listings. Zero values match everything.
type ReadingFilter struct {
	BuildingID  *uuid.UUID
	ApartmentID *uuid.UUID
	Period      string
	Status      models.ReadingStatus
	// SubmittedBy restricts results to one submitter
	SubmittedBy *uuid.UUID
	Limit       int
	Offset      int
}

// ReadingRepository handles water readings
type ReadingRepository interface {
	List(ctx context.Context, filter ReadingFilter) ([]*models.WaterReading, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.WaterReading, error)
	Create(ctx context.Context, reading *models.WaterReading) error

	// Review persists a status change. Returns ErrStale when the stored
	// reading is no longer pending.
	Review(ctx context.Context, reading *models.WaterReading) error

	// ApprovedUpTo returns the latest approved reading of the apartment
	// whose period is at or before period, or ErrNotFound.
	ApprovedUpTo(ctx context.Context, apartmentID uuid.UUID, period string) (*models.WaterReading, error)

	// ApprovedAfter returns the earliest approved reading of the apartment
	// whose period is after period, or ErrNotFound.
	ApprovedAfter(ctx context.Context, apartmentID uuid.UUID, period string) (*models.WaterReading, error)
}

// PaymentListRepository handles payment lists
type PaymentListRepository interface {
	// List returns lists, optionally restricted to a building
	List(ctx context.Context, buildingID *uuid.UUID) ([]*models.PaymentList, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentList, error)

	// Create returns ErrDuplicate when the building already has a list
	// for the period
	Create(ctx context.Context, list *models.PaymentList) error

	// Approve persists the approval. Returns ErrStale when the stored list
	// is no longer a draft.
	Approve(ctx context.Context, list *models.PaymentList) error

	// Lines returns one row per apartment of the list's building with the
	// approved reading for the list's period.
	Lines(ctx context.Context, list *models.PaymentList) ([]models.PaymentListLine, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users              UserRepository
	Roles              RoleRepository
	VerificationTokens VerificationTokenRepository
	Buildings          BuildingRepository
	Apartments         ApartmentRepository
	Readings           ReadingRepository
	PaymentLists       PaymentListRepository
}
