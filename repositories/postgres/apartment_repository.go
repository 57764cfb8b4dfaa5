package postgres

import (
	"context"
	"time"

	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const apartmentColumns = `id, building_id, number, floor, owner_id, created_at, updated_at`

// ApartmentRepository implements the repositories.ApartmentRepository interface
type ApartmentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewApartmentRepository creates a new apartment repository
func NewApartmentRepository(db *DB, logger *zap.Logger) repositories.ApartmentRepository {
	return &ApartmentRepository{db: db, logger: logger}
}

// queryApartments runs a SELECT over apartments with the given WHERE clause,
// ordered by floor then number.
func queryApartments(ctx context.Context, executor Executor, where string, args ...interface{}) ([]*models.Apartment, error) {
	query := `SELECT ` + apartmentColumns + ` FROM apartments ` + where + ` ORDER BY floor, number`

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate("query apartments", err)
	}
	defer rows.Close()

	apartments := []*models.Apartment{}
	for rows.Next() {
		a, err := scanApartment(rows)
		if err != nil {
			return nil, err
		}
		apartments = append(apartments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("iterate apartments", err)
	}
	return apartments, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApartment(row rowScanner) (*models.Apartment, error) {
	a := &models.Apartment{}
	var owner uuid.NullUUID
	if err := row.Scan(&a.ID, &a.BuildingID, &a.Number, &a.Floor, &owner, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, translate("scan apartment", err)
	}
	if owner.Valid {
		id := owner.UUID
		a.OwnerID = &id
	}
	return a, nil
}

// ListByBuilding returns the apartments of a building
func (r *ApartmentRepository) ListByBuilding(ctx context.Context, buildingID uuid.UUID) ([]*models.Apartment, error) {
	return queryApartments(ctx, GetExecutor(ctx, r.db), `WHERE building_id = $1`, buildingID)
}

// GetByID retrieves an apartment by ID
func (r *ApartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Apartment, error) {
	row := GetExecutor(ctx, r.db).QueryRowContext(ctx, `SELECT `+apartmentColumns+` FROM apartments WHERE id = $1`, id)
	return scanApartment(row)
}

// Create creates a new apartment
func (r *ApartmentRepository) Create(ctx context.Context, a *models.Apartment) error {
	query := `
		INSERT INTO apartments (` + apartmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		a.ID, a.BuildingID, a.Number, a.Floor, nullUUID(a.OwnerID), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return translate("create apartment", err)
	}

	r.logger.Debug("apartment created",
		zap.String("id", a.ID.String()),
		zap.String("building_id", a.BuildingID.String()),
		zap.String("number", a.Number))
	return nil
}

// Update updates number and floor
func (r *ApartmentRepository) Update(ctx context.Context, a *models.Apartment) error {
	query := `
		UPDATE apartments
		SET number = $2,
		    floor = $3,
		    updated_at = $4
		WHERE id = $1
	`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, a.ID, a.Number, a.Floor, a.UpdatedAt)
	if err != nil {
		return translate("update apartment", err)
	}
	return expectOne("update apartment", result, repositories.ErrNotFound)
}

// Delete deletes an apartment
func (r *ApartmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM apartments WHERE id = $1`, id)
	if err != nil {
		return translate("delete apartment", err)
	}
	return expectOne("delete apartment", result, repositories.ErrNotFound)
}

// AssignOwner sets or clears the owner of an apartment
func (r *ApartmentRepository) AssignOwner(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) error {
	query := `UPDATE apartments SET owner_id = $2, updated_at = $3 WHERE id = $1`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, id, nullUUID(ownerID), time.Now())
	if err != nil {
		return translate("assign apartment owner", err)
	}
	if err := expectOne("assign apartment owner", result, repositories.ErrNotFound); err != nil {
		return err
	}

	r.logger.Debug("apartment owner assigned", zap.String("id", id.String()), zap.Bool("cleared", ownerID == nil))
	return nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
