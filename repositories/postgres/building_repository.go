package postgres

import (
	"context"

	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/repositories"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// BuildingRepository implements the repositories.BuildingRepository interface
type BuildingRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewBuildingRepository creates a new building repository
func NewBuildingRepository(db *DB, logger *zap.Logger) repositories.BuildingRepository {
	return &BuildingRepository{db: db, logger: logger}
}

// List returns all buildings ordered by name, each with its apartments
func (r *BuildingRepository) List(ctx context.Context) ([]*models.Building, error) {
	query := `
		SELECT id, name, address, floors, apartments_per_floor, created_at, updated_at
		FROM buildings
		ORDER BY name
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, translate("query buildings", err)
	}
	defer rows.Close()

	buildings := []*models.Building{}
	byID := make(map[uuid.UUID]*models.Building)
	for rows.Next() {
		b := &models.Building{Apartments: []*models.Apartment{}}
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.Floors, &b.ApartmentsPerFloor, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, translate("scan building", err)
		}
		buildings = append(buildings, b)
		byID[b.ID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, translate("iterate buildings", err)
	}

	if len(buildings) == 0 {
		return buildings, nil
	}

	ids := make([]uuid.UUID, 0, len(buildings))
	for _, b := range buildings {
		ids = append(ids, b.ID)
	}
	apartments, err := queryApartments(ctx, GetExecutor(ctx, r.db),
		`WHERE building_id = ANY($1::uuid[])`, pq.Array(uuidStrings(ids)))
	if err != nil {
		return nil, err
	}
	for _, a := range apartments {
		if b, ok := byID[a.BuildingID]; ok {
			b.Apartments = append(b.Apartments, a)
		}
	}

	return buildings, nil
}

// GetByID retrieves a building with its apartments
func (r *BuildingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Building, error) {
	query := `
		SELECT id, name, address, floors, apartments_per_floor, created_at, updated_at
		FROM buildings
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	b := &models.Building{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.Name, &b.Address, &b.Floors, &b.ApartmentsPerFloor, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, translate("get building", err)
	}

	b.Apartments, err = queryApartments(ctx, executor, `WHERE building_id = $1`, id)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Create creates a new building
func (r *BuildingRepository) Create(ctx context.Context, b *models.Building) error {
	query := `
		INSERT INTO buildings (id, name, address, floors, apartments_per_floor, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		b.ID, b.Name, b.Address, b.Floors, b.ApartmentsPerFloor, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return translate("create building", err)
	}

	r.logger.Debug("building created", zap.String("id", b.ID.String()), zap.String("name", b.Name))
	return nil
}

// Update updates a building
func (r *BuildingRepository) Update(ctx context.Context, b *models.Building) error {
	query := `
		UPDATE buildings
		SET name = $2,
		    address = $3,
		    floors = $4,
		    apartments_per_floor = $5,
		    updated_at = $6
		WHERE id = $1
	`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		b.ID, b.Name, b.Address, b.Floors, b.ApartmentsPerFloor, b.UpdatedAt,
	)
	if err != nil {
		return translate("update building", err)
	}
	return expectOne("update building", result, repositories.ErrNotFound)
}

// Delete deletes a building. Buildings that still have apartments return
// ErrInUse.
func (r *BuildingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM buildings WHERE id = $1`, id)
	if err != nil {
		return translate("delete building", err)
	}
	if err := expectOne("delete building", result, repositories.ErrNotFound); err != nil {
		return err
	}

	r.logger.Debug("building deleted", zap.String("id", id.String()))
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
