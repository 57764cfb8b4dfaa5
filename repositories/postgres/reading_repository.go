package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const readingColumns = `r.id, r.apartment_id, r.period, r.cold_water, r.hot_water, r.status,
	r.submitted_by, r.reviewed_by, r.reviewed_at, r.reject_reason, r.created_at`

// ReadingRepository implements the repositories.ReadingRepository interface
type ReadingRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewReadingRepository creates a new water reading repository
func NewReadingRepository(db *DB, logger *zap.Logger) repositories.ReadingRepository {
	return &ReadingRepository{db: db, logger: logger}
}

func scanReading(row rowScanner) (*models.WaterReading, error) {
	rd := &models.WaterReading{}
	var (
		reviewedBy uuid.NullUUID
		reviewedAt sql.NullTime
	)
	err := row.Scan(
		&rd.ID,
		&rd.ApartmentID,
		&rd.Period,
		&rd.ColdWater,
		&rd.HotWater,
		&rd.Status,
		&rd.SubmittedBy,
		&reviewedBy,
		&reviewedAt,
		&rd.RejectReason,
		&rd.CreatedAt,
	)
	if err != nil {
		return nil, translate("scan water reading", err)
	}
	if reviewedBy.Valid {
		id := reviewedBy.UUID
		rd.ReviewedBy = &id
	}
	if reviewedAt.Valid {
		at := reviewedAt.Time
		rd.ReviewedAt = &at
	}
	return rd, nil
}

// List returns readings matching filter, newest first
func (r *ReadingRepository) List(ctx context.Context, filter repositories.ReadingFilter) ([]*models.WaterReading, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.BuildingID != nil {
		add("a.building_id = $%d", *filter.BuildingID)
	}
	if filter.ApartmentID != nil {
		add("r.apartment_id = $%d", *filter.ApartmentID)
	}
	if filter.Period != "" {
		add("r.period = $%d", filter.Period)
	}
	if filter.Status != "" {
		add("r.status = $%d", filter.Status)
	}
	if filter.SubmittedBy != nil {
		add("r.submitted_by = $%d", *filter.SubmittedBy)
	}

	query := `SELECT ` + readingColumns + `
		FROM water_readings r
		JOIN apartments a ON a.id = r.apartment_id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY r.created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate("query water readings", err)
	}
	defer rows.Close()

	readings := []*models.WaterReading{}
	for rows.Next() {
		rd, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("iterate water readings", err)
	}
	return readings, nil
}

// GetByID retrieves a reading by ID
func (r *ReadingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.WaterReading, error) {
	query := `SELECT ` + readingColumns + ` FROM water_readings r WHERE r.id = $1`
	return scanReading(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
}

// Create stores a new reading
func (r *ReadingRepository) Create(ctx context.Context, rd *models.WaterReading) error {
	query := `
		INSERT INTO water_readings (id, apartment_id, period, cold_water, hot_water, status, submitted_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		rd.ID, rd.ApartmentID, rd.Period, rd.ColdWater, rd.HotWater, rd.Status, rd.SubmittedBy, rd.CreatedAt,
	)
	if err != nil {
		return translate("create water reading", err)
	}

	r.logger.Debug("water reading created",
		zap.String("id", rd.ID.String()),
		zap.String("apartment_id", rd.ApartmentID.String()),
		zap.String("period", rd.Period))
	return nil
}

// Review persists the review of a pending reading
func (r *ReadingRepository) Review(ctx context.Context, rd *models.WaterReading) error {
	query := `
		UPDATE water_readings
		SET status = $2,
		    reviewed_by = $3,
		    reviewed_at = $4,
		    reject_reason = $5
		WHERE id = $1 AND status = $6
	`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		rd.ID, rd.Status, nullUUID(rd.ReviewedBy), rd.ReviewedAt, rd.RejectReason, models.ReadingPending,
	)
	if err != nil {
		return translate("review water reading", err)
	}
	return expectOne("review water reading", result, repositories.ErrStale)
}

// ApprovedUpTo returns the latest approved reading at or before period
func (r *ReadingRepository) ApprovedUpTo(ctx context.Context, apartmentID uuid.UUID, period string) (*models.WaterReading, error) {
	query := `SELECT ` + readingColumns + `
		FROM water_readings r
		WHERE r.apartment_id = $1 AND r.status = $2 AND r.period <= $3
		ORDER BY r.period DESC, r.reviewed_at DESC
		LIMIT 1`
	return scanReading(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, apartmentID, models.ReadingApproved, period))
}

// ApprovedAfter returns the earliest approved reading after period
func (r *ReadingRepository) ApprovedAfter(ctx context.Context, apartmentID uuid.UUID, period string) (*models.WaterReading, error) {
	query := `SELECT ` + readingColumns + `
		FROM water_readings r
		WHERE r.apartment_id = $1 AND r.status = $2 AND r.period > $3
		ORDER BY r.period ASC, r.reviewed_at ASC
		LIMIT 1`
	return scanReading(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, apartmentID, models.ReadingApproved, period))
}
