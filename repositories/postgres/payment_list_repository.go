package postgres

import (
	"context"
	"database/sql"

	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const paymentListColumns = `id, building_id, period, status, created_by, approved_by, approved_at, created_at`

// PaymentListRepository implements the repositories.PaymentListRepository interface
type PaymentListRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPaymentListRepository creates a new payment list repository
func NewPaymentListRepository(db *DB, logger *zap.Logger) repositories.PaymentListRepository {
	return &PaymentListRepository{db: db, logger: logger}
}

func scanPaymentList(row rowScanner) (*models.PaymentList, error) {
	pl := &models.PaymentList{}
	var (
		approvedBy uuid.NullUUID
		approvedAt sql.NullTime
	)
	if err := row.Scan(&pl.ID, &pl.BuildingID, &pl.Period, &pl.Status, &pl.CreatedBy, &approvedBy, &approvedAt, &pl.CreatedAt); err != nil {
		return nil, translate("scan payment list", err)
	}
	if approvedBy.Valid {
		id := approvedBy.UUID
		pl.ApprovedBy = &id
	}
	if approvedAt.Valid {
		at := approvedAt.Time
		pl.ApprovedAt = &at
	}
	return pl, nil
}

// List returns payment lists, newest period first
func (r *PaymentListRepository) List(ctx context.Context, buildingID *uuid.UUID) ([]*models.PaymentList, error) {
	query := `SELECT ` + paymentListColumns + ` FROM payment_lists`
	var args []interface{}
	if buildingID != nil {
		query += ` WHERE building_id = $1`
		args = append(args, *buildingID)
	}
	query += ` ORDER BY period DESC, created_at DESC`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate("query payment lists", err)
	}
	defer rows.Close()

	lists := []*models.PaymentList{}
	for rows.Next() {
		pl, err := scanPaymentList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("iterate payment lists", err)
	}
	return lists, nil
}

// GetByID retrieves a payment list by ID
func (r *PaymentListRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentList, error) {
	row := GetExecutor(ctx, r.db).QueryRowContext(ctx, `SELECT `+paymentListColumns+` FROM payment_lists WHERE id = $1`, id)
	return scanPaymentList(row)
}

// Create stores a draft list
func (r *PaymentListRepository) Create(ctx context.Context, pl *models.PaymentList) error {
	query := `
		INSERT INTO payment_lists (id, building_id, period, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		pl.ID, pl.BuildingID, pl.Period, pl.Status, pl.CreatedBy, pl.CreatedAt,
	)
	if err != nil {
		return translate("create payment list", err)
	}

	r.logger.Debug("payment list created",
		zap.String("id", pl.ID.String()),
		zap.String("building_id", pl.BuildingID.String()),
		zap.String("period", pl.Period))
	return nil
}

// Approve persists the approval of a draft list
func (r *PaymentListRepository) Approve(ctx context.Context, pl *models.PaymentList) error {
	query := `
		UPDATE payment_lists
		SET status = $2,
		    approved_by = $3,
		    approved_at = $4
		WHERE id = $1 AND status = $5
	`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		pl.ID, pl.Status, nullUUID(pl.ApprovedBy), pl.ApprovedAt, models.PaymentListDraft,
	)
	if err != nil {
		return translate("approve payment list", err)
	}
	return expectOne("approve payment list", result, repositories.ErrStale)
}

// Lines joins the building's apartments with their owners and the approved
// reading for the list period. Apartments without one report zero.
func (r *PaymentListRepository) Lines(ctx context.Context, pl *models.PaymentList) ([]models.PaymentListLine, error) {
	query := `
		SELECT a.number, a.floor, COALESCE(u.email, ''),
		       COALESCE(w.cold_water, 0), COALESCE(w.hot_water, 0)
		FROM apartments a
		LEFT JOIN users u ON u.id = a.owner_id
		LEFT JOIN water_readings w
		       ON w.apartment_id = a.id AND w.period = $2 AND w.status = $3
		WHERE a.building_id = $1
		ORDER BY a.floor, a.number
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, pl.BuildingID, pl.Period, models.ReadingApproved)
	if err != nil {
		return nil, translate("query payment list lines", err)
	}
	defer rows.Close()

	lines := []models.PaymentListLine{}
	for rows.Next() {
		var l models.PaymentListLine
		if err := rows.Scan(&l.ApartmentNumber, &l.Floor, &l.OwnerEmail, &l.ColdWater, &l.HotWater); err != nil {
			return nil, translate("scan payment list line", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("iterate payment list lines", err)
	}
	return lines, nil
}
