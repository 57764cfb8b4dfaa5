package postgres

import (
	"context"
	"time"

	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoleRepository implements the repositories.RoleRepository interface
type RoleRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *DB, logger *zap.Logger) repositories.RoleRepository {
	return &RoleRepository{db: db, logger: logger}
}

// GetByID retrieves a role by ID
func (r *RoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	return r.getOne(ctx, `SELECT id, name, description, created_at, updated_at FROM roles WHERE id = $1`, id)
}

// GetByName retrieves a role by name
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	return r.getOne(ctx, `SELECT id, name, description, created_at, updated_at FROM roles WHERE name = $1`, name)
}

func (r *RoleRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.Role, error) {
	role := &models.Role{}
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, arg).Scan(
		&role.ID,
		&role.Name,
		&role.Description,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		return nil, translate("get role", err)
	}
	return role, nil
}

// Permissions returns the role's permissions as "RESOURCE:ACTION" strings,
// sorted for stable token payloads.
func (r *RoleRepository) Permissions(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	query := `
		SELECT resource, action
		FROM role_permissions
		WHERE role_id = $1
		ORDER BY resource, action
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, roleID)
	if err != nil {
		return nil, translate("query role permissions", err)
	}
	defer rows.Close()

	perms := []string{}
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.Resource, &p.Action); err != nil {
			return nil, translate("scan role permission", err)
		}
		perms = append(perms, p.String())
	}
	if err := rows.Err(); err != nil {
		return nil, translate("iterate role permissions", err)
	}

	return perms, nil
}

// Upsert creates or updates a role by name
func (r *RoleRepository) Upsert(ctx context.Context, role *models.Role) error {
	query := `
		INSERT INTO roles (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (name) DO UPDATE
		SET description = EXCLUDED.description,
		    updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	now := time.Now()
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, role.ID, role.Name, role.Description, now).Scan(&role.ID)
	if err != nil {
		return translate("upsert role", err)
	}

	r.logger.Debug("role upserted", zap.String("name", role.Name), zap.String("id", role.ID.String()))
	return nil
}

// UpsertPermission registers a permission in the catalog
func (r *RoleRepository) UpsertPermission(ctx context.Context, perm models.Permission) error {
	query := `
		INSERT INTO permissions (resource, action)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, perm.Resource, perm.Action); err != nil {
		return translate("upsert permission", err)
	}
	return nil
}

// SetPermissions replaces the permission set of a role. Callers wanting
// atomic replacement run it inside a transaction.
func (r *RoleRepository) SetPermissions(ctx context.Context, roleID uuid.UUID, perms []models.Permission) error {
	executor := GetExecutor(ctx, r.db)

	if _, err := executor.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return translate("clear role permissions", err)
	}

	for _, p := range perms {
		_, err := executor.ExecContext(ctx,
			`INSERT INTO role_permissions (role_id, resource, action) VALUES ($1, $2, $3)`,
			roleID, p.Resource, p.Action,
		)
		if err != nil {
			return translate("assign role permission", err)
		}
	}

	r.logger.Debug("role permissions set", zap.String("role_id", roleID.String()), zap.Int("count", len(perms)))
	return nil
}
