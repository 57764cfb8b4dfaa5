package services

import (
	"context"

	"github.com/aquasync/backend/cache"
	"github.com/aquasync/backend/repositories"
	"github.com/google/uuid"
)

// RolePermissions resolves role permissions from the database through the
// Redis cache. A nil cache reads the database on every call.
type RolePermissions struct {
	roles repositories.RoleRepository
	cache *cache.PermissionCache
}

// NewRolePermissions creates a new RolePermissions instance
func NewRolePermissions(roles repositories.RoleRepository, c *cache.PermissionCache) *RolePermissions {
	return &RolePermissions{roles: roles, cache: c}
}

// Permissions returns the permission strings granted to roleID.
func (p *RolePermissions) Permissions(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	return p.cache.Permissions(ctx, roleID, p.roles.Permissions)
}

