package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/repositories"
	"github.com/aquasync/backend/services"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Invalidator drops cached permissions of a role.
type Invalidator interface {
	Invalidate(ctx context.Context, roleID uuid.UUID) error
}

// Admin describes the super-admin account to provision. An empty Email
// skips the account.
type Admin struct {
	Email    string
	Password string
	Name     string
}

// Result summarizes a seeding run.
type Result struct {
	Permissions int
	Roles       map[string]uuid.UUID
	AdminID     uuid.UUID
}

// Seeder upserts the catalog. Runs are idempotent.
type Seeder struct {
	roles      repositories.RoleRepository
	users      repositories.UserRepository
	txMgr      repositories.TransactionManager
	cache      Invalidator
	bcryptCost int
	logger     *zap.Logger
}

// NewSeeder creates a new Seeder. cache may be nil.
func NewSeeder(roles repositories.RoleRepository, users repositories.UserRepository, txMgr repositories.TransactionManager, cache Invalidator, bcryptCost int, logger *zap.Logger) *Seeder {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Seeder{roles: roles, users: users, txMgr: txMgr, cache: cache, bcryptCost: bcryptCost, logger: logger}
}

// Run upserts the permissions and roles of c and, when admin.Email is set,
// the super-admin account. Cached role permissions are invalidated after
// commit.
func (s *Seeder) Run(ctx context.Context, c *Catalog, admin Admin) (*Result, error) {
	var hash string
	if admin.Email != "" {
		if len(admin.Password) < 8 {
			return nil, fmt.Errorf("seed: admin password must be at least 8 characters")
		}
		if _, ok := c.Role(models.RoleSuperAdmin); !ok {
			return nil, fmt.Errorf("seed: catalog has no %s role", models.RoleSuperAdmin)
		}
		h, err := bcrypt.GenerateFromPassword([]byte(admin.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("seed: hash admin password: %w", err)
		}
		hash = string(h)
	}

	result := &Result{Roles: make(map[string]uuid.UUID, len(c.Roles))}
	err := services.WithTransaction(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) error {
		for _, p := range c.AllPermissions() {
			if err := s.roles.UpsertPermission(ctx, p); err != nil {
				return fmt.Errorf("upsert permission %s: %w", p, err)
			}
			result.Permissions++
		}

		for _, rs := range c.Roles {
			role := models.NewRole(rs.Name, rs.Description)
			if err := s.roles.Upsert(ctx, role); err != nil {
				return fmt.Errorf("upsert role %s: %w", rs.Name, err)
			}
			if err := s.roles.SetPermissions(ctx, role.ID, c.PermissionsFor(rs)); err != nil {
				return fmt.Errorf("assign permissions to %s: %w", rs.Name, err)
			}
			result.Roles[rs.Name] = role.ID
		}

		if admin.Email == "" {
			return nil
		}
		id, err := s.upsertAdmin(ctx, admin, hash, result.Roles[models.RoleSuperAdmin])
		if err != nil {
			return err
		}
		result.AdminID = id
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}

	for name, id := range result.Roles {
		if err := s.invalidate(ctx, id); err != nil {
			s.logger.Warn("failed to invalidate role permissions", zap.String("role", name), zap.Error(err))
		}
	}

	s.logger.Info("seeding completed",
		zap.Int("permissions", result.Permissions),
		zap.Int("roles", len(result.Roles)))
	return result, nil
}

func (s *Seeder) upsertAdmin(ctx context.Context, admin Admin, hash string, roleID uuid.UUID) (uuid.UUID, error) {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	name := admin.Name
	if name == "" {
		name = "Super Administrator"
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		user = models.NewUser(email, name, hash, roleID)
		user.IsActive = true
		if err := s.users.Create(ctx, user); err != nil {
			return uuid.Nil, fmt.Errorf("create admin: %w", err)
		}
		s.logger.Info("super admin created", zap.String("email", email))
	case err != nil:
		return uuid.Nil, fmt.Errorf("lookup admin: %w", err)
	default:
		user.Name = name
		user.HashedPassword = hash
		user.RoleID = roleID
		user.IsActive = true
		if err := s.users.Update(ctx, user); err != nil {
			return uuid.Nil, fmt.Errorf("update admin: %w", err)
		}
		s.logger.Info("super admin updated", zap.String("email", email))
	}
	return user.ID, nil
}

func (s *Seeder) invalidate(ctx context.Context, roleID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, roleID)
}
