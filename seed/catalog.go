// Package seed loads the permission catalog and provisions roles and the
// super-admin account.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/aquasync/backend/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Grants maps a resource to the actions granted on it.
type Grants map[models.Resource][]models.Action

// RoleSpec describes one role of the catalog.
type RoleSpec struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// All grants every catalog permission.
	All    bool   `yaml:"all"`
	Grants Grants `yaml:"grants"`
}

// Catalog is the declarative permission and role set.
type Catalog struct {
	Permissions Grants     `yaml:"permissions"`
	Roles       []RoleSpec `yaml:"roles"`
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("seed: parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks every name against the known enums and every role grant
// against the catalog.
func (c *Catalog) Validate() error {
	if len(c.Permissions) == 0 {
		return fmt.Errorf("seed: catalog has no permissions")
	}
	for resource, actions := range c.Permissions {
		if !resource.Valid() {
			return fmt.Errorf("seed: unknown resource %q", resource)
		}
		for _, action := range actions {
			if !action.Valid() {
				return fmt.Errorf("seed: unknown action %q on %s", action, resource)
			}
		}
	}

	seen := make(map[string]bool, len(c.Roles))
	for _, role := range c.Roles {
		if role.Name == "" {
			return fmt.Errorf("seed: role without a name")
		}
		if seen[role.Name] {
			return fmt.Errorf("seed: duplicate role %q", role.Name)
		}
		seen[role.Name] = true

		for resource, actions := range role.Grants {
			for _, action := range actions {
				if !c.has(models.NewPermission(resource, action)) {
					return fmt.Errorf("seed: role %s grants %s:%s which is not in the catalog", role.Name, resource, action)
				}
			}
		}
	}
	return nil
}

func (c *Catalog) has(p models.Permission) bool {
	for _, action := range c.Permissions[p.Resource] {
		if action == p.Action {
			return true
		}
	}
	return false
}

// AllPermissions lists the catalog in resource then action declaration order.
func (c *Catalog) AllPermissions() []models.Permission {
	return c.Permissions.list()
}

// PermissionsFor resolves the permission set of role.
func (c *Catalog) PermissionsFor(role RoleSpec) []models.Permission {
	if role.All {
		return c.AllPermissions()
	}
	return role.Grants.list()
}

// Role returns the role with the given name.
func (c *Catalog) Role(name string) (RoleSpec, bool) {
	for _, role := range c.Roles {
		if role.Name == name {
			return role, true
		}
	}
	return RoleSpec{}, false
}

// list flattens g in a stable order.
func (g Grants) list() []models.Permission {
	var out []models.Permission
	for _, resource := range models.AllResources {
		granted := g[resource]
		for _, action := range models.AllActions {
			for _, a := range granted {
				if a == action {
					out = append(out, models.NewPermission(resource, action))
					break
				}
			}
		}
	}
	return out
}
