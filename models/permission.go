package models

import (
	"fmt"
	"strings"
)

// Resource is a protected entity class.
type Resource string

const (
	ResourceUsers          Resource = "USERS"
	ResourceRoles          Resource = "ROLES"
	ResourcePermissions    Resource = "PERMISSIONS"
	ResourceAssociations   Resource = "ASSOCIATIONS"
	ResourceBuildings      Resource = "BUILDINGS"
	ResourceApartments     Resource = "APARTMENTS"
	ResourceOwners         Resource = "OWNERS"
	ResourceWaterReadings  Resource = "WATER_READINGS"
	ResourcePaymentLists   Resource = "PAYMENT_LISTS"
	ResourceReports        Resource = "REPORTS"
	ResourceNotifications  Resource = "NOTIFICATIONS"
	ResourceSystemSettings Resource = "SYSTEM_SETTINGS"
)

// Action is an operation on a resource.
type Action string

const (
	ActionCreate  Action = "CREATE"
	ActionRead    Action = "READ"
	ActionUpdate  Action = "UPDATE"
	ActionDelete  Action = "DELETE"
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
	ActionAssign  Action = "ASSIGN"
	ActionExport  Action = "EXPORT"
	ActionManage  Action = "MANAGE"
)

// AllResources lists every resource in declaration order.
var AllResources = []Resource{
	ResourceUsers, ResourceRoles, ResourcePermissions, ResourceAssociations,
	ResourceBuildings, ResourceApartments, ResourceOwners, ResourceWaterReadings,
	ResourcePaymentLists, ResourceReports, ResourceNotifications, ResourceSystemSettings,
}

// AllActions lists every action in declaration order.
var AllActions = []Action{
	ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionApprove,
	ActionReject, ActionAssign, ActionExport, ActionManage,
}

// Valid reports whether r is a known resource.
func (r Resource) Valid() bool {
	for _, known := range AllResources {
		if r == known {
			return true
		}
	}
	return false
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	for _, known := range AllActions {
		if a == known {
			return true
		}
	}
	return false
}

// Permission is a (resource, action) pair. Its wire form is "RESOURCE:ACTION".
type Permission struct {
	Resource Resource `json:"resource" yaml:"resource"`
	Action   Action   `json:"action" yaml:"action"`
}

// NewPermission builds a permission from its parts.
func NewPermission(resource Resource, action Action) Permission {
	return Permission{Resource: resource, Action: action}
}

// String formats the permission as "RESOURCE:ACTION".
func (p Permission) String() string {
	return string(p.Resource) + ":" + string(p.Action)
}

// ParsePermission parses the "RESOURCE:ACTION" form. Matching is case-sensitive
// and both halves must belong to the known enums.
func ParsePermission(s string) (Permission, error) {
	resource, action, ok := strings.Cut(s, ":")
	if !ok {
		return Permission{}, fmt.Errorf("invalid permission %q: expected RESOURCE:ACTION", s)
	}
	p := Permission{Resource: Resource(resource), Action: Action(action)}
	if !p.Resource.Valid() {
		return Permission{}, fmt.Errorf("invalid permission %q: unknown resource", s)
	}
	if !p.Action.Valid() {
		return Permission{}, fmt.Errorf("invalid permission %q: unknown action", s)
	}
	return p, nil
}

// PermissionStrings formats a list of permissions.
func PermissionStrings(perms []Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = p.String()
	}
	return out
}
