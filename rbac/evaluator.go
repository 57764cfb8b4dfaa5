// Package rbac evaluates a caller's permission snapshot against required
// (resource, action) pairs.
//
// Matching is exact and case-sensitive on the "RESOURCE:ACTION" form. There
// is no hierarchy: MANAGE on a resource grants nothing beyond MANAGE itself.
package rbac

import (
	"context"
	"errors"
	"strings"

	"github.com/aquasync/backend/models"
)

// Mode identifies which check produced a PermissionError.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeAny    Mode = "any"
	ModeAll    Mode = "all"
)

// PermissionError is returned by the Require* checks.
type PermissionError struct {
	Mode     Mode
	Required []string
	Missing  []string
}

// Error implements the error interface
func (e *PermissionError) Error() string {
	list := strings.Join(e.Required, ", ")
	switch e.Mode {
	case ModeAny:
		return "Missing any of required permissions: " + list
	case ModeAll:
		return "Missing some of required permissions: " + list
	default:
		return "Missing required permission: " + list
	}
}

// RequiredPermission is the value reported to clients in the error envelope.
func (e *PermissionError) RequiredPermission() string {
	return strings.Join(e.Required, ", ")
}

// IsPermissionError checks if an error is a PermissionError
func IsPermissionError(err error) bool {
	var permErr *PermissionError
	return errors.As(err, &permErr)
}

// Evaluator is an immutable set of granted permission strings.
type Evaluator struct {
	granted map[string]struct{}
}

// NewEvaluator builds an evaluator over the granted permission strings.
func NewEvaluator(granted []string) *Evaluator {
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[p] = struct{}{}
	}
	return &Evaluator{granted: set}
}

// HasPermission reports whether p is granted.
func (e *Evaluator) HasPermission(p models.Permission) bool {
	if e == nil {
		return false
	}
	_, ok := e.granted[p.String()]
	return ok
}

// HasAnyPermission reports whether at least one of ps is granted. It is false
// for an empty list.
func (e *Evaluator) HasAnyPermission(ps ...models.Permission) bool {
	for _, p := range ps {
		if e.HasPermission(p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every one of ps is granted. It is true
// for an empty list.
func (e *Evaluator) HasAllPermissions(ps ...models.Permission) bool {
	for _, p := range ps {
		if !e.HasPermission(p) {
			return false
		}
	}
	return true
}

// RequirePermission returns a *PermissionError unless p is granted.
func (e *Evaluator) RequirePermission(p models.Permission) error {
	if e.HasPermission(p) {
		return nil
	}
	return &PermissionError{
		Mode:     ModeSingle,
		Required: []string{p.String()},
		Missing:  []string{p.String()},
	}
}

// RequireAnyPermission returns a *PermissionError unless one of ps is granted.
func (e *Evaluator) RequireAnyPermission(ps ...models.Permission) error {
	if e.HasAnyPermission(ps...) {
		return nil
	}
	required := models.PermissionStrings(ps)
	return &PermissionError{Mode: ModeAny, Required: required, Missing: required}
}

// RequireAllPermissions returns a *PermissionError unless all of ps are granted.
func (e *Evaluator) RequireAllPermissions(ps ...models.Permission) error {
	if e.HasAllPermissions(ps...) {
		return nil
	}
	var missing []string
	for _, p := range ps {
		if !e.HasPermission(p) {
			missing = append(missing, p.String())
		}
	}
	return &PermissionError{Mode: ModeAll, Required: models.PermissionStrings(ps), Missing: missing}
}

type evaluatorKey struct{}

// NewContext returns a context carrying e.
func NewContext(ctx context.Context, e *Evaluator) context.Context {
	return context.WithValue(ctx, evaluatorKey{}, e)
}

// FromContext returns the evaluator attached to ctx. A context without one
// yields an evaluator that grants nothing.
func FromContext(ctx context.Context) *Evaluator {
	if e, ok := ctx.Value(evaluatorKey{}).(*Evaluator); ok && e != nil {
		return e
	}
	return NewEvaluator(nil)
}
