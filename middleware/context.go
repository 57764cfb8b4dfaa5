package middleware

import (
	"context"

	"github.com/aquasync/backend/rbac"
	"github.com/aquasync/backend/token"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Context key type to avoid collisions
type contextKey string

const (
	// PrincipalKey is the context key for the authenticated caller
	PrincipalKey contextKey = "principal"
)

// Headers forwarded to downstream handlers for an authenticated request.
// Client-supplied values are always discarded.
const (
	HeaderUserID     = "X-User-Id"
	HeaderUserEmail  = "X-User-Email"
	HeaderUserRoleID = "X-User-Role-Id"
)

var forwardedHeaders = []string{HeaderUserID, HeaderUserEmail, HeaderUserRoleID}

// Principal is the verified caller of a request together with its permission
// snapshot.
type Principal struct {
	Identity    token.Identity
	Permissions []string
}

// GetRequestIDFromContext retrieves the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	return chimiddleware.GetReqID(ctx)
}

// WithPrincipal stores p and its permission evaluator in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	ctx = context.WithValue(ctx, PrincipalKey, p)
	return rbac.NewContext(ctx, rbac.NewEvaluator(p.Permissions))
}

// GetPrincipalFromContext retrieves the authenticated caller, or nil
func GetPrincipalFromContext(ctx context.Context) *Principal {
	if val := ctx.Value(PrincipalKey); val != nil {
		if p, ok := val.(*Principal); ok {
			return p
		}
	}
	return nil
}

// GetUserIDFromContext retrieves the authenticated user ID, or uuid.Nil
func GetUserIDFromContext(ctx context.Context) uuid.UUID {
	if p := GetPrincipalFromContext(ctx); p != nil {
		return p.Identity.ID
	}
	return uuid.Nil
}
