package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aquasync/backend/internal/observability"
	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/rbac"
	"github.com/aquasync/backend/token"
	"github.com/aquasync/backend/utils"
	"go.uber.org/zap"
)

// TokenVerifier resolves a raw session token into an auth result. It must
// not panic and must fail closed.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) token.AuthResult
}

// GateConfig selects the paths the gate protects.
type GateConfig struct {
	CookieName string
	// Prefix is the protected path prefix.
	Prefix string
	// Exclusions are prefixes under Prefix that pass through unauthenticated.
	Exclusions []string
}

// AuthMiddleware authenticates requests under a path prefix
type AuthMiddleware struct {
	verifier TokenVerifier
	cfg      GateConfig
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier TokenVerifier, cfg GateConfig, metrics *observability.Metrics, logger *zap.Logger) *AuthMiddleware {
	if cfg.CookieName == "" {
		cfg.CookieName = "token"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "/api"
	}
	return &AuthMiddleware{
		verifier: verifier,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger,
	}
}

// matchPrefix reports whether path is prefix itself or below it.
func matchPrefix(path, prefix string) bool {
	prefix = strings.TrimRight(prefix, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Protects reports whether the gate authenticates path.
func (m *AuthMiddleware) Protects(path string) bool {
	if !matchPrefix(path, m.cfg.Prefix) {
		return false
	}
	for _, excluded := range m.cfg.Exclusions {
		if matchPrefix(path, excluded) {
			return false
		}
	}
	return true
}

// Gate rejects protected requests without a verifiable session cookie and
// attaches the caller to the context of the rest. It performs no
// permission checks.
func (m *AuthMiddleware) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, h := range forwardedHeaders {
			r.Header.Del(h)
		}

		if !m.Protects(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		logger := observability.Logger(ctx, m.logger)

		principal, ok := m.authenticate(w, r, logger)
		if !ok {
			return
		}

		r.Header.Set(HeaderUserID, principal.Identity.ID.String())
		r.Header.Set(HeaderUserEmail, principal.Identity.Email)
		r.Header.Set(HeaderUserRoleID, principal.Identity.RoleID.String())

		m.metrics.RecordGateDecision(observability.GateAllowed)
		logger.Debug("request authenticated",
			zap.String("user_id", principal.Identity.ID.String()),
			zap.String("path", r.URL.Path))

		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
	})
}

// authenticate runs the verification step. Failures, including panics, are
// written to w.
func (m *AuthMiddleware) authenticate(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (principal *Principal, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("request gate panicked", zap.Any("panic", p), zap.String("path", r.URL.Path))
			m.metrics.RecordGateDecision(observability.GateError)
			_ = utils.WriteInternalServerError(w, "")
			principal, ok = nil, false
		}
	}()

	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil || cookie.Value == "" {
		logger.Debug("missing session token", zap.String("path", r.URL.Path))
		m.metrics.RecordGateDecision(observability.GateMissingToken)
		_ = utils.WriteMissingToken(w)
		return nil, false
	}

	result := m.verifier.Verify(r.Context(), cookie.Value)
	if !result.IsAuthenticated || result.Identity == nil {
		logger.Warn("invalid session token", zap.String("path", r.URL.Path))
		m.metrics.RecordGateDecision(observability.GateInvalidToken)
		_ = utils.WriteInvalidToken(w)
		return nil, false
	}

	perms := result.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &Principal{Identity: *result.Identity, Permissions: perms}, true
}

// RequirePermission rejects callers whose permission snapshot lacks p with
// 403 INSUFFICIENT_PERMISSIONS. Install it behind Gate.
func (m *AuthMiddleware) RequirePermission(p models.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := rbac.FromContext(r.Context()).RequirePermission(p); err != nil {
				m.deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyPermission rejects callers holding none of ps.
func (m *AuthMiddleware) RequireAnyPermission(ps ...models.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := rbac.FromContext(r.Context()).RequireAnyPermission(ps...); err != nil {
				m.deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *AuthMiddleware) deny(w http.ResponseWriter, r *http.Request, err error) {
	var required string
	var permErr *rbac.PermissionError
	if errors.As(err, &permErr) {
		required = permErr.RequiredPermission()
	}
	m.metrics.RecordPermissionDenied(required)
	observability.Logger(r.Context(), m.logger).Info("permission denied",
		zap.String("user_id", GetUserIDFromContext(r.Context()).String()),
		zap.String("required", required),
		zap.String("path", r.URL.Path))
	_ = utils.WriteInsufficientPermissions(w, err.Error(), required)
}
