package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aquasync/backend/internal/observability"
	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/services"
	"github.com/aquasync/backend/token"
	"github.com/aquasync/backend/utils"
	"go.uber.org/zap"
)

// AuthService defines the account operations behind /api/auth
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	VerifyEmail(ctx context.Context, raw string) error
	Login(ctx context.Context, in services.LoginInput) (*services.Session, error)
	Session(ctx context.Context, raw string) token.AuthResult
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// SessionResponse is the body of GET /api/auth/session.
type SessionResponse struct {
	IsAuthenticated bool         `json:"isAuthenticated"`
	User            *SessionUser `json:"user,omitempty"`
	Permissions     []string     `json:"permissions,omitempty"`
}

// SessionUser is the identity part of a session.
type SessionUser struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	RoleID string `json:"roleId"`
	Role   string `json:"role,omitempty"`
}

// AuthHandler handles registration, verification and session cookies
type AuthHandler struct {
	svc    AuthService
	cookie CookieConfig
	appURL string
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(svc AuthService, cookie CookieConfig, appURL string, logger *zap.Logger) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	return &AuthHandler{svc: svc, cookie: cookie, appURL: appURL, logger: logger}
}

// HandleRegister handles POST /api/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	var in services.RegisterInput
	if err := decodeBody(w, r, &in); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	if _, err := h.svc.Register(r.Context(), in); err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse{
		Success: true,
		Message: "Registration successful. Check your email to verify your account.",
	})
}

// HandleVerify handles GET /api/auth/verify?token=
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.VerifyEmail(r.Context(), r.URL.Query().Get("token")); err != nil {
		HandleServiceError(w, err, observability.Logger(r.Context(), h.logger))
		return
	}
	http.Redirect(w, r, h.appURL+"/auth/verify-success", http.StatusFound)
}

// HandleLogin handles POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context(), h.logger)

	var in services.LoginInput
	if err := decodeBody(w, r, &in); err != nil {
		HandleValidationError(w, err, logger)
		return
	}

	session, err := h.svc.Login(r.Context(), in)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	_ = utils.WriteOK(w, session)
}

// HandleLogout handles POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	_ = utils.WriteMessage(w, "Logged out")
}

// HandleSession handles GET /api/auth/session. It never fails with 401.
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	var raw string
	if c, err := r.Cookie(h.cookie.Name); err == nil {
		raw = c.Value
	}

	result := h.svc.Session(r.Context(), raw)
	resp := SessionResponse{IsAuthenticated: result.IsAuthenticated && result.Identity != nil}
	if resp.IsAuthenticated {
		id := result.Identity
		resp.User = &SessionUser{
			ID:     id.ID.String(),
			Email:  id.Email,
			Name:   id.Name,
			RoleID: id.RoleID.String(),
			Role:   id.Role,
		}
		resp.Permissions = result.Permissions
		if resp.Permissions == nil {
			resp.Permissions = []string{}
		}
	}
	_ = utils.WriteOK(w, resp)
}
