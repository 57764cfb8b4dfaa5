package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/services"
	"github.com/aquasync/backend/token"
	"github.com/aquasync/backend/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAppURL = "https://app.example.com"

func newAuthHandler(svc AuthService) *AuthHandler {
	return NewAuthHandler(svc, CookieConfig{Name: "token", Secure: true}, testAppURL, zap.NewNop())
}

func cookieNamed(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("creates the account", func(t *testing.T) {
		svc := new(MockAuthService)
		in := services.RegisterInput{Email: "ana@example.com", Password: "Secret123", Name: "Ana"}
		svc.On("Register", mock.Anything, in).Return(models.NewUser("ana@example.com", "Ana", "hash", uuid.New()), nil)

		body := `{"email":"ana@example.com","password":"Secret123","name":"Ana"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
		w := httptest.NewRecorder()
		newAuthHandler(svc).HandleRegister(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "hash")
		svc.AssertExpectations(t)
	})

	t.Run("rejects a weak password", func(t *testing.T) {
		svc := new(MockAuthService)

		body := `{"email":"ana@example.com","password":"password","name":"Ana"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
		w := httptest.NewRecorder()
		newAuthHandler(svc).HandleRegister(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		response := decodeError(t, w)
		assert.Equal(t, utils.CodeValidationError, response.Code)
		assert.Contains(t, response.Details, "password")
		svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Register", mock.Anything, mock.Anything).Return(nil, services.ErrDuplicateEmail)

		body := `{"email":"ana@example.com","password":"Secret123","name":"Ana"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
		w := httptest.NewRecorder()
		newAuthHandler(svc).HandleRegister(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(""))
		w := httptest.NewRecorder()
		newAuthHandler(new(MockAuthService)).HandleRegister(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Verify(t *testing.T) {
	t.Run("redirects to the front end", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("VerifyEmail", mock.Anything, "abc").Return(nil)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/verify?token=abc", nil)
		w := httptest.NewRecorder()
		newAuthHandler(svc).HandleVerify(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, testAppURL+"/auth/verify-success", w.Header().Get("Location"))
	})

	t.Run("expired token", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("VerifyEmail", mock.Anything, "old").Return(services.ErrVerificationTokenExpired)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/verify?token=old", nil)
		w := httptest.NewRecorder()
		newAuthHandler(svc).HandleVerify(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "verification token has expired", decodeError(t, w).Message)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("sets the session cookie", func(t *testing.T) {
		svc := new(MockAuthService)
		session := &services.Session{
			Token:     "signed.jwt.value",
			ExpiresAt: time.Now().Add(time.Hour),
			User:      &models.UserProfile{ID: uuid.New(), Email: "ana@example.com", Permissions: []string{}},
		}
		svc.On("Login", mock.Anything, services.LoginInput{Email: "ana@example.com", Password: "Secret123"}).Return(session, nil)

		body := `{"email":"ana@example.com","password":"Secret123"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		w := httptest.NewRecorder()
		newAuthHandler(svc).HandleLogin(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		c := cookieNamed(t, w, "token")
		assert.Equal(t, "signed.jwt.value", c.Value)
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, "/", c.Path)
		assert.Greater(t, c.MaxAge, 3500)
		assert.NotContains(t, w.Body.String(), "signed.jwt.value")
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Login", mock.Anything, mock.Anything).Return(nil, services.ErrInvalidCredentials)

		body := `{"email":"ana@example.com","password":"wrong"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		w := httptest.NewRecorder()
		newAuthHandler(svc).HandleLogin(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, utils.CodeInvalidCredentials, decodeError(t, w).Code)
		assert.Empty(t, w.Result().Cookies())
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	w := httptest.NewRecorder()
	newAuthHandler(new(MockAuthService)).HandleLogout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	c := cookieNamed(t, w, "token")
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestAuthHandler_Session(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		svc := new(MockAuthService)
		svc.On("Session", mock.Anything, "").Return(token.AuthResult{Permissions: []string{}})

		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		w := httptest.NewRecorder()
		newAuthHandler(svc).HandleSession(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data SessionResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.False(t, body.Data.IsAuthenticated)
		assert.Nil(t, body.Data.User)
	})

	t.Run("authenticated", func(t *testing.T) {
		id := token.Identity{ID: uuid.New(), Email: "ana@example.com", Name: "Ana", RoleID: uuid.New(), Role: models.RoleOwner}
		svc := new(MockAuthService)
		svc.On("Session", mock.Anything, "raw").Return(token.AuthResult{
			IsAuthenticated: true,
			Identity:        &id,
			Permissions:     []string{"WATER_READINGS:CREATE"},
		})

		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "raw"})
		w := httptest.NewRecorder()
		newAuthHandler(svc).HandleSession(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data SessionResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.True(t, body.Data.IsAuthenticated)
		require.NotNil(t, body.Data.User)
		assert.Equal(t, id.ID.String(), body.Data.User.ID)
		assert.Equal(t, models.RoleOwner, body.Data.User.Role)
		assert.Equal(t, []string{"WATER_READINGS:CREATE"}, body.Data.Permissions)
	})
}

func TestUserHandler_Me(t *testing.T) {
	t.Run("returns the profile", func(t *testing.T) {
		userID := uuid.New()
		svc := new(MockProfileService)
		svc.On("Me", mock.Anything, userID).Return(&models.UserProfile{ID: userID, Email: "caller@example.com", Permissions: []string{}}, nil)

		req := asPrincipal(httptest.NewRequest(http.MethodGet, "/api/users/me", nil), userID)
		w := httptest.NewRecorder()
		NewUserHandler(svc, zap.NewNop()).HandleMe(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})

	t.Run("requires a principal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		w := httptest.NewRecorder()
		NewUserHandler(new(MockProfileService), zap.NewNop()).HandleMe(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, utils.CodeMissingToken, decodeError(t, w).Code)
	})
}
