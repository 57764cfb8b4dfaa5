package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/aquasync/backend/config"
	"github.com/aquasync/backend/mailer"
	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/repositories"
	"github.com/aquasync/backend/token"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer issues and verifies session tokens.
type TokenIssuer interface {
	Issue(identity token.Identity, permissions []string) (string, time.Time, error)
	Verify(ctx context.Context, raw string) token.AuthResult
}

// PermissionSource resolves role permissions, typically through a cache.
type PermissionSource interface {
	Permissions(ctx context.Context, roleID uuid.UUID) ([]string, error)
}

// EmailDispatcher renders and delivers a templated email.
type EmailDispatcher interface {
	SendTemplate(ctx context.Context, req SendEmailRequest) error
}

// RegisterInput is the payload of a registration.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72,password"`
	Name     string `json:"name" validate:"required,min=1,max=255"`
}

// LoginInput is the payload of a login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string              `json:"-"`
	ExpiresAt time.Time           `json:"expiresAt"`
	User      *models.UserProfile `json:"user"`
}

// AuthService handles registration, email verification and login
type AuthService struct {
	users       repositories.UserRepository
	roles       repositories.RoleRepository
	tokens      repositories.VerificationTokenRepository
	txMgr       repositories.TransactionManager
	issuer      TokenIssuer
	permissions PermissionSource
	email       EmailDispatcher
	cfg         config.AuthConfig
	appURL      string
	logger      *zap.Logger
	now         func() time.Time
}

// AuthServiceDeps groups the collaborators of AuthService.
type AuthServiceDeps struct {
	Users       repositories.UserRepository
	Roles       repositories.RoleRepository
	Tokens      repositories.VerificationTokenRepository
	TxManager   repositories.TransactionManager
	Issuer      TokenIssuer
	Permissions PermissionSource
	Email       EmailDispatcher
	Config      config.AuthConfig
	AppURL      string
	Logger      *zap.Logger
}

// NewAuthService creates a new AuthService instance
func NewAuthService(deps AuthServiceDeps) *AuthService {
	return &AuthService{
		users:       deps.Users,
		roles:       deps.Roles,
		tokens:      deps.Tokens,
		txMgr:       deps.TxManager,
		issuer:      deps.Issuer,
		permissions: deps.Permissions,
		email:       deps.Email,
		cfg:         deps.Config,
		appURL:      strings.TrimRight(deps.AppURL, "/"),
		logger:      deps.Logger,
		now:         time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an inactive account with the default role and sends the
// verification email. Delivery failures are logged and do not fail the
// registration.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, WrapInternal("failed to look up user", err)
	}

	role, err := s.roles.GetByName(ctx, s.cfg.DefaultRole)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, WrapInternal("default role "+s.cfg.DefaultRole+" is not seeded", err)
		}
		return nil, WrapInternal("failed to load default role", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(email, strings.TrimSpace(in.Name), string(hash), role.ID)
	vt := models.NewVerificationToken(user.Email, s.cfg.VerificationTTL)

	err = WithTransaction(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		return s.tokens.Create(ctx, vt)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, WrapInternal("failed to create user", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", role.Name))

	if s.email != nil {
		err := s.email.SendTemplate(ctx, SendEmailRequest{
			To:       []string{user.Email},
			Template: mailer.TemplateRegister,
			Data: mailer.TemplateData{
				"name":            user.Name,
				"verificationUrl": s.appURL + "/api/auth/verify?token=" + url.QueryEscape(vt.Token),
			},
		})
		if err != nil {
			s.logger.Warn("verification email not sent", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	return user, nil
}

// VerifyEmail consumes a verification token and activates its account.
// Expired tokens are deleted.
func (s *AuthService) VerifyEmail(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrMissingVerificationToken
	}

	vt, err := s.tokens.Get(ctx, raw)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidVerificationToken
		}
		return WrapInternal("failed to load verification token", err)
	}

	now := s.now()
	if vt.IsExpired(now) {
		if err := s.tokens.Delete(ctx, vt.Token); err != nil {
			s.logger.Warn("failed to delete expired verification token", zap.Error(err))
		}
		return ErrVerificationTokenExpired
	}

	err = WithTransaction(ctx, s.txMgr, func(ctx context.Context, tx repositories.Transaction) error {
		if err := s.users.MarkVerified(ctx, vt.Identifier, now); err != nil {
			return err
		}
		return s.tokens.Delete(ctx, vt.Token)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidVerificationToken
		}
		return WrapInternal("failed to verify user", err)
	}

	s.logger.Info("email verified", zap.String("identifier", vt.Identifier))
	return nil
}

// Login checks credentials and issues a session token carrying the role's
// permission snapshot. Unknown emails, wrong passwords and inactive
// accounts all fail with ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, WrapInternal("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		s.logger.Info("login refused for inactive account", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	profile, err := s.profile(ctx, user)
	if err != nil {
		return nil, err
	}

	raw, expiresAt, err := s.issuer.Issue(token.Identity{
		ID:     user.ID,
		Email:  user.Email,
		Name:   user.Name,
		RoleID: user.RoleID,
		Role:   profile.Role,
	}, profile.Permissions)
	if err != nil {
		return nil, WrapInternal("failed to issue token", err)
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()), zap.Int("permissions", len(profile.Permissions)))
	return &Session{Token: raw, ExpiresAt: expiresAt, User: profile}, nil
}

// Session verifies a raw cookie value without failing the request. An
// empty value yields an unauthenticated result.
func (s *AuthService) Session(ctx context.Context, raw string) token.AuthResult {
	if raw == "" {
		return token.AuthResult{Permissions: []string{}}
	}
	return s.issuer.Verify(ctx, raw)
}

// Me loads the profile of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, WrapInternal("failed to load user", err)
	}
	return s.profile(ctx, user)
}

func (s *AuthService) profile(ctx context.Context, user *models.User) (*models.UserProfile, error) {
	role, err := s.roles.GetByID(ctx, user.RoleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, WrapInternal("failed to load role", err)
	}

	perms, err := s.permissions.Permissions(ctx, user.RoleID)
	if err != nil {
		return nil, WrapInternal("failed to load permissions", err)
	}

	return &models.UserProfile{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		RoleID:      user.RoleID,
		Role:        role.Name,
		Permissions: perms,
	}, nil
}
