// Package token issues and verifies the signed session credential that
// carries the caller's identity and permission snapshot.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token is invalid
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrEmptySecret is returned when the manager is built without a signing secret
	ErrEmptySecret = errors.New("token signing secret is empty")
)

// DefaultTTL is used when Config.TTL is zero.
const DefaultTTL = 24 * time.Hour

// AuthResult is the outcome of verifying a token. Identity and Permissions are
// only set when IsAuthenticated is true.
type AuthResult struct {
	IsAuthenticated bool
	Identity        *Identity
	Permissions     []string
}

// Config holds configuration for Manager
type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Manager signs and verifies HS256 tokens with a shared secret. It holds no
// mutable state and is safe for concurrent use.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a new token manager
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrEmptySecret
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &Manager{
		secret: secret,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}, nil
}

// TTL returns the lifetime of issued tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a new token for identity embedding the given permission snapshot.
func (m *Manager) Issue(identity Identity, permissions []string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	perms := make([]string, len(permissions))
	copy(perms, permissions)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:       identity.Email,
		Name:        identity.Name,
		RoleID:      identity.RoleID.String(),
		Role:        identity.Role,
		Permissions: perms,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse validates signature, algorithm, expiry and issuer, and returns the claims.
func (m *Manager) Parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Verify resolves raw into an AuthResult. It fails closed: any parse,
// signature, expiry or claim error yields an unauthenticated result, and a
// panic during decoding is contained here.
func (m *Manager) Verify(ctx context.Context, raw string) (result AuthResult) {
	defer func() {
		if recover() != nil {
			result = AuthResult{}
		}
	}()

	if raw == "" || ctx.Err() != nil {
		return AuthResult{}
	}
	claims, err := m.Parse(raw)
	if err != nil {
		return AuthResult{}
	}
	identity, err := claims.identity()
	if err != nil {
		return AuthResult{}
	}

	perms := claims.Permissions
	if perms == nil {
		perms = []string{}
	}
	return AuthResult{
		IsAuthenticated: true,
		Identity:        identity,
		Permissions:     perms,
	}
}
