package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMissingClaim is returned when a required claim is missing
	ErrMissingClaim = errors.New("missing required claim")

	// ErrInvalidClaim is returned when a claim cannot be decoded into its domain type
	ErrInvalidClaim = errors.New("invalid claim")
)

// Claims is the signed payload of a session token.
type Claims struct {
	jwt.RegisteredClaims
	Email       string   `json:"email"`
	Name        string   `json:"name,omitempty"`
	RoleID      string   `json:"roleId"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions"`
}

// Identity is the caller resolved from a verified token.
type Identity struct {
	ID     uuid.UUID
	Email  string
	Name   string
	RoleID uuid.UUID
	Role   string
}

// identity decodes the typed identity, failing on missing or malformed fields.
func (c *Claims) identity() (*Identity, error) {
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	sub, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: sub: %v", ErrInvalidClaim, err)
	}
	if c.Email == "" {
		return nil, fmt.Errorf("%w: email", ErrMissingClaim)
	}
	if c.RoleID == "" {
		return nil, fmt.Errorf("%w: roleId", ErrMissingClaim)
	}
	roleID, err := uuid.Parse(c.RoleID)
	if err != nil {
		return nil, fmt.Errorf("%w: roleId: %v", ErrInvalidClaim, err)
	}
	for _, p := range c.Permissions {
		if p == "" {
			return nil, fmt.Errorf("%w: permissions contains an empty entry", ErrInvalidClaim)
		}
	}

	return &Identity{
		ID:     sub,
		Email:  c.Email,
		Name:   c.Name,
		RoleID: roleID,
		Role:   c.Role,
	}, nil
}
