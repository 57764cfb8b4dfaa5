package models

import (
	"time"

	"github.com/google/uuid"
)

// VerificationToken is a single-use email confirmation token.
type VerificationToken struct {
	Identifier string    `json:"identifier" db:"identifier"` // user email
	Token      string    `json:"token" db:"token"`
	Expires    time.Time `json:"expires" db:"expires"`
}

// TableName returns the table name for the VerificationToken model
func (VerificationToken) TableName() string {
	return "verification_tokens"
}

// NewVerificationToken creates a random token for identifier valid for ttl.
func NewVerificationToken(identifier string, ttl time.Duration) *VerificationToken {
	return &VerificationToken{
		Identifier: identifier,
		Token:      uuid.NewString(),
		Expires:    time.Now().Add(ttl),
	}
}

// IsExpired reports whether the token is past its expiry at now.
func (t *VerificationToken) IsExpired(now time.Time) bool {
	return !now.Before(t.Expires)
}
