package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that signs in with email and password.
type User struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Email          string     `json:"email" db:"email"`
	Name           string     `json:"name" db:"name"`
	HashedPassword string     `json:"-" db:"hashed_password"`
	RoleID         uuid.UUID  `json:"roleId" db:"role_id"`
	IsActive       bool       `json:"isActive" db:"is_active"`
	EmailVerified  *time.Time `json:"emailVerified,omitempty" db:"email_verified"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates an inactive user. Accounts become active once the email is verified.
func NewUser(email, name, hashedPassword string, roleID uuid.UUID) *User {
	now := time.Now()
	return &User{
		ID:             uuid.New(),
		Email:          email,
		Name:           name,
		HashedPassword: hashedPassword,
		RoleID:         roleID,
		IsActive:       false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsVerified returns true once the email address has been confirmed
func (u *User) IsVerified() bool {
	return u.EmailVerified != nil
}

// UserProfile is the public view of a user together with its role and permission snapshot.
type UserProfile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name,omitempty"`
	RoleID      uuid.UUID `json:"roleId"`
	Role        string    `json:"role,omitempty"`
	Permissions []string  `json:"permissions"`
}
