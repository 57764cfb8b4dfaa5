package models

import (
	"time"

	"github.com/google/uuid"
)

// Apartment is a unit inside a building, optionally assigned to an owner.
type Apartment struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	BuildingID uuid.UUID  `json:"buildingId" db:"building_id"`
	Number     string     `json:"number" db:"number"`
	Floor      int        `json:"floor" db:"floor"`
	OwnerID    *uuid.UUID `json:"ownerId,omitempty" db:"owner_id"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
}

// TableName returns the table name for the Apartment model
func (Apartment) TableName() string {
	return "apartments"
}

// NewApartment creates a new Apartment instance
func NewApartment(buildingID uuid.UUID, number string, floor int) *Apartment {
	now := time.Now()
	return &Apartment{
		ID:         uuid.New(),
		BuildingID: buildingID,
		Number:     number,
		Floor:      floor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsOwnedBy reports whether userID is the assigned owner.
func (a *Apartment) IsOwnedBy(userID uuid.UUID) bool {
	return a.OwnerID != nil && *a.OwnerID == userID
}
