package models

import (
	"time"

	"github.com/google/uuid"
)

// Building is a block managed by the association.
type Building struct {
	ID                 uuid.UUID    `json:"id" db:"id"`
	Name               string       `json:"name" db:"name"`
	Address            string       `json:"address" db:"address"`
	Floors             int          `json:"floors" db:"floors"`
	ApartmentsPerFloor int          `json:"apartmentsPerFloor" db:"apartments_per_floor"`
	Apartments         []*Apartment `json:"apartments" db:"-"`
	CreatedAt          time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time    `json:"updatedAt" db:"updated_at"`
}

// TableName returns the table name for the Building model
func (Building) TableName() string {
	return "buildings"
}

// NewBuilding creates a new Building instance
func NewBuilding(name, address string, floors, apartmentsPerFloor int) *Building {
	now := time.Now()
	return &Building{
		ID:                 uuid.New(),
		Name:               name,
		Address:            address,
		Floors:             floors,
		ApartmentsPerFloor: apartmentsPerFloor,
		Apartments:         []*Apartment{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Capacity is the number of apartments the building layout allows.
func (b *Building) Capacity() int {
	return b.Floors * b.ApartmentsPerFloor
}
