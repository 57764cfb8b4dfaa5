package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentListStatus tracks the lifecycle of a payment list.
type PaymentListStatus string

const (
	PaymentListDraft    PaymentListStatus = "DRAFT"
	PaymentListApproved PaymentListStatus = "APPROVED"
)

// PaymentList is the monthly consumption statement of a building.
type PaymentList struct {
	ID         uuid.UUID         `json:"id" db:"id"`
	BuildingID uuid.UUID         `json:"buildingId" db:"building_id"`
	Period     string            `json:"period" db:"period"` // YYYY-MM
	Status     PaymentListStatus `json:"status" db:"status"`
	CreatedBy  uuid.UUID         `json:"createdBy" db:"created_by"`
	ApprovedBy *uuid.UUID        `json:"approvedBy,omitempty" db:"approved_by"`
	ApprovedAt *time.Time        `json:"approvedAt,omitempty" db:"approved_at"`
	CreatedAt  time.Time         `json:"createdAt" db:"created_at"`
}

// TableName returns the table name for the PaymentList model
func (PaymentList) TableName() string {
	return "payment_lists"
}

// NewPaymentList creates a draft list.
func NewPaymentList(buildingID, createdBy uuid.UUID, period string) *PaymentList {
	return &PaymentList{
		ID:         uuid.New(),
		BuildingID: buildingID,
		Period:     period,
		Status:     PaymentListDraft,
		CreatedBy:  createdBy,
		CreatedAt:  time.Now(),
	}
}

// PaymentListLine is one exported row: an apartment and its approved consumption.
type PaymentListLine struct {
	ApartmentNumber string  `json:"apartmentNumber"`
	Floor           int     `json:"floor"`
	OwnerEmail      string  `json:"ownerEmail,omitempty"`
	ColdWater       float64 `json:"coldWater"`
	HotWater        float64 `json:"hotWater"`
}

// ValidatePeriod checks the YYYY-MM billing period format.
func ValidatePeriod(period string) error {
	if _, err := time.Parse("2006-01", period); err != nil {
		return fmt.Errorf("invalid period %q: expected YYYY-MM", period)
	}
	return nil
}
