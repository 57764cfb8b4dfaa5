package models

import (
	"time"

	"github.com/google/uuid"
)

// ReadingStatus tracks the review state of a water reading.
type ReadingStatus string

const (
	ReadingPending  ReadingStatus = "PENDING"
	ReadingApproved ReadingStatus = "APPROVED"
	ReadingRejected ReadingStatus = "REJECTED"
)

// WaterReading is a cold/hot meter index submitted for an apartment and billing period.
type WaterReading struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	ApartmentID  uuid.UUID     `json:"apartmentId" db:"apartment_id"`
	Period       string        `json:"period" db:"period"` // YYYY-MM
	ColdWater    float64       `json:"coldWater" db:"cold_water"`
	HotWater     float64       `json:"hotWater" db:"hot_water"`
	Status       ReadingStatus `json:"status" db:"status"`
	SubmittedBy  uuid.UUID     `json:"submittedBy" db:"submitted_by"`
	ReviewedBy   *uuid.UUID    `json:"reviewedBy,omitempty" db:"reviewed_by"`
	ReviewedAt   *time.Time    `json:"reviewedAt,omitempty" db:"reviewed_at"`
	RejectReason string        `json:"rejectReason,omitempty" db:"reject_reason"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
}

// TableName returns the table name for the WaterReading model
func (WaterReading) TableName() string {
	return "water_readings"
}

// NewWaterReading creates a pending reading.
func NewWaterReading(apartmentID, submittedBy uuid.UUID, period string, cold, hot float64) *WaterReading {
	return &WaterReading{
		ID:          uuid.New(),
		ApartmentID: apartmentID,
		Period:      period,
		ColdWater:   cold,
		HotWater:    hot,
		Status:      ReadingPending,
		SubmittedBy: submittedBy,
		CreatedAt:   time.Now(),
	}
}

// IsPending returns true while the reading awaits review
func (r *WaterReading) IsPending() bool {
	return r.Status == ReadingPending
}

// Review moves a pending reading to status, recording the reviewer.
func (r *WaterReading) Review(status ReadingStatus, reviewer uuid.UUID, reason string, at time.Time) {
	r.Status = status
	r.ReviewedBy = &reviewer
	r.ReviewedAt = &at
	r.RejectReason = reason
}
