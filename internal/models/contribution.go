package models

import "time"

// ContributionStatus represents the review status of a user-submitted temple
type ContributionStatus string

const (
	ContributionStatusPending  ContributionStatus = "pending"
	ContributionStatusApproved ContributionStatus = "approved"
	ContributionStatusRejected ContributionStatus = "rejected"
	ContributionStatusWaiting  ContributionStatus = "waiting"
)

// IsValid reports whether the status is a known contribution status
func (s ContributionStatus) IsValid() bool {
	switch s {
	case ContributionStatusPending, ContributionStatusApproved,
		ContributionStatusRejected, ContributionStatusWaiting:
		return true
	}
	return false
}

// Contribution represents a user-submitted temple candidate awaiting admin
// review. Approved contributions are promoted into canonical temples.
type Contribution struct {
	ID          string             `json:"id" db:"id"`
	UserID      string             `json:"user_id" db:"user_id"`
	TempleName  string             `json:"temple_name" db:"temple_name"`
	Description *string            `json:"description,omitempty" db:"description"`
	City        string             `json:"city" db:"city"`
	State       string             `json:"state" db:"state"`
	Country     string             `json:"country" db:"country"`
	Latitude    float64            `json:"latitude" db:"latitude"`
	Longitude   float64            `json:"longitude" db:"longitude"`
	MediaURL    *string            `json:"media_url,omitempty" db:"media_url"`
	Status      ContributionStatus `json:"status" db:"status"`
	TempleID    *string            `json:"temple_id,omitempty" db:"temple_id"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" db:"updated_at"`
}

// CreateContributionRequest represents a user temple submission
type CreateContributionRequest struct {
	TempleName  string  `json:"temple_name" binding:"required"`
	Description *string `json:"description,omitempty"`
	City        string  `json:"city" binding:"required"`
	State       string  `json:"state" binding:"required"`
	Country     string  `json:"country" binding:"required"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	MediaURL    *string `json:"media_url,omitempty"`
}
