package models

import "time"

// TempleVisit represents a user-logged temple visit. Points only count
// toward the Bhakthi ledger once an admin has verified the visit.
type TempleVisit struct {
	ID           string    `json:"id" db:"id"`
	TempleID     string    `json:"temple_id" db:"temple_id"`
	UserID       string    `json:"user_id" db:"user_id"`
	PointsEarned int       `json:"points_earned" db:"points_earned"`
	Verified     bool      `json:"verified" db:"verified"`
	PhotoURL     *string   `json:"photo_url,omitempty" db:"photo_url"`
	VisitDate    time.Time `json:"visit_date" db:"visit_date"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// LogVisitRequest represents the request to log a temple visit
type LogVisitRequest struct {
	TempleID  string    `json:"temple_id" binding:"required"`
	PhotoURL  *string   `json:"photo_url,omitempty"`
	VisitDate time.Time `json:"visit_date" binding:"required"`
}

// VisitAggregate summarizes a user's visit history for the admin back office
type VisitAggregate struct {
	UserID         string `json:"user_id" db:"user_id"`
	Email          string `json:"email" db:"email"`
	Name           string `json:"name" db:"name"`
	TotalVisits    int    `json:"total_visits" db:"total_visits"`
	VerifiedVisits int    `json:"verified_visits" db:"verified_visits"`
	TotalPoints    int    `json:"total_points" db:"total_points"`
}
