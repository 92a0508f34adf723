package models

import (
	"errors"
	"time"
)

// Temple represents a temple surfaced in discovery and bookable for darshan
type Temple struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Description    *string   `json:"description,omitempty" db:"description"`
	City           string    `json:"city" db:"city"`
	State          string    `json:"state" db:"state"`
	Country        string    `json:"country" db:"country"`
	Latitude       float64   `json:"latitude" db:"latitude"`
	Longitude      float64   `json:"longitude" db:"longitude"`
	Rating         float64   `json:"rating" db:"rating"`
	PointValue     int       `json:"point_value" db:"point_value"`
	DarshanEnabled bool      `json:"darshan_enabled" db:"darshan_enabled"`
	ImageURL       *string   `json:"image_url,omitempty" db:"image_url"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// CreateTempleRequest represents the admin request to add a temple
type CreateTempleRequest struct {
	Name           string  `json:"name" binding:"required"`
	Description    *string `json:"description,omitempty"`
	City           string  `json:"city" binding:"required"`
	State          string  `json:"state" binding:"required"`
	Country        string  `json:"country" binding:"required"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Rating         float64 `json:"rating"`
	PointValue     int     `json:"point_value"`
	DarshanEnabled bool    `json:"darshan_enabled"`
	ImageURL       *string `json:"image_url,omitempty"`
}

// Validate validates the create temple request
func (r *CreateTempleRequest) Validate() error {
	if r.Latitude < -90 || r.Latitude > 90 {
		return errors.New("latitude must be between -90 and 90")
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		return errors.New("longitude must be between -180 and 180")
	}
	if r.Rating < 0 || r.Rating > 5 {
		return errors.New("rating must be between 0 and 5")
	}
	if r.PointValue < 0 {
		return errors.New("point_value cannot be negative")
	}
	return nil
}

// UpdateTempleRequest represents the admin request to edit a temple.
// All fields are optional; only supplied fields are updated.
type UpdateTempleRequest struct {
	Name           *string  `json:"name,omitempty"`
	Description    *string  `json:"description,omitempty"`
	City           *string  `json:"city,omitempty"`
	State          *string  `json:"state,omitempty"`
	Country        *string  `json:"country,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
	PointValue     *int     `json:"point_value,omitempty"`
	DarshanEnabled *bool    `json:"darshan_enabled,omitempty"`
	ImageURL       *string  `json:"image_url,omitempty"`
}

// Validate validates the update temple request
func (r *UpdateTempleRequest) Validate() error {
	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		return errors.New("latitude must be between -90 and 90")
	}
	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		return errors.New("longitude must be between -180 and 180")
	}
	if r.Rating != nil && (*r.Rating < 0 || *r.Rating > 5) {
		return errors.New("rating must be between 0 and 5")
	}
	if r.PointValue != nil && *r.PointValue < 0 {
		return errors.New("point_value cannot be negative")
	}
	return nil
}
