package models

import (
	"errors"
	"time"
)

// Product represents a devotional product in the storefront
type Product struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Stock       int       `json:"stock" db:"stock"`
	ImageURL    *string   `json:"image_url,omitempty" db:"image_url"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CreateProductRequest represents the admin request to add a product
type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price" binding:"required"`
	Stock       int     `json:"stock"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// Validate validates the create product request
func (r *CreateProductRequest) Validate() error {
	if r.Price <= 0 {
		return errors.New("price must be positive")
	}
	if r.Stock < 0 {
		return errors.New("stock cannot be negative")
	}
	return nil
}
