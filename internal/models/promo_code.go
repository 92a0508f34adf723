package models

import (
	"errors"
	"strings"
	"time"
)

// PromoCode represents a redeemable discount code. Codes are stored
// upper-cased and matched case-insensitively.
type PromoCode struct {
	ID              string     `json:"id" db:"id"`
	Code            string     `json:"code" db:"code"`
	DiscountPercent int        `json:"discount_percent" db:"discount_percent"`
	ValidFrom       *time.Time `json:"valid_from,omitempty" db:"valid_from"`
	ValidUntil      *time.Time `json:"valid_until,omitempty" db:"valid_until"`
	MaxUses         *int       `json:"max_uses,omitempty" db:"max_uses"`
	CurrentUses     int        `json:"current_uses" db:"current_uses"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// NormalizePromoCode upper-cases and trims a user-entered code
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsExhausted reports whether the usage cap has been reached
func (p *PromoCode) IsExhausted() bool {
	return p.MaxUses != nil && p.CurrentUses >= *p.MaxUses
}

// InWindow reports whether the code's validity window covers the given time.
// A missing bound is treated as open on that side.
func (p *PromoCode) InWindow(now time.Time) bool {
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return false
	}
	return true
}

// CreatePromoCodeRequest represents the admin request to create a promo code
type CreatePromoCodeRequest struct {
	Code            string     `json:"code" binding:"required"`
	DiscountPercent int        `json:"discount_percent" binding:"required"`
	ValidFrom       *time.Time `json:"valid_from,omitempty"`
	ValidUntil      *time.Time `json:"valid_until,omitempty"`
	MaxUses         *int       `json:"max_uses,omitempty"`
	IsActive        *bool      `json:"is_active,omitempty"`
}

// Validate validates the create promo code request
func (r *CreatePromoCodeRequest) Validate() error {
	if NormalizePromoCode(r.Code) == "" {
		return errors.New("code cannot be empty")
	}
	if r.DiscountPercent < 1 || r.DiscountPercent > 100 {
		return errors.New("discount_percent must be between 1 and 100")
	}
	if r.MaxUses != nil && *r.MaxUses < 1 {
		return errors.New("max_uses must be at least 1")
	}
	if r.ValidFrom != nil && r.ValidUntil != nil && r.ValidUntil.Before(*r.ValidFrom) {
		return errors.New("valid_until cannot be before valid_from")
	}
	return nil
}
