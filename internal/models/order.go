package models

import (
	"errors"
	"time"
)

// OrderStatus represents the fulfilment status of a storefront order
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusProcessing      OrderStatus = "processing"
	OrderStatusCompleted       OrderStatus = "completed"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// IsValid reports whether the status is a known order status
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusAwaitingPayment, OrderStatusProcessing,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order represents a devotional-product purchase
type Order struct {
	ID              string      `json:"id" db:"id"`
	UserID          string      `json:"user_id" db:"user_id"`
	ProductID       string      `json:"product_id" db:"product_id"`
	Quantity        int         `json:"quantity" db:"quantity"`
	Subtotal        float64     `json:"subtotal" db:"subtotal"`
	DiscountPercent int         `json:"discount_percent" db:"discount_percent"`
	DiscountSource  *string     `json:"discount_source,omitempty" db:"discount_source"`
	TotalPrice      float64     `json:"total_price" db:"total_price"`
	PromoCode       *string     `json:"promo_code,omitempty" db:"promo_code"`
	Status          OrderStatus `json:"status" db:"status"`
	CustomerName    string      `json:"customer_name" db:"customer_name"`
	CustomerEmail   string      `json:"customer_email" db:"customer_email"`
	ShippingAddress *string     `json:"shipping_address,omitempty" db:"shipping_address"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// CheckoutRequest represents the request to place an order
type CheckoutRequest struct {
	ProductID       string  `json:"product_id" binding:"required"`
	Quantity        int     `json:"quantity" binding:"required,min=1"`
	PromoCode       *string `json:"promo_code,omitempty"`
	CustomerName    string  `json:"customer_name" binding:"required"`
	CustomerEmail   string  `json:"customer_email" binding:"required"`
	ShippingAddress *string `json:"shipping_address,omitempty"`
}

// Validate validates the checkout request
func (r *CheckoutRequest) Validate() error {
	if r.Quantity < 1 {
		return errors.New("quantity must be at least 1")
	}
	if r.Quantity > 50 {
		return errors.New("maximum 50 items per order")
	}
	return nil
}

// UpdateOrderStatusRequest represents an admin order status change
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}
