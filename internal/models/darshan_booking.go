package models

import (
	"errors"
	"fmt"
	"time"
)

// DarshanType represents the tier of a darshan booking
type DarshanType string

const (
	DarshanTypeFree      DarshanType = "free"
	DarshanTypeStandard1 DarshanType = "standard_tier_1"
	DarshanTypeStandard2 DarshanType = "standard_tier_2"
	DarshanTypeVIP       DarshanType = "vip"
)

// BookingStatus represents the lifecycle status of a darshan booking
type BookingStatus string

const (
	BookingStatusAwaiting  BookingStatus = "awaiting"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusRefunded  BookingStatus = "refunded"
)

// ErrInvalidTransition is returned when a booking status change is not allowed
var ErrInvalidTransition = errors.New("booking is in a terminal state and cannot be transitioned")

// DarshanBooking represents a devotee's temple visit slot reservation.
// Bookings are never deleted; terminal states are retained for history.
type DarshanBooking struct {
	ID            string        `json:"id" db:"id"`
	TempleID      string        `json:"temple_id" db:"temple_id"`
	UserID        string        `json:"user_id" db:"user_id"`
	InvoiceNumber string        `json:"invoice_number" db:"invoice_number"`
	DevoteeName   string        `json:"devotee_name" db:"devotee_name"`
	DevoteePhone  string        `json:"devotee_phone" db:"devotee_phone"`
	DevoteeEmail  *string       `json:"devotee_email,omitempty" db:"devotee_email"`
	DarshanType   DarshanType   `json:"darshan_type" db:"darshan_type"`
	AmountPaid    float64       `json:"amount_paid" db:"amount_paid"`
	DarshanDate   time.Time     `json:"darshan_date" db:"darshan_date"`
	Status        BookingStatus `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// CreateDarshanBookingRequest represents the request to create a booking
type CreateDarshanBookingRequest struct {
	TempleID     string      `json:"temple_id" binding:"required"`
	DevoteeName  string      `json:"devotee_name" binding:"required"`
	DevoteePhone string      `json:"devotee_phone" binding:"required"`
	DevoteeEmail *string     `json:"devotee_email,omitempty"`
	DarshanType  DarshanType `json:"darshan_type" binding:"required"`
	AmountPaid   float64     `json:"amount_paid"`
	DarshanDate  time.Time   `json:"darshan_date" binding:"required"`
}

// Validate validates the create booking request
func (r *CreateDarshanBookingRequest) Validate() error {
	switch r.DarshanType {
	case DarshanTypeFree, DarshanTypeStandard1, DarshanTypeStandard2, DarshanTypeVIP:
	default:
		return fmt.Errorf("invalid darshan_type: %s", r.DarshanType)
	}

	if r.AmountPaid < 0 {
		return errors.New("amount_paid cannot be negative")
	}

	if r.DarshanType == DarshanTypeFree && r.AmountPaid != 0 {
		return errors.New("free darshan cannot have an amount paid")
	}

	return nil
}

// UpdateBookingStatusRequest represents an admin status transition request
type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status" binding:"required"`
}

// IsTerminal reports whether the status allows no further transitions
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCancelled || s == BookingStatusRefunded
}

// IsValid reports whether the status is a known lifecycle state
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusAwaiting, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether a transition to target is legal.
// The only legal transitions are awaiting -> confirmed/cancelled/refunded.
func (b *DarshanBooking) CanTransitionTo(target BookingStatus) bool {
	if b.Status != BookingStatusAwaiting {
		return false
	}
	return target.IsTerminal()
}

// TransitionTo applies a status transition. Re-opening a terminal booking
// requires creating a new booking, so every transition out of awaiting is
// final.
func (b *DarshanBooking) TransitionTo(target BookingStatus) error {
	if !target.IsValid() {
		return fmt.Errorf("unknown booking status: %s", target)
	}
	if target == BookingStatusAwaiting {
		return errors.New("bookings cannot be transitioned back to awaiting")
	}
	if !b.CanTransitionTo(target) {
		return ErrInvalidTransition
	}

	b.Status = target
	b.UpdatedAt = time.Now()
	return nil
}

// IsOverdue reports whether an awaiting booking's darshan date has passed.
// This is advisory for the admin queue; it never changes the status itself.
func (b *DarshanBooking) IsOverdue(now time.Time) bool {
	return b.Status == BookingStatusAwaiting && b.DarshanDate.Before(now)
}

// BookingEvent is published on the booking's realtime channel whenever the
// status changes, so the ticket view can update without polling.
type BookingEvent struct {
	BookingID string        `json:"booking_id"`
	Status    BookingStatus `json:"status"`
	UpdatedAt time.Time     `json:"updated_at"`
}
