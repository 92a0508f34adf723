package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingStatusTransitions(t *testing.T) {
	t.Run("Awaiting To Confirmed", func(t *testing.T) {
		booking := &DarshanBooking{Status: BookingStatusAwaiting}

		err := booking.TransitionTo(BookingStatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, BookingStatusConfirmed, booking.Status)
	})

	t.Run("Awaiting To Cancelled", func(t *testing.T) {
		booking := &DarshanBooking{Status: BookingStatusAwaiting}

		err := booking.TransitionTo(BookingStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, BookingStatusCancelled, booking.Status)
	})

	t.Run("Awaiting To Refunded", func(t *testing.T) {
		booking := &DarshanBooking{Status: BookingStatusAwaiting}

		err := booking.TransitionTo(BookingStatusRefunded)
		require.NoError(t, err)
		assert.Equal(t, BookingStatusRefunded, booking.Status)
	})

	t.Run("Terminal States Are Final", func(t *testing.T) {
		for _, status := range []BookingStatus{BookingStatusConfirmed, BookingStatusCancelled, BookingStatusRefunded} {
			booking := &DarshanBooking{Status: status}

			err := booking.TransitionTo(BookingStatusCancelled)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, status, booking.Status, "status must not change on a rejected transition")
		}
	})

	t.Run("Cannot Return To Awaiting", func(t *testing.T) {
		booking := &DarshanBooking{Status: BookingStatusConfirmed}

		err := booking.TransitionTo(BookingStatusAwaiting)
		assert.Error(t, err)
		assert.Equal(t, BookingStatusConfirmed, booking.Status)
	})

	t.Run("Unknown Status Rejected", func(t *testing.T) {
		booking := &DarshanBooking{Status: BookingStatusAwaiting}

		err := booking.TransitionTo(BookingStatus("shipped"))
		assert.Error(t, err)
		assert.Equal(t, BookingStatusAwaiting, booking.Status)
	})
}

func TestBookingStatusIsTerminal(t *testing.T) {
	assert.False(t, BookingStatusAwaiting.IsTerminal())
	assert.True(t, BookingStatusConfirmed.IsTerminal())
	assert.True(t, BookingStatusCancelled.IsTerminal())
	assert.True(t, BookingStatusRefunded.IsTerminal())
}

func TestBookingIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	t.Run("Awaiting Past Date Is Overdue", func(t *testing.T) {
		booking := &DarshanBooking{Status: BookingStatusAwaiting, DarshanDate: past}
		assert.True(t, booking.IsOverdue(now))
	})

	t.Run("Awaiting Future Date Is Not Overdue", func(t *testing.T) {
		booking := &DarshanBooking{Status: BookingStatusAwaiting, DarshanDate: future}
		assert.False(t, booking.IsOverdue(now))
	})

	t.Run("Resolved Bookings Are Never Overdue", func(t *testing.T) {
		booking := &DarshanBooking{Status: BookingStatusConfirmed, DarshanDate: past}
		assert.False(t, booking.IsOverdue(now))
	})
}

func TestCreateDarshanBookingRequestValidate(t *testing.T) {
	base := CreateDarshanBookingRequest{
		TempleID:     "temple-1",
		DevoteeName:  "Radha Sharma",
		DevoteePhone: "+919876543210",
		DarshanType:  DarshanTypeStandard1,
		AmountPaid:   250,
		DarshanDate:  time.Now().Add(48 * time.Hour),
	}

	t.Run("Valid Paid Tier", func(t *testing.T) {
		req := base
		assert.NoError(t, req.Validate())
	})

	t.Run("Valid Free Tier", func(t *testing.T) {
		req := base
		req.DarshanType = DarshanTypeFree
		req.AmountPaid = 0
		assert.NoError(t, req.Validate())
	})

	t.Run("Free Tier With Payment Rejected", func(t *testing.T) {
		req := base
		req.DarshanType = DarshanTypeFree
		req.AmountPaid = 100
		assert.Error(t, req.Validate())
	})

	t.Run("Negative Amount Rejected", func(t *testing.T) {
		req := base
		req.AmountPaid = -10
		assert.Error(t, req.Validate())
	})

	t.Run("Unknown Tier Rejected", func(t *testing.T) {
		req := base
		req.DarshanType = DarshanType("platinum")
		assert.Error(t, req.Validate())
	})
}
