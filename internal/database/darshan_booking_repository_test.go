package database

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhakthiseva/darshan-backend/internal/models"
)

var bookingColumns = []string{
	"id", "temple_id", "user_id", "invoice_number",
	"devotee_name", "devotee_phone", "devotee_email",
	"darshan_type", "amount_paid", "darshan_date", "status",
	"created_at", "updated_at",
}

func bookingRow(id string, status models.BookingStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(bookingColumns).AddRow(
		id, uuid.New().String(), uuid.New().String(), "INV-20260315-a1b2c3d4e5f6",
		"Radha Sharma", "+919876543210", nil,
		string(models.DarshanTypeStandard1), 250.0, now.Add(48*time.Hour), string(status),
		now, now,
	)
}

func TestBookingTransitionStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDarshanBookingRepository(&mockDatabase{db: db})

	t.Run("Awaiting Booking Transitions", func(t *testing.T) {
		bookingID := uuid.New().String()
		mock.ExpectQuery(`UPDATE darshan_bookings`).
			WithArgs(bookingID, string(models.BookingStatusConfirmed)).
			WillReturnRows(bookingRow(bookingID, models.BookingStatusConfirmed))

		booking, err := repo.TransitionStatus(bookingID, models.BookingStatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Resolved Booking Reports Lost Race", func(t *testing.T) {
		bookingID := uuid.New().String()
		// Conditional update matches nothing, follow-up fetch finds the row
		mock.ExpectQuery(`UPDATE darshan_bookings`).
			WithArgs(bookingID, string(models.BookingStatusCancelled)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT id, temple_id, user_id`).
			WithArgs(bookingID).
			WillReturnRows(bookingRow(bookingID, models.BookingStatusConfirmed))

		_, err := repo.TransitionStatus(bookingID, models.BookingStatusCancelled)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing Booking", func(t *testing.T) {
		bookingID := uuid.New().String()
		mock.ExpectQuery(`UPDATE darshan_bookings`).
			WithArgs(bookingID, string(models.BookingStatusConfirmed)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT id, temple_id, user_id`).
			WithArgs(bookingID).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.TransitionStatus(bookingID, models.BookingStatusConfirmed)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestBookingCreateForcesAwaiting(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDarshanBookingRepository(&mockDatabase{db: db})

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO darshan_bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	booking := &models.DarshanBooking{
		TempleID:      uuid.New().String(),
		UserID:        uuid.New().String(),
		InvoiceNumber: "INV-20260315-a1b2c3d4e5f6",
		DevoteeName:   "Radha Sharma",
		DevoteePhone:  "+919876543210",
		DarshanType:   models.DarshanTypeFree,
		DarshanDate:   now.Add(48 * time.Hour),
		Status:        models.BookingStatusConfirmed, // caller-supplied status is ignored
	}

	err = repo.Create(booking)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusAwaiting, booking.Status,
		"every new booking starts awaiting verification")
	assert.NotEmpty(t, booking.ID)
}
