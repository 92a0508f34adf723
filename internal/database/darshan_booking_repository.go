package database

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/bhakthiseva/darshan-backend/internal/models"
)

// DarshanBookingRepository handles database operations for the
// darshan_bookings table. Bookings are never deleted.
type DarshanBookingRepository struct {
	db DB
}

// NewDarshanBookingRepository creates a new DarshanBookingRepository
func NewDarshanBookingRepository(db DB) *DarshanBookingRepository {
	return &DarshanBookingRepository{db: db}
}

// Create creates a new booking. The status is forced to awaiting here;
// manual admin verification is mandatory for every booking, free tier
// included.
func (r *DarshanBookingRepository) Create(booking *models.DarshanBooking) error {
	query := `
		INSERT INTO darshan_bookings (
			id, temple_id, user_id, invoice_number,
			devotee_name, devotee_phone, devotee_email,
			darshan_type, amount_paid, darshan_date, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		RETURNING created_at, updated_at
	`

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	booking.Status = models.BookingStatusAwaiting

	return r.db.QueryRow(
		query,
		booking.ID, booking.TempleID, booking.UserID, booking.InvoiceNumber,
		booking.DevoteeName, booking.DevoteePhone, booking.DevoteeEmail,
		booking.DarshanType, booking.AmountPaid, booking.DarshanDate, booking.Status,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
}

// GetByID retrieves a booking by ID
func (r *DarshanBookingRepository) GetByID(bookingID string) (*models.DarshanBooking, error) {
	query := `
		SELECT id, temple_id, user_id, invoice_number,
			   devotee_name, devotee_phone, devotee_email,
			   darshan_type, amount_paid, darshan_date, status,
			   created_at, updated_at
		FROM darshan_bookings
		WHERE id = $1
	`

	return r.scanBooking(r.db.QueryRow(query, bookingID))
}

// GetByInvoiceNumber retrieves a booking by its invoice number
func (r *DarshanBookingRepository) GetByInvoiceNumber(invoice string) (*models.DarshanBooking, error) {
	query := `
		SELECT id, temple_id, user_id, invoice_number,
			   devotee_name, devotee_phone, devotee_email,
			   darshan_type, amount_paid, darshan_date, status,
			   created_at, updated_at
		FROM darshan_bookings
		WHERE invoice_number = $1
	`

	return r.scanBooking(r.db.QueryRow(query, invoice))
}

// GetByUserID retrieves all bookings for a user, newest first
func (r *DarshanBookingRepository) GetByUserID(userID string) ([]models.DarshanBooking, error) {
	query := `
		SELECT id, temple_id, user_id, invoice_number,
			   devotee_name, devotee_phone, devotee_email,
			   darshan_type, amount_paid, darshan_date, status,
			   created_at, updated_at
		FROM darshan_bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// AdminBookingRow is a booking joined with its temple for the back office
type AdminBookingRow struct {
	models.DarshanBooking
	TempleName string `json:"temple_name" db:"temple_name"`
	TempleCity string `json:"temple_city" db:"temple_city"`
}

// GetAllWithTemple retrieves every booking joined with its temple,
// optionally filtered by status, newest first. Admin only.
func (r *DarshanBookingRepository) GetAllWithTemple(status string) ([]AdminBookingRow, error) {
	query := `
		SELECT b.id, b.temple_id, b.user_id, b.invoice_number,
			   b.devotee_name, b.devotee_phone, b.devotee_email,
			   b.darshan_type, b.amount_paid, b.darshan_date, b.status,
			   b.created_at, b.updated_at,
			   t.name AS temple_name, t.city AS temple_city
		FROM darshan_bookings b
		JOIN temples t ON t.id = b.temple_id
		WHERE ($1 = '' OR b.status = $1)
		ORDER BY b.created_at DESC
	`

	rows, err := r.db.Query(query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []AdminBookingRow{}
	for rows.Next() {
		var row AdminBookingRow
		var devoteeEmail sql.NullString

		err := rows.Scan(
			&row.ID, &row.TempleID, &row.UserID, &row.InvoiceNumber,
			&row.DevoteeName, &row.DevoteePhone, &devoteeEmail,
			&row.DarshanType, &row.AmountPaid, &row.DarshanDate, &row.Status,
			&row.CreatedAt, &row.UpdatedAt,
			&row.TempleName, &row.TempleCity,
		)
		if err != nil {
			return nil, err
		}
		if devoteeEmail.Valid {
			row.DevoteeEmail = &devoteeEmail.String
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

// TransitionStatus moves a booking out of awaiting with a conditional update,
// so two admins acting at once cannot both win. Returns ErrInvalidTransition
// if the booking exists but is already terminal, sql.ErrNoRows if it does
// not exist.
func (r *DarshanBookingRepository) TransitionStatus(bookingID string, target models.BookingStatus) (*models.DarshanBooking, error) {
	query := `
		UPDATE darshan_bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'awaiting'
		RETURNING id, temple_id, user_id, invoice_number,
				  devotee_name, devotee_phone, devotee_email,
				  darshan_type, amount_paid, darshan_date, status,
				  created_at, updated_at
	`

	booking, err := r.scanBooking(r.db.QueryRow(query, bookingID, target))
	if err == nil {
		return booking, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Nothing matched: distinguish a missing booking from a lost race
	if _, getErr := r.GetByID(bookingID); getErr != nil {
		return nil, getErr
	}
	return nil, models.ErrInvalidTransition
}

// scanBooking scans a single booking
func (r *DarshanBookingRepository) scanBooking(row scanner) (*models.DarshanBooking, error) {
	booking := &models.DarshanBooking{}
	var devoteeEmail sql.NullString

	err := row.Scan(
		&booking.ID, &booking.TempleID, &booking.UserID, &booking.InvoiceNumber,
		&booking.DevoteeName, &booking.DevoteePhone, &devoteeEmail,
		&booking.DarshanType, &booking.AmountPaid, &booking.DarshanDate, &booking.Status,
		&booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if devoteeEmail.Valid {
		booking.DevoteeEmail = &devoteeEmail.String
	}

	return booking, nil
}

// scanBookings scans multiple bookings from rows
func (r *DarshanBookingRepository) scanBookings(rows *sql.Rows) ([]models.DarshanBooking, error) {
	bookings := []models.DarshanBooking{}

	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}
