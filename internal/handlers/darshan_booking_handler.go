package handlers

import (
	"database/sql"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bhakthiseva/darshan-backend/internal/database"
	"github.com/bhakthiseva/darshan-backend/internal/middleware"
	"github.com/bhakthiseva/darshan-backend/internal/models"
	"github.com/bhakthiseva/darshan-backend/pkg/invoice"
)

// DarshanBookingHandler handles darshan slot bookings and their realtime
// status stream
type DarshanBookingHandler struct {
	bookingRepo *database.DarshanBookingRepository
	templeRepo  *database.TempleRepository
	eventBus    *database.BookingEventBus
}

// NewDarshanBookingHandler creates a new darshan booking handler
func NewDarshanBookingHandler(bookingRepo *database.DarshanBookingRepository, templeRepo *database.TempleRepository, eventBus *database.BookingEventBus) *DarshanBookingHandler {
	return &DarshanBookingHandler{
		bookingRepo: bookingRepo,
		templeRepo:  templeRepo,
		eventBus:    eventBus,
	}
}

// CreateBooking handles POST /api/v1/bookings
// Every booking starts awaiting verification, including free darshans.
func (h *DarshanBookingHandler) CreateBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CreateDarshanBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	temple, err := h.templeRepo.GetByID(req.TempleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Temple not found",
			})
			return
		}
		log.Printf("ERROR: Failed to get temple %s: %v", req.TempleID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve temple",
		})
		return
	}

	if !temple.DarshanEnabled {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "darshan_unavailable",
			Message: "This temple does not accept darshan bookings",
		})
		return
	}

	invoiceNumber, err := invoice.Generate(time.Now())
	if err != nil {
		log.Printf("ERROR: Failed to generate invoice number: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create booking",
		})
		return
	}

	booking := &models.DarshanBooking{
		TempleID:      temple.ID,
		UserID:        userCtx.UserID.String(),
		InvoiceNumber: invoiceNumber,
		DevoteeName:   req.DevoteeName,
		DevoteePhone:  req.DevoteePhone,
		DevoteeEmail:  req.DevoteeEmail,
		DarshanType:   req.DarshanType,
		AmountPaid:    req.AmountPaid,
		DarshanDate:   req.DarshanDate,
	}

	if err := h.bookingRepo.Create(booking); err != nil {
		log.Printf("ERROR: Failed to create booking for user %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to create booking",
		})
		return
	}

	log.Printf("INFO: Booking created - Invoice: %s, Temple: %s, Type: %s, User: %s",
		booking.InvoiceNumber, temple.ID, booking.DarshanType, userCtx.UserID)
	c.JSON(http.StatusCreated, booking)
}

// MyBookings handles GET /api/v1/bookings
func (h *DarshanBookingHandler) MyBookings(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	bookings, err := h.bookingRepo.GetByUserID(userCtx.UserID.String())
	if err != nil {
		log.Printf("ERROR: Failed to list bookings for user %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve bookings",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// GetBooking handles GET /api/v1/bookings/:id
// Owners see their own bookings; admins see any.
func (h *DarshanBookingHandler) GetBooking(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	booking, ok := h.loadBookingAuthorized(c, userCtx)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking": booking,
		"overdue": booking.IsOverdue(time.Now()),
	})
}

// StreamBookingEvents handles GET /api/v1/bookings/:id/events
// Server-sent events stream of status changes for the ticket view. The
// subscription tears down when the client disconnects.
func (h *DarshanBookingHandler) StreamBookingEvents(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	booking, ok := h.loadBookingAuthorized(c, userCtx)
	if !ok {
		return
	}

	events, err := h.eventBus.Subscribe(c.Request.Context(), booking.ID)
	if err != nil {
		log.Printf("ERROR: Failed to subscribe to booking %s: %v", booking.ID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "subscription_failed",
			Message: "Failed to open event stream",
		})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	// Send the current status first so a late subscriber is never stale
	c.SSEvent("status", models.BookingEvent{
		BookingID: booking.ID,
		Status:    booking.Status,
		UpdatedAt: booking.UpdatedAt,
	})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		event, open := <-events
		if !open {
			return false
		}
		c.SSEvent("status", event)
		return true
	})
}

// UpdateBookingStatus handles PATCH /api/v1/admin/bookings/:id/status
// Transitions are one-way: awaiting bookings move to a terminal state and
// stay there. The new status is published to the booking's event channel.
func (h *DarshanBookingHandler) UpdateBookingStatus(c *gin.Context) {
	bookingID := c.Param("id")
	if _, err := uuid.Parse(bookingID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid booking ID format",
		})
		return
	}

	var req models.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "status is required",
		})
		return
	}

	if !req.Status.IsValid() || req.Status == models.BookingStatusAwaiting {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "status must be confirmed, cancelled or refunded",
		})
		return
	}

	booking, err := h.bookingRepo.TransitionStatus(bookingID, req.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Booking not found",
			})
			return
		}
		if errors.Is(err, models.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "invalid_transition",
				Message: "Booking has already been resolved",
			})
			return
		}
		log.Printf("ERROR: Failed to transition booking %s to %s: %v", bookingID, req.Status, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update booking status",
		})
		return
	}

	event := models.BookingEvent{
		BookingID: booking.ID,
		Status:    booking.Status,
		UpdatedAt: booking.UpdatedAt,
	}
	if err := h.eventBus.Publish(c.Request.Context(), event); err != nil {
		// The transition is already durable; subscribers will catch up on
		// their next snapshot fetch.
		log.Printf("WARN: Failed to publish status event for booking %s: %v", booking.ID, err)
	}

	log.Printf("INFO: Booking %s transitioned to %s", booking.ID, booking.Status)
	c.JSON(http.StatusOK, booking)
}

// loadBookingAuthorized fetches a booking by path ID and enforces that the
// caller owns it or is an admin. Writes the error response itself.
func (h *DarshanBookingHandler) loadBookingAuthorized(c *gin.Context, userCtx middleware.UserContext) (*models.DarshanBooking, bool) {
	bookingID := c.Param("id")
	if _, err := uuid.Parse(bookingID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid booking ID format",
		})
		return nil, false
	}

	booking, err := h.bookingRepo.GetByID(bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Booking not found",
			})
			return nil, false
		}
		log.Printf("ERROR: Failed to get booking %s: %v", bookingID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve booking",
		})
		return nil, false
	}

	isAdmin := false
	for _, role := range userCtx.Roles {
		if role == models.RoleAdmin {
			isAdmin = true
			break
		}
	}

	if booking.UserID != userCtx.UserID.String() && !isAdmin {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You don't have permission to access this booking",
		})
		return nil, false
	}

	return booking, true
}
