package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bhakthiseva/darshan-backend/internal/database"
	"github.com/bhakthiseva/darshan-backend/internal/models"
)

// AdminHandler handles back-office dashboards
type AdminHandler struct {
	bookingRepo *database.DarshanBookingRepository
	visitRepo   *database.TempleVisitRepository
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(bookingRepo *database.DarshanBookingRepository, visitRepo *database.TempleVisitRepository) *AdminHandler {
	return &AdminHandler{
		bookingRepo: bookingRepo,
		visitRepo:   visitRepo,
	}
}

// AdminBookingView is a booking row decorated for the verification queue
type AdminBookingView struct {
	database.AdminBookingRow
	Overdue bool `json:"overdue"`
}

// ListBookings handles GET /api/v1/admin/bookings
// Optional ?status= filters the queue. Awaiting bookings whose darshan date
// has passed are flagged overdue; the flag is advisory and the booking keeps
// its status until an admin resolves it.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !models.BookingStatus(status).IsValid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "status must be one of awaiting, confirmed, cancelled, refunded",
		})
		return
	}

	rows, err := h.bookingRepo.GetAllWithTemple(status)
	if err != nil {
		log.Printf("ERROR: Failed to list bookings: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve bookings",
		})
		return
	}

	now := time.Now()
	views := make([]AdminBookingView, 0, len(rows))
	for _, row := range rows {
		views = append(views, AdminBookingView{
			AdminBookingRow: row,
			Overdue:         row.IsOverdue(now),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": views,
		"count":    len(views),
	})
}

// ListUserEngagement handles GET /api/v1/admin/users/engagement
// Summarizes every user's visit history and Bhakthi points for the back
// office.
func (h *AdminHandler) ListUserEngagement(c *gin.Context) {
	aggregates, err := h.visitRepo.GetUserAggregates()
	if err != nil {
		log.Printf("ERROR: Failed to aggregate user engagement: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to aggregate user activity",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": aggregates,
		"count": len(aggregates),
	})
}
