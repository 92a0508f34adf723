package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bhakthiseva/darshan-backend/internal/database"
	"github.com/bhakthiseva/darshan-backend/internal/models"
)

// TempleHandler handles temple discovery and admin catalog management
type TempleHandler struct {
	templeRepo *database.TempleRepository
}

// NewTempleHandler creates a new temple handler
func NewTempleHandler(templeRepo *database.TempleRepository) *TempleHandler {
	return &TempleHandler{templeRepo: templeRepo}
}

// ListTemples handles GET /api/v1/temples
// Optional ?city= and ?state= filters narrow the listing.
func (h *TempleHandler) ListTemples(c *gin.Context) {
	city := c.Query("city")
	state := c.Query("state")

	temples, err := h.templeRepo.List(city, state)
	if err != nil {
		log.Printf("ERROR: Failed to list temples: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve temples",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"temples": temples,
		"count":   len(temples),
	})
}

// GetTemple handles GET /api/v1/temples/:id
func (h *TempleHandler) GetTemple(c *gin.Context) {
	templeID := c.Param("id")
	if _, err := uuid.Parse(templeID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid temple ID format",
		})
		return
	}

	temple, err := h.templeRepo.GetByID(templeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Temple not found",
			})
			return
		}
		log.Printf("ERROR: Failed to get temple %s: %v", templeID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve temple",
		})
		return
	}

	c.JSON(http.StatusOK, temple)
}

// CreateTemple handles POST /api/v1/admin/temples
func (h *TempleHandler) CreateTemple(c *gin.Context) {
	var req models.CreateTempleRequest
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

	temple := &models.Temple{
		Name:           req.Name,
		Description:    req.Description,
		City:           req.City,
		State:          req.State,
		Country:        req.Country,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Rating:         req.Rating,
		PointValue:     req.PointValue,
		DarshanEnabled: req.DarshanEnabled,
		ImageURL:       req.ImageURL,
	}

	if err := h.templeRepo.Create(temple); err != nil {
		log.Printf("ERROR: Failed to create temple %s: %v", req.Name, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to create temple",
		})
		return
	}

	log.Printf("INFO: Temple created - ID: %s, Name: %s", temple.ID, temple.Name)
	c.JSON(http.StatusCreated, temple)
}

// UpdateTemple handles PATCH /api/v1/admin/temples/:id
func (h *TempleHandler) UpdateTemple(c *gin.Context) {
	templeID := c.Param("id")
	if _, err := uuid.Parse(templeID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid temple ID format",
		})
		return
	}

	var req models.UpdateTempleRequest
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

	temple, err := h.templeRepo.Update(templeID, &req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Temple not found",
			})
			return
		}
		log.Printf("ERROR: Failed to update temple %s: %v", templeID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update temple",
		})
		return
	}

	c.JSON(http.StatusOK, temple)
}
