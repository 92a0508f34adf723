package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bhakthiseva/darshan-backend/internal/database"
	"github.com/bhakthiseva/darshan-backend/internal/middleware"
	"github.com/bhakthiseva/darshan-backend/internal/models"
	"github.com/bhakthiseva/darshan-backend/pkg/validator"
)

// ContributionHandler handles user-submitted temples and their review queue
type ContributionHandler struct {
	contributionRepo  *database.ContributionRepository
	templeRepo        *database.TempleRepository
	contactValidator  *validator.ContactValidator
	defaultPointValue int
}

// NewContributionHandler creates a new contribution handler
func NewContributionHandler(contributionRepo *database.ContributionRepository, templeRepo *database.TempleRepository, contactValidator *validator.ContactValidator, defaultPointValue int) *ContributionHandler {
	return &ContributionHandler{
		contributionRepo:  contributionRepo,
		templeRepo:        templeRepo,
		contactValidator:  contactValidator,
		defaultPointValue: defaultPointValue,
	}
}

// SubmitContribution handles POST /api/v1/contributions
func (h *ContributionHandler) SubmitContribution(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CreateContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	if err := h.contactValidator.ValidateCoordinates(req.Latitude, req.Longitude); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	contribution := &models.Contribution{
		UserID:      userCtx.UserID.String(),
		TempleName:  req.TempleName,
		Description: req.Description,
		City:        req.City,
		State:       req.State,
		Country:     req.Country,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		MediaURL:    req.MediaURL,
	}

	if err := h.contributionRepo.Create(contribution); err != nil {
		log.Printf("ERROR: Failed to create contribution for user %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to submit contribution",
		})
		return
	}

	log.Printf("INFO: Contribution submitted - ID: %s, Temple: %s, User: %s",
		contribution.ID, contribution.TempleName, userCtx.UserID)
	c.JSON(http.StatusCreated, contribution)
}

// MyContributions handles GET /api/v1/contributions
func (h *ContributionHandler) MyContributions(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	contributions, err := h.contributionRepo.GetByUserID(userCtx.UserID.String())
	if err != nil {
		log.Printf("ERROR: Failed to list contributions for user %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve contributions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contributions": contributions,
		"count":         len(contributions),
	})
}

// ListContributions handles GET /api/v1/admin/contributions
// Defaults to the pending review queue; ?status= selects another bucket.
func (h *ContributionHandler) ListContributions(c *gin.Context) {
	status := models.ContributionStatus(c.DefaultQuery("status", string(models.ContributionStatusPending)))
	if !status.IsValid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "status must be one of pending, approved, rejected, waiting",
		})
		return
	}

	contributions, err := h.contributionRepo.GetByStatus(status)
	if err != nil {
		log.Printf("ERROR: Failed to list %s contributions: %v", status, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve contributions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contributions": contributions,
		"count":         len(contributions),
	})
}

// ReviewContributionRequest represents an admin review decision
type ReviewContributionRequest struct {
	Status models.ContributionStatus `json:"status" binding:"required"`
}

// ReviewContribution handles POST /api/v1/admin/contributions/:id/review
// Approving a contribution promotes it into a canonical temple. Darshan
// stays disabled on promoted temples until an admin enables it explicitly.
func (h *ContributionHandler) ReviewContribution(c *gin.Context) {
	contributionID := c.Param("id")
	if _, err := uuid.Parse(contributionID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid contribution ID format",
		})
		return
	}

	var req ReviewContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "status is required",
		})
		return
	}

	if req.Status == models.ContributionStatusPending || !req.Status.IsValid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "status must be approved, rejected or waiting",
		})
		return
	}

	contribution, err := h.contributionRepo.GetByID(contributionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Contribution not found",
			})
			return
		}
		log.Printf("ERROR: Failed to get contribution %s: %v", contributionID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve contribution",
		})
		return
	}

	if contribution.Status == models.ContributionStatusApproved {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "already_reviewed",
			Message: "Contribution has already been approved",
		})
		return
	}

	var templeID *string
	if req.Status == models.ContributionStatusApproved {
		temple := &models.Temple{
			Name:        contribution.TempleName,
			Description: contribution.Description,
			City:        contribution.City,
			State:       contribution.State,
			Country:     contribution.Country,
			Latitude:    contribution.Latitude,
			Longitude:   contribution.Longitude,
			PointValue:  h.defaultPointValue,
			ImageURL:    contribution.MediaURL,
		}
		if err := h.templeRepo.Create(temple); err != nil {
			log.Printf("ERROR: Failed to promote contribution %s to temple: %v", contributionID, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "database_error",
				Message: "Failed to create temple from contribution",
			})
			return
		}
		templeID = &temple.ID
	}

	if err := h.contributionRepo.UpdateStatus(contributionID, req.Status, templeID); err != nil {
		log.Printf("ERROR: Failed to update contribution %s status: %v", contributionID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update contribution",
		})
		return
	}

	contribution.Status = req.Status
	contribution.TempleID = templeID

	log.Printf("INFO: Contribution reviewed - ID: %s, Status: %s", contributionID, req.Status)
	c.JSON(http.StatusOK, contribution)
}
