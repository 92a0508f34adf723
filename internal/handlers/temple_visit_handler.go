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
	"github.com/bhakthiseva/darshan-backend/internal/services"
)

// TempleVisitHandler handles visit logging, verification and the Bhakthi
// points ledger
type TempleVisitHandler struct {
	visitRepo      *database.TempleVisitRepository
	templeRepo     *database.TempleRepository
	loyaltyService *services.LoyaltyService
}

// NewTempleVisitHandler creates a new temple visit handler
func NewTempleVisitHandler(visitRepo *database.TempleVisitRepository, templeRepo *database.TempleRepository, loyaltyService *services.LoyaltyService) *TempleVisitHandler {
	return &TempleVisitHandler{
		visitRepo:      visitRepo,
		templeRepo:     templeRepo,
		loyaltyService: loyaltyService,
	}
}

// LogVisit handles POST /api/v1/visits
// The visit is recorded unverified; points count only after admin review.
func (h *TempleVisitHandler) LogVisit(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.LogVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
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

	visit := &models.TempleVisit{
		TempleID:     temple.ID,
		UserID:       userCtx.UserID.String(),
		PointsEarned: temple.PointValue,
		PhotoURL:     req.PhotoURL,
		VisitDate:    req.VisitDate,
	}

	if err := h.visitRepo.Create(visit); err != nil {
		log.Printf("ERROR: Failed to log visit for user %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to log visit",
		})
		return
	}

	log.Printf("INFO: Visit logged - User: %s, Temple: %s, Points: %d (pending verification)",
		userCtx.UserID, temple.ID, visit.PointsEarned)
	c.JSON(http.StatusCreated, visit)
}

// MyVisits handles GET /api/v1/visits
func (h *TempleVisitHandler) MyVisits(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	visits, err := h.visitRepo.GetByUserID(userCtx.UserID.String())
	if err != nil {
		log.Printf("ERROR: Failed to list visits for user %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve visits",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"visits": visits,
		"count":  len(visits),
	})
}

// MyLedger handles GET /api/v1/visits/ledger
// Returns the derived Bhakthi score, current discount tier and progress.
func (h *TempleVisitHandler) MyLedger(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	ledger, err := h.loyaltyService.LedgerForUser(userCtx.UserID.String())
	if err != nil {
		log.Printf("ERROR: Failed to compute ledger for user %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to compute points ledger",
		})
		return
	}

	c.JSON(http.StatusOK, ledger)
}

// PendingVisits handles GET /api/v1/admin/visits/pending
func (h *TempleVisitHandler) PendingVisits(c *gin.Context) {
	visits, err := h.visitRepo.GetPending()
	if err != nil {
		log.Printf("ERROR: Failed to list pending visits: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve pending visits",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"visits": visits,
		"count":  len(visits),
	})
}

// VerifyVisit handles POST /api/v1/admin/visits/:id/verify
// Verification is one-way; a verified visit stays verified.
func (h *TempleVisitHandler) VerifyVisit(c *gin.Context) {
	visitID := c.Param("id")
	if _, err := uuid.Parse(visitID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid visit ID format",
		})
		return
	}

	if err := h.visitRepo.Verify(visitID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Visit not found or already verified",
			})
			return
		}
		log.Printf("ERROR: Failed to verify visit %s: %v", visitID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to verify visit",
		})
		return
	}

	log.Printf("INFO: Visit verified - ID: %s", visitID)
	c.JSON(http.StatusOK, gin.H{"message": "Visit verified"})
}
