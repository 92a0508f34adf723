package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bhakthiseva/darshan-backend/internal/database"
	"github.com/bhakthiseva/darshan-backend/internal/middleware"
	"github.com/bhakthiseva/darshan-backend/internal/models"
	"github.com/bhakthiseva/darshan-backend/internal/services"
)

// PromoHandler handles promo code administration and checkout previews
type PromoHandler struct {
	promoRepo        *database.PromoCodeRepository
	loyaltyService   *services.LoyaltyService
	promotionService *services.PromotionService
}

// NewPromoHandler creates a new promo handler
func NewPromoHandler(promoRepo *database.PromoCodeRepository, loyaltyService *services.LoyaltyService, promotionService *services.PromotionService) *PromoHandler {
	return &PromoHandler{
		promoRepo:        promoRepo,
		loyaltyService:   loyaltyService,
		promotionService: promotionService,
	}
}

// ApplyPromoRequest represents a discount preview request
type ApplyPromoRequest struct {
	Code     *string `json:"code,omitempty"`
	Subtotal float64 `json:"subtotal" binding:"required"`
}

// ApplyPromoResponse represents the previewed discount. Nothing is redeemed;
// the preview can be repeated freely.
type ApplyPromoResponse struct {
	Discount   services.DiscountDecision `json:"discount"`
	Subtotal   float64                   `json:"subtotal"`
	FinalPrice float64                   `json:"final_price"`
}

// ApplyPromo handles POST /api/v1/promos/apply
// Previews the effective discount for the caller's cart.
func (h *PromoHandler) ApplyPromo(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req ApplyPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "subtotal is required",
		})
		return
	}

	if req.Subtotal <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "subtotal must be positive",
		})
		return
	}

	ledger, err := h.loyaltyService.LedgerForUser(userCtx.UserID.String())
	if err != nil {
		log.Printf("ERROR: Failed to compute ledger for user %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to compute loyalty discount",
		})
		return
	}

	decision, err := h.promotionService.Resolve(req.Code, ledger.DiscountPercent)
	if err != nil {
		if resp, ok := promoErrorResponse(err); ok {
			c.JSON(http.StatusUnprocessableEntity, resp)
			return
		}
		log.Printf("ERROR: Failed to resolve discount for user %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to validate promo code",
		})
		return
	}

	c.JSON(http.StatusOK, ApplyPromoResponse{
		Discount:   decision,
		Subtotal:   req.Subtotal,
		FinalPrice: services.FinalPrice(req.Subtotal, decision.Percent),
	})
}

// CreatePromo handles POST /api/v1/admin/promos
func (h *PromoHandler) CreatePromo(c *gin.Context) {
	var req models.CreatePromoCodeRequest
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

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	promo := &models.PromoCode{
		Code:            models.NormalizePromoCode(req.Code),
		DiscountPercent: req.DiscountPercent,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
		MaxUses:         req.MaxUses,
		IsActive:        active,
	}

	if err := h.promoRepo.Create(promo); err != nil {
		log.Printf("ERROR: Failed to create promo code %s: %v", promo.Code, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to create promo code",
		})
		return
	}

	log.Printf("INFO: Promo code created - Code: %s, Discount: %d%%", promo.Code, promo.DiscountPercent)
	c.JSON(http.StatusCreated, promo)
}

// ListPromos handles GET /api/v1/admin/promos
func (h *PromoHandler) ListPromos(c *gin.Context) {
	promos, err := h.promoRepo.List()
	if err != nil {
		log.Printf("ERROR: Failed to list promo codes: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve promo codes",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"promo_codes": promos,
		"count":       len(promos),
	})
}

// SetPromoActiveRequest toggles a promo code on or off
type SetPromoActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetPromoActive handles PATCH /api/v1/admin/promos/:code/active
func (h *PromoHandler) SetPromoActive(c *gin.Context) {
	code := models.NormalizePromoCode(c.Param("code"))
	if code == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Promo code is required",
		})
		return
	}

	var req SetPromoActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "is_active is required",
		})
		return
	}

	if err := h.promoRepo.SetActive(code, *req.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Promo code not found",
			})
			return
		}
		log.Printf("ERROR: Failed to toggle promo code %s: %v", code, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update promo code",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": code, "is_active": *req.IsActive})
}
