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
	"github.com/bhakthiseva/darshan-backend/pkg/email"
)

// OrderHandler handles checkout and order management
type OrderHandler struct {
	orderRepo        *database.OrderRepository
	productRepo      *database.ProductRepository
	loyaltyService   *services.LoyaltyService
	promotionService *services.PromotionService
	emailGateway     email.Gateway
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(
	orderRepo *database.OrderRepository,
	productRepo *database.ProductRepository,
	loyaltyService *services.LoyaltyService,
	promotionService *services.PromotionService,
	emailGateway email.Gateway,
) *OrderHandler {
	return &OrderHandler{
		orderRepo:        orderRepo,
		productRepo:      productRepo,
		loyaltyService:   loyaltyService,
		promotionService: promotionService,
		emailGateway:     emailGateway,
	}
}

// Checkout handles POST /api/v1/orders
// Resolves the single effective discount (promo overrides loyalty, no
// stacking), reserves stock, and records the order.
func (h *OrderHandler) Checkout(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.CheckoutRequest
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

	if _, err := uuid.Parse(req.ProductID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid product ID format",
		})
		return
	}

	product, err := h.productRepo.GetByID(req.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Product not found",
			})
			return
		}
		log.Printf("ERROR: Failed to get product %s: %v", req.ProductID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve product",
		})
		return
	}

	if !product.IsActive {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "product_unavailable",
			Message: "This product is no longer available",
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

	decision, err := h.promotionService.Resolve(req.PromoCode, ledger.DiscountPercent)
	if err != nil {
		if promoStatus, ok := promoErrorResponse(err); ok {
			c.JSON(http.StatusUnprocessableEntity, promoStatus)
			return
		}
		log.Printf("ERROR: Failed to resolve discount for user %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to validate promo code",
		})
		return
	}

	ok, err := h.productRepo.DecrementStock(product.ID, req.Quantity)
	if err != nil {
		log.Printf("ERROR: Failed to reserve stock for product %s: %v", product.ID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to reserve stock",
		})
		return
	}
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "insufficient_stock",
			Message: "Not enough stock to fulfil this order",
		})
		return
	}

	subtotal := product.Price * float64(req.Quantity)
	order := &models.Order{
		UserID:          userCtx.UserID.String(),
		ProductID:       product.ID,
		Quantity:        req.Quantity,
		Subtotal:        subtotal,
		DiscountPercent: decision.Percent,
		DiscountSource:  decision.Source,
		TotalPrice:      services.FinalPrice(subtotal, decision.Percent),
		PromoCode:       decision.Code,
		Status:          models.OrderStatusPending,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		ShippingAddress: req.ShippingAddress,
	}

	if err := h.orderRepo.Create(order); err != nil {
		log.Printf("ERROR: Failed to create order for user %s: %v", userCtx.UserID, err)
		// The reservation must not outlive a failed order write
		if restoreErr := h.productRepo.RestoreStock(product.ID, req.Quantity); restoreErr != nil {
			log.Printf("ERROR: Failed to restore %d units of product %s: %v", req.Quantity, product.ID, restoreErr)
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to place order",
		})
		return
	}

	if decision.Code != nil {
		h.promotionService.Redeem(c.Request.Context(), *decision.Code, order.ID)
	}

	log.Printf("INFO: Order placed - ID: %s, Product: %s, Qty: %d, Discount: %d%%, Total: %.2f",
		order.ID, product.ID, order.Quantity, order.DiscountPercent, order.TotalPrice)
	c.JSON(http.StatusCreated, order)
}

// MyOrders handles GET /api/v1/orders
func (h *OrderHandler) MyOrders(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	orders, err := h.orderRepo.GetByUserID(userCtx.UserID.String())
	if err != nil {
		log.Printf("ERROR: Failed to list orders for user %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// ListOrders handles GET /api/v1/admin/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderRepo.GetAll()
	if err != nil {
		log.Printf("ERROR: Failed to list orders: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// UpdateOrderStatus handles PATCH /api/v1/admin/orders/:id/status
// The customer is notified by email after the status is durable; delivery
// failures never roll back the change.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("id")
	if _, err := uuid.Parse(orderID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid order ID format",
		})
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Status.IsValid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "status must be one of pending, awaiting_payment, processing, completed, cancelled",
		})
		return
	}

	order, err := h.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Order not found",
			})
			return
		}
		log.Printf("ERROR: Failed to get order %s: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve order",
		})
		return
	}

	if err := h.orderRepo.UpdateStatus(orderID, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Order not found",
			})
			return
		}
		log.Printf("ERROR: Failed to update order %s status: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to update order status",
		})
		return
	}

	go h.notifyOrderStatus(order, req.Status)

	order.Status = req.Status
	c.JSON(http.StatusOK, order)
}

// notifyOrderStatus sends the status-change email. Runs off the request
// goroutine; failures are logged only.
func (h *OrderHandler) notifyOrderStatus(order *models.Order, status models.OrderStatus) {
	productName := order.ProductID
	if product, err := h.productRepo.GetByID(order.ProductID); err == nil {
		productName = product.Name
	}

	notification := email.OrderNotification{
		Recipient: order.CustomerEmail,
		Name:      order.CustomerName,
		OrderID:   order.ID,
		Product:   productName,
		Status:    string(status),
		Total:     order.TotalPrice,
	}

	if err := h.emailGateway.SendOrderNotification(notification); err != nil {
		log.Printf("WARN: Failed to send status email for order %s: %v", order.ID, err)
	}
}

// promoErrorResponse maps promo validation sentinels to client responses
func promoErrorResponse(err error) (ErrorResponse, bool) {
	switch {
	case errors.Is(err, services.ErrPromoNotFound):
		return ErrorResponse{Error: "promo_not_found", Message: "Promo code not found"}, true
	case errors.Is(err, services.ErrPromoInactive):
		return ErrorResponse{Error: "promo_inactive", Message: "This promo code is not active"}, true
	case errors.Is(err, services.ErrPromoExhausted):
		return ErrorResponse{Error: "promo_exhausted", Message: "This promo code has reached its usage limit"}, true
	case errors.Is(err, services.ErrPromoNotStarted):
		return ErrorResponse{Error: "promo_not_started", Message: "This promo code is not valid yet"}, true
	case errors.Is(err, services.ErrPromoExpired):
		return ErrorResponse{Error: "promo_expired", Message: "This promo code has expired"}, true
	}
	return ErrorResponse{}, false
}
