package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhakthiseva/darshan-backend/internal/config"
	"github.com/bhakthiseva/darshan-backend/internal/database"
	"github.com/bhakthiseva/darshan-backend/internal/middleware"
	"github.com/bhakthiseva/darshan-backend/internal/models"
	"github.com/bhakthiseva/darshan-backend/internal/services"
	"github.com/bhakthiseva/darshan-backend/pkg/email"
)

// sqlDB adapts a raw *sql.DB to the database.DB interface for sqlmock tests
type sqlDB struct {
	db *sql.DB
}

func (m *sqlDB) Get(dest interface{}, query string, args ...interface{}) error {
	return sql.ErrConnDone
}

func (m *sqlDB) Select(dest interface{}, query string, args ...interface{}) error {
	return sql.ErrConnDone
}

func (m *sqlDB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *sqlDB) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *sqlDB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *sqlDB) Close() error { return m.db.Close() }
func (m *sqlDB) Ping() error  { return m.db.Ping() }

var productColumns = []string{
	"id", "name", "description", "price", "stock", "image_url", "is_active",
	"created_at", "updated_at",
}

var visitColumns = []string{
	"id", "temple_id", "user_id", "points_earned", "verified", "photo_url",
	"visit_date", "created_at", "updated_at",
}

func newCheckoutTestRouter(t *testing.T, userID uuid.UUID) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	wrapped := &sqlDB{db: db}
	logger := logrus.New()

	productRepo := database.NewProductRepository(wrapped)
	orderRepo := database.NewOrderRepository(wrapped)
	visitRepo := database.NewTempleVisitRepository(wrapped)
	promoRepo := database.NewPromoCodeRepository(wrapped)

	loyaltyService := services.NewLoyaltyService(visitRepo, config.LoyaltyConfig{
		PointsPerTier:  1000,
		PercentPerTier: 25,
		MaxPercent:     25,
	})
	promotionService := services.NewPromotionService(promoRepo, nil, logger)
	handler := NewOrderHandler(orderRepo, productRepo, loyaltyService, promotionService, email.NewDevGateway(logger))

	router := gin.New()
	router.POST("/orders", func(c *gin.Context) {
		c.Set(middleware.UserContextKey, middleware.UserContext{
			UserID: userID,
			Email:  "devotee@example.com",
			Roles:  []string{"user"},
		})
		c.Next()
	}, handler.Checkout)

	return router, mock
}

func checkoutRequestBody(t *testing.T, productID string, quantity int) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(models.CheckoutRequest{
		ProductID:     productID,
		Quantity:      quantity,
		CustomerName:  "Devotee",
		CustomerEmail: "devotee@example.com",
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func expectProductLookup(mock sqlmock.Sqlmock, productID string, price float64, stock int) {
	now := time.Now()
	mock.ExpectQuery(`SELECT id, name, description`).
		WithArgs(productID).
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow(
			productID, "Brass Diya", nil, price, stock, nil, true, now, now,
		))
}

func expectEmptyLedger(mock sqlmock.Sqlmock, userID uuid.UUID) {
	mock.ExpectQuery(`SELECT id, temple_id, user_id`).
		WithArgs(userID.String()).
		WillReturnRows(sqlmock.NewRows(visitColumns))
}

func TestCheckout(t *testing.T) {
	t.Run("Places Order", func(t *testing.T) {
		userID := uuid.New()
		productID := uuid.New().String()
		router, mock := newCheckoutTestRouter(t, userID)

		expectProductLookup(mock, productID, 250, 10)
		expectEmptyLedger(mock, userID)
		mock.ExpectExec(`UPDATE products`).
			WithArgs(productID, 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
				AddRow(time.Now(), time.Now()))

		req := httptest.NewRequest("POST", "/orders", checkoutRequestBody(t, productID, 2))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var order models.Order
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
		assert.Equal(t, 500.0, order.TotalPrice)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insufficient Stock Leaves No Trace", func(t *testing.T) {
		userID := uuid.New()
		productID := uuid.New().String()
		router, mock := newCheckoutTestRouter(t, userID)

		expectProductLookup(mock, productID, 250, 1)
		expectEmptyLedger(mock, userID)
		mock.ExpectExec(`UPDATE products`).
			WithArgs(productID, 2).
			WillReturnResult(sqlmock.NewResult(0, 0))

		req := httptest.NewRequest("POST", "/orders", checkoutRequestBody(t, productID, 2))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "insufficient_stock")
		assert.NoError(t, mock.ExpectationsWereMet(),
			"no order insert may run after a failed reservation")
	})

	t.Run("Failed Order Write Restores Stock", func(t *testing.T) {
		userID := uuid.New()
		productID := uuid.New().String()
		router, mock := newCheckoutTestRouter(t, userID)

		expectProductLookup(mock, productID, 250, 10)
		expectEmptyLedger(mock, userID)
		mock.ExpectExec(`UPDATE products`).
			WithArgs(productID, 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectExec(`UPDATE products`).
			WithArgs(productID, 2).
			WillReturnResult(sqlmock.NewResult(0, 1))

		req := httptest.NewRequest("POST", "/orders", checkoutRequestBody(t, productID, 2))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet(),
			"the reserved units must be returned when the order write fails")
	})
}
