package database

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/bhakthiseva/darshan-backend/internal/models"
)

// OrderRepository handles database operations for the orders table
type OrderRepository struct {
	db DB
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create creates a new order in pending status
func (r *OrderRepository) Create(order *models.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, product_id, quantity, subtotal,
			discount_percent, discount_source, total_price, promo_code,
			status, customer_name, customer_email, shipping_address
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		RETURNING created_at, updated_at
	`

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}

	return r.db.QueryRow(
		query,
		order.ID, order.UserID, order.ProductID, order.Quantity, order.Subtotal,
		order.DiscountPercent, order.DiscountSource, order.TotalPrice, order.PromoCode,
		order.Status, order.CustomerName, order.CustomerEmail, order.ShippingAddress,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
}

// GetByID retrieves an order by ID
func (r *OrderRepository) GetByID(orderID string) (*models.Order, error) {
	query := `
		SELECT id, user_id, product_id, quantity, subtotal,
			   discount_percent, discount_source, total_price, promo_code,
			   status, customer_name, customer_email, shipping_address,
			   created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	return r.scanOrder(r.db.QueryRow(query, orderID))
}

// GetByUserID retrieves all orders for a user, newest first
func (r *OrderRepository) GetByUserID(userID string) ([]models.Order, error) {
	query := `
		SELECT id, user_id, product_id, quantity, subtotal,
			   discount_percent, discount_source, total_price, promo_code,
			   status, customer_name, customer_email, shipping_address,
			   created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanOrders(rows)
}

// GetAll retrieves every order for the admin back office, newest first
func (r *OrderRepository) GetAll() ([]models.Order, error) {
	query := `
		SELECT id, user_id, product_id, quantity, subtotal,
			   discount_percent, discount_source, total_price, promo_code,
			   status, customer_name, customer_email, shipping_address,
			   created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanOrders(rows)
}

// UpdateStatus updates the order status
func (r *OrderRepository) UpdateStatus(orderID string, status models.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, orderID, status)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// scanOrder scans a single order row
func (r *OrderRepository) scanOrder(row scanner) (*models.Order, error) {
	order := &models.Order{}
	var discountSource sql.NullString
	var promoCode sql.NullString
	var shippingAddress sql.NullString

	err := row.Scan(
		&order.ID, &order.UserID, &order.ProductID, &order.Quantity, &order.Subtotal,
		&order.DiscountPercent, &discountSource, &order.TotalPrice, &promoCode,
		&order.Status, &order.CustomerName, &order.CustomerEmail, &shippingAddress,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if discountSource.Valid {
		order.DiscountSource = &discountSource.String
	}
	if promoCode.Valid {
		order.PromoCode = &promoCode.String
	}
	if shippingAddress.Valid {
		order.ShippingAddress = &shippingAddress.String
	}

	return order, nil
}

// scanOrders scans multiple orders from rows
func (r *OrderRepository) scanOrders(rows *sql.Rows) ([]models.Order, error) {
	orders := []models.Order{}

	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}

	return orders, rows.Err()
}
