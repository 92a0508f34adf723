package database

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/bhakthiseva/darshan-backend/internal/models"
)

// ProductRepository handles database operations for the products table
type ProductRepository struct {
	db DB
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new product
func (r *ProductRepository) Create(product *models.Product) error {
	query := `
		INSERT INTO products (
			id, name, description, price, stock, image_url, is_active
		) VALUES (
			$1, $2, $3, $4, $5, $6, TRUE
		)
		RETURNING created_at, updated_at
	`

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.IsActive = true

	return r.db.QueryRow(
		query,
		product.ID, product.Name, product.Description, product.Price,
		product.Stock, product.ImageURL,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(productID string) (*models.Product, error) {
	query := `
		SELECT id, name, description, price, stock, image_url, is_active,
			   created_at, updated_at
		FROM products
		WHERE id = $1
	`

	return r.scanProduct(r.db.QueryRow(query, productID))
}

// ListActive retrieves all active products for the storefront
func (r *ProductRepository) ListActive() ([]models.Product, error) {
	query := `
		SELECT id, name, description, price, stock, image_url, is_active,
			   created_at, updated_at
		FROM products
		WHERE is_active = TRUE
		ORDER BY name
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		product, err := r.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}

	return products, rows.Err()
}

// DecrementStock reserves quantity units of stock, conditional on enough
// stock remaining. Returns true if the reservation applied.
func (r *ProductRepository) DecrementStock(productID string, quantity int) (bool, error) {
	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`

	result, err := r.db.Exec(query, productID, quantity)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// RestoreStock returns reserved units to stock after a checkout that failed
// to produce an order row.
func (r *ProductRepository) RestoreStock(productID string, quantity int) error {
	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Exec(query, productID, quantity)
	return err
}

// scanProduct scans a single product row
func (r *ProductRepository) scanProduct(row scanner) (*models.Product, error) {
	product := &models.Product{}
	var description sql.NullString
	var imageURL sql.NullString

	err := row.Scan(
		&product.ID, &product.Name, &description, &product.Price,
		&product.Stock, &imageURL, &product.IsActive,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		product.Description = &description.String
	}
	if imageURL.Valid {
		product.ImageURL = &imageURL.String
	}

	return product, nil
}
