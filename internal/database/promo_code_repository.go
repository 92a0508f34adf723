package database

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/bhakthiseva/darshan-backend/internal/models"
)

// PromoCodeRepository handles database operations for the promo_codes table
type PromoCodeRepository struct {
	db DB
}

// NewPromoCodeRepository creates a new PromoCodeRepository
func NewPromoCodeRepository(db DB) *PromoCodeRepository {
	return &PromoCodeRepository{db: db}
}

// Create creates a new promo code. The code is stored upper-cased.
func (r *PromoCodeRepository) Create(promo *models.PromoCode) error {
	query := `
		INSERT INTO promo_codes (
			id, code, discount_percent, valid_from, valid_until,
			max_uses, current_uses, is_active
		) VALUES (
			$1, $2, $3, $4, $5, $6, 0, $7
		)
		RETURNING created_at, updated_at
	`

	if promo.ID == "" {
		promo.ID = uuid.New().String()
	}
	promo.Code = models.NormalizePromoCode(promo.Code)

	return r.db.QueryRow(
		query,
		promo.ID, promo.Code, promo.DiscountPercent, promo.ValidFrom, promo.ValidUntil,
		promo.MaxUses, promo.IsActive,
	).Scan(&promo.CreatedAt, &promo.UpdatedAt)
}

// GetByCode retrieves a promo code, matching case-insensitively
func (r *PromoCodeRepository) GetByCode(code string) (*models.PromoCode, error) {
	query := `
		SELECT id, code, discount_percent, valid_from, valid_until,
			   max_uses, current_uses, is_active, created_at, updated_at
		FROM promo_codes
		WHERE code = $1
	`

	return r.scanPromo(r.db.QueryRow(query, models.NormalizePromoCode(code)))
}

// List retrieves all promo codes for the admin back office
func (r *PromoCodeRepository) List() ([]models.PromoCode, error) {
	query := `
		SELECT id, code, discount_percent, valid_from, valid_until,
			   max_uses, current_uses, is_active, created_at, updated_at
		FROM promo_codes
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	promos := []models.PromoCode{}
	for rows.Next() {
		promo, err := r.scanPromo(rows)
		if err != nil {
			return nil, err
		}
		promos = append(promos, *promo)
	}

	return promos, rows.Err()
}

// IncrementUses bumps current_uses by one, but only while the usage cap has
// not been reached. Conditional on the current counter value so concurrent
// checkouts cannot overshoot max_uses. Returns true if the increment applied.
func (r *PromoCodeRepository) IncrementUses(code string) (bool, error) {
	query := `
		UPDATE promo_codes
		SET current_uses = current_uses + 1, updated_at = NOW()
		WHERE code = $1
		  AND is_active = TRUE
		  AND (max_uses IS NULL OR current_uses < max_uses)
	`

	result, err := r.db.Exec(query, models.NormalizePromoCode(code))
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// SetActive enables or disables a promo code
func (r *PromoCodeRepository) SetActive(code string, active bool) error {
	query := `
		UPDATE promo_codes
		SET is_active = $2, updated_at = NOW()
		WHERE code = $1
	`

	result, err := r.db.Exec(query, models.NormalizePromoCode(code), active)
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

// scanPromo scans a single promo code row
func (r *PromoCodeRepository) scanPromo(row scanner) (*models.PromoCode, error) {
	promo := &models.PromoCode{}
	var validFrom sql.NullTime
	var validUntil sql.NullTime
	var maxUses sql.NullInt64

	err := row.Scan(
		&promo.ID, &promo.Code, &promo.DiscountPercent, &validFrom, &validUntil,
		&maxUses, &promo.CurrentUses, &promo.IsActive,
		&promo.CreatedAt, &promo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if validFrom.Valid {
		promo.ValidFrom = &validFrom.Time
	}
	if validUntil.Valid {
		promo.ValidUntil = &validUntil.Time
	}
	if maxUses.Valid {
		uses := int(maxUses.Int64)
		promo.MaxUses = &uses
	}

	return promo, nil
}
