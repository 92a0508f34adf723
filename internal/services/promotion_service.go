package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bhakthiseva/darshan-backend/internal/database"
	"github.com/bhakthiseva/darshan-backend/internal/models"
)

// Promo validation errors. All of them fail closed: the caller applies no
// discount and surfaces the specific reason.
var (
	ErrPromoNotFound   = errors.New("promo code not found")
	ErrPromoInactive   = errors.New("promo code is not active")
	ErrPromoExhausted  = errors.New("promo code has reached its usage limit")
	ErrPromoNotStarted = errors.New("promo code is not valid yet")
	ErrPromoExpired    = errors.New("promo code has expired")
)

// Discount sources
const (
	DiscountSourcePromo   = "promo"
	DiscountSourceLoyalty = "loyalty"
)

// DiscountDecision is the single effective discount for a cart
type DiscountDecision struct {
	Percent int     `json:"percent"`
	Source  *string `json:"source,omitempty"` // nil when no discount applies
	Code    *string `json:"code,omitempty"`   // set when source is promo
}

// RedemptionGuard grants the right to redeem a promo code at most once per
// order. The Redis-backed implementation lives in the database package.
type RedemptionGuard interface {
	Acquire(ctx context.Context, orderID string) (bool, error)
}

// PromotionService resolves the effective discount for a checkout and
// redeems promo codes exactly once per completed order.
type PromotionService struct {
	promoRepo *database.PromoCodeRepository
	guard     RedemptionGuard
	logger    *logrus.Logger
	now       func() time.Time
}

// NewPromotionService creates a new PromotionService
func NewPromotionService(promoRepo *database.PromoCodeRepository, guard RedemptionGuard, logger *logrus.Logger) *PromotionService {
	return &PromotionService{
		promoRepo: promoRepo,
		guard:     guard,
		logger:    logger,
		now:       time.Now,
	}
}

// ValidateCode runs the promo validation sequence and returns the code's
// discount percent. Read-only: repeated calls with the same inputs yield
// the same decision.
func (s *PromotionService) ValidateCode(code string) (*models.PromoCode, error) {
	promo, err := s.promoRepo.GetByCode(code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPromoNotFound
		}
		return nil, fmt.Errorf("failed to look up promo code: %w", err)
	}

	if !promo.IsActive {
		return nil, ErrPromoInactive
	}

	if promo.IsExhausted() {
		return nil, ErrPromoExhausted
	}

	now := s.now()
	if promo.ValidFrom != nil && now.Before(*promo.ValidFrom) {
		return nil, ErrPromoNotStarted
	}
	if promo.ValidUntil != nil && now.After(*promo.ValidUntil) {
		return nil, ErrPromoExpired
	}

	return promo, nil
}

// Resolve produces the single effective discount. Discounts never stack: a
// valid promo code overrides the loyalty discount entirely, even when the
// loyalty discount is larger. Without a code, the loyalty discount applies.
func (s *PromotionService) Resolve(code *string, loyaltyPercent int) (DiscountDecision, error) {
	if code != nil && models.NormalizePromoCode(*code) != "" {
		promo, err := s.ValidateCode(*code)
		if err != nil {
			return DiscountDecision{}, err
		}
		source := DiscountSourcePromo
		return DiscountDecision{
			Percent: promo.DiscountPercent,
			Source:  &source,
			Code:    &promo.Code,
		}, nil
	}

	if loyaltyPercent > 0 {
		source := DiscountSourceLoyalty
		return DiscountDecision{Percent: loyaltyPercent, Source: &source}, nil
	}

	return DiscountDecision{}, nil
}

// FinalPrice applies a discount percent to a subtotal, rounding to the
// nearest integer currency unit.
func FinalPrice(subtotal float64, discountPercent int) float64 {
	return math.Round(subtotal * (1 - float64(discountPercent)/100))
}

// Redeem increments the promo code's usage counter for a completed checkout.
// The Redis guard makes repeated calls for the same order a no-op, and the
// conditional update stops the counter passing max_uses under concurrency.
// Failures after the order is placed are logged, not surfaced: the order
// stands either way.
func (s *PromotionService) Redeem(ctx context.Context, code, orderID string) {
	acquired, err := s.guard.Acquire(ctx, orderID)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).
			Error("Promo redemption guard unavailable, skipping increment")
		return
	}
	if !acquired {
		// Already redeemed for this checkout
		return
	}

	applied, err := s.promoRepo.IncrementUses(code)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"code":     models.NormalizePromoCode(code),
			"order_id": orderID,
		}).Error("Failed to increment promo code usage")
		return
	}
	if !applied {
		s.logger.WithFields(logrus.Fields{
			"code":     models.NormalizePromoCode(code),
			"order_id": orderID,
		}).Warn("Promo code usage cap reached between resolve and redeem")
	}
}
