package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePromoCode(t *testing.T) {
	assert.Equal(t, "DIWALI25", NormalizePromoCode("  diwali25 "))
	assert.Equal(t, "DIWALI25", NormalizePromoCode("Diwali25"))
	assert.Equal(t, "", NormalizePromoCode("   "))
}

func TestPromoCodeIsExhausted(t *testing.T) {
	maxUses := 5

	t.Run("No Cap", func(t *testing.T) {
		promo := &PromoCode{CurrentUses: 10000}
		assert.False(t, promo.IsExhausted())
	})

	t.Run("Under Cap", func(t *testing.T) {
		promo := &PromoCode{MaxUses: &maxUses, CurrentUses: 4}
		assert.False(t, promo.IsExhausted())
	})

	t.Run("At Cap", func(t *testing.T) {
		promo := &PromoCode{MaxUses: &maxUses, CurrentUses: 5}
		assert.True(t, promo.IsExhausted())
	})
}

func TestPromoCodeInWindow(t *testing.T) {
	now := time.Date(2026, 10, 20, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	t.Run("Open Window", func(t *testing.T) {
		promo := &PromoCode{}
		assert.True(t, promo.InWindow(now))
	})

	t.Run("Inside Window", func(t *testing.T) {
		promo := &PromoCode{ValidFrom: &before, ValidUntil: &after}
		assert.True(t, promo.InWindow(now))
	})

	t.Run("Not Started", func(t *testing.T) {
		promo := &PromoCode{ValidFrom: &after}
		assert.False(t, promo.InWindow(now))
	})

	t.Run("Expired", func(t *testing.T) {
		promo := &PromoCode{ValidUntil: &before}
		assert.False(t, promo.InWindow(now))
	})
}

func TestCreatePromoCodeRequestValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		req := CreatePromoCodeRequest{Code: "diwali25", DiscountPercent: 25}
		assert.NoError(t, req.Validate())
	})

	t.Run("Empty Code", func(t *testing.T) {
		req := CreatePromoCodeRequest{Code: "  ", DiscountPercent: 25}
		assert.Error(t, req.Validate())
	})

	t.Run("Discount Out Of Range", func(t *testing.T) {
		for _, pct := range []int{0, -5, 101} {
			req := CreatePromoCodeRequest{Code: "X", DiscountPercent: pct}
			assert.Error(t, req.Validate(), "discount %d should be rejected", pct)
		}
	})

	t.Run("Zero Max Uses", func(t *testing.T) {
		zero := 0
		req := CreatePromoCodeRequest{Code: "X", DiscountPercent: 10, MaxUses: &zero}
		assert.Error(t, req.Validate())
	})

	t.Run("Inverted Window", func(t *testing.T) {
		from := time.Now()
		until := from.Add(-time.Hour)
		req := CreatePromoCodeRequest{Code: "X", DiscountPercent: 10, ValidFrom: &from, ValidUntil: &until}
		assert.Error(t, req.Validate())
	})
}
