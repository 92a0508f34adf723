package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bhakthiseva/darshan-backend/internal/config"
	"github.com/bhakthiseva/darshan-backend/internal/models"
)

func defaultLoyaltyConfig() config.LoyaltyConfig {
	return config.LoyaltyConfig{
		PointsPerTier:  1000,
		PercentPerTier: 25,
		MaxPercent:     25,
	}
}

func verifiedVisits(points ...int) []models.TempleVisit {
	visits := make([]models.TempleVisit, 0, len(points))
	for _, p := range points {
		visits = append(visits, models.TempleVisit{PointsEarned: p, Verified: true})
	}
	return visits
}

func TestComputeLedger(t *testing.T) {
	svc := NewLoyaltyService(nil, defaultLoyaltyConfig())

	tests := []struct {
		name             string
		visits           []models.TempleVisit
		wantScore        int
		wantDiscount     int
		wantProgressNext int
	}{
		{"No Visits", nil, 0, 0, 0},
		{"Below First Tier", verifiedVisits(500, 499), 999, 0, 999},
		{"Exactly First Tier", verifiedVisits(600, 400), 1000, 25, 0},
		{"Above First Tier", verifiedVisits(1000, 250), 1250, 25, 250},
		{"Discount Capped", verifiedVisits(2000, 2000, 1000), 5000, 25, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := svc.ComputeLedger(tt.visits)
			assert.Equal(t, tt.wantScore, ledger.Score)
			assert.Equal(t, tt.wantDiscount, ledger.DiscountPercent)
			assert.Equal(t, tt.wantProgressNext, ledger.ProgressToNext)
		})
	}
}

func TestComputeLedgerSkipsUnverifiedVisits(t *testing.T) {
	svc := NewLoyaltyService(nil, defaultLoyaltyConfig())

	visits := []models.TempleVisit{
		{PointsEarned: 800, Verified: true},
		{PointsEarned: 900, Verified: false},
	}

	ledger := svc.ComputeLedger(visits)
	assert.Equal(t, 800, ledger.Score, "unverified visits never count")
	assert.Equal(t, 0, ledger.DiscountPercent)
}

func TestComputeLedgerMonotonic(t *testing.T) {
	svc := NewLoyaltyService(nil, defaultLoyaltyConfig())

	prevDiscount := 0
	for score := 0; score <= 3000; score += 100 {
		ledger := svc.ComputeLedger(verifiedVisits(score))
		assert.GreaterOrEqual(t, ledger.DiscountPercent, prevDiscount,
			"discount must never decrease as the score grows (score=%d)", score)
		prevDiscount = ledger.DiscountPercent
	}
}

func TestComputeLedgerCustomTiers(t *testing.T) {
	svc := NewLoyaltyService(nil, config.LoyaltyConfig{
		PointsPerTier:  500,
		PercentPerTier: 10,
		MaxPercent:     30,
	})

	ledger := svc.ComputeLedger(verifiedVisits(1200))
	assert.Equal(t, 20, ledger.DiscountPercent)
	assert.Equal(t, 200, ledger.ProgressToNext)

	ledger = svc.ComputeLedger(verifiedVisits(5000))
	assert.Equal(t, 30, ledger.DiscountPercent, "cap applies")
}
