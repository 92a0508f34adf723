package services

import (
	"github.com/bhakthiseva/darshan-backend/internal/config"
	"github.com/bhakthiseva/darshan-backend/internal/database"
	"github.com/bhakthiseva/darshan-backend/internal/models"
)

// Ledger is the derived Bhakthi points summary for a user. It is recomputed
// from verified visits on every read and never persisted on its own.
type Ledger struct {
	Score           int `json:"score"`
	DiscountPercent int `json:"discount_percent"`
	ProgressToNext  int `json:"progress_to_next"`
}

// LoyaltyService converts verified temple visit points into a discount tier
type LoyaltyService struct {
	visitRepo *database.TempleVisitRepository
	cfg       config.LoyaltyConfig
}

// NewLoyaltyService creates a new LoyaltyService
func NewLoyaltyService(visitRepo *database.TempleVisitRepository, cfg config.LoyaltyConfig) *LoyaltyService {
	return &LoyaltyService{visitRepo: visitRepo, cfg: cfg}
}

// ComputeLedger aggregates verified visit points into a ledger. Unverified
// visits are excluded here even if the caller already filtered them, so a
// bad upstream query can never inflate the score.
func (s *LoyaltyService) ComputeLedger(visits []models.TempleVisit) Ledger {
	score := 0
	for _, visit := range visits {
		if !visit.Verified {
			continue
		}
		score += visit.PointsEarned
	}

	discount := (score / s.cfg.PointsPerTier) * s.cfg.PercentPerTier
	if discount > s.cfg.MaxPercent {
		discount = s.cfg.MaxPercent
	}

	return Ledger{
		Score:           score,
		DiscountPercent: discount,
		ProgressToNext:  score % s.cfg.PointsPerTier,
	}
}

// LedgerForUser loads the user's verified visits and computes their ledger
func (s *LoyaltyService) LedgerForUser(userID string) (Ledger, error) {
	visits, err := s.visitRepo.GetVerifiedByUserID(userID)
	if err != nil {
		return Ledger{}, err
	}
	return s.ComputeLedger(visits), nil
}
