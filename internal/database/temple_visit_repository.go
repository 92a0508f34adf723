package database

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/bhakthiseva/darshan-backend/internal/models"
)

// TempleVisitRepository handles database operations for the temple_visits table
type TempleVisitRepository struct {
	db DB
}

// NewTempleVisitRepository creates a new TempleVisitRepository
func NewTempleVisitRepository(db DB) *TempleVisitRepository {
	return &TempleVisitRepository{db: db}
}

// Create logs a new unverified visit
func (r *TempleVisitRepository) Create(visit *models.TempleVisit) error {
	query := `
		INSERT INTO temple_visits (
			id, temple_id, user_id, points_earned, verified, photo_url, visit_date
		) VALUES (
			$1, $2, $3, $4, FALSE, $5, $6
		)
		RETURNING created_at, updated_at
	`

	if visit.ID == "" {
		visit.ID = uuid.New().String()
	}
	visit.Verified = false

	return r.db.QueryRow(
		query,
		visit.ID, visit.TempleID, visit.UserID, visit.PointsEarned,
		visit.PhotoURL, visit.VisitDate,
	).Scan(&visit.CreatedAt, &visit.UpdatedAt)
}

// GetByUserID retrieves all visits for a user, newest first
func (r *TempleVisitRepository) GetByUserID(userID string) ([]models.TempleVisit, error) {
	query := `
		SELECT id, temple_id, user_id, points_earned, verified, photo_url, visit_date,
			   created_at, updated_at
		FROM temple_visits
		WHERE user_id = $1
		ORDER BY visit_date DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanVisits(rows)
}

// GetVerifiedByUserID retrieves only verified visits for a user. This is the
// feed for the loyalty ledger; unverified rows never leave this filter.
func (r *TempleVisitRepository) GetVerifiedByUserID(userID string) ([]models.TempleVisit, error) {
	query := `
		SELECT id, temple_id, user_id, points_earned, verified, photo_url, visit_date,
			   created_at, updated_at
		FROM temple_visits
		WHERE user_id = $1 AND verified = TRUE
		ORDER BY visit_date DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanVisits(rows)
}

// GetPending retrieves unverified visits for the admin review queue
func (r *TempleVisitRepository) GetPending() ([]models.TempleVisit, error) {
	query := `
		SELECT id, temple_id, user_id, points_earned, verified, photo_url, visit_date,
			   created_at, updated_at
		FROM temple_visits
		WHERE verified = FALSE
		ORDER BY created_at
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanVisits(rows)
}

// Verify marks a visit as verified. Verified visits are immutable, so the
// update only matches unverified rows.
func (r *TempleVisitRepository) Verify(visitID string) error {
	query := `
		UPDATE temple_visits
		SET verified = TRUE, updated_at = NOW()
		WHERE id = $1 AND verified = FALSE
	`

	result, err := r.db.Exec(query, visitID)
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

// GetUserAggregates summarizes visit counts and points per user for the
// admin back office.
func (r *TempleVisitRepository) GetUserAggregates() ([]models.VisitAggregate, error) {
	query := `
		SELECT u.id AS user_id, u.email, u.name,
			   COUNT(v.id) AS total_visits,
			   COUNT(v.id) FILTER (WHERE v.verified) AS verified_visits,
			   COALESCE(SUM(v.points_earned) FILTER (WHERE v.verified), 0) AS total_points
		FROM users u
		LEFT JOIN temple_visits v ON v.user_id = u.id
		GROUP BY u.id, u.email, u.name
		ORDER BY total_points DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	aggregates := []models.VisitAggregate{}
	for rows.Next() {
		var agg models.VisitAggregate
		if err := rows.Scan(
			&agg.UserID, &agg.Email, &agg.Name,
			&agg.TotalVisits, &agg.VerifiedVisits, &agg.TotalPoints,
		); err != nil {
			return nil, err
		}
		aggregates = append(aggregates, agg)
	}

	return aggregates, rows.Err()
}

// scanVisits scans multiple visits from rows
func (r *TempleVisitRepository) scanVisits(rows *sql.Rows) ([]models.TempleVisit, error) {
	visits := []models.TempleVisit{}

	for rows.Next() {
		var visit models.TempleVisit
		var photoURL sql.NullString

		err := rows.Scan(
			&visit.ID, &visit.TempleID, &visit.UserID, &visit.PointsEarned,
			&visit.Verified, &photoURL, &visit.VisitDate,
			&visit.CreatedAt, &visit.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if photoURL.Valid {
			visit.PhotoURL = &photoURL.String
		}

		visits = append(visits, visit)
	}

	return visits, rows.Err()
}
