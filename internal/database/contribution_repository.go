package database

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/bhakthiseva/darshan-backend/internal/models"
)

// ContributionRepository handles database operations for the contributions table
type ContributionRepository struct {
	db DB
}

// NewContributionRepository creates a new ContributionRepository
func NewContributionRepository(db DB) *ContributionRepository {
	return &ContributionRepository{db: db}
}

// Create creates a new contribution in pending status
func (r *ContributionRepository) Create(contribution *models.Contribution) error {
	query := `
		INSERT INTO contributions (
			id, user_id, temple_name, description, city, state, country,
			latitude, longitude, media_url, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		RETURNING created_at, updated_at
	`

	if contribution.ID == "" {
		contribution.ID = uuid.New().String()
	}
	contribution.Status = models.ContributionStatusPending

	return r.db.QueryRow(
		query,
		contribution.ID, contribution.UserID, contribution.TempleName,
		contribution.Description, contribution.City, contribution.State, contribution.Country,
		contribution.Latitude, contribution.Longitude, contribution.MediaURL,
		contribution.Status,
	).Scan(&contribution.CreatedAt, &contribution.UpdatedAt)
}

// GetByID retrieves a contribution by ID
func (r *ContributionRepository) GetByID(contributionID string) (*models.Contribution, error) {
	query := `
		SELECT id, user_id, temple_name, description, city, state, country,
			   latitude, longitude, media_url, status, temple_id,
			   created_at, updated_at
		FROM contributions
		WHERE id = $1
	`

	return r.scanContribution(r.db.QueryRow(query, contributionID))
}

// GetByUserID retrieves all contributions submitted by a user
func (r *ContributionRepository) GetByUserID(userID string) ([]models.Contribution, error) {
	query := `
		SELECT id, user_id, temple_name, description, city, state, country,
			   latitude, longitude, media_url, status, temple_id,
			   created_at, updated_at
		FROM contributions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanContributions(rows)
}

// GetByStatus retrieves contributions in a given status for the review queue
func (r *ContributionRepository) GetByStatus(status models.ContributionStatus) ([]models.Contribution, error) {
	query := `
		SELECT id, user_id, temple_name, description, city, state, country,
			   latitude, longitude, media_url, status, temple_id,
			   created_at, updated_at
		FROM contributions
		WHERE status = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanContributions(rows)
}

// UpdateStatus updates a contribution's review status, optionally linking
// the temple created from an approved contribution.
func (r *ContributionRepository) UpdateStatus(contributionID string, status models.ContributionStatus, templeID *string) error {
	query := `
		UPDATE contributions
		SET status = $2, temple_id = COALESCE($3, temple_id), updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, contributionID, status, templeID)
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

// scanContribution scans a single contribution row
func (r *ContributionRepository) scanContribution(row scanner) (*models.Contribution, error) {
	contribution := &models.Contribution{}
	var description sql.NullString
	var mediaURL sql.NullString
	var templeID sql.NullString

	err := row.Scan(
		&contribution.ID, &contribution.UserID, &contribution.TempleName,
		&description, &contribution.City, &contribution.State, &contribution.Country,
		&contribution.Latitude, &contribution.Longitude, &mediaURL,
		&contribution.Status, &templeID,
		&contribution.CreatedAt, &contribution.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		contribution.Description = &description.String
	}
	if mediaURL.Valid {
		contribution.MediaURL = &mediaURL.String
	}
	if templeID.Valid {
		contribution.TempleID = &templeID.String
	}

	return contribution, nil
}

// scanContributions scans multiple contributions from rows
func (r *ContributionRepository) scanContributions(rows *sql.Rows) ([]models.Contribution, error) {
	contributions := []models.Contribution{}

	for rows.Next() {
		contribution, err := r.scanContribution(rows)
		if err != nil {
			return nil, err
		}
		contributions = append(contributions, *contribution)
	}

	return contributions, rows.Err()
}
