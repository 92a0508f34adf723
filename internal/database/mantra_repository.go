package database

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/bhakthiseva/darshan-backend/internal/models"
)

// MantraRepository handles database operations for mantras and the durable
// chant achievement history.
type MantraRepository struct {
	db DB
}

// NewMantraRepository creates a new MantraRepository
func NewMantraRepository(db DB) *MantraRepository {
	return &MantraRepository{db: db}
}

// Create creates a new mantra
func (r *MantraRepository) Create(mantra *models.Mantra) error {
	query := `
		INSERT INTO mantras (id, name, text, meaning, audio_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	if mantra.ID == "" {
		mantra.ID = uuid.New().String()
	}

	return r.db.QueryRow(
		query,
		mantra.ID, mantra.Name, mantra.Text, mantra.Meaning, mantra.AudioURL,
	).Scan(&mantra.CreatedAt, &mantra.UpdatedAt)
}

// GetByID retrieves a mantra by ID
func (r *MantraRepository) GetByID(mantraID string) (*models.Mantra, error) {
	query := `
		SELECT id, name, text, meaning, audio_url, created_at, updated_at
		FROM mantras
		WHERE id = $1
	`

	return r.scanMantra(r.db.QueryRow(query, mantraID))
}

// List retrieves all mantras
func (r *MantraRepository) List() ([]models.Mantra, error) {
	query := `
		SELECT id, name, text, meaning, audio_url, created_at, updated_at
		FROM mantras
		ORDER BY name
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mantras := []models.Mantra{}
	for rows.Next() {
		mantra, err := r.scanMantra(rows)
		if err != nil {
			return nil, err
		}
		mantras = append(mantras, *mantra)
	}

	return mantras, rows.Err()
}

// AppendAchievement records a completed chant session
func (r *MantraRepository) AppendAchievement(achievement *models.ChantAchievement) error {
	query := `
		INSERT INTO chant_achievements (id, user_id, mantra_id, target, completed_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if achievement.ID == "" {
		achievement.ID = uuid.New().String()
	}

	_, err := r.db.Exec(
		query,
		achievement.ID, achievement.UserID, achievement.MantraID,
		achievement.Target, achievement.CompletedAt,
	)
	return err
}

// GetAchievementsByUserID retrieves a user's chant history, newest first
func (r *MantraRepository) GetAchievementsByUserID(userID string) ([]models.ChantAchievement, error) {
	query := `
		SELECT id, user_id, mantra_id, target, completed_at
		FROM chant_achievements
		WHERE user_id = $1
		ORDER BY completed_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	achievements := []models.ChantAchievement{}
	for rows.Next() {
		var achievement models.ChantAchievement
		if err := rows.Scan(
			&achievement.ID, &achievement.UserID, &achievement.MantraID,
			&achievement.Target, &achievement.CompletedAt,
		); err != nil {
			return nil, err
		}
		achievements = append(achievements, achievement)
	}

	return achievements, rows.Err()
}

// scanMantra scans a single mantra row
func (r *MantraRepository) scanMantra(row scanner) (*models.Mantra, error) {
	mantra := &models.Mantra{}
	var meaning sql.NullString
	var audioURL sql.NullString

	err := row.Scan(
		&mantra.ID, &mantra.Name, &mantra.Text, &meaning, &audioURL,
		&mantra.CreatedAt, &mantra.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if meaning.Valid {
		mantra.Meaning = &meaning.String
	}
	if audioURL.Valid {
		mantra.AudioURL = &audioURL.String
	}

	return mantra, nil
}
