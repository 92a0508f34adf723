package database

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/bhakthiseva/darshan-backend/internal/models"
)

// TempleRepository handles database operations for the temples table
type TempleRepository struct {
	db DB
}

// NewTempleRepository creates a new TempleRepository
func NewTempleRepository(db DB) *TempleRepository {
	return &TempleRepository{db: db}
}

// Create creates a new temple
func (r *TempleRepository) Create(temple *models.Temple) error {
	query := `
		INSERT INTO temples (
			id, name, description, city, state, country,
			latitude, longitude, rating, point_value, darshan_enabled, image_url
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING created_at, updated_at
	`

	if temple.ID == "" {
		temple.ID = uuid.New().String()
	}

	return r.db.QueryRow(
		query,
		temple.ID, temple.Name, temple.Description, temple.City, temple.State, temple.Country,
		temple.Latitude, temple.Longitude, temple.Rating, temple.PointValue,
		temple.DarshanEnabled, temple.ImageURL,
	).Scan(&temple.CreatedAt, &temple.UpdatedAt)
}

// GetByID retrieves a temple by ID
func (r *TempleRepository) GetByID(templeID string) (*models.Temple, error) {
	query := `
		SELECT id, name, description, city, state, country,
			   latitude, longitude, rating, point_value, darshan_enabled, image_url,
			   created_at, updated_at
		FROM temples
		WHERE id = $1
	`

	return r.scanTemple(r.db.QueryRow(query, templeID))
}

// List retrieves temples, optionally filtered by city and/or state,
// ordered by rating descending.
func (r *TempleRepository) List(city, state string) ([]models.Temple, error) {
	query := `
		SELECT id, name, description, city, state, country,
			   latitude, longitude, rating, point_value, darshan_enabled, image_url,
			   created_at, updated_at
		FROM temples
		WHERE ($1 = '' OR LOWER(city) = LOWER($1))
		  AND ($2 = '' OR LOWER(state) = LOWER($2))
		ORDER BY rating DESC, name
	`

	rows, err := r.db.Query(query, city, state)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	temples := []models.Temple{}
	for rows.Next() {
		temple, err := r.scanTemple(rows)
		if err != nil {
			return nil, err
		}
		temples = append(temples, *temple)
	}

	return temples, rows.Err()
}

// Update applies the non-nil fields of the request to the temple
func (r *TempleRepository) Update(templeID string, req *models.UpdateTempleRequest) (*models.Temple, error) {
	query := `
		UPDATE temples
		SET name = COALESCE($2, name),
			description = COALESCE($3, description),
			city = COALESCE($4, city),
			state = COALESCE($5, state),
			country = COALESCE($6, country),
			latitude = COALESCE($7, latitude),
			longitude = COALESCE($8, longitude),
			rating = COALESCE($9, rating),
			point_value = COALESCE($10, point_value),
			darshan_enabled = COALESCE($11, darshan_enabled),
			image_url = COALESCE($12, image_url),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, description, city, state, country,
				  latitude, longitude, rating, point_value, darshan_enabled, image_url,
				  created_at, updated_at
	`

	return r.scanTemple(r.db.QueryRow(
		query,
		templeID, req.Name, req.Description, req.City, req.State, req.Country,
		req.Latitude, req.Longitude, req.Rating, req.PointValue,
		req.DarshanEnabled, req.ImageURL,
	))
}

// scanTemple scans a single temple row
func (r *TempleRepository) scanTemple(row scanner) (*models.Temple, error) {
	temple := &models.Temple{}
	var description sql.NullString
	var imageURL sql.NullString

	err := row.Scan(
		&temple.ID, &temple.Name, &description, &temple.City, &temple.State, &temple.Country,
		&temple.Latitude, &temple.Longitude, &temple.Rating, &temple.PointValue,
		&temple.DarshanEnabled, &imageURL,
		&temple.CreatedAt, &temple.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		temple.Description = &description.String
	}
	if imageURL.Valid {
		temple.ImageURL = &imageURL.String
	}

	return temple, nil
}
