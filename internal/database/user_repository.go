package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bhakthiseva/darshan-backend/internal/models"
)

// UserRepository handles database operations for users and sessions
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser creates a new user account with the default user role
func (r *UserRepository) CreateUser(email, name string, phone *string, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (id, email, name, phone, password_hash, roles, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'active')
		RETURNING id, email, name, phone, password_hash, roles, status, created_at, updated_at
	`

	roles := []string{models.RoleUser}
	user, err := r.scanUser(r.db.QueryRow(query, uuid.New(), email, name, phone, passwordHash, pq.Array(roles)))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, email, name, phone, password_hash, roles, status, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	return r.scanUser(r.db.QueryRow(query, email))
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(userID uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, email, name, phone, password_hash, roles, status, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	return r.scanUser(r.db.QueryRow(query, userID))
}

// HasRole checks the role claim against the stored row rather than trusting
// the caller's token alone. Used by the privileged admin endpoints.
func (r *UserRepository) HasRole(userID uuid.UUID, role string) (bool, error) {
	query := `SELECT $2 = ANY(roles) FROM users WHERE id = $1`

	var has bool
	if err := r.db.QueryRow(query, userID, role).Scan(&has); err != nil {
		return false, err
	}
	return has, nil
}

// CreateSession records a sign-in with parsed device information
func (r *UserRepository) CreateSession(session *models.UserSession) error {
	query := `
		INSERT INTO user_sessions (id, user_id, device_info, ip_address)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	return r.db.QueryRow(
		query,
		session.ID, session.UserID, session.DeviceInfo, session.IPAddress,
	).Scan(&session.CreatedAt)
}

// RevokeSessions marks all of a user's sessions revoked (sign-out)
func (r *UserRepository) RevokeSessions(userID uuid.UUID) error {
	query := `
		UPDATE user_sessions
		SET revoked_at = $2
		WHERE user_id = $1 AND revoked_at IS NULL
	`

	_, err := r.db.Exec(query, userID, time.Now())
	return err
}

// scanUser scans a single user row
func (r *UserRepository) scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var phone *string
	var roles pq.StringArray

	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &phone, &user.PasswordHash,
		&roles, &user.Status, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Phone = phone
	user.Roles = []string(roles)

	return user, nil
}
