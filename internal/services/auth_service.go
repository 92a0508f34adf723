package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mssola/user_agent"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/bhakthiseva/darshan-backend/internal/database"
	"github.com/bhakthiseva/darshan-backend/internal/models"
	"github.com/bhakthiseva/darshan-backend/pkg/jwt"
)

// Auth errors
var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService handles registration, sign-in and session recording
type AuthService struct {
	userRepo   *database.UserRepository
	jwtService *jwt.Service
	bcryptCost int
	logger     *logrus.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo *database.UserRepository, jwtService *jwt.Service, bcryptCost int, logger *logrus.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates a new account and returns tokens for it
func (s *AuthService) Register(req *models.RegisterRequest) (*models.AuthResponse, error) {
	if _, err := s.userRepo.GetByEmail(req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(req.Email, req.Name, req.Phone, string(hash))
	if err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

// Login verifies credentials and records a session with device information
// parsed from the User-Agent header.
func (s *AuthService) Login(req *models.LoginRequest, userAgent, clientIP string) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session := &models.UserSession{
		UserID:     user.ID,
		DeviceInfo: describeDevice(userAgent),
		IPAddress:  clientIP,
	}
	// Session history is best effort; sign-in still succeeds
	if err := s.userRepo.CreateSession(session); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).
			Error("Failed to record sign-in session")
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(refreshToken string) (*models.AuthResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return s.issueTokens(user)
}

// Logout revokes all of the user's recorded sessions
func (s *AuthService) Logout(user *models.User) error {
	return s.userRepo.RevokeSessions(user.ID)
}

// issueTokens generates an access/refresh token pair for a user
func (s *AuthService) issueTokens(user *models.User) (*models.AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, user.Roles)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// describeDevice summarizes a User-Agent header for the session history
func describeDevice(uaHeader string) string {
	if uaHeader == "" {
		return "unknown"
	}

	ua := user_agent.New(uaHeader)
	browser, version := ua.Browser()

	device := "desktop"
	if ua.Mobile() {
		device = "mobile"
	} else if ua.Bot() {
		device = "bot"
	}

	return fmt.Sprintf("%s %s on %s (%s)", browser, version, ua.OS(), device)
}
