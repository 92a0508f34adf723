package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bhakthiseva/darshan-backend/internal/chant"
	"github.com/bhakthiseva/darshan-backend/internal/database"
	"github.com/bhakthiseva/darshan-backend/internal/middleware"
	"github.com/bhakthiseva/darshan-backend/internal/models"
)

// ChantHandler handles the mantra catalog and chant counter sessions
type ChantHandler struct {
	mantraRepo *database.MantraRepository
	registry   *chant.Registry
}

// NewChantHandler creates a new chant handler
func NewChantHandler(mantraRepo *database.MantraRepository, registry *chant.Registry) *ChantHandler {
	return &ChantHandler{
		mantraRepo: mantraRepo,
		registry:   registry,
	}
}

// ListMantras handles GET /api/v1/mantras
func (h *ChantHandler) ListMantras(c *gin.Context) {
	mantras, err := h.mantraRepo.List()
	if err != nil {
		log.Printf("ERROR: Failed to list mantras: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve mantras",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mantras": mantras,
		"count":   len(mantras),
	})
}

// CreateMantraRequest represents the admin request to add a mantra
type CreateMantraRequest struct {
	Name     string  `json:"name" binding:"required"`
	Text     string  `json:"text" binding:"required"`
	Meaning  *string `json:"meaning,omitempty"`
	AudioURL *string `json:"audio_url,omitempty"`
}

// CreateMantra handles POST /api/v1/admin/mantras
func (h *ChantHandler) CreateMantra(c *gin.Context) {
	var req CreateMantraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	mantra := &models.Mantra{
		Name:     req.Name,
		Text:     req.Text,
		Meaning:  req.Meaning,
		AudioURL: req.AudioURL,
	}

	if err := h.mantraRepo.Create(mantra); err != nil {
		log.Printf("ERROR: Failed to create mantra %s: %v", req.Name, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to create mantra",
		})
		return
	}

	log.Printf("INFO: Mantra created - ID: %s, Name: %s", mantra.ID, mantra.Name)
	c.JSON(http.StatusCreated, mantra)
}

// StartChantRequest represents the request to start a chant session
type StartChantRequest struct {
	MantraID     string             `json:"mantra_id" binding:"required"`
	Target       int                `json:"target" binding:"required"`
	Mode         chant.Mode         `json:"mode" binding:"required"`
	Capabilities chant.Capabilities `json:"capabilities"`
}

// StartChant handles POST /api/v1/chants
func (h *ChantHandler) StartChant(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req StartChantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	if _, err := uuid.Parse(req.MantraID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid mantra ID format",
		})
		return
	}

	mantra, err := h.mantraRepo.GetByID(req.MantraID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Mantra not found",
			})
			return
		}
		log.Printf("ERROR: Failed to get mantra %s: %v", req.MantraID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve mantra",
		})
		return
	}

	state, err := h.registry.Start(userCtx.UserID.String(), mantra.ID, req.Target, req.Mode, req.Capabilities, mantra.HasAudio())
	if err != nil {
		h.writeChantError(c, err)
		return
	}

	log.Printf("INFO: Chant session started - Session: %s, Mantra: %s, Mode: %s, Target: %d",
		state.SessionID, mantra.ID, state.Mode, state.Target)
	c.JSON(http.StatusCreated, state)
}

// ChantEventRequest represents one counter event
type ChantEventRequest struct {
	Type       string `json:"type" binding:"required"` // "count", "transcript" or "audio_complete"
	Transcript string `json:"transcript,omitempty"`
}

// ChantEvent handles POST /api/v1/chants/:id/events
func (h *ChantHandler) ChantEvent(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)
	sessionID := c.Param("id")

	var req ChantEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "type is required",
		})
		return
	}

	var state chant.State
	var err error
	switch req.Type {
	case "count":
		state, err = h.registry.Increment(sessionID, userCtx.UserID.String())
	case "transcript":
		state, err = h.registry.VoiceTranscript(sessionID, userCtx.UserID.String(), req.Transcript)
	case "audio_complete":
		state, err = h.registry.AudioComplete(sessionID, userCtx.UserID.String())
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "type must be count, transcript or audio_complete",
		})
		return
	}

	if err != nil {
		h.writeChantError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// ResetChant handles POST /api/v1/chants/:id/reset
func (h *ChantHandler) ResetChant(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	state, err := h.registry.Reset(c.Param("id"), userCtx.UserID.String())
	if err != nil {
		h.writeChantError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// GetChant handles GET /api/v1/chants/:id
func (h *ChantHandler) GetChant(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	state, err := h.registry.Get(c.Param("id"), userCtx.UserID.String())
	if err != nil {
		h.writeChantError(c, err)
		return
	}

	c.JSON(http.StatusOK, state)
}

// EndChant handles DELETE /api/v1/chants/:id
func (h *ChantHandler) EndChant(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	if err := h.registry.End(c.Param("id"), userCtx.UserID.String()); err != nil {
		h.writeChantError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session ended"})
}

// MyAchievements handles GET /api/v1/chants/achievements
func (h *ChantHandler) MyAchievements(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	achievements, err := h.mantraRepo.GetAchievementsByUserID(userCtx.UserID.String())
	if err != nil {
		log.Printf("ERROR: Failed to list achievements for user %s: %v", userCtx.UserID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve achievements",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"achievements": achievements,
		"count":        len(achievements),
	})
}

// writeChantError maps chant registry errors to client responses
func (h *ChantHandler) writeChantError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chant.ErrVoiceUnavailable):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "voice_unavailable",
			Message: err.Error(),
		})
	case errors.Is(err, chant.ErrNoAudioClip):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "no_audio_clip",
			Message: err.Error(),
		})
	case errors.Is(err, chant.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Chant session not found",
		})
	case errors.Is(err, chant.ErrNotOwner):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "This chant session belongs to another user",
		})
	case errors.Is(err, chant.ErrInvalidTarget), errors.Is(err, chant.ErrInvalidMode), errors.Is(err, chant.ErrWrongMode):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	default:
		log.Printf("ERROR: Chant session error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Chant session failed",
		})
	}
}
