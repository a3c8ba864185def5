package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/acquire/internal/intake"
	"github.com/stwalsh4118/acquire/internal/middleware"
	"github.com/stwalsh4118/acquire/internal/models"
)

// IntakeSessions is the session registry the intake endpoints drive.
type IntakeSessions interface {
	Start(ctx context.Context, userID, linkID string, mode intake.Mode) (*intake.Session, error)
	StartEdit(ctx context.Context, userID, propertyID string) (*intake.Session, error)
	Get(userID, sessionID string) (*intake.Session, error)
	Edit(userID, sessionID string, p intake.Patch) (intake.View, error)
	Commit(ctx context.Context, userID, sessionID string, opts intake.CommitOptions) (*models.Property, error)
	Abandon(userID, sessionID string) error
}

// IntakeHandler exposes intake sessions over HTTP.
type IntakeHandler struct {
	sessions IntakeSessions
}

// NewIntakeHandler creates a new IntakeHandler instance.
func NewIntakeHandler(sessions IntakeSessions) *IntakeHandler {
	return &IntakeHandler{sessions: sessions}
}

// StartIntakeRequest opens a session on a pending link or, with
// propertyId, on a stored property.
type StartIntakeRequest struct {
	LinkID     string `json:"linkId" binding:"required_without=PropertyID"`
	PropertyID string `json:"propertyId"`
	Mode       string `json:"mode" binding:"omitempty,oneof=ai manual"`
}

// Start handles POST /api/v1/intake/sessions.
func (h *IntakeHandler) Start(c *gin.Context) {
	var req StartIntakeRequest
	if !bind(c, &req) {
		return
	}

	var (
		session *intake.Session
		err     error
	)
	if req.PropertyID != "" {
		session, err = h.sessions.StartEdit(c.Request.Context(), userID(c), req.PropertyID)
	} else {
		mode, perr := intake.ParseMode(req.Mode)
		if perr != nil {
			respondError(c, "start intake", perr)
			return
		}
		session, err = h.sessions.Start(c.Request.Context(), userID(c), req.LinkID, mode)
	}
	if err != nil {
		respondError(c, "start intake", err)
		return
	}

	view := session.View()
	if log := middleware.GetLogger(c); log != nil {
		log.Info("Intake session opened", map[string]interface{}{
			"session_id": view.ID,
			"mode":       view.Mode,
			"degraded":   view.Draft.Degraded,
		})
	}
	c.JSON(http.StatusCreated, view)
}

// Get handles GET /api/v1/intake/sessions/:id.
func (h *IntakeHandler) Get(c *gin.Context) {
	session, err := h.sessions.Get(userID(c), c.Param("id"))
	if err != nil {
		respondError(c, "load intake session", err)
		return
	}
	c.JSON(http.StatusOK, session.View())
}

// Edit handles PATCH /api/v1/intake/sessions/:id/draft.
func (h *IntakeHandler) Edit(c *gin.Context) {
	var patch intake.Patch
	if !bind(c, &patch) {
		return
	}

	view, err := h.sessions.Edit(userID(c), c.Param("id"), patch)
	if err != nil {
		respondError(c, "edit draft", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Commit handles POST /api/v1/intake/sessions/:id/commit. The body is
// optional. Link sessions answer 201, edit sessions 200.
func (h *IntakeHandler) Commit(c *gin.Context) {
	var opts intake.CommitOptions
	if err := c.ShouldBindJSON(&opts); err != nil && !errors.Is(err, io.EOF) {
		bindFailed(c, err)
		return
	}

	session, err := h.sessions.Get(userID(c), c.Param("id"))
	if err != nil {
		respondError(c, "commit draft", err)
		return
	}
	status := http.StatusCreated
	if session.View().PropertyID != "" {
		status = http.StatusOK
	}

	property, err := h.sessions.Commit(c.Request.Context(), userID(c), session.ID(), opts)
	if err != nil {
		respondError(c, "commit draft", err)
		return
	}
	c.JSON(status, property)
}

// Abandon handles DELETE /api/v1/intake/sessions/:id.
func (h *IntakeHandler) Abandon(c *gin.Context) {
	if err := h.sessions.Abandon(userID(c), c.Param("id")); err != nil {
		respondError(c, "abandon intake", err)
		return
	}
	c.Status(http.StatusNoContent)
}
