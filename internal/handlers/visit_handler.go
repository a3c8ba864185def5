package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/acquire/internal/models"
	"github.com/stwalsh4118/acquire/internal/services"
)

// VisitHandler handles visit scheduling HTTP requests.
type VisitHandler struct {
	service services.VisitService
}

// NewVisitHandler creates a new VisitHandler instance.
func NewVisitHandler(service services.VisitService) *VisitHandler {
	return &VisitHandler{service: service}
}

// ScheduleVisitRequest is the body of POST /visits.
type ScheduleVisitRequest struct {
	PropertyID   string                 `json:"propertyId" binding:"required"`
	Date         string                 `json:"date" binding:"required,datetime=2006-01-02"`
	Time         string                 `json:"time" binding:"omitempty,datetime=15:04"`
	ContactName  string                 `json:"contactName"`
	ContactPhone string                 `json:"contactPhone"`
	Notes        string                 `json:"notes"`
	Checklist    []models.ChecklistItem `json:"checklist"`
}

// UpdateVisitRequest is the body of PATCH /visits/:id. Absent fields are
// left unchanged.
type UpdateVisitRequest struct {
	Date           *string                `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time           *string                `json:"time" binding:"omitempty,datetime=15:04"`
	ContactName    *string                `json:"contactName"`
	ContactPhone   *string                `json:"contactPhone"`
	Notes          *string                `json:"notes"`
	Status         *models.VisitStatus    `json:"status" binding:"omitempty,oneof=Scheduled Cancelled"`
	ClientFeedback *string                `json:"clientFeedback"`
	Checklist      []models.ChecklistItem `json:"checklist"`
	Photos         []string               `json:"photos"`
}

// CompleteVisitRequest is the optional body of POST /visits/:id/complete.
type CompleteVisitRequest struct {
	PropertyID string `json:"propertyId"`
}

// VisitListResponse wraps a list of visits.
type VisitListResponse struct {
	Visits []models.Visit `json:"visits"`
	Count  int            `json:"count"`
}

// List handles GET /api/v1/visits with an optional ?folderId filter.
func (h *VisitHandler) List(c *gin.Context) {
	visits, err := h.service.List(c.Request.Context(), userID(c), c.Query("folderId"))
	if err != nil {
		respondError(c, "list visits", err)
		return
	}
	c.JSON(http.StatusOK, VisitListResponse{Visits: visits, Count: len(visits)})
}

// Get handles GET /api/v1/visits/:id.
func (h *VisitHandler) Get(c *gin.Context) {
	v, err := h.service.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, "load visit", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// Schedule handles POST /api/v1/visits.
func (h *VisitHandler) Schedule(c *gin.Context) {
	var req ScheduleVisitRequest
	if !bind(c, &req) {
		return
	}

	v, err := h.service.Schedule(c.Request.Context(), userID(c), services.VisitInput{
		PropertyID:   req.PropertyID,
		Date:         req.Date,
		Time:         req.Time,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		Notes:        req.Notes,
		Checklist:    req.Checklist,
	})
	if err != nil {
		respondError(c, "schedule visit", err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// Update handles PATCH /api/v1/visits/:id.
func (h *VisitHandler) Update(c *gin.Context) {
	var req UpdateVisitRequest
	if !bind(c, &req) {
		return
	}

	v, err := h.service.Update(c.Request.Context(), userID(c), c.Param("id"), services.VisitPatch{
		Date:           req.Date,
		Time:           req.Time,
		ContactName:    req.ContactName,
		ContactPhone:   req.ContactPhone,
		Notes:          req.Notes,
		Status:         req.Status,
		ClientFeedback: req.ClientFeedback,
		Checklist:      req.Checklist,
		Photos:         req.Photos,
	})
	if err != nil {
		respondError(c, "update visit", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// Delete handles DELETE /api/v1/visits/:id.
func (h *VisitHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, "delete visit", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Complete handles POST /api/v1/visits/:id/complete. It marks the visit
// Completed and its property Visited together.
func (h *VisitHandler) Complete(c *gin.Context) {
	var req CompleteVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindFailed(c, err)
		return
	}

	v, err := h.service.Complete(c.Request.Context(), userID(c), c.Param("id"), req.PropertyID)
	if err != nil {
		respondError(c, "complete visit", err)
		return
	}
	c.JSON(http.StatusOK, v)
}
