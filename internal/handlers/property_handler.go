package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/acquire/internal/errors"
	"github.com/stwalsh4118/acquire/internal/filter"
	"github.com/stwalsh4118/acquire/internal/middleware"
	"github.com/stwalsh4118/acquire/internal/models"
	"github.com/stwalsh4118/acquire/internal/services"
)

// PropertyHandler handles property and dashboard HTTP requests.
type PropertyHandler struct {
	service   services.PropertyService
	dashboard services.DashboardService
}

// NewPropertyHandler creates a new PropertyHandler instance.
func NewPropertyHandler(service services.PropertyService, dashboard services.DashboardService) *PropertyHandler {
	return &PropertyHandler{service: service, dashboard: dashboard}
}

// UpdateStatusRequest is the body of PATCH /properties/:id/status.
type UpdateStatusRequest struct {
	Status models.PropertyStatus `json:"status" binding:"required,oneof=Wishlist Contacted Visited Offered Discarded"`
}

// PropertyListResponse wraps a filtered property list.
type PropertyListResponse struct {
	Properties    []models.Property `json:"properties"`
	Count         int               `json:"count"`
	ActiveFilters int               `json:"activeFilters"`
}

// queryFromRequest parses the filter query string, writing a 400 on failure.
func queryFromRequest(c *gin.Context) (filter.Query, bool) {
	q, err := filter.FromValues(c.Request.URL.Query())
	if err != nil {
		apierrors.BadRequest(c, "Invalid filter parameters", map[string]interface{}{"error": err.Error()})
		return filter.Query{}, false
	}
	return q, true
}

// List handles GET /api/v1/properties.
func (h *PropertyHandler) List(c *gin.Context) {
	q, ok := queryFromRequest(c)
	if !ok {
		return
	}

	props, err := h.service.List(c.Request.Context(), userID(c), q)
	if err != nil {
		respondError(c, "list properties", err)
		return
	}
	c.JSON(http.StatusOK, PropertyListResponse{
		Properties:    props,
		Count:         len(props),
		ActiveFilters: filter.ActiveCount(q.Filters),
	})
}

// Dashboard handles GET /api/v1/dashboard. It always answers 200; a
// collection that could not be read comes back empty with degraded set.
func (h *PropertyHandler) Dashboard(c *gin.Context) {
	q, ok := queryFromRequest(c)
	if !ok {
		return
	}

	d := h.dashboard.Load(c.Request.Context(), userID(c), q)
	if d.Degraded {
		if log := middleware.GetLogger(c); log != nil {
			log.Warn("Dashboard served degraded", nil)
		}
	}
	c.JSON(http.StatusOK, d)
}

// Get handles GET /api/v1/properties/:id.
func (h *PropertyHandler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, "load property", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create handles POST /api/v1/properties. folderId in the body picks the
// target folder; without it the first writable folder is used.
func (h *PropertyHandler) Create(c *gin.Context) {
	var p models.Property
	if !bind(c, &p) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), userID(c), &p, p.FolderID)
	if err != nil {
		respondError(c, "create property", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/v1/properties/:id.
func (h *PropertyHandler) Update(c *gin.Context) {
	var p models.Property
	if !bind(c, &p) {
		return
	}
	p.ID = c.Param("id")

	updated, err := h.service.Update(c.Request.Context(), userID(c), &p)
	if err != nil {
		respondError(c, "update property", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UpdateStatus handles PATCH /api/v1/properties/:id/status.
func (h *PropertyHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !bind(c, &req) {
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), userID(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, "update property status", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UpdateRenovations handles PUT /api/v1/properties/:id/renovations. The
// body is the complete list.
func (h *PropertyHandler) UpdateRenovations(c *gin.Context) {
	var items []models.RenovationItem
	if !bind(c, &items) {
		return
	}

	updated, err := h.service.UpdateRenovations(c.Request.Context(), userID(c), c.Param("id"), items)
	if err != nil {
		respondError(c, "update renovations", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/properties/:id.
func (h *PropertyHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, "delete property", err)
		return
	}
	c.Status(http.StatusNoContent)
}
