package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/acquire/internal/models"
	"github.com/stwalsh4118/acquire/internal/services"
)

// LinkHandler handles the pending link inbox.
type LinkHandler struct {
	service services.LinkService
}

// NewLinkHandler creates a new LinkHandler instance.
func NewLinkHandler(service services.LinkService) *LinkHandler {
	return &LinkHandler{service: service}
}

// SubmitLinksRequest is the body of POST /links.
type SubmitLinksRequest struct {
	FolderID string   `json:"folderId"`
	URLs     []string `json:"urls" binding:"required,min=1"`
}

// LinkListResponse wraps a list of pending links.
type LinkListResponse struct {
	Links []models.PendingLink `json:"links"`
	Count int                  `json:"count"`
}

// List handles GET /api/v1/links with an optional ?folderId filter.
func (h *LinkHandler) List(c *gin.Context) {
	links, err := h.service.List(c.Request.Context(), userID(c), c.Query("folderId"))
	if err != nil {
		respondError(c, "list pending links", err)
		return
	}
	c.JSON(http.StatusOK, LinkListResponse{Links: links, Count: len(links)})
}

// Submit handles POST /api/v1/links.
func (h *LinkHandler) Submit(c *gin.Context) {
	var req SubmitLinksRequest
	if !bind(c, &req) {
		return
	}

	links, err := h.service.Submit(c.Request.Context(), userID(c), req.FolderID, req.URLs)
	if err != nil {
		respondError(c, "queue links", err)
		return
	}
	c.JSON(http.StatusCreated, LinkListResponse{Links: links, Count: len(links)})
}

// Discard handles DELETE /api/v1/links/:id.
func (h *LinkHandler) Discard(c *gin.Context) {
	if err := h.service.Discard(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, "discard link", err)
		return
	}
	c.Status(http.StatusNoContent)
}
