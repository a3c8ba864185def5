package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/acquire/internal/services"
)

// ItineraryHandler shares visit plans with clients.
type ItineraryHandler struct {
	service services.ItineraryService
}

// NewItineraryHandler creates a new ItineraryHandler instance.
func NewItineraryHandler(service services.ItineraryService) *ItineraryHandler {
	return &ItineraryHandler{service: service}
}

// CreateItineraryRequest is the body of POST /itineraries. A zero TTLHours
// never expires.
type CreateItineraryRequest struct {
	FolderID   string   `json:"folderId" binding:"required"`
	VisitIDs   []string `json:"visitIds" binding:"required,min=1"`
	ClientName string   `json:"clientName"`
	TTLHours   int      `json:"ttlHours" binding:"min=0,max=8760"`
}

// Create handles POST /api/v1/itineraries.
func (h *ItineraryHandler) Create(c *gin.Context) {
	var req CreateItineraryRequest
	if !bind(c, &req) {
		return
	}

	ttl := time.Duration(req.TTLHours) * time.Hour
	it, err := h.service.Create(c.Request.Context(), userID(c), req.FolderID, req.VisitIDs, req.ClientName, ttl)
	if err != nil {
		respondError(c, "share itinerary", err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

// Resolve handles the public GET /api/v1/itineraries/:token.
func (h *ItineraryHandler) Resolve(c *gin.Context) {
	resolved, err := h.service.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, "load itinerary", err)
		return
	}
	c.JSON(http.StatusOK, resolved)
}
