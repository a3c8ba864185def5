package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/acquire/internal/models"
	"github.com/stwalsh4118/acquire/internal/services"
)

// DocumentHandler handles the document vault.
type DocumentHandler struct {
	service services.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler instance.
func NewDocumentHandler(service services.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

// CreateDocumentRequest is the body of POST /documents. A document with
// only a propertyId lands in that property's folder.
type CreateDocumentRequest struct {
	PropertyID *string                 `json:"propertyId"`
	FolderID   string                  `json:"folderId" binding:"required_without=PropertyID"`
	Name       string                  `json:"name" binding:"required"`
	Category   models.DocumentCategory `json:"category" binding:"omitempty,oneof=Legal Technical Financial Other"`
	FileURL    string                  `json:"fileUrl" binding:"required,url"`
	FileType   string                  `json:"fileType"`
}

// DocumentListResponse wraps a list of documents.
type DocumentListResponse struct {
	Documents []models.PropertyDocument `json:"documents"`
	Count     int                       `json:"count"`
}

// List handles GET /api/v1/documents with optional ?folderId and
// ?propertyId filters.
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.service.List(c.Request.Context(), userID(c), c.Query("folderId"), c.Query("propertyId"))
	if err != nil {
		respondError(c, "list documents", err)
		return
	}
	c.JSON(http.StatusOK, DocumentListResponse{Documents: docs, Count: len(docs)})
}

// Create handles POST /api/v1/documents.
func (h *DocumentHandler) Create(c *gin.Context) {
	var req CreateDocumentRequest
	if !bind(c, &req) {
		return
	}

	doc, err := h.service.Create(c.Request.Context(), userID(c), services.DocumentInput{
		FolderID:   req.FolderID,
		PropertyID: req.PropertyID,
		Name:       req.Name,
		Category:   req.Category,
		FileURL:    req.FileURL,
		FileType:   req.FileType,
	})
	if err != nil {
		respondError(c, "store document", err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// Delete handles DELETE /api/v1/documents/:id.
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, "delete document", err)
		return
	}
	c.Status(http.StatusNoContent)
}
