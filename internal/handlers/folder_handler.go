package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/acquire/internal/middleware"
	"github.com/stwalsh4118/acquire/internal/models"
	"github.com/stwalsh4118/acquire/internal/services"
)

// FolderHandler handles search folder HTTP requests.
type FolderHandler struct {
	service services.FolderService
}

// NewFolderHandler creates a new FolderHandler instance.
func NewFolderHandler(service services.FolderService) *FolderHandler {
	return &FolderHandler{service: service}
}

// CreateFolderRequest is the body of POST /folders.
type CreateFolderRequest struct {
	StartDate       *time.Time             `json:"startDate"`
	Name            string                 `json:"name" binding:"required"`
	Description     string                 `json:"description"`
	Status          models.FolderStatus    `json:"status" binding:"omitempty,oneof=Pendiente Abierta Cerrada"`
	TransactionType models.TransactionType `json:"transactionType" binding:"omitempty,oneof=Compra Alquiler"`
	Color           string                 `json:"color"`
	Budget          float64                `json:"budget" binding:"min=0"`
}

// UpdateFolderRequest is the body of PATCH /folders/:id. Absent fields are
// left unchanged.
type UpdateFolderRequest struct {
	StartDate       *time.Time              `json:"startDate"`
	Name            *string                 `json:"name"`
	Description     *string                 `json:"description"`
	Status          *models.FolderStatus    `json:"status" binding:"omitempty,oneof=Pendiente Abierta Cerrada"`
	TransactionType *models.TransactionType `json:"transactionType" binding:"omitempty,oneof=Compra Alquiler"`
	Color           *string                 `json:"color"`
	Budget          *float64                `json:"budget" binding:"omitempty,min=0"`
}

// ShareFolderRequest is the body of POST /folders/:id/shares.
type ShareFolderRequest struct {
	UserID string `json:"userId" binding:"required"`
	Role   string `json:"role" binding:"omitempty,oneof=editor viewer"`
}

// FolderListResponse wraps the folder summaries.
type FolderListResponse struct {
	Folders []models.FolderSummary `json:"folders"`
	Count   int                    `json:"count"`
}

// List handles GET /api/v1/folders.
func (h *FolderHandler) List(c *gin.Context) {
	folders, err := h.service.ListSummaries(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, "list folders", err)
		return
	}
	c.JSON(http.StatusOK, FolderListResponse{Folders: folders, Count: len(folders)})
}

// Get handles GET /api/v1/folders/:id.
func (h *FolderHandler) Get(c *gin.Context) {
	folder, err := h.service.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, "load folder", err)
		return
	}
	c.JSON(http.StatusOK, folder)
}

// Create handles POST /api/v1/folders.
func (h *FolderHandler) Create(c *gin.Context) {
	var req CreateFolderRequest
	if !bind(c, &req) {
		return
	}

	in := services.FolderInput{
		Name:            req.Name,
		Description:     req.Description,
		Status:          req.Status,
		TransactionType: req.TransactionType,
		Color:           req.Color,
		Budget:          req.Budget,
	}
	if req.StartDate != nil {
		in.StartDate = *req.StartDate
	}

	folder, err := h.service.Create(c.Request.Context(), userID(c), in)
	if err != nil {
		respondError(c, "create folder", err)
		return
	}
	c.JSON(http.StatusCreated, folder)
}

// Update handles PATCH /api/v1/folders/:id.
func (h *FolderHandler) Update(c *gin.Context) {
	var req UpdateFolderRequest
	if !bind(c, &req) {
		return
	}

	folder, err := h.service.Update(c.Request.Context(), userID(c), c.Param("id"), services.FolderPatch{
		StartDate:       req.StartDate,
		Name:            req.Name,
		Description:     req.Description,
		Status:          req.Status,
		TransactionType: req.TransactionType,
		Color:           req.Color,
		Budget:          req.Budget,
	})
	if err != nil {
		respondError(c, "update folder", err)
		return
	}
	c.JSON(http.StatusOK, folder)
}

// Delete handles DELETE /api/v1/folders/:id. Without ?confirm=true it
// answers 428 with the cascade impact and deletes nothing.
func (h *FolderHandler) Delete(c *gin.Context) {
	confirmed := c.Query("confirm") == "true"

	impact, err := h.service.Delete(c.Request.Context(), userID(c), c.Param("id"), confirmed)
	if err != nil {
		respondError(c, "delete folder", err)
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Folder deleted with cascade", map[string]interface{}{
			"folder_id":  c.Param("id"),
			"properties": impact.Properties,
			"visits":     impact.Visits,
		})
	}
	c.JSON(http.StatusOK, gin.H{"deleted": impact})
}

// Share handles POST /api/v1/folders/:id/shares.
func (h *FolderHandler) Share(c *gin.Context) {
	var req ShareFolderRequest
	if !bind(c, &req) {
		return
	}

	role := models.ParseShareRole(req.Role)
	if err := h.service.Share(c.Request.Context(), userID(c), c.Param("id"), req.UserID, role); err != nil {
		respondError(c, "share folder", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"folderId": c.Param("id"), "userId": req.UserID, "role": role})
}
