package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/acquire/internal/geocoding"
)

// AddressHandler validates free-text addresses on demand.
type AddressHandler struct {
	checker geocoding.Checker
}

// NewAddressHandler creates a new AddressHandler instance.
func NewAddressHandler(checker geocoding.Checker) *AddressHandler {
	return &AddressHandler{checker: checker}
}

// ValidateAddressRequest is the query of GET /address/validate.
type ValidateAddressRequest struct {
	Query string `form:"q"`
}

// Validate handles GET /api/v1/address/validate?q=. Short input comes back
// idle without a lookup; lookup failures come back invalid.
func (h *AddressHandler) Validate(c *gin.Context) {
	var req ValidateAddressRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, h.checker.Validate(c.Request.Context(), req.Query))
}
