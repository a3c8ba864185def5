package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/stwalsh4118/acquire/internal/errors"
	"github.com/stwalsh4118/acquire/internal/intake"
	"github.com/stwalsh4118/acquire/internal/middleware"
	"github.com/stwalsh4118/acquire/internal/services"
)

// bind decodes the JSON body into req and writes a 400 on failure.
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		bindFailed(c, err)
		return false
	}
	return true
}

func bindFailed(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		apierrors.ValidationError(c, validationErrors)
		return
	}
	apierrors.BadRequest(c, "Invalid request body", map[string]interface{}{"error": err.Error()})
}

func userID(c *gin.Context) string {
	return middleware.GetUserID(c)
}

// respondError maps service and intake errors onto the JSON error envelope.
// action names the failed operation in 500 responses.
func respondError(c *gin.Context, action string, err error) {
	var confirm *services.ConfirmationError
	switch {
	case errors.As(err, &confirm):
		apierrors.ConfirmationRequired(c, "This deletes the folder and everything filed under it; repeat with confirm=true",
			map[string]interface{}{
				"properties":   confirm.Impact.Properties,
				"visits":       confirm.Impact.Visits,
				"documents":    confirm.Impact.Documents,
				"pendingLinks": confirm.Impact.PendingLinks,
			})
	case errors.Is(err, intake.ErrAddressUnconfirmed):
		apierrors.ConfirmationRequired(c, "The address could not be verified; commit again with confirmInvalidAddress to keep it",
			map[string]interface{}{"reason": "address_invalid"})

	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, intake.ErrInvalidMode),
		errors.Is(err, intake.ErrAddressRequired):
		apierrors.BadRequest(c, err.Error(), nil)

	case errors.Is(err, services.ErrFolderAccess),
		errors.Is(err, services.ErrReadOnly):
		apierrors.Forbidden(c, err.Error())

	case errors.Is(err, services.ErrFolderNotFound),
		errors.Is(err, services.ErrPropertyNotFound),
		errors.Is(err, services.ErrVisitNotFound),
		errors.Is(err, services.ErrDocumentNotFound),
		errors.Is(err, services.ErrLinkNotFound),
		errors.Is(err, services.ErrItineraryNotFound),
		errors.Is(err, services.ErrItineraryExpired),
		errors.Is(err, intake.ErrSessionNotFound):
		apierrors.NotFound(c, err.Error())

	case errors.Is(err, intake.ErrValidationPending),
		errors.Is(err, intake.ErrInvalidTransition):
		apierrors.Conflict(c, err.Error(), nil)

	case errors.Is(err, services.ErrNoFolder):
		apierrors.PreconditionFailed(c, err.Error())

	case errors.Is(err, services.ErrInconsistentPair):
		apierrors.InternalServerError(c, "Visit and property statuses disagree and need manual reconciliation", err)

	default:
		apierrors.InternalServerError(c, "Failed to "+action, err)
	}
}
