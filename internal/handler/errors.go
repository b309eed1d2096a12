package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/growgram/growgram-api/internal/pkg/errors"
	"github.com/growgram/growgram-api/internal/service"
)

// respondError maps service errors onto HTTP status codes and machine-readable
// error_type values. Clients branch on error_type, not the message text.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidComplianceInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "invalid_compliance_input"})
	case errors.Is(err, service.ErrMalformedWebhookPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "malformed_webhook_payload"})
	case errors.Is(err, service.ErrAdultVerificationRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "error_type": "adult_verification_required"})
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "already_exists"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "error_type": "invalid_credentials"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "error_type": "validation_error"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden", "error_type": "forbidden"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "error_type": "conflict"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "error_type": "internal_server_error"})
	}
}
