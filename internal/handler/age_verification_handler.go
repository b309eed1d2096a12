package handler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/growgram/growgram-api/internal/handler/helper"
	"github.com/growgram/growgram-api/internal/middleware"
	"github.com/growgram/growgram-api/internal/service"
)

// AgeVerificationHandler handles the strong verification flow: session start,
// provider callbacks, status and the operator endpoints.
type AgeVerificationHandler struct {
	verificationService *service.AgeVerificationService
	tierService         *service.TierService
	exportService       *service.AuditExportService
}

// NewAgeVerificationHandler creates a new verification handler.
func NewAgeVerificationHandler(
	verificationService *service.AgeVerificationService,
	tierService *service.TierService,
	exportService *service.AuditExportService,
) *AgeVerificationHandler {
	return &AgeVerificationHandler{
		verificationService: verificationService,
		tierService:         tierService,
		exportService:       exportService,
	}
}

// StartSessionRequest is the session start payload.
type StartSessionRequest struct {
	RedirectURL string `json:"redirect_url" binding:"omitempty,url,max=500"`
}

// ProviderWebhookRequest is the inbound provider callback payload. Field names
// follow the provider contract; the status string is normalized downstream.
type ProviderWebhookRequest struct {
	UserID    uint   `json:"userId"`
	SessionID string `json:"sessionId" binding:"omitempty,max=64"`
	Provider  string `json:"provider" binding:"omitempty,max=50"`
	Method    string `json:"method" binding:"omitempty,max=50"`
	Reference string `json:"reference" binding:"omitempty,max=100"`
	Status    string `json:"status"`
}

// MarkVerifiedRequest is the operator override payload.
type MarkVerifiedRequest struct {
	UserID    uint   `json:"user_id" binding:"required"`
	Provider  string `json:"provider" binding:"required,max=50"`
	Method    string `json:"method" binding:"required,max=50"`
	Reference string `json:"reference" binding:"omitempty,max=100"`
}

// StartSession opens a verification session for the authenticated user.
func (h *AgeVerificationHandler) StartSession(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "validation_error", "details": err.Error()})
		return
	}

	result, err := h.verificationService.StartSession(c.Request.Context(), userID, req.RedirectURL)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[AgeVerificationHandler] user %d started verification session %s", userID, result.SessionID)
	c.JSON(http.StatusCreated, result)
}

// ProviderWebhook receives the provider's asynchronous result. The route is
// authenticated by the provider's webhook secret at the gateway; duplicated
// deliveries are expected and collapse into no-ops.
func (h *AgeVerificationHandler) ProviderWebhook(c *gin.Context) {
	var req ProviderWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", service.ErrMalformedWebhookPayload, err))
		return
	}

	result, err := h.verificationService.CompleteFromProvider(c.Request.Context(), service.ProviderWebhookInput{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Provider:  req.Provider,
		Method:    req.Method,
		Reference: req.Reference,
		Status:    req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// MarkVerified is the operator override. Must be routed behind OperatorOnly.
func (h *AgeVerificationHandler) MarkVerified(c *gin.Context) {
	var req MarkVerifiedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "validation_error", "details": err.Error()})
		return
	}

	err := h.verificationService.MarkVerifiedByAdmin(c.Request.Context(), service.AdminVerificationInput{
		UserID:    req.UserID,
		Provider:  req.Provider,
		Method:    req.Method,
		Reference: req.Reference,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[AgeVerificationHandler] operator marked user %d verified via %s/%s", req.UserID, req.Provider, req.Method)
	c.JSON(http.StatusOK, gin.H{"user_id": req.UserID, "status": "VERIFIED"})
}

// Status returns the authenticated user's age status with the tier freshly
// computed from the primary store.
func (h *AgeVerificationHandler) Status(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
		return
	}

	user, err := h.verificationService.GetStatus(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, helper.AgeStatusFromUser(user, user.ComputeTier(time.Now())))
}

// AuditExport streams a user's audit trail as an XLSX workbook. Operator only.
func (h *AgeVerificationHandler) AuditExport(c *gin.Context) {
	var query struct {
		UserID uint `form:"user_id" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id query parameter is required", "error_type": "validation_error"})
		return
	}

	buf, err := h.exportService.ExportUserAudit(c.Request.Context(), query.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("age-audit-user-%d-%s.xlsx", query.UserID, time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
