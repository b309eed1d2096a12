package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/growgram/growgram-api/internal/middleware"
	"github.com/growgram/growgram-api/internal/service"
)

// ComplianceHandler handles consent acknowledgment requests.
type ComplianceHandler struct {
	complianceService *service.ComplianceService
}

// NewComplianceHandler creates a new compliance handler.
func NewComplianceHandler(complianceService *service.ComplianceService) *ComplianceHandler {
	return &ComplianceHandler{complianceService: complianceService}
}

// ComplianceAckRequest is the consent declaration payload. agree and over16
// are mandatory; over18 upgrades to self-declared adult.
type ComplianceAckRequest struct {
	Agree   bool   `json:"agree"`
	Over16  bool   `json:"over16"`
	Over18  bool   `json:"over18"`
	Version string `json:"version" binding:"omitempty,max=20"`
	Device  string `json:"device" binding:"omitempty,max=100"`
}

// AcceptCompliance records the acknowledgment for the authenticated user.
func (h *ComplianceHandler) AcceptCompliance(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
		return
	}

	var req ComplianceAckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "validation_error", "details": err.Error()})
		return
	}

	result, err := h.complianceService.AcceptCompliance(c.Request.Context(), userID, service.ComplianceAckInput{
		Agree:     req.Agree,
		Over16:    req.Over16,
		Over18:    req.Over18,
		Version:   req.Version,
		Device:    req.Device,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[ComplianceHandler] user %d acknowledged terms, tier=%s", userID, result.Tier)
	c.JSON(http.StatusOK, result)
}
