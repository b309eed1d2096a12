package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/growgram/growgram-api/internal/service"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	accountService *service.AccountService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accountService *service.AccountService) *AuthHandler {
	return &AuthHandler{accountService: accountService}
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	BirthDate string `json:"birth_date" binding:"omitempty"` // YYYY-MM-DD
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account and returns a token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "validation_error", "details": err.Error()})
		return
	}

	var birthDate *time.Time
	if req.BirthDate != "" {
		parsed, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "birth_date must be YYYY-MM-DD", "error_type": "validation_error"})
			return
		}
		birthDate = &parsed
	}

	result, err := h.accountService.Register(c.Request.Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		BirthDate: birthDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("[AuthHandler] user ID=%d (%s) registered, tier=%s", result.User.ID, result.User.Email, result.User.AgeTier)

	c.JSON(http.StatusCreated, gin.H{
		"user":        result.User,
		"accessToken": result.Token,
		"tokenType":   "Bearer",
	})
}

// Login verifies credentials and returns a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "validation_error", "details": err.Error()})
		return
	}

	result, err := h.accountService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        result.User,
		"accessToken": result.Token,
		"tokenType":   "Bearer",
	})
}
