package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growgram/growgram-api/pkg/auth"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService, err := auth.NewJWTService("test-secret-key", 1)
	require.NoError(t, err)
	m := NewAuthMiddleware(jwtService)

	router := gin.New()
	router.GET("/private", m.RequireAuth(), func(c *gin.Context) {
		userID, _ := UserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	router.GET("/mixed", m.OptionalAuth(), func(c *gin.Context) {
		userID, authed := UserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "authed": authed})
	})
	return router, jwtService
}

func TestRequireAuth(t *testing.T) {
	router, jwtService := newAuthRouter(t)

	token, err := jwtService.GenerateToken(42, "user@growgram-app.com")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestOptionalAuth_InvalidTokenPassesAsGuest(t *testing.T) {
	router, _ := newAuthRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/mixed", nil)
	req.Header.Set("Authorization", "Bearer broken")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authed":false`)
}
