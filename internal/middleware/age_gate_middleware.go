package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/growgram/growgram-api/internal/domain/entity"
	apperrors "github.com/growgram/growgram-api/internal/pkg/errors"
	"github.com/growgram/growgram-api/internal/service"
)

const tierContextKey = "age_tier"

// AgeGateMiddleware enforces age tier requirements on routes.
//
// The soft gate (AttachTier) annotates the request and may serve a cached
// tier. The hard gate (RequireAdultTier) always resolves against the primary
// store before letting a request through.
type AgeGateMiddleware struct {
	tierService *service.TierService
}

// NewAgeGateMiddleware creates a new age gate middleware.
func NewAgeGateMiddleware(tierService *service.TierService) *AgeGateMiddleware {
	return &AgeGateMiddleware{tierService: tierService}
}

// AttachTier resolves the viewer's tier and stores it in the request context.
// Guests get UNKNOWN. Resolution failures also degrade to UNKNOWN rather than
// failing the request: the downstream filter then shows unrestricted content
// only.
func (m *AgeGateMiddleware) AttachTier() gin.HandlerFunc {
	return func(c *gin.Context) {
		tier := entity.TierUnknown

		if userID, ok := UserIDFromContext(c); ok {
			info, err := m.tierService.ResolveCached(c.Request.Context(), userID)
			if err != nil {
				log.Printf("[AgeGate] tier resolution failed for user %d, treating as UNKNOWN: %v", userID, err)
			} else {
				tier = info.Tier
			}
		}

		c.Set(tierContextKey, tier)
		c.Next()
	}
}

// RequireAdultTier is the hard gate for 18+ areas. It requires an
// authenticated identity and a freshly resolved EIGHTEEN_VERIFIED tier;
// self-declared adults are refused. Must be applied after RequireAuth.
func (m *AgeGateMiddleware) RequireAdultTier() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "token_missing"})
			c.Abort()
			return
		}

		info, err := m.tierService.Resolve(c.Request.Context(), userID)
		if err != nil {
			// A missing user record is an access decision; a storage failure
			// is not and must never be disguised as one.
			if errors.Is(err, apperrors.ErrNotFound) {
				c.JSON(http.StatusForbidden, gin.H{"error": "Adult verification required", "error_type": "adult_verification_required"})
			} else {
				log.Printf("[AgeGate] tier resolution failed for user %d: %v", userID, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "error_type": "internal_server_error"})
			}
			c.Abort()
			return
		}
		if !info.CanAccessAdultAreas {
			c.JSON(http.StatusForbidden, gin.H{"error": "Adult verification required", "error_type": "adult_verification_required"})
			c.Abort()
			return
		}

		c.Set(tierContextKey, info.Tier)
		c.Next()
	}
}

// TierFromContext returns the tier attached by the gate, UNKNOWN otherwise.
func TierFromContext(c *gin.Context) entity.AgeTier {
	v, exists := c.Get(tierContextKey)
	if !exists {
		return entity.TierUnknown
	}
	tier, ok := v.(entity.AgeTier)
	if !ok || !tier.IsValid() {
		return entity.TierUnknown
	}
	return tier
}
