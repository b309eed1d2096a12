package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// OperatorOnly guards operator endpoints (manual verification override, audit
// export) behind a shared token sent in the X-Operator-Token header. The token
// is issued to support staff out of band and is never part of the user flow.
func OperatorOnly(operatorToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if operatorToken == "" {
			log.Printf("[OperatorGate] operator token not configured, refusing %s", c.Request.URL.Path)
			c.JSON(http.StatusForbidden, gin.H{"error": "Operator access disabled", "error_type": "operator_disabled"})
			c.Abort()
			return
		}

		presented := c.GetHeader("X-Operator-Token")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(operatorToken)) != 1 {
			c.JSON(http.StatusForbidden, gin.H{"error": "Operator credential rejected", "error_type": "operator_credential_rejected"})
			c.Abort()
			return
		}

		c.Next()
	}
}
