// admin_only.go
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const APIKeyHeader = "X-API-Key"

// AdminOnly protege rutas de administración (seed) con una API key.
// Sin key configurada la ruta queda abierta, como en el modo demo.
func AdminOnly(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		got := c.GetHeader(APIKeyHeader)
		if got == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "API key is required"})
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "admin privileges required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
