package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fanhub/fanhub-core/pkg/logger"
)

const headerAPIKey = "X-Api-Key"

// RequireSyncSecret guards the synchronization trigger with a shared
// secret. An empty configured secret rejects every request, so a
// missing deployment value fails closed.
func RequireSyncSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(headerAPIKey)

		if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			logger.Log.Warn("unauthorized sync request",
				zap.String("path", c.Request.URL.Path),
				zap.String("remoteAddr", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Next()
	}
}
