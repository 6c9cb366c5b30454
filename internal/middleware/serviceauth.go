package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TradingApplication/catalyst-trading-system/internal/authtoken"
)

// ServiceAuth authenticates inter-component calls (Coordinator -> News,
// Coordinator -> Scanner) either by a signed service JWT or by the static
// bcrypt-hashed service key, adapted from the teacher's
// ServiceAuthMiddleware which checked a single static key header.
func ServiceAuth(issuer *authtoken.Issuer, hashedServiceKey string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader("X-Service-Key"); key != "" {
			if authtoken.VerifyServiceKey(hashedServiceKey, key) {
				c.Next()
				return
			}
			logger.Warn("rejected request with invalid service key")
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "code": "unauthorized", "message": "invalid service key"})
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" || token == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "code": "unauthorized", "message": "missing service credentials"})
			c.Abort()
			return
		}

		claims, err := issuer.Parse(token)
		if err != nil {
			logger.Debug("rejected request with invalid service token", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "code": "unauthorized", "message": "invalid service token"})
			c.Abort()
			return
		}

		c.Set("caller_service", claims.Service)
		c.Set("cycle_id", claims.CycleID)
		c.Next()
	}
}
