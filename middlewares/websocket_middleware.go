package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueease/utils"
)

// WebSocketAuthMiddleware -> browser tidak bisa mengirim header Authorization saat upgrade,
// jadi token admin dibaca dari query ?token=
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := utils.ParseAdminToken(token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set("admin_id", claims.AdminID)
		c.Next()
	}
}
