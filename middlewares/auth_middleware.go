package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueease/utils"
)

// bearerToken -> ambil token dari header Authorization: Bearer <token>
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// AdminAuth memvalidasi token admin dan menyimpan admin_id ke context.
func AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			utils.RespondError(c, utils.Unauthorized("Authorization header missing"))
			return
		}

		claims, err := utils.ParseAdminToken(tokenString)
		if err != nil {
			utils.RespondError(c, utils.Unauthorized("Invalid or expired token"))
			return
		}

		c.Set("token", tokenString)
		c.Set("admin_id", claims.AdminID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// CustomerAuth memvalidasi token customer. Identitas customer adalah nomor telepon.
func CustomerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			utils.RespondError(c, utils.Unauthorized("Authorization header missing"))
			return
		}

		claims, err := utils.ParseCustomerToken(tokenString)
		if err != nil {
			utils.RespondError(c, utils.Unauthorized("Invalid or expired token"))
			return
		}

		c.Set("token", tokenString)
		c.Set("customer_id", claims.CustomerID)
		c.Set("phone_no", claims.PhoneNo)
		c.Next()
	}
}
