package middlewares

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueease/models"
	"github.com/yeremiapane/queueease/utils"
	"gorm.io/gorm"
)

// RequireRestaurant memastikan admin yang login sudah punya restoran dan
// menyimpan restaurant_id ke context. Harus dipasang setelah AdminAuth.
func RequireRestaurant(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, exists := c.Get("admin_id")
		if !exists {
			utils.RespondError(c, utils.Unauthorized("unauthorized"))
			return
		}

		var restaurant models.Restaurant
		err := db.WithContext(c.Request.Context()).Select("id").
			Where("admin_id = ?", adminID).First(&restaurant).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondError(c, utils.Forbidden("Create a restaurant first"))
				return
			}
			utils.RespondError(c, err)
			return
		}

		c.Set("restaurant_id", restaurant.ID)
		c.Next()
	}
}
