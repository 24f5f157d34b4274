package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueease/services"
	"github.com/yeremiapane/queueease/utils"
)

// paramID -> baca path param numerik, BadRequest bila tidak valid
func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, utils.BadRequest("Invalid %s", name)
	}
	return uint(id), nil
}

func queryID(c *gin.Context, name string) (uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, utils.BadRequest("%s is required", name)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, utils.BadRequest("Invalid %s", name)
	}
	return uint(id), nil
}

// queryDay -> ?day=YYYY-MM-DD, default hari ini di zona restoran
func queryDay(c *gin.Context, loc *time.Location) (time.Time, error) {
	raw := c.Query("day")
	if raw == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}
	return services.ParseDay(raw, loc)
}

func queryBool(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.Query(name))
	return v
}

func adminID(c *gin.Context) uint { return c.GetUint("admin_id") }

func restaurantID(c *gin.Context) uint { return c.GetUint("restaurant_id") }

func customerPhone(c *gin.Context) string { return c.GetString("phone_no") }
