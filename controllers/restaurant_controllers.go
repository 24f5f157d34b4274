package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yeremiapane/queueease/models"
	"github.com/yeremiapane/queueease/services"
	"github.com/yeremiapane/queueease/utils"
	"gorm.io/gorm"
)

const maxSlugSuffix = 50

type RestaurantController struct {
	DB *gorm.DB
}

func NewRestaurantController(db *gorm.DB) *RestaurantController {
	return &RestaurantController{DB: db}
}

type restaurantRequest struct {
	Name       string `json:"name" binding:"required"`
	Location   string `json:"location"`
	QrCode     string `json:"qrCode"`
	SharedLink string `json:"sharedLink"`
}

type openDaysRequest struct {
	OpenDays []int `json:"openDays" binding:"required,min=1,max=7,dive,min=1,max=7"`
}

type openHoursRequest struct {
	OpenHour          string `json:"openHour" binding:"required"`
	CloseHour         string `json:"closeHour" binding:"required"`
	SlotDurationInMin int    `json:"slotDurationInMin" binding:"required,gt=0"`
}

// GetRestaurants -> daftar restoran publik, ?search=
func (rc *RestaurantController) GetRestaurants(c *gin.Context) {
	page := utils.ParsePagination(c)
	query := rc.DB.WithContext(c.Request.Context()).Model(&models.Restaurant{})
	if search := c.Query("search"); search != "" {
		pattern := utils.LikePattern(search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(location) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	var restaurants []models.Restaurant
	if err := query.Order("name asc").Scopes(page.Scope).Find(&restaurants).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of restaurants", page.Result(restaurants, total))
}

func (rc *RestaurantController) GetRestaurantByID(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	restaurant, err := rc.find(c, "id = ?", id, false)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

// GetRestaurantDetails -> halaman publik restoran lengkap dengan meja dan menu
func (rc *RestaurantController) GetRestaurantDetails(c *gin.Context) {
	restaurant, err := rc.find(c, "slug = ?", c.Param("slug"), true)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

// GetMyRestaurant -> restoran milik admin yang login
func (rc *RestaurantController) GetMyRestaurant(c *gin.Context) {
	restaurant, err := rc.find(c, "admin_id = ?", adminID(c), true)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

// CreateRestaurant -> satu admin hanya boleh punya satu restoran
func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	var req restaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}

	db := rc.DB.WithContext(c.Request.Context())
	var admin models.Admin
	if err := db.First(&admin, adminID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, utils.NotFound("Admin not found"))
			return
		}
		utils.RespondError(c, err)
		return
	}

	var existing int64
	if err := db.Model(&models.Restaurant{}).Where("admin_id = ?", admin.ID).Count(&existing).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	if existing > 0 {
		utils.RespondError(c, utils.BadRequest("Admin already has a restaurant"))
		return
	}

	slug, err := rc.uniqueSlug(db, req.Name)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	restaurant := models.Restaurant{
		AdminID:    admin.ID,
		Name:       strings.TrimSpace(req.Name),
		Slug:       slug,
		Location:   req.Location,
		QrCode:     req.QrCode,
		SharedLink: req.SharedLink,
	}
	if err := db.Create(&restaurant).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			utils.RespondError(c, utils.Conflict("Restaurant already exists"))
			return
		}
		utils.RespondError(c, err)
		return
	}

	utils.InfoLogger.Printf("New restaurant created: %s (slug=%s, admin=%d)", restaurant.Name, restaurant.Slug, admin.ID)
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created successfully", restaurant)
}

func (rc *RestaurantController) UpdateRestaurant(c *gin.Context) {
	var req restaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}
	rc.update(c, "Restaurant updated successfully", map[string]interface{}{
		"name":        strings.TrimSpace(req.Name),
		"location":    req.Location,
		"qr_code":     req.QrCode,
		"shared_link": req.SharedLink,
	})
}

// UpdateOpenDays -> hari buka dalam format ISO (1=Senin ... 7=Minggu)
func (rc *RestaurantController) UpdateOpenDays(c *gin.Context) {
	var req openDaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}

	seen := make(map[int]bool, len(req.OpenDays))
	parts := make([]string, 0, len(req.OpenDays))
	for _, d := range req.OpenDays {
		if seen[d] {
			continue
		}
		seen[d] = true
		parts = append(parts, fmt.Sprint(d))
	}
	rc.update(c, "Open days updated successfully", map[string]interface{}{
		"open_days": strings.Join(parts, ","),
	})
}

// UpdateOpenHours -> jam buka, jam tutup dan durasi slot sekaligus
func (rc *RestaurantController) UpdateOpenHours(c *gin.Context) {
	var req openHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}
	if err := services.ValidateHours(req.OpenHour, req.CloseHour, req.SlotDurationInMin); err != nil {
		utils.RespondError(c, err)
		return
	}
	rc.update(c, "Open hours updated successfully", map[string]interface{}{
		"open_hour":            req.OpenHour,
		"close_hour":           req.CloseHour,
		"slot_duration_in_min": req.SlotDurationInMin,
	})
}

// DeleteRestaurant menghapus restoran beserta meja, menu, staff, antrian dan order-nya.
func (rc *RestaurantController) DeleteRestaurant(c *gin.Context) {
	rid := restaurantID(c)
	err := rc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		orderIDs := tx.Model(&models.Order{}).Select("id").Where("restaurant_id = ?", rid)
		if err := tx.Where("order_id IN (?)", orderIDs).Delete(&models.OrderMeal{}).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{&models.Order{}, &models.Queue{}, &models.Table{}, &models.Meal{}, &models.Staff{}} {
			if err := tx.Where("restaurant_id = ?", rid).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Restaurant{}, rid).Error
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.InfoLogger.Printf("Restaurant %d deleted by admin %d", rid, adminID(c))
	utils.RespondJSON(c, http.StatusOK, "Restaurant deleted", gin.H{"id": rid})
}

func (rc *RestaurantController) update(c *gin.Context, message string, fields map[string]interface{}) {
	db := rc.DB.WithContext(c.Request.Context())
	rid := restaurantID(c)
	if err := db.Model(&models.Restaurant{}).Where("id = ?", rid).Updates(fields).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	restaurant, err := rc.find(c, "id = ?", rid, false)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, message, restaurant)
}

func (rc *RestaurantController) find(c *gin.Context, cond string, arg interface{}, withDetails bool) (*models.Restaurant, error) {
	query := rc.DB.WithContext(c.Request.Context())
	if withDetails {
		query = query.Preload("Tables", func(db *gorm.DB) *gorm.DB { return db.Order("table_size asc, id asc") }).
			Preload("Meals", func(db *gorm.DB) *gorm.DB { return db.Order("category asc, name asc") })
	}
	var restaurant models.Restaurant
	if err := query.Where(cond, arg).First(&restaurant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Restaurant not found")
		}
		return nil, err
	}
	return &restaurant, nil
}

// uniqueSlug -> "warung-senja", lalu "warung-senja-2", "warung-senja-3", ...
func (rc *RestaurantController) uniqueSlug(db *gorm.DB, name string) (string, error) {
	base := utils.Slugify(name)
	if base == "" {
		base = "restaurant"
	}
	candidate := base
	for i := 2; i <= maxSlugSuffix; i++ {
		var count int64
		if err := db.Model(&models.Restaurant{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]), nil
}
