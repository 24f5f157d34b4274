package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueease/models"
	"github.com/yeremiapane/queueease/utils"
	"gorm.io/gorm"
)

type MealController struct {
	DB *gorm.DB
}

func NewMealController(db *gorm.DB) *MealController {
	return &MealController{DB: db}
}

type mealRequest struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"gte=0"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	ImageURL    *string `json:"imageUrl"`
}

// GetMeals -> menu publik restoran (?restaurantId=), filter ?search= dan ?category=
func (mc *MealController) GetMeals(c *gin.Context) {
	rid, err := queryID(c, "restaurantId")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	mc.listMeals(c, rid)
}

// GetRestaurantMeals -> menu untuk dashboard admin
func (mc *MealController) GetRestaurantMeals(c *gin.Context) {
	mc.listMeals(c, restaurantID(c))
}

func (mc *MealController) listMeals(c *gin.Context, rid uint) {
	page := utils.ParsePagination(c)
	query := mc.DB.WithContext(c.Request.Context()).Model(&models.Meal{}).Where("restaurant_id = ?", rid)
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE ?", utils.LikePattern(search))
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	var meals []models.Meal
	if err := query.Order("category asc, name asc").Scopes(page.Scope).Find(&meals).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of meals", page.Result(meals, total))
}

func (mc *MealController) CreateMeal(c *gin.Context) {
	var req mealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}

	meal := models.Meal{
		RestaurantID: restaurantID(c),
		Name:         strings.TrimSpace(req.Name),
		Price:        req.Price,
		Category:     req.Category,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
	}
	if err := mc.DB.WithContext(c.Request.Context()).Create(&meal).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.InfoLogger.Printf("New meal created: %s (restaurant=%d)", meal.Name, meal.RestaurantID)
	utils.RespondJSON(c, http.StatusCreated, "Meal created successfully", meal)
}

func (mc *MealController) UpdateMeal(c *gin.Context) {
	meal, err := mc.ownedMeal(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req mealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}

	meal.Name = strings.TrimSpace(req.Name)
	meal.Price = req.Price
	meal.Category = req.Category
	meal.Description = req.Description
	if req.ImageURL != nil {
		meal.ImageURL = req.ImageURL
	}

	if err := mc.DB.WithContext(c.Request.Context()).Save(meal).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Meal updated successfully", meal)
}

func (mc *MealController) DeleteMeal(c *gin.Context) {
	meal, err := mc.ownedMeal(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := mc.DB.WithContext(c.Request.Context()).Delete(meal).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.InfoLogger.Printf("Meal %d deleted", meal.ID)
	utils.RespondJSON(c, http.StatusOK, "Meal deleted", gin.H{"id": meal.ID})
}

func (mc *MealController) ownedMeal(c *gin.Context) (*models.Meal, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	var meal models.Meal
	err = mc.DB.WithContext(c.Request.Context()).
		Where("id = ? AND restaurant_id = ?", id, restaurantID(c)).First(&meal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Meal not found")
		}
		return nil, err
	}
	return &meal, nil
}
