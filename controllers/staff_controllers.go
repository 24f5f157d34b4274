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

type StaffController struct {
	DB *gorm.DB
}

func NewStaffController(db *gorm.DB) *StaffController {
	return &StaffController{DB: db}
}

type staffRequest struct {
	Name    string `json:"name" binding:"required"`
	PhoneNo string `json:"phoneNo"`
	Role    string `json:"role"`
}

func (sc *StaffController) GetStaff(c *gin.Context) {
	page := utils.ParsePagination(c)
	query := sc.DB.WithContext(c.Request.Context()).Model(&models.Staff{}).
		Where("restaurant_id = ?", restaurantID(c))
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE ?", utils.LikePattern(search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	var staff []models.Staff
	if err := query.Order("name asc").Scopes(page.Scope).Find(&staff).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of staff", page.Result(staff, total))
}

func (sc *StaffController) CreateStaff(c *gin.Context) {
	var req staffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}

	staff := models.Staff{
		RestaurantID: restaurantID(c),
		Name:         strings.TrimSpace(req.Name),
		PhoneNo:      req.PhoneNo,
		Role:         strings.ToUpper(req.Role),
	}
	if staff.Role == "" {
		staff.Role = "WAITER"
	}
	if err := sc.DB.WithContext(c.Request.Context()).Create(&staff).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Staff created successfully", staff)
}

func (sc *StaffController) UpdateStaff(c *gin.Context) {
	staff, err := sc.ownedStaff(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req staffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}

	staff.Name = strings.TrimSpace(req.Name)
	staff.PhoneNo = req.PhoneNo
	if req.Role != "" {
		staff.Role = strings.ToUpper(req.Role)
	}
	if err := sc.DB.WithContext(c.Request.Context()).Save(staff).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Staff updated successfully", staff)
}

func (sc *StaffController) DeleteStaff(c *gin.Context) {
	staff, err := sc.ownedStaff(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := sc.DB.WithContext(c.Request.Context()).Delete(staff).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Staff deleted", gin.H{"id": staff.ID})
}

func (sc *StaffController) ownedStaff(c *gin.Context) (*models.Staff, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	var staff models.Staff
	err = sc.DB.WithContext(c.Request.Context()).
		Where("id = ? AND restaurant_id = ?", id, restaurantID(c)).First(&staff).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Staff not found")
		}
		return nil, err
	}
	return &staff, nil
}
