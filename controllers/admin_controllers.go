package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueease/models"
	"github.com/yeremiapane/queueease/services"
	"github.com/yeremiapane/queueease/utils"
	"gorm.io/gorm"
)

type AdminController struct {
	DB      *gorm.DB
	Monitor *services.FloorMonitor
}

func NewAdminController(db *gorm.DB, monitor *services.FloorMonitor) *AdminController {
	return &AdminController{DB: db, Monitor: monitor}
}

// Register admin baru
func (ac *AdminController) Register(c *gin.Context) {
	var req struct {
		Name            string `json:"name" binding:"required"`
		Email           string `json:"email" binding:"required,email"`
		Password        string `json:"password" binding:"required,min=6"`
		ConfirmPassword string `json:"confirmPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}
	if req.Password != req.ConfirmPassword {
		utils.RespondError(c, utils.BadRequest("Password and confirmation do not match"))
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(c, utils.Internal(err))
		return
	}

	admin := models.Admin{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: hashed,
	}
	if err := ac.DB.WithContext(c.Request.Context()).Create(&admin).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			utils.RespondError(c, utils.Conflict("Email is already registered"))
			return
		}
		utils.RespondError(c, err)
		return
	}

	utils.InfoLogger.Printf("New admin registered: %s", admin.Email)
	utils.RespondJSON(c, http.StatusCreated, "Admin registered", admin)
}

// Login admin -> return JWT
func (ac *AdminController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}

	var admin models.Admin
	err := ac.DB.WithContext(c.Request.Context()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&admin).Error
	if err != nil || !utils.CheckPassword(admin.Password, req.Password) {
		utils.RespondError(c, utils.Unauthorized("Invalid credentials"))
		return
	}

	token, err := utils.GenerateAdminToken(admin.ID, admin.Email)
	if err != nil {
		utils.RespondError(c, utils.Internal(err))
		return
	}

	utils.InfoLogger.Printf("Login successful for admin: %s", admin.Email)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"admin": admin,
	})
}

// Me -> profil admin dari JWT beserta restorannya
func (ac *AdminController) Me(c *gin.Context) {
	admin, err := ac.currentAdmin(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", admin)
}

func (ac *AdminController) UpdateMe(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}

	admin, err := ac.currentAdmin(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	err = ac.DB.WithContext(c.Request.Context()).Model(admin).Updates(map[string]interface{}{
		"name":  strings.TrimSpace(req.Name),
		"email": strings.ToLower(strings.TrimSpace(req.Email)),
	}).Error
	if err != nil {
		if utils.IsDuplicateKey(err) {
			utils.RespondError(c, utils.Conflict("Email is already registered"))
			return
		}
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile updated successfully", admin)
}

// Logout -> token dimasukkan ke blacklist sampai kadaluarsa
func (ac *AdminController) Logout(c *gin.Context) {
	utils.BlacklistToken(c.GetString("token"))
	utils.RespondJSON(c, http.StatusOK, "Logout successful", nil)
}

// GetDashboardStats -> ringkasan lantai restoran saat ini
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	stats, err := ac.Monitor.Snapshot(c.Request.Context(), restaurantID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

func (ac *AdminController) currentAdmin(c *gin.Context) (*models.Admin, error) {
	var admin models.Admin
	if err := ac.DB.WithContext(c.Request.Context()).Preload("Restaurant").First(&admin, adminID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Admin not found")
		}
		return nil, err
	}
	return &admin, nil
}
