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

type CustomerController struct {
	DB *gorm.DB
}

func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

type customerAccountRequest struct {
	PhoneNo         string `json:"phoneNo" binding:"required"`
	Name            string `json:"name"`
	Email           string `json:"email" binding:"omitempty,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// GetAllCustomers -> daftar customer untuk admin, ?search= nama atau nomor telepon
func (cc *CustomerController) GetAllCustomers(c *gin.Context) {
	page := utils.ParsePagination(c)
	query := cc.DB.WithContext(c.Request.Context()).Model(&models.Customer{})
	if search := c.Query("search"); search != "" {
		pattern := utils.LikePattern(search)
		query = query.Where("LOWER(name) LIKE ? OR phone_no LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	var customers []models.Customer
	if err := query.Order("created_at desc").Scopes(page.Scope).Find(&customers).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of customers", page.Result(customers, total))
}

// CreateCustomer -> profil shell (tanpa akun), biasanya dibuat staff di kasir
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var req struct {
		PhoneNo string `json:"phoneNo" binding:"required"`
		Name    string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}

	customer := models.Customer{
		PhoneNo: strings.TrimSpace(req.PhoneNo),
		Name:    strings.TrimSpace(req.Name),
	}
	if err := cc.DB.WithContext(c.Request.Context()).Create(&customer).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			utils.RespondError(c, utils.Conflict("Phone number is already registered"))
			return
		}
		utils.RespondError(c, err)
		return
	}

	utils.InfoLogger.Printf("New customer created (ID=%d)", customer.ID)
	utils.RespondJSON(c, http.StatusCreated, "Customer created", customer)
}

// Register -> akun baru untuk nomor telepon yang belum pernah antri
func (cc *CustomerController) Register(c *gin.Context) {
	var req customerAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}
	if req.Password != req.ConfirmPassword {
		utils.RespondError(c, utils.BadRequest("Password and confirmation do not match"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.RespondError(c, utils.BadRequest("name is required"))
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(c, utils.Internal(err))
		return
	}

	customer := models.Customer{
		PhoneNo:          strings.TrimSpace(req.PhoneNo),
		Name:             strings.TrimSpace(req.Name),
		Email:            optionalEmail(req.Email),
		Password:         &hashed,
		IsAccountCreated: true,
	}
	if err := cc.DB.WithContext(c.Request.Context()).Create(&customer).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			utils.RespondError(c, utils.Conflict("Phone number or email is already registered"))
			return
		}
		utils.RespondError(c, err)
		return
	}

	cc.respondWithToken(c, http.StatusCreated, "Customer registered", &customer)
}

// RegisterExisting -> klaim profil shell yang terbentuk saat antri menjadi akun penuh
func (cc *CustomerController) RegisterExisting(c *gin.Context) {
	var req customerAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}
	if req.Password != req.ConfirmPassword {
		utils.RespondError(c, utils.BadRequest("Password and confirmation do not match"))
		return
	}

	db := cc.DB.WithContext(c.Request.Context())
	customer, err := findCustomer(db, "phone_no = ?", strings.TrimSpace(req.PhoneNo))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if customer.IsAccountCreated {
		utils.RespondError(c, utils.BadRequest("Account already exists, please login"))
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondError(c, utils.Internal(err))
		return
	}

	customer.Password = &hashed
	customer.IsAccountCreated = true
	if email := optionalEmail(req.Email); email != nil {
		customer.Email = email
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		customer.Name = name
	}
	if err := db.Save(customer).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			utils.RespondError(c, utils.Conflict("Email is already registered"))
			return
		}
		utils.RespondError(c, err)
		return
	}

	cc.respondWithToken(c, http.StatusOK, "Customer registered", customer)
}

// Login -> phoneNo atau email + password
func (cc *CustomerController) Login(c *gin.Context) {
	var req struct {
		PhoneNo  string `json:"phoneNo"`
		Email    string `json:"email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}

	db := cc.DB.WithContext(c.Request.Context())
	var customer *models.Customer
	var err error
	switch {
	case req.PhoneNo != "":
		customer, err = findCustomer(db, "phone_no = ?", strings.TrimSpace(req.PhoneNo))
	case req.Email != "":
		customer, err = findCustomer(db, "email = ?", strings.ToLower(strings.TrimSpace(req.Email)))
	default:
		utils.RespondError(c, utils.BadRequest("phoneNo or email is required"))
		return
	}
	if err != nil || !customer.IsAccountCreated || customer.Password == nil ||
		!utils.CheckPassword(*customer.Password, req.Password) {
		utils.RespondError(c, utils.Unauthorized("Invalid credentials"))
		return
	}

	cc.respondWithToken(c, http.StatusOK, "Login successful", customer)
}

func (cc *CustomerController) Me(c *gin.Context) {
	customer, err := findCustomer(cc.DB.WithContext(c.Request.Context()), "phone_no = ?", customerPhone(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", customer)
}

func (cc *CustomerController) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword     string `json:"oldPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=6"`
		ConfirmPassword string `json:"confirmPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		utils.RespondError(c, utils.BadRequest("Password and confirmation do not match"))
		return
	}

	db := cc.DB.WithContext(c.Request.Context())
	customer, err := findCustomer(db, "phone_no = ?", customerPhone(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if customer.Password == nil || !utils.CheckPassword(*customer.Password, req.OldPassword) {
		utils.RespondError(c, utils.BadRequest("Old password is incorrect"))
		return
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.RespondError(c, utils.Internal(err))
		return
	}
	if err := db.Model(&models.Customer{}).Where("id = ?", customer.ID).Update("password", hashed).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Password changed successfully", nil)
}

func (cc *CustomerController) Logout(c *gin.Context) {
	utils.BlacklistToken(c.GetString("token"))
	utils.RespondJSON(c, http.StatusOK, "Logout successful", nil)
}

func (cc *CustomerController) respondWithToken(c *gin.Context, code int, message string, customer *models.Customer) {
	token, err := utils.GenerateCustomerToken(customer.ID, customer.PhoneNo)
	if err != nil {
		utils.RespondError(c, utils.Internal(err))
		return
	}
	utils.RespondJSON(c, code, message, gin.H{
		"token":    token,
		"customer": customer,
	})
}

func findCustomer(db *gorm.DB, cond string, arg interface{}) (*models.Customer, error) {
	var customer models.Customer
	if err := db.Where(cond, arg).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Customer not found")
		}
		return nil, err
	}
	return &customer, nil
}

func optionalEmail(email string) *string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	return &email
}
