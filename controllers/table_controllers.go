package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueease/kds"
	"github.com/yeremiapane/queueease/models"
	"github.com/yeremiapane/queueease/services"
	"github.com/yeremiapane/queueease/utils"
	"gorm.io/gorm"
)

type TableController struct {
	DB     *gorm.DB
	Tables *services.TableDirectory
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db, Tables: services.NewTableDirectory(db)}
}

type tableRequest struct {
	TableNo   string `json:"tableNo" binding:"required"`
	TableSize int    `json:"tableSize" binding:"required,gt=0"`
	Status    string `json:"status"`
}

// GetTables -> daftar meja restoran admin, filter ?status= dan ?search=
func (tc *TableController) GetTables(c *gin.Context) {
	page := utils.ParsePagination(c)
	query := tc.DB.WithContext(c.Request.Context()).Model(&models.Table{}).
		Where("restaurant_id = ?", restaurantID(c))

	if status := strings.ToUpper(c.Query("status")); status != "" {
		if !models.IsValidTableStatus(status) {
			utils.RespondError(c, utils.BadRequest("Invalid status %q", status))
			return
		}
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(table_no) LIKE ?", utils.LikePattern(search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	var tables []models.Table
	if err := query.Order("id asc").Scopes(page.Scope).Find(&tables).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", page.Result(tables, total))
}

// GetLargestTable -> meja terbesar, dipakai form booking untuk batas partySize
func (tc *TableController) GetLargestTable(c *gin.Context) {
	rid, err := queryID(c, "restaurantId")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	table, err := tc.Tables.LargestForRestaurant(c.Request.Context(), rid)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Largest table", table)
}

// CreateTable -> menambahkan meja baru
func (tc *TableController) CreateTable(c *gin.Context) {
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}

	table := models.Table{
		RestaurantID: restaurantID(c),
		TableNo:      strings.TrimSpace(req.TableNo),
		TableSize:    req.TableSize,
		Status:       models.TableAvailable,
	}
	if req.Status != "" {
		table.Status = strings.ToUpper(req.Status)
		if !models.IsValidTableStatus(table.Status) {
			utils.RespondError(c, utils.BadRequest("Invalid status %q", req.Status))
			return
		}
	}

	if err := tc.DB.WithContext(c.Request.Context()).Create(&table).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			utils.RespondError(c, utils.Conflict("Table %s already exists", table.TableNo))
			return
		}
		utils.RespondError(c, err)
		return
	}

	kds.BroadcastMessage(kds.Message{Event: kds.EventTableCreate, RestaurantID: table.RestaurantID, Data: table})

	utils.InfoLogger.Printf("New table created: %s (size=%d, status=%s)", table.TableNo, table.TableSize, table.Status)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// UpdateTable -> ubah nomor, kapasitas atau status meja
func (tc *TableController) UpdateTable(c *gin.Context) {
	table, err := tc.ownedTable(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}

	table.TableNo = strings.TrimSpace(req.TableNo)
	table.TableSize = req.TableSize
	if req.Status != "" {
		status := strings.ToUpper(req.Status)
		if !models.IsValidTableStatus(status) {
			utils.RespondError(c, utils.BadRequest("Invalid status %q", req.Status))
			return
		}
		table.Status = status
	}

	if err := tc.DB.WithContext(c.Request.Context()).Save(table).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			utils.RespondError(c, utils.Conflict("Table %s already exists", table.TableNo))
			return
		}
		utils.RespondError(c, err)
		return
	}

	kds.BroadcastTableUpdate(table.RestaurantID, table)

	utils.InfoLogger.Printf("Table %d updated (status=%s)", table.ID, table.Status)
	utils.RespondJSON(c, http.StatusOK, "Table updated successfully", table)
}

// DeleteTable -> menghapus meja yang tidak dipakai antrian aktif
func (tc *TableController) DeleteTable(c *gin.Context) {
	table, err := tc.ownedTable(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	db := tc.DB.WithContext(c.Request.Context())
	var active int64
	if err := db.Model(&models.Queue{}).
		Where("table_id = ? AND status <> ?", table.ID, models.QueueCompleted).
		Count(&active).Error; err != nil {
		utils.RespondError(c, err)
		return
	}
	if active > 0 {
		utils.RespondError(c, utils.Conflict("Table %s still has active queues", table.TableNo))
		return
	}

	if err := db.Delete(table).Error; err != nil {
		utils.RespondError(c, err)
		return
	}

	kds.BroadcastMessage(kds.Message{
		Event:        kds.EventTableDelete,
		RestaurantID: table.RestaurantID,
		Data:         gin.H{"id": table.ID},
	})

	utils.InfoLogger.Printf("Table %d deleted", table.ID)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": table.ID})
}

func (tc *TableController) ownedTable(c *gin.Context) (*models.Table, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return nil, err
	}
	var table models.Table
	err = tc.DB.WithContext(c.Request.Context()).
		Where("id = ? AND restaurant_id = ?", id, restaurantID(c)).First(&table).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Table not found")
		}
		return nil, err
	}
	return &table, nil
}
