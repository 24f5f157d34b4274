package services

import (
	"context"

	"github.com/yeremiapane/queueease/models"
	"github.com/yeremiapane/queueease/utils"
	"gorm.io/gorm"
)

// TableDirectory -> query baca-saja atas meja restoran
type TableDirectory struct {
	DB *gorm.DB
}

func NewTableDirectory(db *gorm.DB) *TableDirectory {
	return &TableDirectory{DB: db}
}

func (td *TableDirectory) ListTables(ctx context.Context, restaurantID uint) ([]models.Table, error) {
	return listTables(td.DB.WithContext(ctx), restaurantID)
}

func listTables(db *gorm.DB, restaurantID uint) ([]models.Table, error) {
	var tables []models.Table
	if err := db.Where("restaurant_id = ?", restaurantID).Order("id asc").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

// RequireTables seperti ListTables tapi NotFound bila restoran belum punya meja.
func (td *TableDirectory) RequireTables(ctx context.Context, restaurantID uint) ([]models.Table, error) {
	tables, err := td.ListTables(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, utils.NotFound("No tables found for this restaurant")
	}
	return tables, nil
}

func (td *TableDirectory) LargestForRestaurant(ctx context.Context, restaurantID uint) (*models.Table, error) {
	tables, err := td.RequireTables(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	return Largest(tables), nil
}

// SmallestFitting memilih meja terkecil yang muat partySize; seri -> urutan pertama.
func SmallestFitting(tables []models.Table, partySize int) *models.Table {
	var best *models.Table
	for i := range tables {
		t := &tables[i]
		if t.TableSize < partySize {
			continue
		}
		if best == nil || t.TableSize < best.TableSize {
			best = t
		}
	}
	return best
}

// Largest memilih meja terbesar; seri -> urutan pertama.
func Largest(tables []models.Table) *models.Table {
	var best *models.Table
	for i := range tables {
		if best == nil || tables[i].TableSize > best.TableSize {
			best = &tables[i]
		}
	}
	return best
}
