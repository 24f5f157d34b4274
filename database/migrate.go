package database

import (
	"fmt"

	"github.com/yeremiapane/queueease/models"
	"github.com/yeremiapane/queueease/utils"
	"gorm.io/gorm"
)

type secondaryIndex struct {
	Name    string
	Table   string
	Columns string
}

// Index komposit untuk query availability dan estimasi waitlist.
var queueIndexes = []secondaryIndex{
	{Name: "idx_queues_restaurant_slot", Table: "queues", Columns: "restaurant_id, time_slot"},
	{Name: "idx_queues_restaurant_status_updated", Table: "queues", Columns: "restaurant_id, status, updated_at"},
	{Name: "idx_tables_restaurant_status", Table: "tables", Columns: "restaurant_id, status"},
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, idx := range queueIndexes {
		if db.Migrator().HasIndex(idx.Table, idx.Name) {
			continue
		}
		stmt := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.Name, idx.Table, idx.Columns)
		if err := db.Exec(stmt).Error; err != nil {
			utils.ErrorLogger.Printf("Error creating index %s: %v", idx.Name, err)
			continue
		}
		utils.InfoLogger.Printf("Index created: %s on %s(%s)", idx.Name, idx.Table, idx.Columns)
	}

	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
