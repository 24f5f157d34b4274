package services

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queueease/database"
	"github.com/yeremiapane/queueease/events"
	"github.com/yeremiapane/queueease/models"
	"github.com/yeremiapane/queueease/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

// 14 Maret 2026 adalah hari Sabtu
var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func slotAt(hour int) time.Time {
	return time.Date(2026, 3, 14, hour, 0, 0, 0, time.UTC)
}

// setupTestDB -> sqlite in-memory bernama per test supaya data tidak bocor antar test
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedRestaurant(t *testing.T, db *gorm.DB, tableSizes ...int) (*models.Restaurant, []models.Table) {
	t.Helper()
	admin := models.Admin{Name: "Owner", Email: fmt.Sprintf("owner-%d@queueease.test", time.Now().UnixNano()), Password: "x"}
	require.NoError(t, db.Create(&admin).Error)

	restaurant := models.Restaurant{
		AdminID:           admin.ID,
		Name:              "Warung Senja",
		Slug:              fmt.Sprintf("warung-senja-%d", admin.ID),
		OpenHour:          "10:00",
		CloseHour:         "22:00",
		SlotDurationInMin: 60,
		OpenDays:          []int{1, 2, 3, 4, 5, 6, 7},
	}
	require.NoError(t, db.Create(&restaurant).Error)

	tables := make([]models.Table, 0, len(tableSizes))
	for i, size := range tableSizes {
		table := models.Table{
			RestaurantID: restaurant.ID,
			TableNo:      fmt.Sprintf("T%d", i+1),
			TableSize:    size,
			Status:       models.TableAvailable,
		}
		require.NoError(t, db.Create(&table).Error)
		tables = append(tables, table)
	}
	return &restaurant, tables
}

func newTestEngine(db *gorm.DB) (*QueueEngine, *events.Recorder) {
	rec := &events.Recorder{}
	engine := NewQueueEngine(db, NewLocalLocker(), rec, time.UTC)
	engine.Now = func() time.Time { return testNow }
	return engine, rec
}

func strPtr(s string) *string { return &s }

func uintPtr(u uint) *uint { return &u }

func timePtr(t time.Time) *time.Time { return &t }
