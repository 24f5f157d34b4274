package services

import (
	"context"
	"time"

	"github.com/yeremiapane/queueease/kds"
	"github.com/yeremiapane/queueease/models"
	"github.com/yeremiapane/queueease/utils"
	"gorm.io/gorm"
)

// FloorStats -> ringkasan lantai restoran untuk dashboard staff
type FloorStats struct {
	RestaurantID   uint             `json:"restaurantId"`
	Tables         map[string]int64 `json:"tables"`
	WaitlistCount  int64            `json:"waitlistCount"`
	ServingCount   int64            `json:"servingCount"`
	UpcomingToday  int64            `json:"upcomingBookingsToday"`
	EstimatedWait  int              `json:"estimatedWaitTime"`
	GeneratedAtUTC time.Time        `json:"generatedAt"`
}

// FloorMonitor menyiarkan FloorStats secara berkala ke restoran yang dashboard-nya terbuka.
type FloorMonitor struct {
	DB       *gorm.DB
	Location *time.Location
	Interval time.Duration
	Now      func() time.Time
	StopChan chan struct{}

	// sumber daftar restoran, default kds.ConnectedRestaurants
	Restaurants func() []uint
	Broadcast   func(kds.Message)
}

func NewFloorMonitor(db *gorm.DB, loc *time.Location) *FloorMonitor {
	if loc == nil {
		loc = time.UTC
	}
	return &FloorMonitor{
		DB:          db,
		Location:    loc,
		Interval:    5 * time.Second,
		Now:         func() time.Time { return time.Now().UTC() },
		StopChan:    make(chan struct{}),
		Restaurants: kds.ConnectedRestaurants,
		Broadcast:   kds.BroadcastMessage,
	}
}

func (fm *FloorMonitor) Start() {
	go func() {
		ticker := time.NewTicker(fm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				fm.tick()
			case <-fm.StopChan:
				return
			}
		}
	}()
}

func (fm *FloorMonitor) Stop() {
	close(fm.StopChan)
}

func (fm *FloorMonitor) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), fm.Interval)
	defer cancel()
	for _, id := range fm.Restaurants() {
		stats, err := fm.Snapshot(ctx, id)
		if err != nil {
			utils.ErrorLogger.WithField("restaurant_id", id).Errorf("floor snapshot failed: %v", err)
			continue
		}
		fm.Broadcast(kds.Message{Event: kds.EventDashboardUpdate, RestaurantID: id, Data: stats})
	}
}

// Snapshot menghitung statistik lantai saat ini.
func (fm *FloorMonitor) Snapshot(ctx context.Context, restaurantID uint) (*FloorStats, error) {
	db := fm.DB.WithContext(ctx)

	var restaurant models.Restaurant
	if err := db.First(&restaurant, restaurantID).Error; err != nil {
		return nil, err
	}

	stats := &FloorStats{
		RestaurantID: restaurantID,
		Tables: map[string]int64{
			models.TableAvailable: 0,
			models.TableOccupied:  0,
			models.TableReserved:  0,
		},
		GeneratedAtUTC: fm.Now().UTC(),
	}

	var rows []struct {
		Status string
		Total  int64
	}
	if err := db.Model(&models.Table{}).Select("status, COUNT(*) AS total").
		Where("restaurant_id = ?", restaurantID).Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.Tables[r.Status] = r.Total
	}

	if err := db.Model(&models.Queue{}).
		Where("restaurant_id = ? AND status = ?", restaurantID, models.QueueWaitlist).
		Count(&stats.WaitlistCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Queue{}).
		Where("restaurant_id = ? AND status = ?", restaurantID, models.QueueServing).
		Count(&stats.ServingCount).Error; err != nil {
		return nil, err
	}

	now := fm.Now().UTC()
	_, endOfDay := DayWindow(now, fm.Location)
	if err := db.Model(&models.Queue{}).
		Where("restaurant_id = ? AND status = ? AND time_slot >= ? AND time_slot < ?",
			restaurantID, models.QueueBooking, now, endOfDay).
		Count(&stats.UpcomingToday).Error; err != nil {
		return nil, err
	}

	_, stats.EstimatedWait = EstimateWait(int(stats.WaitlistCount), int(stats.Tables[models.TableAvailable]), restaurant.SlotDurationInMin)
	return stats, nil
}
