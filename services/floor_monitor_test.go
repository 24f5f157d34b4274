package services

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queueease/kds"
	"github.com/yeremiapane/queueease/models"
	"github.com/yeremiapane/queueease/utils"
)

func TestFloorMonitorSnapshotAndTick(t *testing.T) {
	db := setupTestDB(t)
	restaurant, tables := seedRestaurant(t, db, 2, 4)
	engine, _ := newTestEngine(db)
	ctx := context.Background()

	_, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0811", 2, 19))
	require.NoError(t, err)
	_, err = engine.CreateQueue(ctx, waitlistInput(restaurant.ID, "0812", 2))
	require.NoError(t, err)
	_ = servedQueue(t, db, engine, restaurant.ID, tables[1].ID, "0813")

	monitor := NewFloorMonitor(db, nil)
	monitor.Now = func() time.Time { return testNow }

	stats, err := monitor.Snapshot(ctx, restaurant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Tables[models.TableAvailable])
	assert.Equal(t, int64(1), stats.Tables[models.TableReserved])
	assert.Equal(t, int64(0), stats.Tables[models.TableOccupied])
	assert.Equal(t, int64(1), stats.WaitlistCount)
	assert.Equal(t, int64(1), stats.ServingCount)
	assert.Equal(t, int64(1), stats.UpcomingToday)
	assert.Equal(t, 60, stats.EstimatedWait)

	var sent []kds.Message
	monitor.Restaurants = func() []uint { return []uint{restaurant.ID, 999} }
	monitor.Broadcast = func(m kds.Message) { sent = append(sent, m) }
	hook := logtest.NewLocal(utils.ErrorLogger)
	defer hook.Reset()
	monitor.tick()

	require.Len(t, sent, 1)
	assert.Equal(t, kds.EventDashboardUpdate, sent[0].Event)
	assert.Equal(t, restaurant.ID, sent[0].RestaurantID)

	// restoran 999 tidak ada: snapshot gagal dicatat, bukan dibuang
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, uint(999), entry.Data["restaurant_id"])
	assert.Contains(t, entry.Message, "floor snapshot failed")
}
