package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queueease/models"
)

func TestGroupQueuesBySlot(t *testing.T) {
	tables := tablesOfSize(2, 4, 6)
	t19, t20 := slotAt(19), slotAt(20)
	queues := []models.Queue{
		{ID: 1, TimeSlot: timePtr(t20), TableID: uintPtr(2), TableStatus: strPtr(models.QueueTableOccupied)},
		{ID: 2, TimeSlot: timePtr(t19), TableID: uintPtr(1), TableStatus: strPtr(models.QueueTableReserved)},
		{ID: 3, TimeSlot: timePtr(t19)},
		{ID: 4, Status: models.QueueWaitlist},
	}

	groups := GroupQueuesBySlot(tables, queues, []string{models.QueueTableReserved})
	require.Len(t, groups, 2)
	assert.True(t, groups[0].TimeSlot.Equal(t19))
	assert.Len(t, groups[0].Queues, 2)
	assert.Equal(t, 2, groups[0].AvailableTableCount)
	assert.Equal(t, uint(2), groups[0].AvailableTables[0].ID)
	assert.Equal(t, 3, groups[1].AvailableTableCount)

	groups = GroupQueuesBySlot(tables, queues, []string{models.QueueTableReserved, models.QueueTableOccupied})
	assert.Equal(t, 2, groups[1].AvailableTableCount)

	// tanpa meja sama sekali
	groups = GroupQueuesBySlot(nil, queues, []string{models.QueueTableReserved})
	for _, g := range groups {
		assert.Equal(t, 0, g.AvailableTableCount)
		assert.Empty(t, g.AvailableTables)
	}
}

func TestGroupBySlotFromStore(t *testing.T) {
	db := setupTestDB(t)
	restaurant, _ := seedRestaurant(t, db, 2, 4)
	engine, _ := newTestEngine(db)
	ctx := context.Background()

	a, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0811", 2, 19))
	require.NoError(t, err)
	_, err = engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0812", 4, 19))
	require.NoError(t, err)
	_, err = engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0813", 2, 12))
	require.NoError(t, err)

	groups, err := engine.SlotAvailability(ctx, restaurant.ID, testNow, "", false)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.True(t, groups[0].TimeSlot.Equal(slotAt(12)))
	assert.Equal(t, 1, groups[0].AvailableTableCount)
	assert.Equal(t, 0, groups[1].AvailableTableCount)

	_, err = engine.UpdateQueueStatus(ctx, a.ID, UpdateQueueStatusInput{Status: strPtr(models.QueueCompleted)})
	require.NoError(t, err)

	groups, err = engine.SlotAvailability(ctx, restaurant.ID, testNow, "", true)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Len(t, groups[1].Queues, 1)
	assert.Equal(t, 1, groups[1].AvailableTableCount)

	// filter queueType
	groups, err = engine.SlotAvailability(ctx, restaurant.ID, testNow, models.QueueWaitlist, false)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestFreeTablesAtUsesOverlap(t *testing.T) {
	db := setupTestDB(t)
	restaurant, tables := seedRestaurant(t, db, 4, 4)
	engine, _ := newTestEngine(db)
	ctx := context.Background()

	_, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0811", 2, 19))
	require.NoError(t, err)

	calc := NewAvailabilityCalculator(db, time.UTC)
	free, err := calc.FreeTablesAt(db, restaurant, slotAt(19))
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, tables[1].ID, free[0].ID)

	// slot setengah jam kemudian masih beririsan dengan booking 60 menit
	free, err = calc.FreeTablesAt(db, restaurant, slotAt(19).Add(30*time.Minute))
	require.NoError(t, err)
	assert.Len(t, free, 1)

	free, err = calc.FreeTablesAt(db, restaurant, slotAt(20))
	require.NoError(t, err)
	assert.Len(t, free, 2)
}

func TestDaySlots(t *testing.T) {
	db := setupTestDB(t)
	restaurant, _ := seedRestaurant(t, db, 4)
	engine, _ := newTestEngine(db)
	ctx := context.Background()

	_, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0811", 2, 19))
	require.NoError(t, err)

	slots, err := engine.DaySlots(ctx, restaurant.ID, testNow, 2)
	require.NoError(t, err)
	require.Len(t, slots, 12)
	assert.True(t, slots[0].TimeSlot.Equal(slotAt(10)))
	for _, s := range slots {
		if s.TimeSlot.Equal(slotAt(19)) {
			assert.Equal(t, 0, s.AvailableTableCount)
			assert.False(t, s.FitsPartySize)
			continue
		}
		assert.Equal(t, 1, s.AvailableTableCount)
		assert.True(t, s.FitsPartySize)
	}

	// terlalu besar untuk meja manapun
	slots, err = engine.DaySlots(ctx, restaurant.ID, testNow, 10)
	require.NoError(t, err)
	assert.False(t, slots[0].FitsPartySize)
}
