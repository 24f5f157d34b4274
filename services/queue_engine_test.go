package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queueease/events"
	"github.com/yeremiapane/queueease/models"
	"github.com/yeremiapane/queueease/utils"
	"gorm.io/gorm"
)

func bookingInput(restaurantID uint, phone string, partySize, hour int) CreateQueueInput {
	return CreateQueueInput{
		RestaurantID: restaurantID,
		PhoneNo:      phone,
		Name:         "Guest " + phone,
		PartySize:    partySize,
		QueueType:    models.QueueBooking,
		SelectedSlot: timePtr(slotAt(hour)),
	}
}

func waitlistInput(restaurantID uint, phone string, partySize int) CreateQueueInput {
	return CreateQueueInput{
		RestaurantID: restaurantID,
		PhoneNo:      phone,
		Name:         "Guest " + phone,
		PartySize:    partySize,
		QueueType:    models.QueueWaitlist,
	}
}

func TestCreateBookingAllocatesSmallestFittingTable(t *testing.T) {
	db := setupTestDB(t)
	restaurant, tables := seedRestaurant(t, db, 2, 4, 6)
	engine, rec := newTestEngine(db)
	ctx := context.Background()

	first, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0811", 3, 19))
	require.NoError(t, err)
	assert.Equal(t, tables[1].ID, *first.TableID)
	assert.Equal(t, models.QueueBooking, first.Status)
	assert.Equal(t, models.ProgressConfirmed, first.ProgressStatus)
	assert.Equal(t, models.QueueTableReserved, *first.TableStatus)
	assert.True(t, slotAt(19).Equal(*first.TimeSlot))

	second, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0812", 3, 19))
	require.NoError(t, err)
	assert.Equal(t, tables[2].ID, *second.TableID)

	third, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0813", 2, 19))
	require.NoError(t, err)
	assert.Equal(t, tables[0].ID, *third.TableID)

	_, err = engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0814", 2, 19))
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrNotFound)
	assert.Equal(t, "No available tables found for the specified party size", err.Error())

	// slot lain tidak terpengaruh
	other, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0815", 3, 20))
	require.NoError(t, err)
	assert.Equal(t, tables[1].ID, *other.TableID)

	assert.Equal(t, []string{events.QueueCreated, events.QueueCreated, events.QueueCreated, events.QueueCreated}, rec.Types())

	// Table.status tidak berubah oleh booking
	var table models.Table
	require.NoError(t, db.First(&table, tables[1].ID).Error)
	assert.Equal(t, models.TableAvailable, table.Status)
}

func TestCreateBookingTooLargeForAnyTable(t *testing.T) {
	db := setupTestDB(t)
	restaurant, _ := seedRestaurant(t, db, 2, 4)
	engine, _ := newTestEngine(db)

	_, err := engine.CreateQueue(context.Background(), bookingInput(restaurant.ID, "0811", 5, 19))
	assert.ErrorIs(t, err, utils.ErrNotFound)

	var count int64
	db.Model(&models.Queue{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateBookingRejectsInvalidSlots(t *testing.T) {
	db := setupTestDB(t)
	restaurant, _ := seedRestaurant(t, db, 4)
	engine, _ := newTestEngine(db)
	ctx := context.Background()

	in := bookingInput(restaurant.ID, "0811", 2, 19)
	in.SelectedSlot = nil
	_, err := engine.CreateQueue(ctx, in)
	assert.ErrorIs(t, err, utils.ErrBadRequest)

	// sudah lewat
	_, err = engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0811", 2, 8))
	assert.ErrorIs(t, err, utils.ErrBadRequest)

	// di luar jam buka
	_, err = engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0811", 2, 22))
	assert.ErrorIs(t, err, utils.ErrBadRequest)

	// tidak sejajar grid 60 menit
	in = bookingInput(restaurant.ID, "0811", 2, 19)
	off := slotAt(19).Add(15 * time.Minute)
	in.SelectedSlot = &off
	_, err = engine.CreateQueue(ctx, in)
	assert.ErrorIs(t, err, utils.ErrBadRequest)

	// restoran tutup hari Sabtu
	require.NoError(t, db.Model(&models.Restaurant{}).Where("id = ?", restaurant.ID).Update("open_days", "1,2,3,4,5").Error)
	_, err = engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0811", 2, 19))
	assert.ErrorIs(t, err, utils.ErrBadRequest)
}

func TestCreateQueueValidation(t *testing.T) {
	db := setupTestDB(t)
	restaurant, _ := seedRestaurant(t, db, 4)
	engine, _ := newTestEngine(db)
	ctx := context.Background()

	_, err := engine.CreateQueue(ctx, waitlistInput(restaurant.ID, "0811", 0))
	assert.ErrorIs(t, err, utils.ErrBadRequest)

	in := waitlistInput(restaurant.ID, "0811", 2)
	in.QueueType = "WALKIN"
	_, err = engine.CreateQueue(ctx, in)
	assert.ErrorIs(t, err, utils.ErrBadRequest)

	_, err = engine.CreateQueue(ctx, waitlistInput(restaurant.ID+100, "0811", 2))
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestCompletedBookingReleasesSlot(t *testing.T) {
	db := setupTestDB(t)
	restaurant, tables := seedRestaurant(t, db, 4)
	engine, _ := newTestEngine(db)
	ctx := context.Background()

	booked, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0811", 2, 19))
	require.NoError(t, err)

	_, err = engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0812", 2, 19))
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = engine.UpdateQueueStatus(ctx, booked.ID, UpdateQueueStatusInput{Status: strPtr(models.QueueCompleted)})
	require.NoError(t, err)

	again, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0812", 2, 19))
	require.NoError(t, err)
	assert.Equal(t, tables[0].ID, *again.TableID)
}

func TestCreateQueueUpsertsCustomer(t *testing.T) {
	db := setupTestDB(t)
	restaurant, _ := seedRestaurant(t, db, 4, 4)
	engine, _ := newTestEngine(db)
	ctx := context.Background()

	_, err := engine.CreateQueue(ctx, waitlistInput(restaurant.ID, "0811", 2))
	require.NoError(t, err)

	in := waitlistInput(restaurant.ID, "0811", 2)
	in.Name = "Budi"
	q, err := engine.CreateQueue(ctx, in)
	require.NoError(t, err)

	var customers []models.Customer
	require.NoError(t, db.Find(&customers).Error)
	require.Len(t, customers, 1)
	assert.Equal(t, "Budi", customers[0].Name)
	assert.False(t, customers[0].IsAccountCreated)
	assert.Equal(t, customers[0].ID, q.CustomerID)
}

func TestWaitlistPositionsAreSequential(t *testing.T) {
	db := setupTestDB(t)
	restaurant, _ := seedRestaurant(t, db, 4)
	engine, _ := newTestEngine(db)
	ctx := context.Background()

	for i, phone := range []string{"0811", "0812", "0813"} {
		q, err := engine.CreateQueue(ctx, waitlistInput(restaurant.ID, phone, 2))
		require.NoError(t, err)
		require.NotNil(t, q.Position)
		assert.Equal(t, i+1, *q.Position)
		assert.Nil(t, q.TimeSlot)
		assert.Nil(t, q.TableID)
		assert.Nil(t, q.TableStatus)
		assert.Equal(t, models.QueueWaitlist, q.Status)
	}
}

func TestWaitlistEstimate(t *testing.T) {
	db := setupTestDB(t)
	restaurant, _ := seedRestaurant(t, db, 2, 4)
	engine, _ := newTestEngine(db)
	ctx := context.Background()

	var last *models.Queue
	for _, phone := range []string{"0811", "0812", "0813", "0814"} {
		q, err := engine.CreateQueue(ctx, waitlistInput(restaurant.ID, phone, 2))
		require.NoError(t, err)
		last = q
	}

	details, err := engine.GetQueueDetails(ctx, last.QueueNo)
	require.NoError(t, err)
	require.NotNil(t, details.WaitlistCount)
	// 3 di depan + 1 - 2 meja kosong
	assert.Equal(t, 2, *details.WaitlistCount)
	assert.Equal(t, 120, *details.EstimatedWaitTime)
}

func TestWaitlistSummary(t *testing.T) {
	db := setupTestDB(t)
	restaurant, _ := seedRestaurant(t, db, 2, 4, 6)
	engine, _ := newTestEngine(db)
	ctx := context.Background()

	today := db.NowFunc()
	summary, err := engine.WaitlistSummary(ctx, restaurant.ID, today)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.WaitlistCount)
	assert.Equal(t, 1, summary.EstimatedWaitTime)

	for _, phone := range []string{"0811", "0812", "0813", "0814"} {
		_, err := engine.CreateQueue(ctx, waitlistInput(restaurant.ID, phone, 2))
		require.NoError(t, err)
	}
	summary, err = engine.WaitlistSummary(ctx, restaurant.ID, today)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.WaitlistCount)
	assert.Equal(t, 120, summary.EstimatedWaitTime)

	_, err = engine.WaitlistSummary(ctx, restaurant.ID+1, today)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestEstimateWait(t *testing.T) {
	cases := []struct {
		ahead, available, duration int
		count, minutes             int
	}{
		{0, 3, 30, 0, 1},
		{0, 0, 30, 1, 30},
		{3, 2, 60, 2, 120},
		{5, 10, 45, 0, 1},
	}
	for _, c := range cases {
		count, minutes := EstimateWait(c.ahead, c.available, c.duration)
		assert.Equal(t, c.count, count)
		assert.Equal(t, c.minutes, minutes)
	}
}

func TestGetQueueDetails(t *testing.T) {
	db := setupTestDB(t)
	restaurant, tables := seedRestaurant(t, db, 4)
	engine, _ := newTestEngine(db)
	ctx := context.Background()

	_, err := engine.GetQueueDetails(ctx, "ZZ-0000")
	assert.ErrorIs(t, err, utils.ErrNotFound)

	booked, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0811", 2, 19))
	require.NoError(t, err)

	details, err := engine.GetQueueDetails(ctx, booked.QueueNo)
	require.NoError(t, err)
	assert.Nil(t, details.WaitlistCount)
	assert.Equal(t, tables[0].ID, details.Table.ID)

	_, err = engine.UpdateQueueStatus(ctx, booked.ID, UpdateQueueStatusInput{Status: strPtr(models.QueueServing)})
	require.NoError(t, err)

	_, err = engine.GetQueueDetails(ctx, booked.QueueNo)
	assert.ErrorIs(t, err, utils.ErrBadRequest)
	assert.Equal(t, "Queue is already serving", err.Error())

	// tampilan staff tetap bisa membaca queue SERVING
	staffView, err := engine.GetQueueByID(ctx, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, models.QueueServing, staffView.Status)
}

func TestUpdateQueueStatusTableSideEffects(t *testing.T) {
	db := setupTestDB(t)
	restaurant, tables := seedRestaurant(t, db, 4, 6)
	engine, rec := newTestEngine(db)
	ctx := context.Background()

	waiting, err := engine.CreateQueue(ctx, waitlistInput(restaurant.ID, "0811", 4))
	require.NoError(t, err)

	// SERVING tanpa meja ditolak
	_, err = engine.UpdateQueueStatus(ctx, waiting.ID, UpdateQueueStatusInput{Status: strPtr(models.QueueServing)})
	assert.ErrorIs(t, err, utils.ErrBadRequest)

	served, err := engine.UpdateQueueStatus(ctx, waiting.ID, UpdateQueueStatusInput{
		Status:  strPtr(models.QueueServing),
		TableID: uintPtr(tables[0].ID),
	})
	require.NoError(t, err)
	assert.Equal(t, models.QueueServing, served.Status)
	assert.Equal(t, tables[0].ID, *served.TableID)
	assert.Equal(t, models.QueueTableOccupied, *served.TableStatus)

	var table models.Table
	require.NoError(t, db.First(&table, tables[0].ID).Error)
	assert.Equal(t, models.TableReserved, table.Status)

	completed, err := engine.UpdateQueueStatus(ctx, waiting.ID, UpdateQueueStatusInput{Status: strPtr(models.QueueCompleted)})
	require.NoError(t, err)
	assert.Equal(t, models.QueueCompleted, completed.Status)

	require.NoError(t, db.First(&table, tables[0].ID).Error)
	assert.Equal(t, models.TableAvailable, table.Status)

	// COMPLETED bersifat final
	_, err = engine.UpdateQueueStatus(ctx, waiting.ID, UpdateQueueStatusInput{Status: strPtr(models.QueueServing)})
	assert.ErrorIs(t, err, utils.ErrBadRequest)

	assert.Equal(t, []string{
		events.QueueCreated,
		events.QueueStatusChanged, events.TableStatusChanged,
		events.QueueStatusChanged, events.TableStatusChanged,
	}, rec.Types())

	// event meja membawa status terbaru untuk dashboard
	reserved, released := rec.Events[2], rec.Events[4]
	assert.Equal(t, tables[0].ID, *reserved.TableID)
	assert.Equal(t, models.TableReserved, reserved.Status)
	assert.Equal(t, models.TableAvailable, released.Status)
	payload, ok := released.Payload.(models.Table)
	require.True(t, ok)
	assert.Equal(t, models.TableAvailable, payload.Status)
}

func TestCompletingBookingKeepsTableOfServingQueue(t *testing.T) {
	db := setupTestDB(t)
	restaurant, tables := seedRestaurant(t, db, 4)
	engine, rec := newTestEngine(db)
	ctx := context.Background()

	booked, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0811", 2, 19))
	require.NoError(t, err)
	require.Equal(t, tables[0].ID, *booked.TableID)

	walkIn, err := engine.CreateQueue(ctx, waitlistInput(restaurant.ID, "0812", 2))
	require.NoError(t, err)
	_, err = engine.UpdateQueueStatus(ctx, walkIn.ID, UpdateQueueStatusInput{
		Status:  strPtr(models.QueueServing),
		TableID: uintPtr(tables[0].ID),
	})
	require.NoError(t, err)

	// booking tidak datang: meja tetap dipakai walk-in
	_, err = engine.UpdateQueueStatus(ctx, booked.ID, UpdateQueueStatusInput{Status: strPtr(models.QueueCompleted)})
	require.NoError(t, err)

	var table models.Table
	require.NoError(t, db.First(&table, tables[0].ID).Error)
	assert.Equal(t, models.TableReserved, table.Status)

	another, err := engine.CreateQueue(ctx, waitlistInput(restaurant.ID, "0813", 2))
	require.NoError(t, err)
	_, err = engine.UpdateQueueStatus(ctx, another.ID, UpdateQueueStatusInput{
		Status:  strPtr(models.QueueServing),
		TableID: uintPtr(tables[0].ID),
	})
	assert.ErrorIs(t, err, utils.ErrConflict)

	_, err = engine.UpdateQueueStatus(ctx, walkIn.ID, UpdateQueueStatusInput{Status: strPtr(models.QueueCompleted)})
	require.NoError(t, err)
	require.NoError(t, db.First(&table, tables[0].ID).Error)
	assert.Equal(t, models.TableAvailable, table.Status)

	assert.Equal(t, []string{
		events.QueueCreated, events.QueueCreated,
		events.QueueStatusChanged, events.TableStatusChanged,
		events.QueueStatusChanged,
		events.QueueCreated,
		events.QueueStatusChanged, events.TableStatusChanged,
	}, rec.Types())
}

func TestUpdateQueueStatusIsAtomic(t *testing.T) {
	db := setupTestDB(t)
	restaurant, tables := seedRestaurant(t, db, 4)
	engine, _ := newTestEngine(db)
	ctx := context.Background()

	first, err := engine.CreateQueue(ctx, waitlistInput(restaurant.ID, "0811", 2))
	require.NoError(t, err)
	second, err := engine.CreateQueue(ctx, waitlistInput(restaurant.ID, "0812", 2))
	require.NoError(t, err)

	_, err = engine.UpdateQueueStatus(ctx, first.ID, UpdateQueueStatusInput{
		Status:  strPtr(models.QueueServing),
		TableID: uintPtr(tables[0].ID),
	})
	require.NoError(t, err)

	// meja sudah dipakai: tidak ada perubahan yang tersimpan
	_, err = engine.UpdateQueueStatus(ctx, second.ID, UpdateQueueStatusInput{
		Status:         strPtr(models.QueueServing),
		TableID:        uintPtr(tables[0].ID),
		ProgressStatus: strPtr(models.ProgressPending),
	})
	assert.ErrorIs(t, err, utils.ErrConflict)

	var reloaded models.Queue
	require.NoError(t, db.First(&reloaded, second.ID).Error)
	assert.Equal(t, models.QueueWaitlist, reloaded.Status)
	assert.Equal(t, models.ProgressConfirmed, reloaded.ProgressStatus)
	assert.Nil(t, reloaded.TableID)
}

func TestUpdateQueueStatusPartialAndValidation(t *testing.T) {
	db := setupTestDB(t)
	restaurant, tables := seedRestaurant(t, db, 4)
	engine, _ := newTestEngine(db)
	ctx := context.Background()

	q, err := engine.CreateQueue(ctx, waitlistInput(restaurant.ID, "0811", 2))
	require.NoError(t, err)

	updated, err := engine.UpdateQueueStatus(ctx, q.ID, UpdateQueueStatusInput{ProgressStatus: strPtr(models.ProgressPending)})
	require.NoError(t, err)
	assert.Equal(t, models.ProgressPending, updated.ProgressStatus)
	assert.Equal(t, models.QueueWaitlist, updated.Status)

	_, err = engine.UpdateQueueStatus(ctx, q.ID, UpdateQueueStatusInput{Status: strPtr("DONE")})
	assert.ErrorIs(t, err, utils.ErrBadRequest)

	_, err = engine.UpdateQueueStatus(ctx, q.ID, UpdateQueueStatusInput{TableID: uintPtr(999)})
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = engine.UpdateQueueStatus(ctx, 999, UpdateQueueStatusInput{Status: strPtr(models.QueueServing)})
	assert.ErrorIs(t, err, utils.ErrNotFound)

	// WAITLIST -> BOOKING tanpa timeSlot tidak boleh, walau meja diisi
	_, err = engine.UpdateQueueStatus(ctx, q.ID, UpdateQueueStatusInput{Status: strPtr(models.QueueBooking)})
	assert.ErrorIs(t, err, utils.ErrBadRequest)
	_, err = engine.UpdateQueueStatus(ctx, q.ID, UpdateQueueStatusInput{
		Status:  strPtr(models.QueueBooking),
		TableID: uintPtr(tables[0].ID),
	})
	assert.ErrorIs(t, err, utils.ErrBadRequest)

	var reloaded models.Queue
	require.NoError(t, db.First(&reloaded, q.ID).Error)
	assert.Equal(t, models.QueueWaitlist, reloaded.Status)
	assert.Nil(t, reloaded.TableID)

	// BOOKING -> WAITLIST ditolak, slot tetap dipegang
	booked, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0812", 2, 19))
	require.NoError(t, err)
	_, err = engine.UpdateQueueStatus(ctx, booked.ID, UpdateQueueStatusInput{Status: strPtr(models.QueueWaitlist)})
	assert.ErrorIs(t, err, utils.ErrBadRequest)

	require.NoError(t, db.First(&reloaded, booked.ID).Error)
	assert.Equal(t, models.QueueBooking, reloaded.Status)
	require.NotNil(t, reloaded.TimeSlot)
	require.NotNil(t, reloaded.SlotKey)
	assert.Equal(t, models.BookingSlotKey(tables[0].ID, slotAt(19)), *reloaded.SlotKey)

	// SERVING hanya bisa lanjut ke COMPLETED
	_, err = engine.UpdateQueueStatus(ctx, booked.ID, UpdateQueueStatusInput{Status: strPtr(models.QueueServing)})
	require.NoError(t, err)
	_, err = engine.UpdateQueueStatus(ctx, booked.ID, UpdateQueueStatusInput{Status: strPtr(models.QueueBooking)})
	assert.ErrorIs(t, err, utils.ErrBadRequest)
}

func TestMovingBookingToTakenTableConflicts(t *testing.T) {
	db := setupTestDB(t)
	restaurant, tables := seedRestaurant(t, db, 4, 4)
	engine, _ := newTestEngine(db)
	ctx := context.Background()

	first, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0811", 2, 19))
	require.NoError(t, err)
	second, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0812", 2, 19))
	require.NoError(t, err)
	require.NotEqual(t, *first.TableID, *second.TableID)

	_, err = engine.UpdateQueueStatus(ctx, second.ID, UpdateQueueStatusInput{TableID: first.TableID})
	assert.ErrorIs(t, err, utils.ErrConflict)

	var reloaded models.Queue
	require.NoError(t, db.First(&reloaded, second.ID).Error)
	assert.Equal(t, tables[1].ID, *reloaded.TableID)
}

func TestQueueNumberCollisionIsRetried(t *testing.T) {
	db := setupTestDB(t)
	restaurant, _ := seedRestaurant(t, db, 4)
	engine, _ := newTestEngine(db)
	ctx := context.Background()

	codes := []string{"AA-1409", "AA-1409", "AB-1409"}
	i := 0
	engine.NewQueueNo = func(_ time.Time) string {
		code := codes[i%len(codes)]
		i++
		return code
	}

	first, err := engine.CreateQueue(ctx, waitlistInput(restaurant.ID, "0811", 2))
	require.NoError(t, err)
	assert.Equal(t, "AA-1409", first.QueueNo)

	second, err := engine.CreateQueue(ctx, waitlistInput(restaurant.ID, "0812", 2))
	require.NoError(t, err)
	assert.Equal(t, "AB-1409", second.QueueNo)
}

func TestQueueNumberGenerationIsBounded(t *testing.T) {
	db := setupTestDB(t)
	restaurant, _ := seedRestaurant(t, db, 4)
	engine, _ := newTestEngine(db)
	engine.MaxQueueNoAttempts = 3
	engine.NewQueueNo = func(_ time.Time) string { return "AA-1409" }
	ctx := context.Background()

	_, err := engine.CreateQueue(ctx, waitlistInput(restaurant.ID, "0811", 2))
	require.NoError(t, err)

	_, err = engine.CreateQueue(ctx, waitlistInput(restaurant.ID, "0812", 2))
	assert.ErrorIs(t, err, utils.ErrInternal)
}

func TestQueueNumberUsesRestaurantLocalTime(t *testing.T) {
	db := setupTestDB(t)
	restaurant, _ := seedRestaurant(t, db, 4)
	engine, _ := newTestEngine(db)
	// 14 Maret 20:00 UTC = 15 Maret 03:00 WIB
	engine.Location = time.FixedZone("WIB", 7*60*60)
	engine.Now = func() time.Time { return time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC) }

	q, err := engine.CreateQueue(context.Background(), waitlistInput(restaurant.ID, "0811", 2))
	require.NoError(t, err)
	assert.Regexp(t, `^[A-Z]{2}-1503$`, q.QueueNo)
}

func TestRandomQueueNumberFormat(t *testing.T) {
	code := RandomQueueNumber(time.Date(2026, 3, 4, 7, 0, 0, 0, time.UTC))
	assert.Regexp(t, `^[A-Z]{2}-0407$`, code)
}

func TestSlotKeyIsUniquePerTableAndSlot(t *testing.T) {
	db := setupTestDB(t)
	restaurant, tables := seedRestaurant(t, db, 4)
	customer := models.Customer{PhoneNo: "0811", Name: "A"}
	require.NoError(t, db.Create(&customer).Error)

	key := models.BookingSlotKey(tables[0].ID, slotAt(19))
	mk := func(queueNo string) *models.Queue {
		return &models.Queue{
			RestaurantID: restaurant.ID, CustomerID: customer.ID, QueueNo: queueNo, PartySize: 2,
			Status: models.QueueBooking, ProgressStatus: models.ProgressConfirmed,
			TableID: uintPtr(tables[0].ID), TimeSlot: timePtr(slotAt(19)),
			TableStatus: strPtr(models.QueueTableReserved), SlotKey: &key,
		}
	}
	require.NoError(t, db.Create(mk("AA-0001")).Error)
	err := db.Create(mk("AA-0002")).Error
	require.Error(t, err)
	assert.True(t, utils.IsDuplicateKey(err))
}

func TestConcurrentBookingsForLastTable(t *testing.T) {
	db := setupTestDB(t)
	restaurant, _ := seedRestaurant(t, db, 4)
	engine, _ := newTestEngine(db)
	ctx := context.Background()

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			phone := "08" + string(rune('1'+i))
			_, errs[i] = engine.CreateQueue(ctx, bookingInput(restaurant.ID, phone, 2, 19))
		}(i)
	}
	wg.Wait()

	success := 0
	for _, err := range errs {
		if err == nil {
			success++
			continue
		}
		assert.True(t, errors.Is(err, utils.ErrNotFound) || errors.Is(err, utils.ErrConflict), err.Error())
	}
	assert.Equal(t, 1, success)

	var active int64
	db.Model(&models.Queue{}).Where("status = ?", models.QueueBooking).Count(&active)
	assert.Equal(t, int64(1), active)
}

type noopLocker struct{}

func (noopLocker) Acquire(context.Context, string) (func(), error) { return func() {}, nil }

// staleBookingReads membuat n pembacaan booking berikutnya kosong, seolah request
// lain menyimpan booking setelah meja kosong dihitung.
func staleBookingReads(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	remaining := n
	err := db.Callback().Query().After("gorm:query").Register("test:stale_booking_reads", func(tx *gorm.DB) {
		held, ok := tx.Statement.Dest.(*[]models.Queue)
		if !ok || remaining == 0 || tx.Error != nil {
			return
		}
		remaining--
		*held = (*held)[:0]
	})
	require.NoError(t, err)
}

func TestBookingLosingSlotKeyRaceIsReallocated(t *testing.T) {
	db := setupTestDB(t)
	restaurant, tables := seedRestaurant(t, db, 4, 4)
	engine, _ := newTestEngine(db)
	engine.Locker = noopLocker{}
	ctx := context.Background()

	first, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0811", 2, 19))
	require.NoError(t, err)
	require.Equal(t, tables[0].ID, *first.TableID)

	// percobaan pertama memilih meja yang sudah dipegang, unique slotKey menolak
	staleBookingReads(t, db, 1)
	second, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0812", 2, 19))
	require.NoError(t, err)
	assert.Equal(t, tables[1].ID, *second.TableID)

	var count int64
	db.Model(&models.Queue{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestBookingLosingEverySlotKeyRaceConflicts(t *testing.T) {
	db := setupTestDB(t)
	restaurant, tables := seedRestaurant(t, db, 4)
	engine, rec := newTestEngine(db)
	engine.Locker = noopLocker{}
	engine.MaxQueueNoAttempts = 3
	ctx := context.Background()

	first, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0811", 2, 19))
	require.NoError(t, err)
	require.Equal(t, tables[0].ID, *first.TableID)

	staleBookingReads(t, db, engine.MaxQueueNoAttempts)
	_, err = engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0812", 2, 19))
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrConflict)
	assert.Equal(t, "Table is no longer available for the selected slot, please retry", err.Error())

	// tidak ada queue setengah jadi
	var queues []models.Queue
	require.NoError(t, db.Find(&queues).Error)
	require.Len(t, queues, 1)
	assert.Equal(t, first.ID, queues[0].ID)
	assert.Equal(t, []string{events.QueueCreated}, rec.Types())
}

func TestListQueuesAndCustomerHistory(t *testing.T) {
	db := setupTestDB(t)
	restaurant, _ := seedRestaurant(t, db, 4, 4)
	engine, _ := newTestEngine(db)
	ctx := context.Background()

	_, err := engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0811", 2, 19))
	require.NoError(t, err)
	_, err = engine.CreateQueue(ctx, bookingInput(restaurant.ID, "0811", 2, 20))
	require.NoError(t, err)
	_, err = engine.CreateQueue(ctx, waitlistInput(restaurant.ID, "0812", 2))
	require.NoError(t, err)

	bookings, err := engine.ListQueues(ctx, ListQueuesInput{RestaurantID: restaurant.ID, Day: testNow, QueueType: models.QueueBooking})
	require.NoError(t, err)
	assert.Len(t, bookings, 2)

	waitlist, err := engine.ListQueues(ctx, ListQueuesInput{
		RestaurantID: restaurant.ID, Day: db.NowFunc(), QueueType: models.QueueWaitlist, IsForToday: true,
	})
	require.NoError(t, err)
	assert.Len(t, waitlist, 1)

	history, err := engine.ListCustomerQueues(ctx, "0811")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
