package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/queueease/events"
	"github.com/yeremiapane/queueease/models"
	"github.com/yeremiapane/queueease/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultQueueNoAttempts = 10

var errQueueNoTaken = errors.New("queue number already taken")

type CreateQueueInput struct {
	RestaurantID uint       `json:"restaurantId" binding:"required"`
	PhoneNo      string     `json:"phoneNo" binding:"required"`
	Name         string     `json:"name" binding:"required"`
	PartySize    int        `json:"partySize" binding:"required,gt=0"`
	QueueType    string     `json:"queueType" binding:"required"`
	SelectedSlot *time.Time `json:"selectedSlot"`
}

type UpdateQueueStatusInput struct {
	TableID        *uint   `json:"tableId"`
	Status         *string `json:"status"`
	ProgressStatus *string `json:"progressStatus"`
}

type ListQueuesInput struct {
	RestaurantID uint
	Day          time.Time
	QueueType    string
	IsForToday   bool
}

type WaitlistSummary struct {
	WaitlistCount     int `json:"waitlistCount"`
	EstimatedWaitTime int `json:"estimatedWaitTime"`
}

// QueueEngine mengatur siklus hidup antrian: booking, waitlist, serving, completed.
type QueueEngine struct {
	DB           *gorm.DB
	Tables       *TableDirectory
	Availability *AvailabilityCalculator
	Locker       Locker
	Publisher    events.Publisher
	Location     *time.Location

	Now                func() time.Time
	NewQueueNo         func(time.Time) string
	MaxQueueNoAttempts int
}

func NewQueueEngine(db *gorm.DB, locker Locker, publisher events.Publisher, loc *time.Location) *QueueEngine {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &QueueEngine{
		DB:                 db,
		Tables:             NewTableDirectory(db),
		Availability:       NewAvailabilityCalculator(db, loc),
		Locker:             locker,
		Publisher:          publisher,
		Location:           loc,
		Now:                func() time.Time { return time.Now().UTC() },
		NewQueueNo:         RandomQueueNumber,
		MaxQueueNoAttempts: defaultQueueNoAttempts,
	}
}

func (e *QueueEngine) now() time.Time {
	return e.Now().UTC()
}

// CreateQueue mendaftarkan customer ke waitlist atau membuat booking pada slot tertentu.
func (e *QueueEngine) CreateQueue(ctx context.Context, in CreateQueueInput) (*models.Queue, error) {
	if in.PartySize <= 0 {
		return nil, utils.BadRequest("partySize must be greater than 0")
	}
	if in.PhoneNo == "" {
		return nil, utils.BadRequest("phoneNo is required")
	}
	if in.QueueType != models.QueueBooking && in.QueueType != models.QueueWaitlist {
		return nil, utils.BadRequest("queueType must be BOOKING or WAITLIST")
	}

	restaurant, err := e.loadRestaurant(ctx, in.RestaurantID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	var slot time.Time
	var lockKey string
	if in.QueueType == models.QueueBooking {
		if in.SelectedSlot == nil {
			return nil, utils.BadRequest("selectedSlot is required for bookings")
		}
		slot = in.SelectedSlot.UTC()
		if err := ValidateSlot(restaurant, slot, now, e.Location); err != nil {
			return nil, err
		}
		lockKey = slotLockKey(restaurant.ID, slot)
	} else {
		lockKey = waitlistLockKey(restaurant.ID)
	}

	customer, err := e.upsertCustomer(ctx, in.PhoneNo, in.Name)
	if err != nil {
		return nil, err
	}

	release, err := e.Locker.Acquire(ctx, lockKey)
	if err != nil {
		return nil, err
	}
	defer release()

	attempts := e.MaxQueueNoAttempts
	if attempts <= 0 {
		attempts = defaultQueueNoAttempts
	}

	var queue *models.Queue
	for attempt := 0; attempt < attempts; attempt++ {
		queue, err = e.insertQueue(ctx, restaurant, customer, in, slot, now, attempts)
		if err == nil {
			break
		}
		if !utils.IsDuplicateKey(err) {
			return nil, err
		}
		// unique constraint kalah: queueNo bentrok atau meja sudah diambil request lain,
		// percobaan berikutnya memakai kode baru dan menghitung ulang meja kosong
		if !e.queueNoExists(ctx, queue) {
			utils.InfoLogger.WithFields(logrus.Fields{
				"restaurant_id": restaurant.ID,
				"time_slot":     slot.Format(time.RFC3339),
			}).Info("table taken concurrently, retrying allocation")
		}
	}
	if err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, utils.Conflict("Table is no longer available for the selected slot, please retry")
		}
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": restaurant.ID,
		"queue_no":      queue.QueueNo,
		"status":        queue.Status,
		"table_id":      queue.TableID,
	}).Info("queue created")

	e.publish(ctx, events.QueueCreated, queue)
	return e.reload(ctx, queue.ID)
}

// insertQueue menjalankan satu percobaan pembuatan queue dalam satu transaksi.
// Queue yang dikembalikan bersama error duplicate membawa QueueNo percobaan tersebut.
func (e *QueueEngine) insertQueue(ctx context.Context, restaurant *models.Restaurant, customer *models.Customer, in CreateQueueInput, slot, now time.Time, attempts int) (*models.Queue, error) {
	queue := &models.Queue{
		RestaurantID:   restaurant.ID,
		CustomerID:     customer.ID,
		PartySize:      in.PartySize,
		Status:         in.QueueType,
		ProgressStatus: models.ProgressConfirmed,
	}

	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		queueNo, err := e.nextQueueNo(tx, now, attempts)
		if err != nil {
			return err
		}
		queue.QueueNo = queueNo

		switch in.QueueType {
		case models.QueueWaitlist:
			var maxPos int
			if err := tx.Model(&models.Queue{}).
				Where("restaurant_id = ? AND status = ?", restaurant.ID, models.QueueWaitlist).
				Select("COALESCE(MAX(position), 0)").Scan(&maxPos).Error; err != nil {
				return err
			}
			pos := maxPos + 1
			queue.Position = &pos

		case models.QueueBooking:
			free, err := e.Availability.FreeTablesAt(tx, restaurant, slot)
			if err != nil {
				return err
			}
			table := SmallestFitting(free, in.PartySize)
			if table == nil {
				return utils.NotFound("No available tables found for the specified party size")
			}
			tableID := table.ID
			reserved := models.QueueTableReserved
			key := models.BookingSlotKey(table.ID, slot)
			queue.TableID = &tableID
			queue.TimeSlot = &slot
			queue.TableStatus = &reserved
			queue.SlotKey = &key
		}

		return tx.Create(queue).Error
	})
	return queue, err
}

func (e *QueueEngine) nextQueueNo(tx *gorm.DB, now time.Time, attempts int) (string, error) {
	for i := 0; i < attempts; i++ {
		// kode memakai hari dan jam lokal restoran
		code := e.NewQueueNo(now.In(e.Location))
		var count int64
		if err := tx.Model(&models.Queue{}).Where("queue_no = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", utils.Internal(fmt.Errorf("%w: no unique queue number after %d attempts", errQueueNoTaken, attempts))
}

func (e *QueueEngine) queueNoExists(ctx context.Context, q *models.Queue) bool {
	if q == nil || q.QueueNo == "" {
		return false
	}
	var count int64
	e.DB.WithContext(ctx).Model(&models.Queue{}).Where("queue_no = ?", q.QueueNo).Count(&count)
	return count > 0
}

// upsertCustomer -> cari berdasarkan nomor telepon, buat profil shell bila belum ada
func (e *QueueEngine) upsertCustomer(ctx context.Context, phoneNo, name string) (*models.Customer, error) {
	db := e.DB.WithContext(ctx)
	for i := 0; i < 2; i++ {
		var customer models.Customer
		err := db.Where("phone_no = ?", phoneNo).First(&customer).Error
		if err == nil {
			if name != "" && customer.Name != name {
				if err := db.Model(&customer).Update("name", name).Error; err != nil {
					return nil, err
				}
			}
			return &customer, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		customer = models.Customer{PhoneNo: phoneNo, Name: name}
		err = db.Create(&customer).Error
		if err == nil {
			return &customer, nil
		}
		if !utils.IsDuplicateKey(err) {
			return nil, err
		}
		// dibuat bersamaan oleh request lain, baca ulang
	}
	return nil, utils.Conflict("Phone number already in use")
}

// UpdateQueueStatus -> perubahan parsial; perubahan meja dan queue dalam satu transaksi
func (e *QueueEngine) UpdateQueueStatus(ctx context.Context, id uint, in UpdateQueueStatusInput) (*models.Queue, error) {
	if in.Status != nil && !models.IsValidQueueStatus(*in.Status) {
		return nil, utils.BadRequest("Invalid status %q", *in.Status)
	}
	if in.ProgressStatus != nil && !models.IsValidProgressStatus(*in.ProgressStatus) {
		return nil, utils.BadRequest("Invalid progressStatus %q", *in.ProgressStatus)
	}

	var touchedTables []uint
	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var queue models.Queue
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&queue, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("Queue not found")
			}
			return err
		}
		if !queue.IsActive() && (in.Status != nil || in.TableID != nil) {
			return utils.BadRequest("Queue is already completed")
		}

		newStatus := queue.Status
		if in.Status != nil {
			newStatus = *in.Status
		}

		updates := map[string]interface{}{}

		effectiveTableID := queue.TableID
		var newTable *models.Table
		if in.TableID != nil {
			var table models.Table
			if err := tx.Where("id = ? AND restaurant_id = ?", *in.TableID, queue.RestaurantID).First(&table).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return utils.NotFound("Table not found")
				}
				return err
			}
			newTable = &table
			effectiveTableID = &table.ID
			updates["table_id"] = table.ID
			if queue.SlotKey != nil && queue.TimeSlot != nil && newStatus != models.QueueCompleted {
				updates["slot_key"] = models.BookingSlotKey(table.ID, *queue.TimeSlot)
			}
		}
		tableChanged := in.TableID != nil && (queue.TableID == nil || *queue.TableID != *in.TableID)

		if newStatus != queue.Status {
			switch {
			case queue.Status == models.QueueServing && newStatus != models.QueueCompleted:
				return utils.BadRequest("A serving queue can only be completed")
			case newStatus == models.QueueWaitlist:
				return utils.BadRequest("Queue cannot be moved back to the waitlist")
			case newStatus == models.QueueBooking && (effectiveTableID == nil || queue.TimeSlot == nil):
				return utils.BadRequest("A booking requires a table and a time slot")
			}
		}

		switch {
		case newStatus == models.QueueServing && (queue.Status != models.QueueServing || tableChanged):
			if effectiveTableID == nil {
				return utils.BadRequest("A table is required to serve this queue")
			}
			if newTable == nil {
				var table models.Table
				if err := tx.First(&table, *effectiveTableID).Error; err != nil {
					return err
				}
				newTable = &table
			}
			if newTable.Status == models.TableReserved {
				return utils.Conflict("Table %s is currently occupied", newTable.TableNo)
			}
			if queue.Status == models.QueueServing && tableChanged && queue.TableID != nil {
				// pindah meja saat sedang dilayani: lepas meja lama
				released, err := releaseTable(tx, *queue.TableID, queue.ID)
				if err != nil {
					return err
				}
				if released {
					touchedTables = append(touchedTables, *queue.TableID)
				}
			}
			if err := setTableStatus(tx, newTable.ID, models.TableReserved); err != nil {
				return err
			}
			touchedTables = append(touchedTables, newTable.ID)
			if queue.TableStatus == nil {
				updates["table_status"] = models.QueueTableOccupied
			}

		case newStatus == models.QueueCompleted && queue.Status != models.QueueCompleted:
			candidates := []uint{}
			if effectiveTableID != nil {
				candidates = append(candidates, *effectiveTableID)
			}
			if queue.Status == models.QueueServing && tableChanged && queue.TableID != nil {
				candidates = append(candidates, *queue.TableID)
			}
			for _, tableID := range candidates {
				released, err := releaseTable(tx, tableID, queue.ID)
				if err != nil {
					return err
				}
				if released {
					touchedTables = append(touchedTables, tableID)
				}
			}
			updates["slot_key"] = nil
		}

		if in.Status != nil {
			updates["status"] = *in.Status
		}
		if in.ProgressStatus != nil {
			updates["progress_status"] = *in.ProgressStatus
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&queue).Updates(updates).Error; err != nil {
			if utils.IsDuplicateKey(err) {
				return utils.Conflict("Table is already booked for this time slot")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	queue, err := e.reload(ctx, id)
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": queue.RestaurantID,
		"queue_no":      queue.QueueNo,
		"status":        queue.Status,
		"tables":        touchedTables,
	}).Info("queue status updated")

	e.publish(ctx, events.QueueStatusChanged, queue)
	e.publishTables(ctx, queue.RestaurantID, touchedTables)
	return queue, nil
}

func setTableStatus(tx *gorm.DB, tableID uint, status string) error {
	return tx.Model(&models.Table{}).Where("id = ?", tableID).Update("status", status).Error
}

// releaseTable -> meja kembali AVAILABLE hanya bila tidak ada queue SERVING lain di meja itu
func releaseTable(tx *gorm.DB, tableID, queueID uint) (bool, error) {
	var serving int64
	err := tx.Model(&models.Queue{}).
		Where("table_id = ? AND status = ? AND id <> ?", tableID, models.QueueServing, queueID).
		Count(&serving).Error
	if err != nil {
		return false, err
	}
	if serving > 0 {
		return false, nil
	}
	return true, setTableStatus(tx, tableID, models.TableAvailable)
}

// GetQueueDetails -> lookup customer berdasarkan queueNo, dengan estimasi bila WAITLIST
func (e *QueueEngine) GetQueueDetails(ctx context.Context, queueNo string) (*models.Queue, error) {
	var queue models.Queue
	err := e.DB.WithContext(ctx).
		Preload("Table").Preload("Customer").Preload("Restaurant").
		Where("queue_no = ?", queueNo).First(&queue).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Queue not found")
		}
		return nil, err
	}
	if queue.Status == models.QueueServing {
		return nil, utils.BadRequest("Queue is already serving")
	}
	if queue.Status == models.QueueWaitlist {
		if err := e.attachWaitEstimate(ctx, &queue); err != nil {
			return nil, err
		}
	}
	return &queue, nil
}

// GetQueueByID -> tampilan staff, tanpa penolakan status SERVING
func (e *QueueEngine) GetQueueByID(ctx context.Context, id uint) (*models.Queue, error) {
	queue, err := e.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	if queue.Status == models.QueueWaitlist {
		if err := e.attachWaitEstimate(ctx, queue); err != nil {
			return nil, err
		}
	}
	return queue, nil
}

func (e *QueueEngine) attachWaitEstimate(ctx context.Context, queue *models.Queue) error {
	db := e.DB.WithContext(ctx)
	var ahead int64
	err := db.Model(&models.Queue{}).
		Where("restaurant_id = ? AND status = ? AND queue_no <> ? AND updated_at <= ?",
			queue.RestaurantID, models.QueueWaitlist, queue.QueueNo, queue.UpdatedAt).
		Count(&ahead).Error
	if err != nil {
		return err
	}
	available, err := countAvailableTables(db, queue.RestaurantID)
	if err != nil {
		return err
	}
	restaurant := queue.Restaurant
	if restaurant == nil {
		if restaurant, err = e.loadRestaurant(ctx, queue.RestaurantID); err != nil {
			return err
		}
	}
	count, minutes := EstimateWait(int(ahead), int(available), restaurant.SlotDurationInMin)
	queue.WaitlistCount = &count
	queue.EstimatedWaitTime = &minutes
	return nil
}

// EstimateWait -> setiap meja kosong langsung menyerap satu rombongan; sisanya
// menunggu satu durasi slot per rombongan. Minimal 1 menit.
func EstimateWait(ahead, availableTables, slotDurationInMin int) (waitlistCount, estimatedMinutes int) {
	waitlistCount = ahead + 1 - availableTables
	if waitlistCount < 0 {
		waitlistCount = 0
	}
	estimatedMinutes = waitlistCount * slotDurationInMin
	if estimatedMinutes < 1 {
		estimatedMinutes = 1
	}
	return waitlistCount, estimatedMinutes
}

func countAvailableTables(db *gorm.DB, restaurantID uint) (int64, error) {
	var available int64
	err := db.Model(&models.Table{}).
		Where("restaurant_id = ? AND status = ?", restaurantID, models.TableAvailable).
		Count(&available).Error
	return available, err
}

// WaitlistSummary -> estimasi untuk calon pengantri baru pada hari tersebut
func (e *QueueEngine) WaitlistSummary(ctx context.Context, restaurantID uint, day time.Time) (*WaitlistSummary, error) {
	restaurant, err := e.loadRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	db := e.DB.WithContext(ctx)
	from, to := DayWindow(day, e.Location)

	var waiting int64
	err = db.Model(&models.Queue{}).
		Where("restaurant_id = ? AND status = ? AND updated_at >= ? AND updated_at < ?",
			restaurantID, models.QueueWaitlist, from, to).
		Count(&waiting).Error
	if err != nil {
		return nil, err
	}
	available, err := countAvailableTables(db, restaurantID)
	if err != nil {
		return nil, err
	}
	count, minutes := EstimateWait(int(waiting), int(available), restaurant.SlotDurationInMin)
	return &WaitlistSummary{WaitlistCount: count, EstimatedWaitTime: minutes}, nil
}

// SlotAvailability -> tampilan GET /queues
func (e *QueueEngine) SlotAvailability(ctx context.Context, restaurantID uint, day time.Time, queueType string, forCustomerBooking bool) ([]SlotAvailability, error) {
	if _, err := e.loadRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	from, to := DayWindow(day, e.Location)
	return e.Availability.GroupBySlot(ctx, AvailabilityQuery{
		RestaurantID:     restaurantID,
		From:             from,
		To:               to,
		Status:           queueType,
		ExcludeCompleted: forCustomerBooking,
	})
}

// DaySlots -> grid slot hari itu beserta jumlah meja kosong
func (e *QueueEngine) DaySlots(ctx context.Context, restaurantID uint, day time.Time, partySize int) ([]SlotSummary, error) {
	restaurant, err := e.loadRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	return e.Availability.DaySlots(ctx, restaurant, day, partySize)
}

// ListQueues -> daftar untuk dashboard staff
func (e *QueueEngine) ListQueues(ctx context.Context, in ListQueuesInput) ([]models.Queue, error) {
	from, to := DayWindow(in.Day, e.Location)
	query := e.DB.WithContext(ctx).Preload("Table").Preload("Customer").
		Where("restaurant_id = ?", in.RestaurantID)

	if in.QueueType != "" {
		query = query.Where("status = ?", in.QueueType)
	}
	if in.IsForToday && in.QueueType != models.QueueBooking {
		query = query.Where("updated_at >= ? AND updated_at < ?", from, to)
	} else {
		query = query.Where("time_slot >= ? AND time_slot < ?", from, to)
	}

	var queues []models.Queue
	if err := query.Order("updated_at desc").Find(&queues).Error; err != nil {
		return nil, err
	}
	return queues, nil
}

// ListCustomerQueues -> riwayat antrian milik customer
func (e *QueueEngine) ListCustomerQueues(ctx context.Context, phoneNo string) ([]models.Queue, error) {
	var queues []models.Queue
	db := e.DB.WithContext(ctx)
	customerIDs := db.Model(&models.Customer{}).Select("id").Where("phone_no = ?", phoneNo)
	err := db.Preload("Table").Preload("Restaurant").
		Where("customer_id IN (?)", customerIDs).
		Order("created_at desc").
		Find(&queues).Error
	return queues, err
}

func (e *QueueEngine) loadRestaurant(ctx context.Context, id uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := e.DB.WithContext(ctx).First(&restaurant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Restaurant not found")
		}
		return nil, err
	}
	return &restaurant, nil
}

func (e *QueueEngine) reload(ctx context.Context, id uint) (*models.Queue, error) {
	var queue models.Queue
	err := e.DB.WithContext(ctx).Preload("Table").Preload("Customer").First(&queue, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Queue not found")
		}
		return nil, err
	}
	return &queue, nil
}

// publishTables -> status meja terbaru untuk dashboard, setelah commit
func (e *QueueEngine) publishTables(ctx context.Context, restaurantID uint, tableIDs []uint) {
	if len(tableIDs) == 0 {
		return
	}
	var tables []models.Table
	if err := e.DB.WithContext(ctx).Where("id IN ?", tableIDs).Order("id asc").Find(&tables).Error; err != nil {
		utils.ErrorLogger.WithField("restaurant_id", restaurantID).Errorf("reload tables for broadcast: %v", err)
		return
	}
	for i := range tables {
		table := tables[i]
		ev := events.Event{
			Type:         events.TableStatusChanged,
			RestaurantID: restaurantID,
			Status:       table.Status,
			TableID:      &table.ID,
			Payload:      table,
			OccurredAt:   e.now(),
		}
		if err := e.Publisher.Publish(ctx, ev); err != nil {
			utils.ErrorLogger.WithField("table_id", table.ID).Errorf("publish %s: %v", ev.Type, err)
		}
	}
}

func (e *QueueEngine) publish(ctx context.Context, eventType string, q *models.Queue) {
	ev := events.Event{
		Type:         eventType,
		RestaurantID: q.RestaurantID,
		QueueID:      q.ID,
		QueueNo:      q.QueueNo,
		Status:       q.Status,
		TableID:      q.TableID,
		TimeSlot:     q.TimeSlot,
		Payload:      q,
		OccurredAt:   e.now(),
	}
	if err := e.Publisher.Publish(ctx, ev); err != nil {
		utils.ErrorLogger.WithField("queue_no", q.QueueNo).Errorf("publish %s: %v", eventType, err)
	}
}
