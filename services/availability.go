package services

import (
	"context"
	"sort"
	"time"

	"github.com/yeremiapane/queueease/models"
	"gorm.io/gorm"
)

type AvailabilityQuery struct {
	RestaurantID uint
	// jendela [From, To); bila Exact diisi, hanya slot itu
	From  time.Time
	To    time.Time
	Exact *time.Time
	// filter status opsional (queueType)
	Status           string
	ExcludeCompleted bool
	// tableStatus yang dianggap memakai meja, default RESERVED
	CommittedStatuses []string
}

type SlotAvailability struct {
	TimeSlot            time.Time      `json:"timeSlot"`
	Queues              []models.Queue `json:"queues"`
	AvailableTables     []models.Table `json:"availableTables"`
	AvailableTableCount int            `json:"availableTableCount"`
}

type SlotSummary struct {
	TimeSlot            time.Time `json:"timeSlot"`
	AvailableTableCount int       `json:"availableTableCount"`
	FitsPartySize       bool      `json:"fitsPartySize"`
}

type AvailabilityCalculator struct {
	DB       *gorm.DB
	Location *time.Location
}

func NewAvailabilityCalculator(db *gorm.DB, loc *time.Location) *AvailabilityCalculator {
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityCalculator{DB: db, Location: loc}
}

// GroupBySlot -> tampilan availability per timeSlot (kesamaan timestamp persis).
func (ac *AvailabilityCalculator) GroupBySlot(ctx context.Context, q AvailabilityQuery) ([]SlotAvailability, error) {
	db := ac.DB.WithContext(ctx)

	tables, err := listTables(db, q.RestaurantID)
	if err != nil {
		return nil, err
	}

	query := db.Preload("Table").Preload("Customer").
		Where("restaurant_id = ? AND time_slot IS NOT NULL", q.RestaurantID)
	if q.Exact != nil {
		query = query.Where("time_slot = ?", q.Exact.UTC())
	} else {
		query = query.Where("time_slot >= ? AND time_slot < ?", q.From.UTC(), q.To.UTC())
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.ExcludeCompleted {
		query = query.Where("status <> ?", models.QueueCompleted)
	}

	var queues []models.Queue
	if err := query.Order("time_slot asc, id asc").Find(&queues).Error; err != nil {
		return nil, err
	}

	committed := q.CommittedStatuses
	if len(committed) == 0 {
		committed = []string{models.QueueTableReserved}
	}
	return GroupQueuesBySlot(tables, queues, committed), nil
}

// GroupQueuesBySlot mengelompokkan queue per timeSlot dan mengurangi meja yang terpakai.
func GroupQueuesBySlot(tables []models.Table, queues []models.Queue, committed []string) []SlotAvailability {
	isCommitted := make(map[string]bool, len(committed))
	for _, s := range committed {
		isCommitted[s] = true
	}

	groups := make(map[int64]*SlotAvailability)
	taken := make(map[int64]map[uint]bool)
	for _, q := range queues {
		if q.TimeSlot == nil {
			continue
		}
		key := q.TimeSlot.UTC().UnixNano()
		g, ok := groups[key]
		if !ok {
			g = &SlotAvailability{TimeSlot: q.TimeSlot.UTC(), Queues: []models.Queue{}}
			groups[key] = g
			taken[key] = make(map[uint]bool)
		}
		g.Queues = append(g.Queues, q)
		if q.TableID != nil && q.TableStatus != nil && isCommitted[*q.TableStatus] {
			taken[key][*q.TableID] = true
		}
	}

	out := make([]SlotAvailability, 0, len(groups))
	for key, g := range groups {
		g.AvailableTables = []models.Table{}
		for _, t := range tables {
			if !taken[key][t.ID] {
				g.AvailableTables = append(g.AvailableTables, t)
			}
		}
		g.AvailableTableCount = len(g.AvailableTables)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TimeSlot.Before(out[j].TimeSlot) })
	return out
}

// FreeTablesAt -> meja yang tidak dipegang booking aktif yang beririsan dengan
// [slot, slot+durasi). Dipanggil di dalam transaksi alokasi.
func (ac *AvailabilityCalculator) FreeTablesAt(tx *gorm.DB, restaurant *models.Restaurant, slot time.Time) ([]models.Table, error) {
	tables, err := listTables(tx, restaurant.ID)
	if err != nil {
		return nil, err
	}
	held, err := heldTableIDs(tx, restaurant, slot)
	if err != nil {
		return nil, err
	}
	free := make([]models.Table, 0, len(tables))
	for _, t := range tables {
		if !held[t.ID] {
			free = append(free, t)
		}
	}
	return free, nil
}

func heldTableIDs(tx *gorm.DB, restaurant *models.Restaurant, slot time.Time) (map[uint]bool, error) {
	dur := restaurant.SlotDuration()
	var bookings []models.Queue
	err := tx.Select("id", "table_id", "time_slot").
		Where("restaurant_id = ? AND status <> ? AND table_status = ? AND table_id IS NOT NULL", restaurant.ID, models.QueueCompleted, models.QueueTableReserved).
		Where("time_slot > ? AND time_slot < ?", slot.Add(-dur).UTC(), slot.Add(dur).UTC()).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	held := make(map[uint]bool, len(bookings))
	for _, b := range bookings {
		if b.TableID != nil {
			held[*b.TableID] = true
		}
	}
	return held, nil
}

// DaySlots -> ringkasan semua slot grid pada satu hari untuk form booking customer
func (ac *AvailabilityCalculator) DaySlots(ctx context.Context, restaurant *models.Restaurant, day time.Time, partySize int) ([]SlotSummary, error) {
	db := ac.DB.WithContext(ctx)
	slots := SlotGrid(restaurant, day, ac.Location)
	out := make([]SlotSummary, 0, len(slots))
	for _, slot := range slots {
		free, err := ac.FreeTablesAt(db, restaurant, slot)
		if err != nil {
			return nil, err
		}
		out = append(out, SlotSummary{
			TimeSlot:            slot,
			AvailableTableCount: len(free),
			FitsPartySize:       partySize <= 0 || SmallestFitting(free, partySize) != nil,
		})
	}
	return out, nil
}
