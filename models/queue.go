package models

import (
	"fmt"
	"time"
)

const (
	QueueBooking   = "BOOKING"
	QueueWaitlist  = "WAITLIST"
	QueueServing   = "SERVING"
	QueueCompleted = "COMPLETED"

	ProgressPending   = "PENDING"
	ProgressConfirmed = "CONFIRMED"

	QueueTableReserved = "RESERVED"
	QueueTableOccupied = "OCCUPIED"
)

type Queue struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	RestaurantID   uint        `gorm:"not null;index" json:"restaurantId"`
	Restaurant     *Restaurant `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	CustomerID     uint        `gorm:"not null;index" json:"customerId"`
	Customer       *Customer   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	TableID        *uint       `gorm:"index" json:"tableId"`
	Table          *Table      `gorm:"foreignKey:TableID" json:"table,omitempty"`
	QueueNo        string      `gorm:"type:varchar(20);uniqueIndex;not null" json:"queueNo"`
	PartySize      int         `gorm:"not null" json:"partySize"`
	TimeSlot       *time.Time  `gorm:"index" json:"timeSlot"`
	Status         string      `gorm:"type:varchar(20);not null;index" json:"status"`
	ProgressStatus string      `gorm:"type:varchar(20);not null;default:'PENDING'" json:"progressStatus"`
	Position       *int        `json:"position"`
	TableStatus    *string     `gorm:"type:varchar(20)" json:"tableStatus"`
	// SlotKey terisi selama booking memegang meja pada slot tertentu, NULL selainnya.
	SlotKey   *string   `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updatedAt"`

	// dihitung saat lookup, tidak disimpan
	WaitlistCount     *int `gorm:"-" json:"waitlistCount,omitempty"`
	EstimatedWaitTime *int `gorm:"-" json:"estimatedWaitTime,omitempty"`
}

func (q *Queue) IsActive() bool {
	return q.Status != QueueCompleted
}

// BookingSlotKey -> kunci unik (meja, awal slot) untuk booking aktif
func BookingSlotKey(tableID uint, slot time.Time) string {
	return fmt.Sprintf("%d:%d", tableID, slot.UTC().Unix())
}

func IsValidQueueStatus(s string) bool {
	switch s {
	case QueueBooking, QueueWaitlist, QueueServing, QueueCompleted:
		return true
	}
	return false
}

func IsValidProgressStatus(s string) bool {
	return s == ProgressPending || s == ProgressConfirmed
}
