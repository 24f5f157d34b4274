package models

import "time"

const (
	TableAvailable = "AVAILABLE"
	TableOccupied  = "OCCUPIED"
	TableReserved  = "RESERVED"
)

// Table.Status adalah penanda real-time "ada tamu yang sedang duduk".
// Reservasi per slot tidak disimpan di sini, melainkan diturunkan dari Queue aktif.
type Table struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"not null;uniqueIndex:idx_restaurant_table_no" json:"restaurantId"`
	TableNo      string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_restaurant_table_no" json:"tableNo"`
	TableSize    int       `gorm:"not null" json:"tableSize"`
	Status       string    `gorm:"type:varchar(20);not null;default:'AVAILABLE'" json:"status"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" json:"updatedAt"`
}

func IsValidTableStatus(s string) bool {
	return s == TableAvailable || s == TableOccupied || s == TableReserved
}
