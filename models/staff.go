package models

import "time"

type Staff struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"not null;index" json:"restaurantId"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	PhoneNo      string    `gorm:"type:varchar(32)" json:"phoneNo"`
	Role         string    `gorm:"type:varchar(50);not null;default:'WAITER'" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
