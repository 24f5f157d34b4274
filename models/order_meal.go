package models

import (
	"time"
)

type OrderMeal struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"orderId"`
	// Order tidak diikutkan di JSON agar tidak rekursif
	Order      Order     `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MealID     uint      `gorm:"not null" json:"mealId"`
	Meal       *Meal     `gorm:"foreignKey:MealID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"meal,omitempty"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	TotalPrice float64   `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"not null" json:"updatedAt"`
}
