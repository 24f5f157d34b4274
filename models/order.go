package models

import (
	"time"
)

const (
	OrderPending   = "PENDING"
	OrderPreparing = "PREPARING"
	OrderServed    = "SERVED"
	OrderDelivered = "DELIVERED"
	OrderCancelled = "CANCELLED"
)

type Order struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	RestaurantID uint        `gorm:"not null;index" json:"restaurantId"`
	QueueID      uint        `gorm:"not null;index" json:"queueId"`
	Queue        *Queue      `gorm:"foreignKey:QueueID" json:"queue,omitempty"`
	TableID      uint        `gorm:"not null" json:"tableId"`
	Table        *Table      `gorm:"foreignKey:TableID" json:"table,omitempty"`
	CustomerID   uint        `gorm:"not null;index" json:"customerId"`
	Customer     *Customer   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Status       string      `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	TotalPrice   float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"totalPrice"`
	OrderMeals   []OrderMeal `gorm:"foreignKey:OrderID" json:"orderMeals"`
	CreatedAt    time.Time   `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time   `gorm:"not null" json:"updatedAt"`
}
