package models

import "time"

type Admin struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Name       string      `gorm:"type:varchar(255);not null" json:"name"`
	Email      string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password   string      `gorm:"type:varchar(255);not null" json:"-"`
	Restaurant *Restaurant `gorm:"foreignKey:AdminID" json:"restaurant,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}
