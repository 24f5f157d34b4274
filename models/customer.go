package models

import (
	"time"
)

// Customer dibuat sebagai profil "shell" saat antri (hanya nomor telepon & nama),
// lalu bisa diklaim menjadi akun penuh lewat register.
type Customer struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	PhoneNo          string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"phoneNo"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`
	Email            *string   `gorm:"type:varchar(255);uniqueIndex" json:"email,omitempty"`
	Password         *string   `gorm:"type:varchar(255)" json:"-"`
	IsAccountCreated bool      `gorm:"not null;default:false" json:"isAccountCreated"`
	CreatedAt        time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt        time.Time `gorm:"not null" json:"updatedAt"`
}
