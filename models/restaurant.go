package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	DefaultOpenHour          = "10:00"
	DefaultCloseHour         = "22:00"
	DefaultSlotDurationInMin = 30
)

// Restaurant dimiliki oleh satu admin. OpenDays memakai hari ISO (1=Senin ... 7=Minggu).
type Restaurant struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	AdminID           uint      `gorm:"uniqueIndex;not null" json:"adminId"`
	Name              string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug              string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Location          string    `gorm:"type:varchar(255)" json:"location"`
	OpenDaysRaw       string    `gorm:"column:open_days;type:varchar(32);not null" json:"-"`
	OpenDays          []int     `gorm:"-" json:"openDays"`
	OpenHour          string    `gorm:"type:varchar(5);not null;default:'10:00'" json:"openHour"`
	CloseHour         string    `gorm:"type:varchar(5);not null;default:'22:00'" json:"closeHour"`
	SlotDurationInMin int       `gorm:"not null;default:30" json:"slotDurationInMin"`
	QrCode            string    `gorm:"type:varchar(255)" json:"qrCode"`
	SharedLink        string    `gorm:"type:varchar(255)" json:"sharedLink"`
	Tables            []Table   `gorm:"foreignKey:RestaurantID" json:"tables,omitempty"`
	Meals             []Meal    `gorm:"foreignKey:RestaurantID" json:"meals,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (r *Restaurant) BeforeSave(tx *gorm.DB) error {
	if r.OpenDays != nil {
		parts := make([]string, 0, len(r.OpenDays))
		for _, d := range r.OpenDays {
			if d < 1 || d > 7 {
				return fmt.Errorf("invalid open day %d", d)
			}
			parts = append(parts, strconv.Itoa(d))
		}
		r.OpenDaysRaw = strings.Join(parts, ",")
	}
	if r.OpenDaysRaw == "" {
		r.OpenDaysRaw = "1,2,3,4,5,6,7"
	}
	if r.OpenHour == "" {
		r.OpenHour = DefaultOpenHour
	}
	if r.CloseHour == "" {
		r.CloseHour = DefaultCloseHour
	}
	if r.SlotDurationInMin <= 0 {
		r.SlotDurationInMin = DefaultSlotDurationInMin
	}
	return nil
}

func (r *Restaurant) AfterSave(tx *gorm.DB) error {
	r.OpenDays = ParseOpenDays(r.OpenDaysRaw)
	return nil
}

func (r *Restaurant) AfterFind(tx *gorm.DB) error {
	r.OpenDays = ParseOpenDays(r.OpenDaysRaw)
	return nil
}

// ParseOpenDays -> "1,3,5" menjadi []int{1,3,5}, nilai tidak valid dilewati
func ParseOpenDays(raw string) []int {
	days := []int{}
	for _, p := range strings.Split(raw, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || d < 1 || d > 7 {
			continue
		}
		days = append(days, d)
	}
	return days
}

// IsOpenOn reports whether the restaurant opens on the weekday of t.
func (r *Restaurant) IsOpenOn(t time.Time) bool {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	for _, d := range r.OpenDays {
		if d == wd {
			return true
		}
	}
	return false
}

func (r *Restaurant) SlotDuration() time.Duration {
	if r.SlotDurationInMin <= 0 {
		return DefaultSlotDurationInMin * time.Minute
	}
	return time.Duration(r.SlotDurationInMin) * time.Minute
}
