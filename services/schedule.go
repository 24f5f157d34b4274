package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yeremiapane/queueease/models"
	"github.com/yeremiapane/queueease/utils"
)

const dayLayout = "2006-01-02"

// ParseDay -> tengah malam lokal dari "YYYY-MM-DD"
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(dayLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, utils.BadRequest("Invalid day %q, expected YYYY-MM-DD", s)
	}
	return day, nil
}

// DayWindow -> [awal hari, awal hari berikutnya) dalam UTC
func DayWindow(day time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := day.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// ParseClock -> "HH:MM" menjadi menit sejak tengah malam (00:00 - 24:00)
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || h < 0 || m < 0 || m > 59 || h*60+m > 24*60 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	return h*60 + m, nil
}

// ValidateHours dipakai saat admin mengubah jam buka.
func ValidateHours(openHour, closeHour string, slotDurationInMin int) error {
	open, err := ParseClock(openHour)
	if err != nil {
		return utils.BadRequest("Invalid openHour %q", openHour)
	}
	closing, err := ParseClock(closeHour)
	if err != nil {
		return utils.BadRequest("Invalid closeHour %q", closeHour)
	}
	if slotDurationInMin <= 0 {
		return utils.BadRequest("slotDurationInMin must be greater than 0")
	}
	if closing-open < slotDurationInMin {
		return utils.BadRequest("Opening hours must fit at least one slot")
	}
	return nil
}

// SlotGrid -> semua awal slot pada hari itu, kosong bila restoran tutup
func SlotGrid(r *models.Restaurant, day time.Time, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.UTC
	}
	startUTC, _ := DayWindow(day, loc)
	start := startUTC.In(loc)
	if !r.IsOpenOn(start) {
		return nil
	}
	open, err := ParseClock(r.OpenHour)
	if err != nil {
		return nil
	}
	closing, err := ParseClock(r.CloseHour)
	if err != nil {
		return nil
	}
	dur := r.SlotDurationInMin
	if dur <= 0 {
		dur = models.DefaultSlotDurationInMin
	}
	var slots []time.Time
	for m := open; m+dur <= closing; m += dur {
		slots = append(slots, time.Date(start.Year(), start.Month(), start.Day(), 0, m, 0, 0, loc).UTC())
	}
	return slots
}

// ValidateSlot memastikan slot booking berada di grid jam buka dan belum lewat.
func ValidateSlot(r *models.Restaurant, slot, now time.Time, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	if slot.Before(now) {
		return utils.BadRequest("Selected time slot is in the past")
	}
	local := slot.In(loc)
	if !r.IsOpenOn(local) {
		return utils.BadRequest("Restaurant is closed on the selected day")
	}
	open, err := ParseClock(r.OpenHour)
	if err != nil {
		return utils.Internal(err)
	}
	closing, err := ParseClock(r.CloseHour)
	if err != nil {
		return utils.Internal(err)
	}
	dur := r.SlotDurationInMin
	if dur <= 0 {
		dur = models.DefaultSlotDurationInMin
	}
	minute := local.Hour()*60 + local.Minute()
	if local.Second() != 0 || local.Nanosecond() != 0 || (minute-open)%dur != 0 {
		return utils.BadRequest("Selected time slot must align with %d minute slots starting at %s", dur, r.OpenHour)
	}
	if minute < open || minute+dur > closing {
		return utils.BadRequest("Selected time slot is outside opening hours")
	}
	return nil
}
