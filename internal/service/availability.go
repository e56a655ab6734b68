package service

import (
	"time"

	"alcyxob/gym-portal/internal/domain"
)

// DailySlots are the bookable PT start times, identical for every trainer and working day.
var DailySlots = []string{"09:00", "11:00", "14:00", "16:00", "18:00"}

// DefaultMaxRangeDays bounds an availability query when no limit is configured.
const DefaultMaxRangeDays = 31

// DayAvailability lists the free slots of one day.
type DayAvailability struct {
	Date  time.Time `json:"date"`
	Slots []string  `json:"slots"`
}

// IsBookableSlot reports whether slot is one of DailySlots.
func IsBookableSlot(slot string) bool {
	for _, s := range DailySlots {
		if s == slot {
			return true
		}
	}
	return false
}

// IsWorkingDay reports whether sessions can be booked on the (UTC) day of t.
func IsWorkingDay(t time.Time) bool {
	return domain.DateOnly(t).Weekday() != time.Sunday
}

// ComputeAvailability projects the free slots of every working day in [start, end]
// given the trainer's sessions. Cancelled sessions never hold a slot. Days without
// any free slot are omitted.
func ComputeAvailability(start, end time.Time, sessions []domain.PrivateSession) []DayAvailability {
	start, end = domain.DateOnly(start), domain.DateOnly(end)

	held := make(map[time.Time]map[string]bool)
	for _, s := range sessions {
		if !s.Active() {
			continue
		}
		day := domain.DateOnly(s.Date)
		if held[day] == nil {
			held[day] = map[string]bool{}
		}
		held[day][s.Time] = true
	}

	days := []DayAvailability{}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if !IsWorkingDay(day) {
			continue
		}
		free := make([]string, 0, len(DailySlots))
		for _, slot := range DailySlots {
			if !held[day][slot] {
				free = append(free, slot)
			}
		}
		if len(free) > 0 {
			days = append(days, DayAvailability{Date: day, Slots: free})
		}
	}
	return days
}
