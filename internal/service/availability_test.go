package service_test

import (
	"reflect"
	"testing"
	"time"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/service"
)

func TestComputeAvailability(t *testing.T) {
	monday := tuesday.AddDate(0, 0, -1)

	tests := []struct {
		name       string
		start, end time.Time
		sessions   []domain.PrivateSession
		wantDays   int
		check      func(t *testing.T, days []service.DayAvailability)
	}{
		{
			name:     "empty calendar",
			start:    monday,
			end:      monday.AddDate(0, 0, 6),
			wantDays: 6,
		},
		{
			name:     "sunday only",
			start:    sunday,
			end:      sunday,
			wantDays: 0,
		},
		{
			name:  "cancelled session does not hold a slot",
			start: tuesday,
			end:   tuesday,
			sessions: []domain.PrivateSession{
				{Date: tuesday, Time: "09:00", Status: domain.SessionCancelled},
			},
			wantDays: 1,
			check: func(t *testing.T, days []service.DayAvailability) {
				if len(days[0].Slots) != 5 {
					t.Errorf("got %v", days[0].Slots)
				}
			},
		},
		{
			name:  "held slots removed, completed still holds",
			start: tuesday,
			end:   tuesday,
			sessions: []domain.PrivateSession{
				{Date: tuesday, Time: "11:00", Status: domain.SessionConfirmed},
				{Date: tuesday, Time: "18:00", Status: domain.SessionCompleted},
			},
			wantDays: 1,
			check: func(t *testing.T, days []service.DayAvailability) {
				want := []string{"09:00", "14:00", "16:00"}
				if !reflect.DeepEqual(days[0].Slots, want) {
					t.Errorf("slots = %v, want %v", days[0].Slots, want)
				}
			},
		},
		{
			name:  "fully booked day is omitted",
			start: tuesday,
			end:   tuesday.AddDate(0, 0, 1),
			sessions: func() []domain.PrivateSession {
				var out []domain.PrivateSession
				for _, slot := range service.DailySlots {
					out = append(out, domain.PrivateSession{Date: tuesday, Time: slot, Status: domain.SessionConfirmed})
				}
				return out
			}(),
			wantDays: 1,
			check: func(t *testing.T, days []service.DayAvailability) {
				if !days[0].Date.Equal(tuesday.AddDate(0, 0, 1)) {
					t.Errorf("expected only wednesday, got %v", days[0].Date)
				}
			},
		},
		{
			name:     "time of day on bounds is ignored",
			start:    tuesday.Add(20 * time.Hour),
			end:      tuesday.Add(1 * time.Hour),
			wantDays: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := service.ComputeAvailability(tt.start, tt.end, tt.sessions)
			if len(days) != tt.wantDays {
				t.Fatalf("got %d days, want %d: %+v", len(days), tt.wantDays, days)
			}
			if tt.check != nil {
				tt.check(t, days)
			}
		})
	}
}
