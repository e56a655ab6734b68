package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus type for private session lifecycle
type SessionStatus string

const (
	SessionConfirmed SessionStatus = "confirmed"
	SessionCancelled SessionStatus = "cancelled"
	SessionCompleted SessionStatus = "completed"
)

// PrivateSession is a one-on-one PT booking between a trainer and a member.
// Names are snapshots taken at booking time and are not kept in sync.
type PrivateSession struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	TrainerName string             `bson:"trainerName" json:"trainerName"`
	MemberID    primitive.ObjectID `bson:"memberId" json:"memberId"`
	MemberName  string             `bson:"memberName" json:"memberName"`
	Date        time.Time          `bson:"date" json:"date"` // Midnight UTC
	Time        string             `bson:"time" json:"time"` // "HH:MM"
	Status      SessionStatus      `bson:"status" json:"status"`
	// HoldsSlot is true while the session occupies its (date, time) slot.
	// The unique partial indexes on sessions are filtered on it.
	HoldsSlot bool `bson:"holdsSlot" json:"-"`
	// Debited records whether a PT credit was consumed for this booking.
	Debited   bool      `bson:"debited" json:"debited"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Active reports whether the session still claims its slot.
func (s *PrivateSession) Active() bool {
	return s.Status != SessionCancelled
}

// StartsAt combines the session date and time-of-day.
func (s *PrivateSession) StartsAt() time.Time {
	t, err := time.Parse("15:04", s.Time)
	if err != nil {
		return s.Date
	}
	return s.Date.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
}

// DateOnly truncates t to midnight UTC; it is the comparison key for booking dates.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
