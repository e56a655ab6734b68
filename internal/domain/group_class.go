package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParticipantStatus tracks a member's place in a group class.
type ParticipantStatus string

const (
	ParticipantEnrolled  ParticipantStatus = "enrolled"
	ParticipantCancelled ParticipantStatus = "cancelled"
	ParticipantAttended  ParticipantStatus = "attended"
)

// Participant is one roster entry of a group class.
type Participant struct {
	MemberID   primitive.ObjectID `bson:"memberId" json:"memberId"`
	MemberName string             `bson:"memberName" json:"memberName"`
	Status     ParticipantStatus  `bson:"status" json:"status"`
	EnrolledAt time.Time          `bson:"enrolledAt" json:"enrolledAt"`
}

// GroupClass is a scheduled class with a fixed capacity led by one trainer.
type GroupClass struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClassType    string             `bson:"classType" json:"classType"` // e.g., "Yoga", "Spinning"
	Capacity     int                `bson:"capacity" json:"capacity"`
	TrainerID    primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	TrainerName  string             `bson:"trainerName" json:"trainerName"`
	Date         time.Time          `bson:"date" json:"date"` // Midnight UTC
	Time         string             `bson:"time" json:"time"` // "HH:MM"
	Participants []Participant      `bson:"participants" json:"participants"`
	// EnrolledCount mirrors the number of participants with status enrolled or attended.
	// It backs the atomic capacity check on enrollment.
	EnrolledCount int       `bson:"enrolledCount" json:"enrolledCount"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Participant returns the roster entry for memberID, if present.
func (c *GroupClass) Participant(memberID primitive.ObjectID) *Participant {
	for i := range c.Participants {
		if c.Participants[i].MemberID == memberID {
			return &c.Participants[i]
		}
	}
	return nil
}

// AttendedCount counts participants marked attended.
func (c *GroupClass) AttendedCount() int {
	n := 0
	for _, p := range c.Participants {
		if p.Status == ParticipantAttended {
			n++
		}
	}
	return n
}

// IsFull reports whether enrollment reached capacity.
func (c *GroupClass) IsFull() bool {
	return c.EnrolledCount >= c.Capacity
}
