// internal/domain/plan_request.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanType is the kind of plan a member asks a trainer for.
type PlanType string

const (
	PlanDiet     PlanType = "diet"
	PlanExercise PlanType = "exercise"
	PlanBoth     PlanType = "both"
)

func (p PlanType) Valid() bool {
	return p == PlanDiet || p == PlanExercise || p == PlanBoth
}

// PlanRequestStatus type for the request workflow
type PlanRequestStatus string

const (
	RequestPending    PlanRequestStatus = "pending"
	RequestInProgress PlanRequestStatus = "in_progress"
	RequestCompleted  PlanRequestStatus = "completed"
)

func (s PlanRequestStatus) Valid() bool {
	return s == RequestPending || s == RequestInProgress || s == RequestCompleted
}

// PlanRequest is a member's request for a trainer-authored diet and/or exercise plan.
type PlanRequest struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID     primitive.ObjectID `bson:"memberId" json:"memberId"`
	MemberName   string             `bson:"memberName" json:"memberName"`
	MemberEmail  string             `bson:"memberEmail,omitempty" json:"memberEmail,omitempty"`
	TrainerID    primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	TrainerName  string             `bson:"trainerName" json:"trainerName"`
	PlanType     PlanType           `bson:"planType" json:"planType"`
	Message      string             `bson:"message,omitempty" json:"message,omitempty"`
	Status       PlanRequestStatus  `bson:"status" json:"status"`
	Response     string             `bson:"response,omitempty" json:"response,omitempty"`
	ResponseDate *time.Time         `bson:"responseDate,omitempty" json:"responseDate,omitempty"`
	// AttachmentKey is the object storage key of an optional plan document.
	AttachmentKey string    `bson:"attachmentKey,omitempty" json:"-"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}
