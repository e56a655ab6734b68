package repository

import (
	"alcyxob/gym-portal/internal/domain" // Import our defined domain models
	"context"                            // Standard for request-scoped deadlines, cancellation signals, etc.
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive" // For using ObjectIDs
)

// Error constants for repository layer
var (
	ErrNotFound        = RepositoryError("not found")
	ErrDuplicate       = RepositoryError("duplicate key")
	ErrVersionConflict = RepositoryError("document was modified concurrently")
	ErrConditionFailed = RepositoryError("update precondition not met")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// GetByIDAndRole only matches a user holding the given role.
	GetByIDAndRole(ctx context.Context, id primitive.ObjectID, role domain.Role) (*domain.User, error)
	// List returns users, optionally restricted to one role (empty role = all).
	List(ctx context.Context, role domain.Role) ([]domain.User, error)
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)
	CountMembersWithCurrentSubscription(ctx context.Context, now time.Time) (int64, error)
	UpdateName(ctx context.Context, id primitive.ObjectID, name string) error
	UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// AddPTSessions atomically adds delta credits to a member's balance.
	AddPTSessions(ctx context.Context, memberID primitive.ObjectID, delta int) error
	// DebitPTSession atomically removes one credit; ErrConditionFailed when the balance is 0.
	DebitPTSession(ctx context.Context, memberID primitive.ObjectID) error
	// ReplaceSubscriptions swaps the member's subscription history if the stored
	// version still equals expectedVersion; ErrVersionConflict otherwise.
	ReplaceSubscriptions(ctx context.Context, memberID primitive.ObjectID, expectedVersion int64, subs []domain.Subscription) error
}

// SessionFilter narrows a private session listing. Nil/zero fields are ignored.
type SessionFilter struct {
	TrainerID  *primitive.ObjectID
	MemberID   *primitive.ObjectID
	From       *time.Time // inclusive, compared against the session date
	To         *time.Time // inclusive
	ActiveOnly bool       // exclude cancelled sessions
}

// SessionRepository defines the interface for private session bookings.
type SessionRepository interface {
	// Create inserts a session; ErrDuplicate when an active session already holds the slot.
	Create(ctx context.Context, session *domain.PrivateSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PrivateSession, error)
	FindActiveByTrainerSlot(ctx context.Context, trainerID primitive.ObjectID, date time.Time, slot string) (*domain.PrivateSession, error)
	FindActiveByMemberSlot(ctx context.Context, memberID primitive.ObjectID, date time.Time, slot string) (*domain.PrivateSession, error)
	List(ctx context.Context, filter SessionFilter) ([]domain.PrivateSession, error)
	// TransitionStatus moves a session from one status to another; ErrConditionFailed
	// when the session is no longer in the expected status.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to domain.SessionStatus) error
}

// ClassFilter narrows a group class listing.
type ClassFilter struct {
	TrainerID *primitive.ObjectID
	From      *time.Time
	To        *time.Time
}

// ClassRepository defines the interface for group classes and their rosters.
type ClassRepository interface {
	Create(ctx context.Context, class *domain.GroupClass) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GroupClass, error)
	List(ctx context.Context, filter ClassFilter) ([]domain.GroupClass, error)
	// Enroll adds (or re-activates) a participant while the class has room;
	// ErrConditionFailed when the class is full or the member is already enrolled.
	Enroll(ctx context.Context, classID primitive.ObjectID, participant domain.Participant) error
	SetParticipantStatus(ctx context.Context, classID, memberID primitive.ObjectID, from, to domain.ParticipantStatus) error
}

// PlanRequestFilter narrows a plan request listing.
type PlanRequestFilter struct {
	MemberID  *primitive.ObjectID
	TrainerID *primitive.ObjectID
	Statuses  []domain.PlanRequestStatus
}

// PlanRequestRepository defines the interface for plan requests.
type PlanRequestRepository interface {
	Create(ctx context.Context, req *domain.PlanRequest) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanRequest, error)
	List(ctx context.Context, filter PlanRequestFilter) ([]domain.PlanRequest, error)
	Update(ctx context.Context, req *domain.PlanRequest) error
}
