package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleAdmin   Role = "admin"
	RoleTrainer Role = "trainer"
	RoleMember  Role = "member"
)

// ParseRole converts a raw string into one of the known roles.
// The boolean is false for anything outside the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleTrainer, RoleMember:
		return Role(s), true
	}
	return "", false
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// User represents an account in the system (admin, trainer or member).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Version is bumped on every subscription rewrite and used as a compare-and-swap token.
	Version int64 `bson:"version" json:"-"`

	// --- Trainer-specific ---
	Trainer *TrainerProfile `bson:"trainer,omitempty" json:"trainer,omitempty"`

	// --- Member-specific ---
	Member *MemberProfile `bson:"member,omitempty" json:"member,omitempty"`
}

// TrainerProfile holds the fields only trainers carry.
type TrainerProfile struct {
	HireDate        time.Time `bson:"hireDate" json:"hireDate"`
	Specializations []string  `bson:"specializations,omitempty" json:"specializations,omitempty"`
}

// MemberProfile holds the PT-session balance and the subscription history of a member.
type MemberProfile struct {
	RegistrationDate time.Time      `bson:"registrationDate" json:"registrationDate"`
	PTSessions       int            `bson:"ptSessions" json:"ptSessions"`
	Subscriptions    []Subscription `bson:"subscriptions" json:"subscriptions"`
}

// Helper methods
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsMember() bool {
	return u.Role == RoleMember
}

// CurrentSubscription returns the member's active, unexpired subscription, if any.
func (u *User) CurrentSubscription(now time.Time) *Subscription {
	if u.Member == nil {
		return nil
	}
	return CurrentSubscription(u.Member.Subscriptions, now)
}

// HasPremium reports whether the member currently holds a Premium subscription.
func (u *User) HasPremium(now time.Time) bool {
	sub := u.CurrentSubscription(now)
	return sub != nil && sub.Tier == TierPremium
}

// PTBalance returns the member's remaining PT sessions (0 for non-members).
func (u *User) PTBalance() int {
	if u.Member == nil {
		return 0
	}
	return u.Member.PTSessions
}

// HasPTAccess reports whether the member may book a private session:
// either Premium or at least one remaining PT credit.
func (u *User) HasPTAccess(now time.Time) bool {
	return u.HasPremium(now) || u.PTBalance() > 0
}
