// Package policy holds the single authorization table consulted by every service.
package policy

import (
	"errors"
	"fmt"

	"alcyxob/gym-portal/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrForbidden       = errors.New("access denied")
	ErrUnauthenticated = errors.New("authentication required")
)

// Principal is the authenticated caller of an operation.
type Principal struct {
	ID   primitive.ObjectID
	Role domain.Role
}

func (p Principal) IsAdmin() bool   { return p.Role == domain.RoleAdmin }
func (p Principal) IsTrainer() bool { return p.Role == domain.RoleTrainer }
func (p Principal) IsMember() bool  { return p.Role == domain.RoleMember }

// Action names an operation subject to authorization.
type Action string

const (
	ReadProfile          Action = "profile:read"
	ManageUsers          Action = "users:manage"
	GrantSessions        Action = "sessions:grant"
	BookSession          Action = "session:book"
	CancelSession        Action = "session:cancel"
	CompleteSession      Action = "session:complete"
	ViewAvailability     Action = "availability:view"
	CreatePlanRequest    Action = "plan_request:create"
	ViewPlanRequest      Action = "plan_request:view"
	RespondPlanRequest   Action = "plan_request:respond"
	CreateClass          Action = "class:create"
	ViewClasses          Action = "class:view"
	EnrollClass          Action = "class:enroll"
	MarkAttendance       Action = "class:attendance"
	UseAssistant         Action = "assistant:use"
	ViewOwnDashboard     Action = "dashboard:view"
	ViewTrainerDirectory Action = "trainers:list"
)

// grant says whether a role may perform an action and whether it must own the resource.
type grant struct {
	owned bool
}

var rules = map[Action]map[domain.Role]grant{
	ReadProfile: {
		domain.RoleAdmin:   {},
		domain.RoleTrainer: {},
		domain.RoleMember:  {owned: true},
	},
	ManageUsers:   {domain.RoleAdmin: {}},
	GrantSessions: {domain.RoleAdmin: {}},
	BookSession: {
		domain.RoleAdmin:  {},
		domain.RoleMember: {owned: true},
	},
	CancelSession: {
		domain.RoleAdmin:   {},
		domain.RoleTrainer: {owned: true},
		domain.RoleMember:  {owned: true},
	},
	CompleteSession: {
		domain.RoleAdmin:   {},
		domain.RoleTrainer: {owned: true},
	},
	ViewAvailability: {
		domain.RoleAdmin:   {},
		domain.RoleTrainer: {},
		domain.RoleMember:  {},
	},
	CreatePlanRequest: {
		domain.RoleAdmin:  {},
		domain.RoleMember: {owned: true},
	},
	ViewPlanRequest: {
		domain.RoleAdmin:   {},
		domain.RoleTrainer: {owned: true},
		domain.RoleMember:  {owned: true},
	},
	RespondPlanRequest: {
		domain.RoleAdmin:   {},
		domain.RoleTrainer: {owned: true},
	},
	CreateClass: {domain.RoleAdmin: {}},
	ViewClasses: {
		domain.RoleAdmin:   {},
		domain.RoleTrainer: {},
		domain.RoleMember:  {},
	},
	EnrollClass: {
		domain.RoleAdmin:  {},
		domain.RoleMember: {owned: true},
	},
	MarkAttendance: {
		domain.RoleAdmin:   {},
		domain.RoleTrainer: {owned: true},
	},
	UseAssistant: {
		domain.RoleAdmin:   {},
		domain.RoleTrainer: {},
		domain.RoleMember:  {},
	},
	ViewOwnDashboard: {
		domain.RoleAdmin:   {},
		domain.RoleTrainer: {},
		domain.RoleMember:  {},
	},
	ViewTrainerDirectory: {
		domain.RoleAdmin:   {},
		domain.RoleTrainer: {},
		domain.RoleMember:  {},
	},
}

// Authorize checks whether p may perform action a. For roles that must own the
// resource, p.ID has to be one of owners. Returns an error wrapping ErrForbidden
// on denial and ErrUnauthenticated for an empty principal.
func Authorize(p Principal, a Action, owners ...primitive.ObjectID) error {
	if p.ID.IsZero() || !p.Role.Valid() {
		return ErrUnauthenticated
	}
	byRole, ok := rules[a]
	if !ok {
		return fmt.Errorf("%w: unknown action %q", ErrForbidden, a)
	}
	g, ok := byRole[p.Role]
	if !ok {
		return fmt.Errorf("%w: role '%s' cannot perform %s", ErrForbidden, p.Role, a)
	}
	if !g.owned {
		return nil
	}
	for _, id := range owners {
		if id == p.ID {
			return nil
		}
	}
	return fmt.Errorf("%w: %s on a resource owned by another user", ErrForbidden, a)
}

// Allowed is Authorize as a boolean.
func Allowed(p Principal, a Action, owners ...primitive.ObjectID) bool {
	return Authorize(p, a, owners...) == nil
}
