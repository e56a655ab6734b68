// Package memory provides in-process implementations of the repository
// interfaces with the same atomicity guarantees as the MongoDB versions
// (unique slots, conditional debits, versioned subscription writes).
// It backs the service and API tests.
package memory

import (
	"sync"

	"alcyxob/gym-portal/internal/repository"
)

// Store groups the in-memory repositories that share one lock.
type Store struct {
	mu sync.Mutex

	Users        *UserRepository
	Sessions     *SessionRepository
	Classes      *ClassRepository
	PlanRequests *PlanRequestRepository
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{}
	s.Users = &UserRepository{store: s, byID: map[string]*userRecord{}}
	s.Sessions = &SessionRepository{store: s}
	s.Classes = &ClassRepository{store: s}
	s.PlanRequests = &PlanRequestRepository{store: s}
	return s
}

var (
	_ repository.UserRepository        = (*UserRepository)(nil)
	_ repository.SessionRepository     = (*SessionRepository)(nil)
	_ repository.ClassRepository       = (*ClassRepository)(nil)
	_ repository.PlanRequestRepository = (*PlanRequestRepository)(nil)
)
