package memory

import (
	"context"
	"sort"
	"time"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionRepository is an in-memory repository.SessionRepository.
type SessionRepository struct {
	store    *Store
	sessions []domain.PrivateSession
}

func sameSlot(a, b domain.PrivateSession) bool {
	return a.Date.Equal(b.Date) && a.Time == b.Time
}

func (r *SessionRepository) Create(_ context.Context, s *domain.PrivateSession) (primitive.ObjectID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s.Date = domain.DateOnly(s.Date)
	if s.Status == "" {
		s.Status = domain.SessionConfirmed
	}
	s.HoldsSlot = s.Active()
	if s.HoldsSlot {
		for _, existing := range r.sessions {
			if !existing.HoldsSlot || !sameSlot(existing, *s) {
				continue
			}
			if existing.TrainerID == s.TrainerID || existing.MemberID == s.MemberID {
				return primitive.NilObjectID, repository.ErrDuplicate
			}
		}
	}
	s.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	r.sessions = append(r.sessions, *s)
	return s.ID, nil
}

func (r *SessionRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.PrivateSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.sessions {
		if s.ID == id {
			out := s
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *SessionRepository) findActive(match func(domain.PrivateSession) bool) (*domain.PrivateSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.sessions {
		if s.Active() && match(s) {
			out := s
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *SessionRepository) FindActiveByTrainerSlot(_ context.Context, trainerID primitive.ObjectID, date time.Time, slot string) (*domain.PrivateSession, error) {
	day := domain.DateOnly(date)
	return r.findActive(func(s domain.PrivateSession) bool {
		return s.TrainerID == trainerID && s.Date.Equal(day) && s.Time == slot
	})
}

func (r *SessionRepository) FindActiveByMemberSlot(_ context.Context, memberID primitive.ObjectID, date time.Time, slot string) (*domain.PrivateSession, error) {
	day := domain.DateOnly(date)
	return r.findActive(func(s domain.PrivateSession) bool {
		return s.MemberID == memberID && s.Date.Equal(day) && s.Time == slot
	})
}

func inRange(d time.Time, from, to *time.Time) bool {
	if from != nil && d.Before(domain.DateOnly(*from)) {
		return false
	}
	if to != nil && d.After(domain.DateOnly(*to)) {
		return false
	}
	return true
}

func (r *SessionRepository) List(_ context.Context, f repository.SessionFilter) ([]domain.PrivateSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := []domain.PrivateSession{}
	for _, s := range r.sessions {
		if f.TrainerID != nil && s.TrainerID != *f.TrainerID {
			continue
		}
		if f.MemberID != nil && s.MemberID != *f.MemberID {
			continue
		}
		if f.ActiveOnly && !s.Active() {
			continue
		}
		if !inRange(s.Date, f.From, f.To) {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (r *SessionRepository) TransitionStatus(_ context.Context, id primitive.ObjectID, from, to domain.SessionStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.sessions {
		s := &r.sessions[i]
		if s.ID != id {
			continue
		}
		if s.Status != from {
			return repository.ErrConditionFailed
		}
		s.Status = to
		s.HoldsSlot = to != domain.SessionCancelled
		s.UpdatedAt = time.Now().UTC()
		return nil
	}
	return repository.ErrConditionFailed
}
