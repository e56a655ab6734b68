package memory

import (
	"context"
	"sort"
	"time"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClassRepository is an in-memory repository.ClassRepository.
type ClassRepository struct {
	store   *Store
	classes []domain.GroupClass
}

func cloneClass(c domain.GroupClass) domain.GroupClass {
	c.Participants = append([]domain.Participant{}, c.Participants...)
	return c
}

func (r *ClassRepository) Create(_ context.Context, c *domain.GroupClass) (primitive.ObjectID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Date = domain.DateOnly(c.Date)
	if c.Participants == nil {
		c.Participants = []domain.Participant{}
	}
	r.classes = append(r.classes, cloneClass(*c))
	return c.ID, nil
}

func (r *ClassRepository) find(id primitive.ObjectID) *domain.GroupClass {
	for i := range r.classes {
		if r.classes[i].ID == id {
			return &r.classes[i]
		}
	}
	return nil
}

func (r *ClassRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.GroupClass, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := r.find(id)
	if c == nil {
		return nil, repository.ErrNotFound
	}
	out := cloneClass(*c)
	return &out, nil
}

func (r *ClassRepository) List(_ context.Context, f repository.ClassFilter) ([]domain.GroupClass, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := []domain.GroupClass{}
	for _, c := range r.classes {
		if f.TrainerID != nil && c.TrainerID != *f.TrainerID {
			continue
		}
		if !inRange(c.Date, f.From, f.To) {
			continue
		}
		out = append(out, cloneClass(c))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (r *ClassRepository) Enroll(_ context.Context, classID primitive.ObjectID, p domain.Participant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := r.find(classID)
	if c == nil || c.EnrolledCount >= c.Capacity {
		return repository.ErrConditionFailed
	}
	if p.EnrolledAt.IsZero() {
		p.EnrolledAt = time.Now().UTC()
	}
	if existing := c.Participant(p.MemberID); existing != nil {
		if existing.Status != domain.ParticipantCancelled {
			return repository.ErrConditionFailed
		}
		existing.Status = domain.ParticipantEnrolled
		existing.EnrolledAt = p.EnrolledAt
	} else {
		p.Status = domain.ParticipantEnrolled
		c.Participants = append(c.Participants, p)
	}
	c.EnrolledCount++
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *ClassRepository) SetParticipantStatus(_ context.Context, classID, memberID primitive.ObjectID, from, to domain.ParticipantStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c := r.find(classID)
	if c == nil {
		return repository.ErrConditionFailed
	}
	p := c.Participant(memberID)
	if p == nil || p.Status != from {
		return repository.ErrConditionFailed
	}
	switch {
	case from != domain.ParticipantCancelled && to == domain.ParticipantCancelled:
		c.EnrolledCount--
	case from == domain.ParticipantCancelled && to != domain.ParticipantCancelled:
		if c.EnrolledCount >= c.Capacity {
			return repository.ErrConditionFailed
		}
		c.EnrolledCount++
	}
	p.Status = to
	c.UpdatedAt = time.Now().UTC()
	return nil
}
