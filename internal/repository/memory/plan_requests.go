package memory

import (
	"context"
	"time"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanRequestRepository is an in-memory repository.PlanRequestRepository.
type PlanRequestRepository struct {
	store    *Store
	requests []domain.PlanRequest
}

func (r *PlanRequestRepository) Create(_ context.Context, req *domain.PlanRequest) (primitive.ObjectID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	req.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = domain.RequestPending
	}
	r.requests = append(r.requests, *req)
	return req.ID, nil
}

func (r *PlanRequestRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.PlanRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, req := range r.requests {
		if req.ID == id {
			out := req
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *PlanRequestRepository) List(_ context.Context, f repository.PlanRequestFilter) ([]domain.PlanRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := []domain.PlanRequest{}
	// Newest first, like the Mongo implementation
	for i := len(r.requests) - 1; i >= 0; i-- {
		req := r.requests[i]
		if f.MemberID != nil && req.MemberID != *f.MemberID {
			continue
		}
		if f.TrainerID != nil && req.TrainerID != *f.TrainerID {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, req.Status) {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

func containsStatus(list []domain.PlanRequestStatus, s domain.PlanRequestStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (r *PlanRequestRepository) Update(_ context.Context, req *domain.PlanRequest) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.requests {
		stored := &r.requests[i]
		if stored.ID != req.ID {
			continue
		}
		stored.Status = req.Status
		stored.Response = req.Response
		if req.ResponseDate != nil {
			t := *req.ResponseDate
			stored.ResponseDate = &t
		}
		if req.AttachmentKey != "" {
			stored.AttachmentKey = req.AttachmentKey
		}
		stored.UpdatedAt = time.Now().UTC()
		req.UpdatedAt = stored.UpdatedAt
		return nil
	}
	return repository.ErrNotFound
}
