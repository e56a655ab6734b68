package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/mailer"
	"alcyxob/gym-portal/internal/policy"
	"alcyxob/gym-portal/internal/repository"
	"alcyxob/gym-portal/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttachmentUpload is returned to a trainer who wants to attach a plan document.
type AttachmentUpload struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PlanRequestUpdate carries the optional fields of Update; nil means unchanged.
type PlanRequestUpdate struct {
	Status   *domain.PlanRequestStatus
	Response *string
}

type PlanRequestService interface {
	Create(ctx context.Context, actor policy.Principal, memberID, trainerID primitive.ObjectID, planType domain.PlanType, message string) (*domain.PlanRequest, error)
	Update(ctx context.Context, actor policy.Principal, id primitive.ObjectID, upd PlanRequestUpdate) (*domain.PlanRequest, error)
	// SendPlan emails the plan to the member and completes the request only if delivery succeeded.
	SendPlan(ctx context.Context, actor policy.Principal, id primitive.ObjectID, content string) (*domain.PlanRequest, error)
	AttachmentUploadURL(ctx context.Context, actor policy.Principal, id primitive.ObjectID, contentType string) (*AttachmentUpload, error)
	List(ctx context.Context, actor policy.Principal, statuses ...domain.PlanRequestStatus) ([]domain.PlanRequest, error)
	Get(ctx context.Context, actor policy.Principal, id primitive.ObjectID) (*domain.PlanRequest, error)
}

type planRequestService struct {
	userRepo    repository.UserRepository
	requestRepo repository.PlanRequestRepository
	sender      mailer.Sender
	fileStorage storage.FileStorage // nil when attachments are disabled
}

func NewPlanRequestService(
	userRepo repository.UserRepository,
	requestRepo repository.PlanRequestRepository,
	sender mailer.Sender,
	fileStorage storage.FileStorage,
) PlanRequestService {
	return &planRequestService{
		userRepo:    userRepo,
		requestRepo: requestRepo,
		sender:      sender,
		fileStorage: fileStorage,
	}
}

func (s *planRequestService) Create(ctx context.Context, actor policy.Principal, memberID, trainerID primitive.ObjectID, planType domain.PlanType, message string) (*domain.PlanRequest, error) {
	// 1. Members request for themselves; admins must name the member
	if memberID.IsZero() && actor.IsMember() {
		memberID = actor.ID
	}
	if err := policy.Authorize(actor, policy.CreatePlanRequest, memberID); err != nil {
		return nil, err
	}
	if !planType.Valid() {
		return nil, fmt.Errorf("%w: planType must be diet, exercise or both", ErrValidation)
	}

	// 2. Both parties must exist
	member, err := s.userRepo.GetByIDAndRole(ctx, memberID, domain.RoleMember)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	trainer, err := s.userRepo.GetByIDAndRole(ctx, trainerID, domain.RoleTrainer)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}

	// 3. Save with name snapshots
	req := &domain.PlanRequest{
		MemberID:    member.ID,
		MemberName:  member.Name,
		MemberEmail: member.Email,
		TrainerID:   trainer.ID,
		TrainerName: trainer.Name,
		PlanType:    planType,
		Message:     strings.TrimSpace(message),
		Status:      domain.RequestPending,
	}
	id, err := s.requestRepo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	req.ID = id
	return req, nil
}

func (s *planRequestService) load(ctx context.Context, id primitive.ObjectID) (*domain.PlanRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

// loadForTrainer loads a request the actor is allowed to respond to.
func (s *planRequestService) loadForTrainer(ctx context.Context, actor policy.Principal, id primitive.ObjectID) (*domain.PlanRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.RespondPlanRequest, req.TrainerID); err != nil {
		return nil, err
	}
	return req, nil
}

// Update changes status and/or response. Status order is not enforced.
func (s *planRequestService) Update(ctx context.Context, actor policy.Principal, id primitive.ObjectID, upd PlanRequestUpdate) (*domain.PlanRequest, error) {
	req, err := s.loadForTrainer(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if upd.Status == nil && upd.Response == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *upd.Status)
		}
		req.Status = *upd.Status
	}
	if upd.Response != nil {
		now := time.Now().UTC()
		req.Response = *upd.Response
		req.ResponseDate = &now
	}
	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *planRequestService) SendPlan(ctx context.Context, actor policy.Principal, id primitive.ObjectID, content string) (*domain.PlanRequest, error) {
	req, err := s.loadForTrainer(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: plan content cannot be empty", ErrValidation)
	}
	if req.MemberEmail == "" {
		return nil, fmt.Errorf("%w: member has no email address on this request", ErrValidation)
	}

	// 1. Optional attachment link
	var attachmentURL string
	if req.AttachmentKey != "" && s.fileStorage != nil {
		attachmentURL, err = s.fileStorage.GeneratePresignedDownloadURL(ctx, req.AttachmentKey, storage.AttachmentDownloadExpiry)
		if err != nil {
			log.Printf("WARN: Plan request %s: attachment link unavailable, sending without it: %v", req.ID.Hex(), err)
			attachmentURL = ""
		}
	}

	// 2. Render and send
	subject, body, err := mailer.RenderPlanEmail(mailer.PlanEmail{
		MemberName:    req.MemberName,
		TrainerName:   req.TrainerName,
		PlanType:      string(req.PlanType),
		Content:       content,
		AttachmentURL: attachmentURL,
	})
	if err != nil {
		return nil, err
	}
	err = s.sender.Send(ctx, mailer.Message{
		To:      req.MemberEmail,
		ToName:  req.MemberName,
		Subject: subject,
		HTML:    body,
		Text:    content,
	})
	if err != nil {
		log.Printf("ERROR: Plan request %s: email to %s failed: %v", req.ID.Hex(), req.MemberEmail, err)
		return nil, ErrDeliveryFailed
	}

	// 3. Only a delivered plan completes the request
	now := time.Now().UTC()
	req.Status = domain.RequestCompleted
	req.Response = content
	req.ResponseDate = &now
	if err := s.requestRepo.Update(ctx, req); err != nil {
		log.Printf("ERROR: Plan request %s: email sent but status update failed: %v", req.ID.Hex(), err)
		return nil, err
	}
	log.Printf("INFO: Plan request %s fulfilled and emailed to %s", req.ID.Hex(), req.MemberEmail)
	return req, nil
}

func (s *planRequestService) AttachmentUploadURL(ctx context.Context, actor policy.Principal, id primitive.ObjectID, contentType string) (*AttachmentUpload, error) {
	if s.fileStorage == nil {
		return nil, fmt.Errorf("%w: attachment storage", ErrFeatureDisabled)
	}
	req, err := s.loadForTrainer(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	key, err := storage.PlanAttachmentKey(req.ID.Hex(), contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, key, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}

	previous := req.AttachmentKey
	req.AttachmentKey = key
	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	if previous != "" {
		if err := s.fileStorage.DeleteObject(ctx, previous); err != nil {
			log.Printf("WARN: Plan request %s: could not delete replaced attachment %s: %v", req.ID.Hex(), previous, err)
		}
	}

	return &AttachmentUpload{
		UploadURL: uploadURL,
		ObjectKey: key,
		ExpiresAt: time.Now().UTC().Add(storage.DefaultPresignedURLExpiry),
	}, nil
}

func (s *planRequestService) List(ctx context.Context, actor policy.Principal, statuses ...domain.PlanRequestStatus) ([]domain.PlanRequest, error) {
	if err := policy.Authorize(actor, policy.ViewOwnDashboard); err != nil {
		return nil, err
	}
	filter := repository.PlanRequestFilter{Statuses: statuses}
	switch {
	case actor.IsMember():
		id := actor.ID
		filter.MemberID = &id
	case actor.IsTrainer():
		id := actor.ID
		filter.TrainerID = &id
	}
	return s.requestRepo.List(ctx, filter)
}

func (s *planRequestService) Get(ctx context.Context, actor policy.Principal, id primitive.ObjectID) (*domain.PlanRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ViewPlanRequest, req.MemberID, req.TrainerID); err != nil {
		return nil, err
	}
	return req, nil
}
