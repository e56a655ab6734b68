package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/policy"
	"alcyxob/gym-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewClassInput describes a group class to schedule.
type NewClassInput struct {
	ClassType string
	Capacity  int
	TrainerID primitive.ObjectID
	Date      time.Time
	Time      string // "HH:MM"
}

type ClassService interface {
	CreateClass(ctx context.Context, actor policy.Principal, in NewClassInput) (*domain.GroupClass, error)
	ListClasses(ctx context.Context, actor policy.Principal, from, to *time.Time) ([]domain.GroupClass, error)
	GetClass(ctx context.Context, actor policy.Principal, classID primitive.ObjectID) (*domain.GroupClass, error)
	Enroll(ctx context.Context, actor policy.Principal, classID, memberID primitive.ObjectID) (*domain.GroupClass, error)
	MarkAttendance(ctx context.Context, actor policy.Principal, classID, memberID primitive.ObjectID, status domain.ParticipantStatus) (*domain.GroupClass, error)
}

type classService struct {
	userRepo  repository.UserRepository
	classRepo repository.ClassRepository
}

func NewClassService(userRepo repository.UserRepository, classRepo repository.ClassRepository) ClassService {
	return &classService{userRepo: userRepo, classRepo: classRepo}
}

func validClock(s string) bool {
	t, err := time.Parse("15:04", s)
	return err == nil && t.Format("15:04") == s
}

func (s *classService) CreateClass(ctx context.Context, actor policy.Principal, in NewClassInput) (*domain.GroupClass, error) {
	if err := policy.Authorize(actor, policy.CreateClass); err != nil {
		return nil, err
	}

	// 1. Validate input
	in.ClassType = strings.TrimSpace(in.ClassType)
	switch {
	case in.ClassType == "":
		return nil, fmt.Errorf("%w: classType is required", ErrValidation)
	case in.Capacity <= 0:
		return nil, fmt.Errorf("%w: capacity must be positive", ErrValidation)
	case in.Date.IsZero():
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	case !validClock(in.Time):
		return nil, fmt.Errorf("%w: time must be HH:MM", ErrValidation)
	}

	// 2. Trainer
	trainer, err := s.userRepo.GetByIDAndRole(ctx, in.TrainerID, domain.RoleTrainer)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}

	// 3. Save
	class := &domain.GroupClass{
		ClassType:    in.ClassType,
		Capacity:     in.Capacity,
		TrainerID:    trainer.ID,
		TrainerName:  trainer.Name,
		Date:         domain.DateOnly(in.Date),
		Time:         in.Time,
		Participants: []domain.Participant{},
	}
	id, err := s.classRepo.Create(ctx, class)
	if err != nil {
		return nil, err
	}
	class.ID = id
	return class, nil
}

func (s *classService) ListClasses(ctx context.Context, actor policy.Principal, from, to *time.Time) ([]domain.GroupClass, error) {
	if err := policy.Authorize(actor, policy.ViewClasses); err != nil {
		return nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, fmt.Errorf("%w: to must not be before from", ErrValidation)
	}
	return s.classRepo.List(ctx, repository.ClassFilter{From: from, To: to})
}

func (s *classService) GetClass(ctx context.Context, actor policy.Principal, classID primitive.ObjectID) (*domain.GroupClass, error) {
	if err := policy.Authorize(actor, policy.ViewClasses); err != nil {
		return nil, err
	}
	return s.load(ctx, classID)
}

func (s *classService) load(ctx context.Context, classID primitive.ObjectID) (*domain.GroupClass, error) {
	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return class, nil
}

// enrollConflict explains why a member cannot join class.
func enrollConflict(class *domain.GroupClass, memberID primitive.ObjectID) error {
	if p := class.Participant(memberID); p != nil && p.Status != domain.ParticipantCancelled {
		return fmt.Errorf("%w: %w", ErrConflict, ErrAlreadyEnrolled)
	}
	if class.IsFull() {
		return fmt.Errorf("%w: %w", ErrConflict, ErrClassFull)
	}
	return nil
}

// Enroll adds a member to the roster. The repository re-checks capacity and
// membership in the same update, so concurrent enrollments cannot overfill a class.
func (s *classService) Enroll(ctx context.Context, actor policy.Principal, classID, memberID primitive.ObjectID) (*domain.GroupClass, error) {
	if memberID.IsZero() && actor.IsMember() {
		memberID = actor.ID
	}
	if err := policy.Authorize(actor, policy.EnrollClass, memberID); err != nil {
		return nil, err
	}
	member, err := s.userRepo.GetByIDAndRole(ctx, memberID, domain.RoleMember)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	class, err := s.load(ctx, classID)
	if err != nil {
		return nil, err
	}
	if err := enrollConflict(class, memberID); err != nil {
		return nil, err
	}

	err = s.classRepo.Enroll(ctx, classID, domain.Participant{
		MemberID:   member.ID,
		MemberName: member.Name,
		Status:     domain.ParticipantEnrolled,
		EnrolledAt: time.Now().UTC(),
	})
	if errors.Is(err, repository.ErrConditionFailed) {
		// Lost a race; report what the roster looks like now
		if latest, loadErr := s.load(ctx, classID); loadErr == nil {
			if conflict := enrollConflict(latest, memberID); conflict != nil {
				return nil, conflict
			}
		}
		return nil, fmt.Errorf("%w: %w", ErrConflict, ErrClassFull)
	}
	if err != nil {
		return nil, err
	}
	return s.load(ctx, classID)
}

func (s *classService) MarkAttendance(ctx context.Context, actor policy.Principal, classID, memberID primitive.ObjectID, status domain.ParticipantStatus) (*domain.GroupClass, error) {
	if status != domain.ParticipantAttended && status != domain.ParticipantCancelled {
		return nil, fmt.Errorf("%w: status must be attended or cancelled", ErrValidation)
	}
	class, err := s.load(ctx, classID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.MarkAttendance, class.TrainerID); err != nil {
		return nil, err
	}
	p := class.Participant(memberID)
	if p == nil {
		return nil, fmt.Errorf("%w: member is not on the roster", ErrValidation)
	}
	if p.Status == status {
		return class, nil
	}
	if err := s.classRepo.SetParticipantStatus(ctx, classID, memberID, p.Status, status); err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			// Either the class filled up or the entry moved under us
			if latest, loadErr := s.load(ctx, classID); loadErr == nil {
				if cur := latest.Participant(memberID); cur != nil && cur.Status == p.Status &&
					p.Status == domain.ParticipantCancelled && latest.EnrolledCount >= latest.Capacity {
					return nil, fmt.Errorf("%w: %w", ErrConflict, ErrClassFull)
				}
			}
			return nil, fmt.Errorf("%w: roster changed concurrently, retry", ErrConflict)
		}
		return nil, err
	}
	return s.load(ctx, classID)
}
