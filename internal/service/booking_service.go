package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/policy"
	"alcyxob/gym-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionQuery narrows ListSessions. Members and trainers are always scoped to themselves.
type SessionQuery struct {
	TrainerID        *primitive.ObjectID
	MemberID         *primitive.ObjectID
	From             *time.Time
	To               *time.Time
	IncludeCancelled bool
}

type BookingService interface {
	Reserve(ctx context.Context, actor policy.Principal, memberID, trainerID primitive.ObjectID, date time.Time, slot string) (*domain.PrivateSession, error)
	Cancel(ctx context.Context, actor policy.Principal, sessionID primitive.ObjectID) (*domain.PrivateSession, error)
	Complete(ctx context.Context, actor policy.Principal, sessionID primitive.ObjectID) (*domain.PrivateSession, error)
	ListSessions(ctx context.Context, actor policy.Principal, q SessionQuery) ([]domain.PrivateSession, error)
	AvailableSlots(ctx context.Context, actor policy.Principal, trainerID primitive.ObjectID, start, end time.Time) ([]DayAvailability, error)
}

type bookingService struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	maxRangeDays int
}

// NewBookingService creates the PT booking service. maxRangeDays <= 0 uses DefaultMaxRangeDays.
func NewBookingService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, maxRangeDays int) BookingService {
	if maxRangeDays <= 0 {
		maxRangeDays = DefaultMaxRangeDays
	}
	return &bookingService{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		maxRangeDays: maxRangeDays,
	}
}

func noPTAccess() error {
	return fmt.Errorf("%w: %w", policy.ErrForbidden, ErrNoPTAccess)
}

func (s *bookingService) loadTrainer(ctx context.Context, trainerID primitive.ObjectID) (*domain.User, error) {
	trainer, err := s.userRepo.GetByIDAndRole(ctx, trainerID, domain.RoleTrainer)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}
	return trainer, nil
}

// Reserve books a PT session. The unique slot indexes decide concurrent races;
// a credit debited for a losing insert is refunded.
func (s *bookingService) Reserve(ctx context.Context, actor policy.Principal, memberID, trainerID primitive.ObjectID, date time.Time, slot string) (*domain.PrivateSession, error) {
	// 1. Authorization: members book for themselves, admins for anyone
	if err := policy.Authorize(actor, policy.BookSession, memberID); err != nil {
		return nil, err
	}

	// 2. Member
	member, err := s.userRepo.GetByIDAndRole(ctx, memberID, domain.RoleMember)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	// 3. Entitlement
	now := time.Now()
	premium := member.HasPremium(now)
	if !actor.IsAdmin() && !member.HasPTAccess(now) {
		return nil, noPTAccess()
	}

	// 4. Trainer
	trainer, err := s.loadTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	// 5. Slot validation
	day := domain.DateOnly(date)
	if !IsBookableSlot(slot) {
		return nil, fmt.Errorf("%w: time must be one of %v", ErrValidation, DailySlots)
	}
	if !IsWorkingDay(day) {
		return nil, fmt.Errorf("%w: sessions cannot be booked on Sundays", ErrValidation)
	}

	// 6./7. Conflicts on both calendars
	if _, err := s.sessionRepo.FindActiveByTrainerSlot(ctx, trainerID, day, slot); err == nil {
		return nil, fmt.Errorf("%w: %w", ErrConflict, ErrSlotTaken)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.sessionRepo.FindActiveByMemberSlot(ctx, memberID, day, slot); err == nil {
		return nil, fmt.Errorf("%w: %w", ErrConflict, ErrMemberBusy)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// 8. Debit one credit unless Premium or booked by an admin
	debited := false
	if !actor.IsAdmin() && !premium {
		if err := s.userRepo.DebitPTSession(ctx, memberID); err != nil {
			if errors.Is(err, repository.ErrConditionFailed) {
				return nil, noPTAccess()
			}
			return nil, err
		}
		debited = true
	}

	// 9. Insert
	session := &domain.PrivateSession{
		TrainerID:   trainer.ID,
		TrainerName: trainer.Name,
		MemberID:    member.ID,
		MemberName:  member.Name,
		Date:        day,
		Time:        slot,
		Status:      domain.SessionConfirmed,
		Debited:     debited,
	}
	id, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		if debited {
			s.refund(ctx, memberID)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			if _, probeErr := s.sessionRepo.FindActiveByMemberSlot(ctx, memberID, day, slot); probeErr == nil {
				return nil, fmt.Errorf("%w: %w", ErrConflict, ErrMemberBusy)
			}
			return nil, fmt.Errorf("%w: %w", ErrConflict, ErrSlotTaken)
		}
		return nil, err
	}
	session.ID = id

	log.Printf("INFO: Session %s booked: trainer %s, member %s, %s %s (debited=%t)",
		id.Hex(), trainer.ID.Hex(), member.ID.Hex(), day.Format("2006-01-02"), slot, debited)
	return session, nil
}

func (s *bookingService) refund(ctx context.Context, memberID primitive.ObjectID) {
	if err := s.userRepo.AddPTSessions(ctx, memberID, 1); err != nil {
		log.Printf("ERROR: Failed to refund PT credit to member %s: %v", memberID.Hex(), err)
	}
}

func (s *bookingService) getSession(ctx context.Context, id primitive.ObjectID) (*domain.PrivateSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *bookingService) transition(ctx context.Context, session *domain.PrivateSession, to domain.SessionStatus) error {
	if session.Status != domain.SessionConfirmed {
		return fmt.Errorf("%w: session is %s", ErrValidation, session.Status)
	}
	err := s.sessionRepo.TransitionStatus(ctx, session.ID, domain.SessionConfirmed, to)
	if errors.Is(err, repository.ErrConditionFailed) {
		return fmt.Errorf("%w: session is no longer confirmed", ErrValidation)
	}
	if err != nil {
		return err
	}
	session.Status = to
	session.HoldsSlot = to != domain.SessionCancelled
	session.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel frees the slot and returns the credit if one was debited at booking time.
func (s *bookingService) Cancel(ctx context.Context, actor policy.Principal, sessionID primitive.ObjectID) (*domain.PrivateSession, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.CancelSession, session.MemberID, session.TrainerID); err != nil {
		return nil, err
	}
	if err := s.transition(ctx, session, domain.SessionCancelled); err != nil {
		return nil, err
	}
	if session.Debited {
		if err := s.userRepo.AddPTSessions(ctx, session.MemberID, 1); err != nil {
			log.Printf("WARN: Session %s cancelled but PT credit refund to %s failed: %v", session.ID.Hex(), session.MemberID.Hex(), err)
		}
	}
	log.Printf("INFO: Session %s cancelled by %s %s", session.ID.Hex(), actor.Role, actor.ID.Hex())
	return session, nil
}

func (s *bookingService) Complete(ctx context.Context, actor policy.Principal, sessionID primitive.ObjectID) (*domain.PrivateSession, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.CompleteSession, session.TrainerID); err != nil {
		return nil, err
	}
	if err := s.transition(ctx, session, domain.SessionCompleted); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *bookingService) ListSessions(ctx context.Context, actor policy.Principal, q SessionQuery) ([]domain.PrivateSession, error) {
	if err := policy.Authorize(actor, policy.ViewOwnDashboard); err != nil {
		return nil, err
	}
	filter := repository.SessionFilter{
		TrainerID:  q.TrainerID,
		MemberID:   q.MemberID,
		From:       q.From,
		To:         q.To,
		ActiveOnly: !q.IncludeCancelled,
	}
	switch {
	case actor.IsMember():
		id := actor.ID
		filter.MemberID, filter.TrainerID = &id, nil
	case actor.IsTrainer():
		id := actor.ID
		filter.TrainerID, filter.MemberID = &id, nil
	}
	return s.sessionRepo.List(ctx, filter)
}

func (s *bookingService) AvailableSlots(ctx context.Context, actor policy.Principal, trainerID primitive.ObjectID, start, end time.Time) ([]DayAvailability, error) {
	if err := policy.Authorize(actor, policy.ViewAvailability); err != nil {
		return nil, err
	}
	start, end = domain.DateOnly(start), domain.DateOnly(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: endDate must not be before startDate", ErrValidation)
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > s.maxRangeDays {
		return nil, fmt.Errorf("%w: range may span at most %d days", ErrValidation, s.maxRangeDays)
	}
	if _, err := s.loadTrainer(ctx, trainerID); err != nil {
		return nil, err
	}

	sessions, err := s.sessionRepo.List(ctx, repository.SessionFilter{
		TrainerID:  &trainerID,
		From:       &start,
		To:         &end,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}
	return ComputeAvailability(start, end, sessions), nil
}
