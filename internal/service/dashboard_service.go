package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/policy"
	"alcyxob/gym-portal/internal/repository"
)

// MemberDashboard is the landing view of a member.
type MemberDashboard struct {
	Subscription     *domain.Subscription    `json:"subscription"`
	PTSessions       int                     `json:"ptSessions"`
	UpcomingSessions []domain.PrivateSession `json:"upcomingSessions"`
	PlanRequests     []domain.PlanRequest    `json:"planRequests"`
}

// TrainerDashboard is the landing view of a trainer.
type TrainerDashboard struct {
	TodayClasses     []domain.GroupClass     `json:"todayClasses"`
	WeekClasses      []domain.GroupClass     `json:"weekClasses"`
	UpcomingSessions []domain.PrivateSession `json:"upcomingSessions"`
	OpenRequests     []domain.PlanRequest    `json:"openRequests"`
	// AttendanceCount sums attended participants over this week's classes.
	AttendanceCount int `json:"attendanceCount"`
}

// AdminDashboard is the landing view of an admin.
type AdminDashboard struct {
	UsersByRole         map[domain.Role]int64 `json:"usersByRole"`
	ActiveSubscriptions int64                 `json:"activeSubscriptions"`
	TodayClasses        []domain.GroupClass   `json:"todayClasses"`
	SessionsThisWeek    int                   `json:"sessionsThisWeek"`
}

// Dashboard holds exactly one role-specific view.
type Dashboard struct {
	Role    domain.Role       `json:"role"`
	Member  *MemberDashboard  `json:"member,omitempty"`
	Trainer *TrainerDashboard `json:"trainer,omitempty"`
	Admin   *AdminDashboard   `json:"admin,omitempty"`
}

type DashboardService interface {
	Get(ctx context.Context, actor policy.Principal) (*Dashboard, error)
}

type dashboardService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	classRepo   repository.ClassRepository
	requestRepo repository.PlanRequestRepository
	now         func() time.Time
}

func NewDashboardService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	classRepo repository.ClassRepository,
	requestRepo repository.PlanRequestRepository,
) DashboardService {
	return &dashboardService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		classRepo:   classRepo,
		requestRepo: requestRepo,
		now:         time.Now,
	}
}

// weekBounds returns Monday and Sunday (dates only) of the week containing t.
func weekBounds(t time.Time) (time.Time, time.Time) {
	day := domain.DateOnly(t)
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}

func (s *dashboardService) Get(ctx context.Context, actor policy.Principal) (*Dashboard, error) {
	if err := policy.Authorize(actor, policy.ViewOwnDashboard); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	out := &Dashboard{Role: actor.Role}
	var err error
	switch actor.Role {
	case domain.RoleMember:
		out.Member, err = s.member(ctx, actor, now)
	case domain.RoleTrainer:
		out.Trainer, err = s.trainer(ctx, actor, now)
	case domain.RoleAdmin:
		out.Admin, err = s.admin(ctx, now)
	default:
		err = fmt.Errorf("%w: no dashboard for role %q", policy.ErrForbidden, actor.Role)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *dashboardService) member(ctx context.Context, actor policy.Principal, now time.Time) (*MemberDashboard, error) {
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	today := domain.DateOnly(now)
	sessions, err := s.sessionRepo.List(ctx, repository.SessionFilter{MemberID: &actor.ID, From: &today, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	requests, err := s.requestRepo.List(ctx, repository.PlanRequestFilter{MemberID: &actor.ID})
	if err != nil {
		return nil, err
	}
	return &MemberDashboard{
		Subscription:     user.CurrentSubscription(now),
		PTSessions:       user.PTBalance(),
		UpcomingSessions: upcoming(sessions),
		PlanRequests:     requests,
	}, nil
}

// upcoming drops completed sessions; the list is already ordered by date and time.
func upcoming(sessions []domain.PrivateSession) []domain.PrivateSession {
	out := make([]domain.PrivateSession, 0, len(sessions))
	for _, s := range sessions {
		if s.Status == domain.SessionConfirmed {
			out = append(out, s)
		}
	}
	return out
}

func (s *dashboardService) trainer(ctx context.Context, actor policy.Principal, now time.Time) (*TrainerDashboard, error) {
	today := domain.DateOnly(now)
	monday, sunday := weekBounds(now)

	week, err := s.classRepo.List(ctx, repository.ClassFilter{TrainerID: &actor.ID, From: &monday, To: &sunday})
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.List(ctx, repository.SessionFilter{TrainerID: &actor.ID, From: &today, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	requests, err := s.requestRepo.List(ctx, repository.PlanRequestFilter{
		TrainerID: &actor.ID,
		Statuses:  []domain.PlanRequestStatus{domain.RequestPending, domain.RequestInProgress},
	})
	if err != nil {
		return nil, err
	}

	d := &TrainerDashboard{
		TodayClasses:     []domain.GroupClass{},
		WeekClasses:      week,
		UpcomingSessions: upcoming(sessions),
		OpenRequests:     requests,
	}
	for i := range week {
		if week[i].Date.Equal(today) {
			d.TodayClasses = append(d.TodayClasses, week[i])
		}
		d.AttendanceCount += week[i].AttendedCount()
	}
	return d, nil
}

func (s *dashboardService) admin(ctx context.Context, now time.Time) (*AdminDashboard, error) {
	today := domain.DateOnly(now)
	monday, sunday := weekBounds(now)

	byRole, err := s.userRepo.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	activeSubs, err := s.userRepo.CountMembersWithCurrentSubscription(ctx, now)
	if err != nil {
		return nil, err
	}
	todayClasses, err := s.classRepo.List(ctx, repository.ClassFilter{From: &today, To: &today})
	if err != nil {
		return nil, err
	}
	weekSessions, err := s.sessionRepo.List(ctx, repository.SessionFilter{From: &monday, To: &sunday, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	return &AdminDashboard{
		UsersByRole:         byRole,
		ActiveSubscriptions: activeSubs,
		TodayClasses:        todayClasses,
		SessionsThisWeek:    len(weekSessions),
	}, nil
}
