package service_test

import (
	"context"
	"testing"
	"time"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/policy"
	"alcyxob/gym-portal/internal/service"
)

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := service.NewDashboardService(store.Users, store.Sessions, store.Classes, store.PlanRequests)
	root := addAdmin(t, store, "root")
	bo := addTrainer(t, store, "bo")
	ana := addMember(t, store, "ana", 3)
	cy := addMember(t, store, "cy", 0)
	givePremium(t, store, ana)

	today := domain.DateOnly(time.Now())
	for _, s := range []domain.PrivateSession{
		{TrainerID: bo.ID, MemberID: ana.ID, Date: today, Time: "18:00"},
		{TrainerID: bo.ID, MemberID: ana.ID, Date: today.AddDate(0, 0, 1), Time: "09:00", Status: domain.SessionCancelled},
		{TrainerID: bo.ID, MemberID: cy.ID, Date: today.AddDate(0, 0, -30), Time: "09:00", Status: domain.SessionCompleted},
	} {
		s := s
		if _, err := store.Sessions.Create(ctx, &s); err != nil {
			t.Fatal(err)
		}
	}

	class := &domain.GroupClass{ClassType: "Yoga", Capacity: 10, TrainerID: bo.ID, TrainerName: bo.Name, Date: today, Time: "07:00"}
	classID, err := store.Classes.Create(ctx, class)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Classes.Enroll(ctx, classID, domain.Participant{MemberID: cy.ID, MemberName: cy.Name}); err != nil {
		t.Fatal(err)
	}
	if err := store.Classes.SetParticipantStatus(ctx, classID, cy.ID, domain.ParticipantEnrolled, domain.ParticipantAttended); err != nil {
		t.Fatal(err)
	}

	if _, err := store.PlanRequests.Create(ctx, &domain.PlanRequest{MemberID: ana.ID, TrainerID: bo.ID, PlanType: domain.PlanDiet}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.PlanRequests.Create(ctx, &domain.PlanRequest{MemberID: cy.ID, TrainerID: bo.ID, PlanType: domain.PlanDiet, Status: domain.RequestCompleted}); err != nil {
		t.Fatal(err)
	}

	t.Run("member", func(t *testing.T) {
		d, err := svc.Get(ctx, principal(ana))
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if d.Member == nil || d.Trainer != nil || d.Admin != nil {
			t.Fatalf("wrong view for member: %+v", d)
		}
		if d.Member.Subscription == nil || d.Member.Subscription.Tier != domain.TierPremium {
			t.Errorf("subscription = %+v", d.Member.Subscription)
		}
		if d.Member.PTSessions != 3 || len(d.Member.UpcomingSessions) != 1 || len(d.Member.PlanRequests) != 1 {
			t.Errorf("unexpected member dashboard %+v", d.Member)
		}
	})

	t.Run("trainer", func(t *testing.T) {
		d, err := svc.Get(ctx, principal(bo))
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		tr := d.Trainer
		if tr == nil {
			t.Fatalf("wrong view for trainer: %+v", d)
		}
		if len(tr.TodayClasses) != 1 || len(tr.WeekClasses) != 1 || tr.AttendanceCount != 1 {
			t.Errorf("classes: today=%d week=%d attended=%d", len(tr.TodayClasses), len(tr.WeekClasses), tr.AttendanceCount)
		}
		if len(tr.UpcomingSessions) != 1 || len(tr.OpenRequests) != 1 {
			t.Errorf("sessions=%d open requests=%d", len(tr.UpcomingSessions), len(tr.OpenRequests))
		}
	})

	t.Run("admin", func(t *testing.T) {
		d, err := svc.Get(ctx, principal(root))
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		a := d.Admin
		if a == nil {
			t.Fatalf("wrong view for admin: %+v", d)
		}
		if a.UsersByRole[domain.RoleMember] != 2 || a.UsersByRole[domain.RoleTrainer] != 1 || a.UsersByRole[domain.RoleAdmin] != 1 {
			t.Errorf("users by role = %v", a.UsersByRole)
		}
		if a.ActiveSubscriptions != 1 || len(a.TodayClasses) != 1 {
			t.Errorf("unexpected admin dashboard %+v", a)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := svc.Get(ctx, policy.Principal{})
		assertErrorIs(t, err, policy.ErrUnauthenticated)
	})
}
