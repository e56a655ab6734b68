package service_test

import (
	"context"
	"sync"
	"testing"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/policy"
	"alcyxob/gym-portal/internal/service"
)

func TestCreateClass(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := service.NewClassService(store.Users, store.Classes)
	admin := addAdmin(t, store, "root")
	trainer := addTrainer(t, store, "bo")
	member := addMember(t, store, "ana", 0)

	valid := service.NewClassInput{ClassType: "Yoga", Capacity: 2, TrainerID: trainer.ID, Date: tuesday, Time: "07:30"}

	tests := []struct {
		name    string
		actor   *domain.User
		mutate  func(in *service.NewClassInput)
		wantErr error
	}{
		{name: "trainer cannot schedule", actor: trainer, wantErr: policy.ErrForbidden},
		{name: "missing type", actor: admin, mutate: func(in *service.NewClassInput) { in.ClassType = " " }, wantErr: service.ErrValidation},
		{name: "zero capacity", actor: admin, mutate: func(in *service.NewClassInput) { in.Capacity = 0 }, wantErr: service.ErrValidation},
		{name: "bad time", actor: admin, mutate: func(in *service.NewClassInput) { in.Time = "7:30" }, wantErr: service.ErrValidation},
		{name: "member as trainer", actor: admin, mutate: func(in *service.NewClassInput) { in.TrainerID = member.ID }, wantErr: service.ErrTrainerNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			if tt.mutate != nil {
				tt.mutate(&in)
			}
			_, err := svc.CreateClass(ctx, principal(tt.actor), in)
			assertErrorIs(t, err, tt.wantErr)
		})
	}

	class, err := svc.CreateClass(ctx, principal(admin), valid)
	if err != nil {
		t.Fatalf("CreateClass() error = %v", err)
	}
	if class.TrainerName != "bo" || class.EnrolledCount != 0 || len(class.Participants) != 0 {
		t.Errorf("unexpected class %+v", class)
	}

	list, err := svc.ListClasses(ctx, principal(member), &tuesday, &tuesday)
	if err != nil || len(list) != 1 {
		t.Errorf("ListClasses() = %d classes, err %v", len(list), err)
	}
}

func TestEnroll(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := service.NewClassService(store.Users, store.Classes)
	admin := addAdmin(t, store, "root")
	trainer := addTrainer(t, store, "bo")
	ana := addMember(t, store, "ana", 0)
	cy := addMember(t, store, "cy", 0)
	ed := addMember(t, store, "ed", 0)

	class, err := svc.CreateClass(ctx, principal(admin), service.NewClassInput{
		ClassType: "Spinning", Capacity: 2, TrainerID: trainer.ID, Date: tuesday, Time: "18:30",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Enroll(ctx, principal(ana), class.ID, ana.ID); err != nil {
		t.Fatalf("enroll ana: %v", err)
	}

	t.Run("already enrolled", func(t *testing.T) {
		_, err := svc.Enroll(ctx, principal(ana), class.ID, ana.ID)
		assertErrorIs(t, err, service.ErrConflict)
		assertErrorIs(t, err, service.ErrAlreadyEnrolled)
	})

	t.Run("member for someone else", func(t *testing.T) {
		_, err := svc.Enroll(ctx, principal(ana), class.ID, cy.ID)
		assertErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("admin fills the last place", func(t *testing.T) {
		got, err := svc.Enroll(ctx, principal(admin), class.ID, cy.ID)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if got.EnrolledCount != 2 || !got.IsFull() {
			t.Errorf("unexpected class %+v", got)
		}
	})

	t.Run("full", func(t *testing.T) {
		_, err := svc.Enroll(ctx, principal(ed), class.ID, ed.ID)
		assertErrorIs(t, err, service.ErrClassFull)
	})

	t.Run("cancel frees a place and allows re-enrolment", func(t *testing.T) {
		got, err := svc.MarkAttendance(ctx, principal(trainer), class.ID, cy.ID, domain.ParticipantCancelled)
		if err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if got.EnrolledCount != 1 {
			t.Errorf("count after cancel = %d", got.EnrolledCount)
		}
		if _, err := svc.Enroll(ctx, principal(cy), class.ID, cy.ID); err != nil {
			t.Fatalf("re-enroll: %v", err)
		}
		got, _ = svc.GetClass(ctx, principal(cy), class.ID)
		if len(got.Participants) != 2 || got.Participant(cy.ID).Status != domain.ParticipantEnrolled {
			t.Errorf("roster = %+v", got.Participants)
		}
	})

	t.Run("unknown class", func(t *testing.T) {
		_, err := svc.Enroll(ctx, principal(ed), trainer.ID, ed.ID)
		assertErrorIs(t, err, service.ErrClassNotFound)
	})
}

func TestEnroll_ConcurrentNeverOverfills(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := service.NewClassService(store.Users, store.Classes)
	admin := addAdmin(t, store, "root")
	trainer := addTrainer(t, store, "bo")

	class, err := svc.CreateClass(ctx, principal(admin), service.NewClassInput{
		ClassType: "HIIT", Capacity: 3, TrainerID: trainer.ID, Date: tuesday, Time: "12:00",
	})
	if err != nil {
		t.Fatal(err)
	}

	var members []*domain.User
	for _, name := range []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7", "m8"} {
		members = append(members, addMember(t, store, name, 0))
	}

	var wg sync.WaitGroup
	for _, m := range members {
		wg.Add(1)
		go func(m *domain.User) {
			defer wg.Done()
			_, _ = svc.Enroll(ctx, principal(m), class.ID, m.ID)
		}(m)
	}
	wg.Wait()

	got, err := svc.GetClass(ctx, principal(admin), class.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.EnrolledCount != 3 || len(got.Participants) != 3 {
		t.Errorf("enrolled %d with %d participants, want 3", got.EnrolledCount, len(got.Participants))
	}
}

func TestMarkAttendance(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := service.NewClassService(store.Users, store.Classes)
	admin := addAdmin(t, store, "root")
	trainer := addTrainer(t, store, "bo")
	other := addTrainer(t, store, "di")
	ana := addMember(t, store, "ana", 0)
	cy := addMember(t, store, "cy", 0)

	class, _ := svc.CreateClass(ctx, principal(admin), service.NewClassInput{
		ClassType: "Pilates", Capacity: 5, TrainerID: trainer.ID, Date: tuesday, Time: "10:00",
	})
	if _, err := svc.Enroll(ctx, principal(ana), class.ID, ana.ID); err != nil {
		t.Fatal(err)
	}

	_, err := svc.MarkAttendance(ctx, principal(other), class.ID, ana.ID, domain.ParticipantAttended)
	assertErrorIs(t, err, policy.ErrForbidden)

	_, err = svc.MarkAttendance(ctx, principal(trainer), class.ID, ana.ID, domain.ParticipantEnrolled)
	assertErrorIs(t, err, service.ErrValidation)

	_, err = svc.MarkAttendance(ctx, principal(trainer), class.ID, cy.ID, domain.ParticipantAttended)
	assertErrorIs(t, err, service.ErrValidation)

	got, err := svc.MarkAttendance(ctx, principal(trainer), class.ID, ana.ID, domain.ParticipantAttended)
	if err != nil {
		t.Fatalf("MarkAttendance() error = %v", err)
	}
	if got.AttendedCount() != 1 || got.EnrolledCount != 1 {
		t.Errorf("attended=%d enrolled=%d", got.AttendedCount(), got.EnrolledCount)
	}

	// Marking again is a no-op.
	if _, err := svc.MarkAttendance(ctx, principal(trainer), class.ID, ana.ID, domain.ParticipantAttended); err != nil {
		t.Errorf("repeat mark: %v", err)
	}
}

func TestMarkAttendance_CancelledCannotOverfill(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := service.NewClassService(store.Users, store.Classes)
	admin := addAdmin(t, store, "root")
	trainer := addTrainer(t, store, "bo")
	ana := addMember(t, store, "ana", 0)
	cy := addMember(t, store, "cy", 0)

	class, err := svc.CreateClass(ctx, principal(admin), service.NewClassInput{
		ClassType: "Spin", Capacity: 1, TrainerID: trainer.ID, Date: tuesday, Time: "18:00",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Enroll(ctx, principal(ana), class.ID, ana.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.MarkAttendance(ctx, principal(trainer), class.ID, ana.ID, domain.ParticipantCancelled); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Enroll(ctx, principal(cy), class.ID, cy.ID); err != nil {
		t.Fatalf("place freed by cancellation should be bookable: %v", err)
	}

	_, err = svc.MarkAttendance(ctx, principal(trainer), class.ID, ana.ID, domain.ParticipantAttended)
	assertErrorIs(t, err, service.ErrConflict)
	assertErrorIs(t, err, service.ErrClassFull)

	got, err := svc.GetClass(ctx, principal(admin), class.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.EnrolledCount != 1 {
		t.Errorf("EnrolledCount = %d, want 1", got.EnrolledCount)
	}
	if p := got.Participant(ana.ID); p == nil || p.Status != domain.ParticipantCancelled {
		t.Errorf("ana's entry changed: %+v", p)
	}
}
