package service_test

import (
	"context"
	"testing"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/policy"
	"alcyxob/gym-portal/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := service.NewUserService(store.Users)
	ana := addMember(t, store, "ana", 2)
	cy := addMember(t, store, "cy", 0)
	bo := addTrainer(t, store, "bo")
	root := addAdmin(t, store, "root")

	tests := []struct {
		name    string
		actor   policy.Principal
		wantErr error
	}{
		{name: "owner", actor: principal(ana)},
		{name: "trainer", actor: principal(bo)},
		{name: "admin", actor: principal(root)},
		{name: "other member", actor: principal(cy), wantErr: policy.ErrForbidden},
		{name: "anonymous", actor: policy.Principal{}, wantErr: policy.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.GetProfile(ctx, tt.actor, ana.ID)
			if tt.wantErr != nil {
				assertErrorIs(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("GetProfile() error = %v", err)
			}
			if u.PTBalance() != 2 || u.PasswordHash != "" {
				t.Errorf("unexpected profile %+v", u)
			}
		})
	}

	_, err := svc.GetProfile(ctx, principal(root), primitive.NewObjectID())
	assertErrorIs(t, err, service.ErrUserNotFound)
}

func TestUpdateName(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := service.NewUserService(store.Users)
	ana := addMember(t, store, "ana", 0)

	_, err := svc.UpdateName(ctx, principal(ana), "   ")
	assertErrorIs(t, err, service.ErrValidation)

	u, err := svc.UpdateName(ctx, principal(ana), " Ana Maria ")
	if err != nil {
		t.Fatalf("UpdateName() error = %v", err)
	}
	if u.Name != "Ana Maria" {
		t.Errorf("name = %q", u.Name)
	}
}

func TestAdminUserManagement(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := service.NewUserService(store.Users)
	root := addAdmin(t, store, "root")
	ana := addMember(t, store, "ana", 0)
	addTrainer(t, store, "bo")

	t.Run("members cannot manage users", func(t *testing.T) {
		_, err := svc.ListUsers(ctx, principal(ana), "")
		assertErrorIs(t, err, policy.ErrForbidden)
		_, err = svc.CreateTrainer(ctx, principal(ana), service.NewTrainerInput{Name: "x", Email: "x@example.com", Password: "password123"})
		assertErrorIs(t, err, policy.ErrForbidden)
		err = svc.DeleteUser(ctx, principal(ana), root.ID)
		assertErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("create trainer", func(t *testing.T) {
		tr, err := svc.CreateTrainer(ctx, principal(root), service.NewTrainerInput{
			Name:            "Di",
			Email:           "DI@example.com",
			Password:        "password123",
			Specializations: []string{"strength", "mobility"},
		})
		if err != nil {
			t.Fatalf("CreateTrainer() error = %v", err)
		}
		if tr.Role != domain.RoleTrainer || tr.Email != "di@example.com" || tr.Trainer == nil || tr.Trainer.HireDate.IsZero() {
			t.Errorf("unexpected trainer %+v", tr)
		}

		_, err = svc.CreateTrainer(ctx, principal(root), service.NewTrainerInput{Name: "Di", Email: "di@example.com", Password: "password123"})
		assertErrorIs(t, err, service.ErrUserAlreadyExists)
	})

	t.Run("list by role", func(t *testing.T) {
		trainers, err := svc.ListUsers(ctx, principal(root), domain.RoleTrainer)
		if err != nil || len(trainers) != 2 {
			t.Fatalf("got %d trainers, err %v", len(trainers), err)
		}
		all, _ := svc.ListUsers(ctx, principal(root), "")
		if len(all) != 4 {
			t.Errorf("got %d users, want 4", len(all))
		}
		_, err = svc.ListUsers(ctx, principal(root), domain.Role("owner"))
		assertErrorIs(t, err, service.ErrValidation)

		dir, err := svc.ListTrainers(ctx, principal(ana))
		if err != nil || len(dir) != 2 {
			t.Errorf("trainer directory has %d entries, err %v", len(dir), err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		err := svc.DeleteUser(ctx, principal(root), root.ID)
		assertErrorIs(t, err, service.ErrValidation)

		if err := svc.DeleteUser(ctx, principal(root), ana.ID); err != nil {
			t.Fatalf("DeleteUser() error = %v", err)
		}
		err = svc.DeleteUser(ctx, principal(root), ana.ID)
		assertErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("bootstrap admin", func(t *testing.T) {
		a, err := svc.BootstrapAdmin(ctx, "Ops", "ops@example.com", "password123")
		if err != nil {
			t.Fatalf("BootstrapAdmin() error = %v", err)
		}
		if a.Role != domain.RoleAdmin {
			t.Errorf("role = %s", a.Role)
		}
	})
}
