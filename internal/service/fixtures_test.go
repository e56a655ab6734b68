package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/policy"
	"alcyxob/gym-portal/internal/repository/memory"
)

// tuesday is a fixed working day used by the booking tests (2026-03-10).
var tuesday = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

// sunday is the Sunday before tuesday.
var sunday = time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

func newStore() *memory.Store {
	return memory.NewStore()
}

func addUser(t *testing.T, store *memory.Store, u domain.User) *domain.User {
	t.Helper()
	if u.Email == "" {
		u.Email = u.Name + "@example.com"
	}
	switch u.Role {
	case domain.RoleMember:
		if u.Member == nil {
			u.Member = &domain.MemberProfile{RegistrationDate: time.Now().UTC()}
		}
	case domain.RoleTrainer:
		if u.Trainer == nil {
			u.Trainer = &domain.TrainerProfile{HireDate: time.Now().UTC()}
		}
	}
	id, err := store.Users.Create(context.Background(), &u)
	if err != nil {
		t.Fatalf("create user %s: %v", u.Name, err)
	}
	u.ID = id
	return &u
}

func addMember(t *testing.T, store *memory.Store, name string, ptSessions int) *domain.User {
	t.Helper()
	return addUser(t, store, domain.User{
		Name:   name,
		Role:   domain.RoleMember,
		Member: &domain.MemberProfile{PTSessions: ptSessions},
	})
}

func addTrainer(t *testing.T, store *memory.Store, name string) *domain.User {
	t.Helper()
	return addUser(t, store, domain.User{Name: name, Role: domain.RoleTrainer})
}

func addAdmin(t *testing.T, store *memory.Store, name string) *domain.User {
	t.Helper()
	return addUser(t, store, domain.User{Name: name, Role: domain.RoleAdmin})
}

// givePremium stores a current Premium subscription on the member.
func givePremium(t *testing.T, store *memory.Store, member *domain.User) {
	t.Helper()
	subs := domain.AppendSubscription(nil, domain.TierPremium, 1, time.Now().UTC())
	if err := store.Users.ReplaceSubscriptions(context.Background(), member.ID, 0, subs); err != nil {
		t.Fatalf("give premium: %v", err)
	}
}

func principal(u *domain.User) policy.Principal {
	return policy.Principal{ID: u.ID, Role: u.Role}
}

func balance(t *testing.T, store *memory.Store, member *domain.User) int {
	t.Helper()
	u, err := store.Users.GetByID(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("reload member: %v", err)
	}
	return u.PTBalance()
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected error %v, got %v", target, err)
	}
}
