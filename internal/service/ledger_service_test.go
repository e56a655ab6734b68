package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/policy"
	"alcyxob/gym-portal/internal/repository"
	"alcyxob/gym-portal/internal/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func currentCount(u *domain.User, now time.Time) int {
	n := 0
	for _, s := range u.Member.Subscriptions {
		if s.IsCurrent(now) {
			n++
		}
	}
	return n
}

func TestOnPaymentCompleted_SessionPack(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := service.NewLedgerService(store.Users, nil)
	member := addMember(t, store, "ana", 1)

	res, err := svc.OnPaymentCompleted(ctx, "ANA@example.com ", []string{"prod_pt_pack_4"})
	if err != nil {
		t.Fatalf("OnPaymentCompleted() error = %v", err)
	}
	if res.SessionsAdded != 4 || res.Subscription != nil {
		t.Errorf("unexpected result %+v", res)
	}
	if got := balance(t, store, member); got != 5 {
		t.Fatalf("balance = %d, want 5", got)
	}

	// Replaying the identical event applies it again.
	if _, err := svc.OnPaymentCompleted(ctx, "ana@example.com", []string{"prod_pt_pack_4"}); err != nil {
		t.Fatalf("replay error = %v", err)
	}
	if got := balance(t, store, member); got != 9 {
		t.Errorf("balance after replay = %d, want 9", got)
	}
}

func TestOnPaymentCompleted_Subscriptions(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := service.NewLedgerService(store.Users, nil)
	member := addMember(t, store, "ana", 0)

	events := [][]string{
		{"prod_standard_monthly"},
		{"prod_premium_quarterly"},
		{"prod_standard_plus_monthly", "prod_premium_yearly"},
	}
	for i, products := range events {
		if _, err := svc.OnPaymentCompleted(ctx, member.Email, products); err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
		u, _ := store.Users.GetByID(ctx, member.ID)
		if n := currentCount(u, time.Now()); n != 1 {
			t.Fatalf("event %d: %d current subscriptions, want exactly 1", i, n)
		}
	}

	u, _ := store.Users.GetByID(ctx, member.ID)
	if len(u.Member.Subscriptions) != 4 {
		t.Fatalf("history length = %d, want 4", len(u.Member.Subscriptions))
	}
	current := u.CurrentSubscription(time.Now())
	if current.Tier != domain.TierPremium {
		t.Errorf("last tier in the event should win, got %s", current.Tier)
	}
	if months := current.EndDate.Sub(current.StartDate).Hours() / 24; months < 360 {
		t.Errorf("yearly plan spans %.0f days", months)
	}
	for _, s := range u.Member.Subscriptions[:3] {
		if s.Status != domain.SubscriptionExpired {
			t.Errorf("older entry still %s", s.Status)
		}
	}
}

func TestOnPaymentCompleted_Edges(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := service.NewLedgerService(store.Users, nil)
	member := addMember(t, store, "ana", 0)
	trainer := addTrainer(t, store, "bo")

	t.Run("unknown customer", func(t *testing.T) {
		_, err := svc.OnPaymentCompleted(ctx, "ghost@example.com", []string{"prod_pt_single"})
		assertErrorIs(t, err, service.ErrUserNotFound)
	})

	t.Run("unknown product skipped", func(t *testing.T) {
		res, err := svc.OnPaymentCompleted(ctx, member.Email, []string{"prod_mystery", "prod_pt_single"})
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if len(res.SkippedProducts) != 1 || res.SessionsAdded != 1 {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("non-member account", func(t *testing.T) {
		_, err := svc.OnPaymentCompleted(ctx, trainer.Email, []string{"prod_pt_single"})
		assertErrorIs(t, err, service.ErrValidation)
	})

	t.Run("custom catalog", func(t *testing.T) {
		custom := service.NewLedgerService(store.Users, domain.ProductCatalog{"prod_ten": {Sessions: 10}})
		before := balance(t, store, member)
		if _, err := custom.OnPaymentCompleted(ctx, member.Email, []string{"prod_ten", "prod_pt_single"}); err != nil {
			t.Fatalf("error = %v", err)
		}
		if got := balance(t, store, member); got != before+10 {
			t.Errorf("balance = %d, want %d", got, before+10)
		}
	})
}

// conflictingUsers fails the first n subscription writes with a version conflict.
type conflictingUsers struct {
	repository.UserRepository
	mu        sync.Mutex
	remaining int
	attempts  int
}

func (c *conflictingUsers) ReplaceSubscriptions(ctx context.Context, id primitive.ObjectID, version int64, subs []domain.Subscription) error {
	c.mu.Lock()
	c.attempts++
	fail := c.remaining > 0
	if fail {
		c.remaining--
	}
	c.mu.Unlock()
	if fail {
		return repository.ErrVersionConflict
	}
	return c.UserRepository.ReplaceSubscriptions(ctx, id, version, subs)
}

func TestOnPaymentCompleted_RetriesVersionConflicts(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds within budget", func(t *testing.T) {
		store := newStore()
		member := addMember(t, store, "ana", 0)
		users := &conflictingUsers{UserRepository: store.Users, remaining: 2}
		svc := service.NewLedgerService(users, nil)

		res, err := svc.OnPaymentCompleted(ctx, member.Email, []string{"prod_premium_monthly"})
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if res.Subscription == nil || users.attempts != 3 {
			t.Errorf("attempts = %d, result %+v", users.attempts, res)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		store := newStore()
		member := addMember(t, store, "ana", 0)
		users := &conflictingUsers{UserRepository: store.Users, remaining: 10}
		svc := service.NewLedgerService(users, nil)

		_, err := svc.OnPaymentCompleted(ctx, member.Email, []string{"prod_premium_monthly"})
		assertErrorIs(t, err, service.ErrLedgerContention)
	})
}

func TestGrantSessions(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := service.NewLedgerService(store.Users, nil)
	admin := addAdmin(t, store, "root")
	member := addMember(t, store, "ana", 2)
	trainer := addTrainer(t, store, "bo")

	tests := []struct {
		name    string
		actor   policy.Principal
		target  primitive.ObjectID
		count   int
		wantErr error
	}{
		{name: "member cannot grant", actor: principal(member), target: member.ID, count: 1, wantErr: policy.ErrForbidden},
		{name: "zero count", actor: principal(admin), target: member.ID, count: 0, wantErr: service.ErrValidation},
		{name: "trainer target", actor: principal(admin), target: trainer.ID, count: 1, wantErr: service.ErrMemberNotFound},
		{name: "ok", actor: principal(admin), target: member.ID, count: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.GrantSessions(ctx, tt.actor, tt.target, tt.count)
			if tt.wantErr != nil {
				assertErrorIs(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if u.PTBalance() != 5 {
				t.Errorf("balance = %d, want 5", u.PTBalance())
			}
		})
	}
}
