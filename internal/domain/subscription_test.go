package domain_test

import (
	"testing"
	"time"

	"alcyxob/gym-portal/internal/domain"
)

func TestAppendSubscription_SingleActive(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	history := []domain.Subscription{
		{Tier: domain.TierStandard, StartDate: now.AddDate(0, -2, 0), EndDate: now.AddDate(0, -1, 0), Status: domain.SubscriptionExpired},
		{Tier: domain.TierStandardPlus, StartDate: now.AddDate(0, 0, -5), EndDate: now.AddDate(0, 1, -5), Status: domain.SubscriptionActive},
	}

	got := domain.AppendSubscription(history, domain.TierPremium, 3, now)

	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	active := 0
	for _, s := range got {
		if s.IsCurrent(now) {
			active++
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one current subscription, got %d", active)
	}
	last := got[2]
	if last.Tier != domain.TierPremium || !last.EndDate.Equal(now.AddDate(0, 3, 0)) {
		t.Errorf("unexpected new entry: %+v", last)
	}
	if history[1].Status != domain.SubscriptionActive {
		t.Errorf("input history must not be modified")
	}
}

func TestCurrentSubscription(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		subs     []domain.Subscription
		wantTier domain.Tier
	}{
		{name: "empty history", subs: nil},
		{
			name: "active but ended",
			subs: []domain.Subscription{{Tier: domain.TierPremium, EndDate: now.Add(-time.Hour), Status: domain.SubscriptionActive}},
		},
		{
			name: "expired but in future",
			subs: []domain.Subscription{{Tier: domain.TierPremium, EndDate: now.Add(time.Hour), Status: domain.SubscriptionExpired}},
		},
		{
			name:     "current standard",
			subs:     []domain.Subscription{{Tier: domain.TierStandard, EndDate: now.Add(time.Hour), Status: domain.SubscriptionActive}},
			wantTier: domain.TierStandard,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.CurrentSubscription(tt.subs, now)
			if tt.wantTier == "" {
				if got != nil {
					t.Fatalf("expected no current subscription, got %+v", got)
				}
				return
			}
			if got == nil || got.Tier != tt.wantTier {
				t.Fatalf("expected tier %s, got %+v", tt.wantTier, got)
			}
		})
	}
}

func TestUser_HasPTAccess(t *testing.T) {
	now := time.Now().UTC()
	premium := []domain.Subscription{{Tier: domain.TierPremium, EndDate: now.Add(24 * time.Hour), Status: domain.SubscriptionActive}}
	standard := []domain.Subscription{{Tier: domain.TierStandard, EndDate: now.Add(24 * time.Hour), Status: domain.SubscriptionActive}}

	tests := []struct {
		name    string
		profile *domain.MemberProfile
		want    bool
	}{
		{name: "no profile", profile: nil, want: false},
		{name: "premium without credits", profile: &domain.MemberProfile{Subscriptions: premium}, want: true},
		{name: "standard with credits", profile: &domain.MemberProfile{Subscriptions: standard, PTSessions: 2}, want: true},
		{name: "standard without credits", profile: &domain.MemberProfile{Subscriptions: standard}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &domain.User{Role: domain.RoleMember, Member: tt.profile}
			if got := u.HasPTAccess(now); got != tt.want {
				t.Errorf("HasPTAccess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"admin", "trainer", "member"} {
		if _, ok := domain.ParseRole(s); !ok {
			t.Errorf("expected %q to parse", s)
		}
	}
	for _, s := range []string{"", "client", "Admin", "root"} {
		if _, ok := domain.ParseRole(s); ok {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}
