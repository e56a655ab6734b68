package domain

import "time"

// Tier is the subscription plan level.
type Tier string

const (
	TierStandard     Tier = "Standard"
	TierStandardPlus Tier = "Standard+"
	TierPremium      Tier = "Premium"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierStandard, TierStandardPlus, TierPremium:
		return true
	}
	return false
}

// SubscriptionStatus tracks the lifecycle of one subscription period.
// Transitions are active -> expired only.
type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionExpired SubscriptionStatus = "expired"
)

// Subscription is a single paid period embedded in the member profile.
type Subscription struct {
	Tier      Tier               `bson:"tier" json:"tier"`
	StartDate time.Time          `bson:"startDate" json:"startDate"`
	EndDate   time.Time          `bson:"endDate" json:"endDate"`
	Status    SubscriptionStatus `bson:"status" json:"status"`
}

// IsCurrent reports whether the subscription is active and has not ended yet.
func (s Subscription) IsCurrent(now time.Time) bool {
	return s.Status == SubscriptionActive && s.EndDate.After(now)
}

// CurrentSubscription picks the current entry from a subscription history.
// When several entries qualify (legacy data), the one ending last wins.
func CurrentSubscription(subs []Subscription, now time.Time) *Subscription {
	var current *Subscription
	for i := range subs {
		if !subs[i].IsCurrent(now) {
			continue
		}
		if current == nil || subs[i].EndDate.After(current.EndDate) {
			current = &subs[i]
		}
	}
	return current
}

// AppendSubscription expires every existing entry and appends a new active one.
// The returned slice is a fresh copy; the input is not modified.
func AppendSubscription(subs []Subscription, tier Tier, months int, now time.Time) []Subscription {
	out := make([]Subscription, 0, len(subs)+1)
	for _, s := range subs {
		s.Status = SubscriptionExpired
		out = append(out, s)
	}
	return append(out, Subscription{
		Tier:      tier,
		StartDate: now,
		EndDate:   now.AddDate(0, months, 0),
		Status:    SubscriptionActive,
	})
}
