package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/policy"
	"alcyxob/gym-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxLedgerAttempts bounds the compare-and-swap retries on a subscription rewrite.
const maxLedgerAttempts = 3

var ErrLedgerContention = errors.New("subscription update kept conflicting with concurrent writes")

// LedgerResult summarizes what a payment event changed.
type LedgerResult struct {
	UserID          primitive.ObjectID   `json:"userId"`
	Subscription    *domain.Subscription `json:"subscription,omitempty"`
	SessionsAdded   int                  `json:"sessionsAdded"`
	SkippedProducts []string             `json:"skippedProducts,omitempty"`
}

type LedgerService interface {
	// OnPaymentCompleted applies the effects of a completed checkout. It is not
	// idempotent: replaying the same event applies the effects again.
	OnPaymentCompleted(ctx context.Context, email string, productIDs []string) (*LedgerResult, error)
	// GrantSessions lets an admin add PT credits outside of a payment.
	GrantSessions(ctx context.Context, actor policy.Principal, memberID primitive.ObjectID, count int) (*domain.User, error)
}

type ledgerService struct {
	userRepo repository.UserRepository
	catalog  domain.ProductCatalog
}

func NewLedgerService(userRepo repository.UserRepository, catalog domain.ProductCatalog) LedgerService {
	if len(catalog) == 0 {
		catalog = domain.DefaultProductCatalog()
	}
	return &ledgerService{userRepo: userRepo, catalog: catalog}
}

func (s *ledgerService) OnPaymentCompleted(ctx context.Context, email string, productIDs []string) (*LedgerResult, error) {
	// 1. Resolve the buyer
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: customer email is missing", ErrValidation)
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("WARN: Payment for unknown customer %s dropped", email)
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsMember() {
		return nil, fmt.Errorf("%w: %s is not a member account", ErrValidation, email)
	}

	// 2./3. Resolve products
	result := &LedgerResult{UserID: user.ID}
	var subscriptionEffects []domain.ProductEffect
	for _, productID := range productIDs {
		effect, ok := s.catalog[strings.ToLower(productID)]
		if !ok {
			log.Printf("WARN: Unknown product %q in payment for %s, skipping", productID, email)
			result.SkippedProducts = append(result.SkippedProducts, productID)
			continue
		}
		if effect.IsSubscription() {
			subscriptionEffects = append(subscriptionEffects, effect)
		}
		if effect.IsSessionPack() {
			result.SessionsAdded += effect.Sessions
		}
	}

	// 4. Subscriptions: last one in the event wins
	if len(subscriptionEffects) > 0 {
		sub, err := s.applySubscriptions(ctx, user.ID, subscriptionEffects)
		if err != nil {
			return nil, err
		}
		result.Subscription = sub
	}

	// 5. PT credits are additive
	if result.SessionsAdded > 0 {
		if err := s.userRepo.AddPTSessions(ctx, user.ID, result.SessionsAdded); err != nil {
			return nil, err
		}
	}

	log.Printf("INFO: Payment applied for %s: subscription=%v sessions=+%d skipped=%d",
		email, result.Subscription != nil, result.SessionsAdded, len(result.SkippedProducts))
	return result, nil
}

// applySubscriptions rewrites the subscription history with a version check and
// retries when another writer got there first.
func (s *ledgerService) applySubscriptions(ctx context.Context, userID primitive.ObjectID, effects []domain.ProductEffect) (*domain.Subscription, error) {
	for attempt := 1; attempt <= maxLedgerAttempts; attempt++ {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		var subs []domain.Subscription
		if user.Member != nil {
			subs = user.Member.Subscriptions
		}
		now := time.Now().UTC()
		for _, e := range effects {
			subs = domain.AppendSubscription(subs, e.Tier, e.Months, now)
		}

		err = s.userRepo.ReplaceSubscriptions(ctx, userID, user.Version, subs)
		if err == nil {
			current := subs[len(subs)-1]
			return &current, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, err
		}
		log.Printf("WARN: Subscription write for %s conflicted (attempt %d/%d)", userID.Hex(), attempt, maxLedgerAttempts)
	}
	return nil, ErrLedgerContention
}

func (s *ledgerService) GrantSessions(ctx context.Context, actor policy.Principal, memberID primitive.ObjectID, count int) (*domain.User, error) {
	if err := policy.Authorize(actor, policy.GrantSessions); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive", ErrValidation)
	}
	if _, err := s.userRepo.GetByIDAndRole(ctx, memberID, domain.RoleMember); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if err := s.userRepo.AddPTSessions(ctx, memberID, count); err != nil {
		return nil, err
	}
	member, err := s.userRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	member.PasswordHash = ""
	log.Printf("INFO: Admin %s granted %d PT sessions to %s", actor.ID.Hex(), count, memberID.Hex())
	return member, nil
}
