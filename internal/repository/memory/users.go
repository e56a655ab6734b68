package memory

import (
	"context"
	"sort"
	"time"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRecord struct {
	user domain.User
}

// UserRepository is an in-memory repository.UserRepository.
type UserRepository struct {
	store *Store
	byID  map[string]*userRecord
	order []primitive.ObjectID
}

func cloneUser(u domain.User) *domain.User {
	out := u
	if u.Trainer != nil {
		t := *u.Trainer
		t.Specializations = append([]string(nil), u.Trainer.Specializations...)
		out.Trainer = &t
	}
	if u.Member != nil {
		m := *u.Member
		m.Subscriptions = append([]domain.Subscription{}, u.Member.Subscriptions...)
		out.Member = &m
	}
	return &out
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, rec := range r.byID {
		if rec.user.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Member != nil && user.Member.Subscriptions == nil {
		user.Member.Subscriptions = []domain.Subscription{}
	}
	r.byID[user.ID.Hex()] = &userRecord{user: *cloneUser(*user)}
	r.order = append(r.order, user.ID)
	return user.ID, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, rec := range r.byID {
		if rec.user.Email == email {
			return cloneUser(rec.user), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := r.byID[id.Hex()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(rec.user), nil
}

func (r *UserRepository) GetByIDAndRole(ctx context.Context, id primitive.ObjectID, role domain.Role) (*domain.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != role {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) List(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	users := []domain.User{}
	for _, id := range r.order {
		rec, ok := r.byID[id.Hex()]
		if !ok {
			continue
		}
		if role == "" || rec.user.Role == role {
			users = append(users, *cloneUser(rec.user))
		}
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (r *UserRepository) CountByRole(_ context.Context) (map[domain.Role]int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	counts := map[domain.Role]int64{domain.RoleAdmin: 0, domain.RoleTrainer: 0, domain.RoleMember: 0}
	for _, rec := range r.byID {
		counts[rec.user.Role]++
	}
	return counts, nil
}

func (r *UserRepository) CountMembersWithCurrentSubscription(_ context.Context, now time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, rec := range r.byID {
		if rec.user.IsMember() && rec.user.CurrentSubscription(now) != nil {
			n++
		}
	}
	return n, nil
}

func (r *UserRepository) mutate(id primitive.ObjectID, fn func(u *domain.User) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := r.byID[id.Hex()]
	if !ok {
		return repository.ErrNotFound
	}
	working := cloneUser(rec.user)
	if err := fn(working); err != nil {
		return err
	}
	working.UpdatedAt = time.Now().UTC()
	rec.user = *working
	return nil
}

func (r *UserRepository) UpdateName(_ context.Context, id primitive.ObjectID, name string) error {
	return r.mutate(id, func(u *domain.User) error {
		u.Name = name
		return nil
	})
}

func (r *UserRepository) UpdatePasswordHash(_ context.Context, id primitive.ObjectID, hash string) error {
	return r.mutate(id, func(u *domain.User) error {
		u.PasswordHash = hash
		return nil
	})
}

func (r *UserRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.byID[id.Hex()]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id.Hex())
	return nil
}

func memberOf(u *domain.User) (*domain.MemberProfile, error) {
	if !u.IsMember() {
		return nil, repository.ErrNotFound
	}
	if u.Member == nil {
		u.Member = &domain.MemberProfile{Subscriptions: []domain.Subscription{}}
	}
	return u.Member, nil
}

func (r *UserRepository) AddPTSessions(_ context.Context, memberID primitive.ObjectID, delta int) error {
	return r.mutate(memberID, func(u *domain.User) error {
		m, err := memberOf(u)
		if err != nil {
			return err
		}
		m.PTSessions += delta
		return nil
	})
}

func (r *UserRepository) DebitPTSession(_ context.Context, memberID primitive.ObjectID) error {
	return r.mutate(memberID, func(u *domain.User) error {
		if !u.IsMember() {
			return repository.ErrConditionFailed
		}
		m, _ := memberOf(u)
		if m.PTSessions <= 0 {
			return repository.ErrConditionFailed
		}
		m.PTSessions--
		return nil
	})
}

func (r *UserRepository) ReplaceSubscriptions(_ context.Context, memberID primitive.ObjectID, expectedVersion int64, subs []domain.Subscription) error {
	return r.mutate(memberID, func(u *domain.User) error {
		if !u.IsMember() || u.Version != expectedVersion {
			return repository.ErrVersionConflict
		}
		m, _ := memberOf(u)
		m.Subscriptions = append([]domain.Subscription{}, subs...)
		u.Version++
		return nil
	})
}
