package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/gym-portal/internal/domain"
	"alcyxob/gym-portal/internal/policy"
	"alcyxob/gym-portal/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewTrainerInput carries the fields an admin provides for a trainer account.
type NewTrainerInput struct {
	Name            string
	Email           string
	Password        string
	Specializations []string
	HireDate        time.Time
}

type UserService interface {
	GetProfile(ctx context.Context, actor policy.Principal, userID primitive.ObjectID) (*domain.User, error)
	UpdateName(ctx context.Context, actor policy.Principal, name string) (*domain.User, error)
	ListTrainers(ctx context.Context, actor policy.Principal) ([]domain.User, error)

	// Admin operations
	ListUsers(ctx context.Context, actor policy.Principal, role domain.Role) ([]domain.User, error)
	CreateTrainer(ctx context.Context, actor policy.Principal, in NewTrainerInput) (*domain.User, error)
	DeleteUser(ctx context.Context, actor policy.Principal, userID primitive.ObjectID) error

	// BootstrapAdmin creates an admin account without an acting principal. Used by gymctl.
	BootstrapAdmin(ctx context.Context, name, email, password string) (*domain.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func stripHashes(users []domain.User) []domain.User {
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users
}

// GetProfile lets members read only their own profile; trainers and admins read any.
func (s *userService) GetProfile(ctx context.Context, actor policy.Principal, userID primitive.ObjectID) (*domain.User, error) {
	if err := policy.Authorize(actor, policy.ReadProfile, userID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UpdateName(ctx context.Context, actor policy.Principal, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if err := s.userRepo.UpdateName(ctx, actor.ID, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.GetProfile(ctx, actor, actor.ID)
}

func (s *userService) ListTrainers(ctx context.Context, actor policy.Principal) ([]domain.User, error) {
	if err := policy.Authorize(actor, policy.ViewTrainerDirectory); err != nil {
		return nil, err
	}
	trainers, err := s.userRepo.List(ctx, domain.RoleTrainer)
	if err != nil {
		return nil, err
	}
	return stripHashes(trainers), nil
}

func (s *userService) ListUsers(ctx context.Context, actor policy.Principal, role domain.Role) ([]domain.User, error) {
	if err := policy.Authorize(actor, policy.ManageUsers); err != nil {
		return nil, err
	}
	if role != "" && !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	users, err := s.userRepo.List(ctx, role)
	if err != nil {
		return nil, err
	}
	return stripHashes(users), nil
}

func (s *userService) CreateTrainer(ctx context.Context, actor policy.Principal, in NewTrainerInput) (*domain.User, error) {
	if err := policy.Authorize(actor, policy.ManageUsers); err != nil {
		return nil, err
	}
	hireDate := in.HireDate
	if hireDate.IsZero() {
		hireDate = time.Now().UTC()
	}
	return createAccount(ctx, s.userRepo, &domain.User{
		Name:  in.Name,
		Email: in.Email,
		Role:  domain.RoleTrainer,
		Trainer: &domain.TrainerProfile{
			HireDate:        domain.DateOnly(hireDate),
			Specializations: in.Specializations,
		},
	}, in.Password)
}

// DeleteUser removes an account. Existing bookings keep their name snapshots.
func (s *userService) DeleteUser(ctx context.Context, actor policy.Principal, userID primitive.ObjectID) error {
	if err := policy.Authorize(actor, policy.ManageUsers); err != nil {
		return err
	}
	if userID == actor.ID {
		return fmt.Errorf("%w: admins cannot delete their own account", ErrValidation)
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *userService) BootstrapAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	return createAccount(ctx, s.userRepo, &domain.User{
		Name:  name,
		Email: email,
		Role:  domain.RoleAdmin,
	}, password)
}
