package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dkovacs/whisper/internal/domain"
	"github.com/dkovacs/whisper/internal/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrSelfBlock    = errors.New("cannot block yourself")
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// List returns every user except the caller, for the contact picker.
func (s *UserService) List(ctx context.Context, callerID uuid.UUID) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// UpdateProfile changes the caller's display name or avatar. Empty
// values leave the stored ones untouched.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, displayName string, avatarURL *string) (*domain.User, error) {
	user, err := s.userRepo.UpdateProfile(ctx, userID, displayName, avatarURL)
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Block adds target to the caller's block list. The send path consults
// this set in both directions.
func (s *UserService) Block(ctx context.Context, callerID, targetID uuid.UUID) error {
	if callerID == targetID {
		return ErrSelfBlock
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}
	if err := s.userRepo.Block(ctx, callerID, targetID); err != nil {
		return fmt.Errorf("blocking user: %w", err)
	}
	return nil
}

func (s *UserService) Unblock(ctx context.Context, callerID, targetID uuid.UUID) error {
	if err := s.userRepo.Unblock(ctx, callerID, targetID); err != nil {
		return fmt.Errorf("unblocking user: %w", err)
	}
	return nil
}
