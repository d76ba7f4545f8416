package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/stepflow-api/internal/models"
	"github.com/yukikurage/stepflow-api/internal/repository"
	"gorm.io/gorm"
)

// UserService keeps the local profile copy of externally issued identities
type UserService struct {
	store repository.Store
}

// NewUserService creates a new UserService
func NewUserService(store repository.Store) *UserService {
	return &UserService{store: store}
}

// SyncUserInput carries the identity fields taken from a verified token
type SyncUserInput struct {
	ID    string `validate:"required"`
	Name  string `validate:"max=255"`
	Email string `validate:"omitempty,email"`
}

// Sync creates the caller's profile or refreshes its display fields
func (s *UserService) Sync(ctx context.Context, input SyncUserInput) (*models.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user := &models.User{
		ID:    input.ID,
		Name:  input.Name,
		Email: input.Email,
	}
	if err := s.store.Users().Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return s.Get(ctx, input.ID)
}

// Get returns the profile of userID
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	if err := requireCaller(userID); err != nil {
		return nil, err
	}

	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
