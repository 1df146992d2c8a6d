package service

import (
	"context"
	"fmt"

	"cardex/events"
	"cardex/models"
)

// userService implements the UserService interface
type userService struct {
	uowFactory UnitOfWorkFactory
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory) UserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

// GetOrCreateUser retrieves an existing user or creates a new one
func (s *userService) GetOrCreateUser(ctx context.Context, id, displayName string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if user != nil {
		return user, nil
	}

	user, err = uow.UserRepository().Create(ctx, id, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	uow.EventBus().Publish(events.UserCreatedEvent{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// ListUsers returns all users with their card counts
func (s *userService) ListUsers(ctx context.Context) ([]*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return users, nil
}

// GetSetCompletion returns a user's per-set completion progress
func (s *userService) GetSetCompletion(ctx context.Context, userID string) ([]*models.SetCompletion, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}

	completion, err := uow.CardRepository().GetSetCompletion(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get set completion: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return completion, nil
}
