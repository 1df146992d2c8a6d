package service

import (
	"context"
	"fmt"
	"strings"

	"cardex/models"
)

// cardService implements the CardService interface
type cardService struct {
	uowFactory UnitOfWorkFactory
}

// NewCardService creates a new card service
func NewCardService(uowFactory UnitOfWorkFactory) CardService {
	return &cardService{
		uowFactory: uowFactory,
	}
}

// CreateCard adds a card to the catalog
func (s *cardService) CreateCard(ctx context.Context, card *models.Card) error {
	if strings.TrimSpace(card.Code) == "" || strings.TrimSpace(card.Name) == "" || strings.TrimSpace(card.SetName) == "" {
		return fmt.Errorf("card code, name and set are required: %w", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.CardRepository().Create(ctx, card); err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetCard retrieves a card by ID
func (s *cardService) GetCard(ctx context.Context, id int64) (*models.Card, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	card, err := uow.CardRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	if card == nil {
		return nil, ErrNotFound
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return card, nil
}

// ListCards returns the catalog, optionally filtered by set
func (s *cardService) ListCards(ctx context.Context, setName string) ([]*models.Card, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	var cards []*models.Card
	var err error
	if setName == "" {
		cards, err = uow.CardRepository().GetAll(ctx)
	} else {
		cards, err = uow.CardRepository().GetBySet(ctx, setName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return cards, nil
}
