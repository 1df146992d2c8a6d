package service

import (
	"context"
	"fmt"
	"sort"

	"cardex/models"
)

// collectionService implements the CollectionService interface
type collectionService struct {
	uowFactory UnitOfWorkFactory
}

// NewCollectionService creates a new collection service
func NewCollectionService(uowFactory UnitOfWorkFactory) CollectionService {
	return &collectionService{
		uowFactory: uowFactory,
	}
}

// SetOffered lists or delists one of the user's cards for trade. Listing
// requires actually owning the card; delisting is always allowed.
func (s *collectionService) SetOffered(ctx context.Context, userID string, cardID int64, offered bool) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if offered {
		quantity, err := uow.InventoryRepository().GetQuantity(ctx, userID, cardID)
		if err != nil {
			return fmt.Errorf("failed to check holding: %w", err)
		}
		if quantity == 0 {
			return fmt.Errorf("card %d not in collection: %w", cardID, ErrNotFound)
		}
		if err := uow.TradeOfferRepository().Add(ctx, userID, cardID); err != nil {
			return err
		}
	} else {
		if err := uow.TradeOfferRepository().Remove(ctx, userID, cardID); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetOfferedCards returns the card IDs a user has listed for trade
func (s *collectionService) GetOfferedCards(ctx context.Context, userID string) ([]int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	offered, err := uow.TradeOfferRepository().GetCardIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trade offers: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	ids := make([]int64, 0, len(offered))
	for id := range offered {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Pin marks a card as a display favorite
func (s *collectionService) Pin(ctx context.Context, userID string, cardID int64) (*models.PinnedCard, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	pin, err := uow.PinnedCardRepository().Pin(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return pin, nil
}

// Unpin removes a display favorite
func (s *collectionService) Unpin(ctx context.Context, userID string, cardID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.PinnedCardRepository().Unpin(ctx, userID, cardID); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListPinned returns a user's pinned cards in display order
func (s *collectionService) ListPinned(ctx context.Context, userID string) ([]*models.PinnedCard, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	pins, err := uow.PinnedCardRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pinned cards: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return pins, nil
}
