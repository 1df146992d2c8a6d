package service

import (
	"context"
	"fmt"

	"cardex/models"
)

// matchingService implements the MatchingService interface
type matchingService struct {
	uowFactory UnitOfWorkFactory
}

// NewMatchingService creates a new matching service
func NewMatchingService(uowFactory UnitOfWorkFactory) MatchingService {
	return &matchingService{
		uowFactory: uowFactory,
	}
}

// ComputeTradePotential compares the caller's holdings with another
// user's. Both snapshots are read in one transaction so the comparison is
// internally consistent; the result is advisory and may be stale by the
// time a request is made.
func (s *matchingService) ComputeTradePotential(ctx context.Context, userID, otherUserID string) (*models.TradePotentialDetail, error) {
	if userID == otherUserID {
		return nil, ErrSelfTrade
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	other, err := uow.UserRepository().GetByID(ctx, otherUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if other == nil {
		return nil, ErrNotFound
	}

	mine, err := uow.InventoryRepository().GetHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get own holdings: %w", err)
	}

	theirs, err := uow.InventoryRepository().GetHoldings(ctx, otherUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get other holdings: %w", err)
	}

	offered, err := uow.TradeOfferRepository().GetCardIDsByUser(ctx, otherUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trade offers: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	potential := ComputeTradePotential(mine, theirs)
	return &models.TradePotentialDetail{
		TradePotential: potential,
		Requestable:    FilterByOffers(potential.WantFromThem, offered),
	}, nil
}
