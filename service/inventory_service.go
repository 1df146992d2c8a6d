package service

import (
	"context"
	"fmt"

	"cardex/models"
)

// inventoryService implements the InventoryService interface
type inventoryService struct {
	uowFactory UnitOfWorkFactory
}

// NewInventoryService creates a new inventory service
func NewInventoryService(uowFactory UnitOfWorkFactory) InventoryService {
	return &inventoryService{
		uowFactory: uowFactory,
	}
}

// GetHoldings returns a user's holdings map
func (s *inventoryService) GetHoldings(ctx context.Context, userID string) (models.Holdings, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	holdings, err := uow.InventoryRepository().GetHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get holdings: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return holdings, nil
}

// GetHoldingDetails returns holdings joined with catalog cards
func (s *inventoryService) GetHoldingDetails(ctx context.Context, userID string) ([]*models.HoldingDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	details, err := uow.InventoryRepository().GetHoldingDetails(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get holding details: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return details, nil
}

// Adjust applies a direct catalog add/remove. The quantity change, its
// audit entry and the event all commit in one transaction.
func (s *inventoryService) Adjust(ctx context.Context, userID string, cardID int64, delta int64) (int64, error) {
	if delta == 0 {
		return 0, ErrInvalidQuantity
	}

	var newQuantity int64
	err := withTxRetry(func() error {
		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback() // No-op if already committed

		before, after, err := uow.InventoryRepository().ApplyDelta(ctx, userID, cardID, delta)
		if err != nil {
			return err
		}

		changeType := models.ChangeTypeCatalogAdd
		if delta < 0 {
			changeType = models.ChangeTypeCatalogRemove
		}

		history := &models.InventoryHistory{
			UserID:         userID,
			CardID:         cardID,
			QuantityBefore: before,
			QuantityAfter:  after,
			ChangeAmount:   delta,
			ChangeType:     changeType,
		}
		if err := RecordInventoryChange(ctx, uow, history); err != nil {
			return err
		}

		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}

		newQuantity = after
		return nil
	})
	if err != nil {
		return 0, err
	}

	return newQuantity, nil
}

// GetHistory returns recent quantity changes for a user
func (s *inventoryService) GetHistory(ctx context.Context, userID string, limit int) ([]*models.InventoryHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.InventoryHistoryRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory history: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entries, nil
}
