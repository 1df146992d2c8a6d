package service

import (
	"context"
	"fmt"

	"cardex/events"
	"cardex/models"
)

// RecordInventoryChange records an inventory history entry and emits the
// matching event. This is the single entry point for all quantity changes
// in the system.
func RecordInventoryChange(ctx context.Context, uow UnitOfWork, history *models.InventoryHistory) error {
	if err := uow.InventoryHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record inventory history: %w", err)
	}

	// Flushed after the transaction commits
	event := events.InventoryChangeEvent{
		UserID:      history.UserID,
		CardID:      history.CardID,
		OldQuantity: history.QuantityBefore,
		NewQuantity: history.QuantityAfter,
		ChangeType:  history.ChangeType,
	}
	uow.EventBus().Publish(event)

	return nil
}
