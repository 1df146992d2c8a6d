package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cardex/events"
	"cardex/models"
)

// tradeSessionService implements the TradeSessionService interface
type tradeSessionService struct {
	uowFactory UnitOfWorkFactory
}

// NewTradeSessionService creates a new trade session service
func NewTradeSessionService(uowFactory UnitOfWorkFactory) TradeSessionService {
	return &tradeSessionService{
		uowFactory: uowFactory,
	}
}

// Confirm finalizes a session on behalf of a participant. One click from
// either side completes the session and moves the card; the status guard
// on the session row makes sure the transfer runs exactly once.
func (s *tradeSessionService) Confirm(ctx context.Context, sessionID int64, actorID string) (*models.TradeSession, error) {
	var session *models.TradeSession
	err := withTxRetry(func() error {
		session = nil

		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback() // No-op if already committed

		var err error
		session, err = uow.TradeSessionRepository().GetByID(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to get trade session: %w", err)
		}
		if session == nil {
			return ErrNotFound
		}
		if !session.IsParticipant(actorID) {
			return ErrForbidden
		}
		if session.IsCompleted() {
			return ErrAlreadyCompleted
		}

		now := time.Now()
		completed, err := uow.TradeSessionRepository().MarkCompleted(ctx, sessionID, true, true, now)
		if err != nil {
			return err
		}
		if !completed {
			return ErrAlreadyCompleted
		}

		if err := s.executeTransfer(ctx, uow, session, actorID); err != nil {
			return err
		}

		session.Status = models.TradeSessionStatusCompleted
		session.ConfirmedByRequester = true
		session.ConfirmedByOwner = true
		session.CompletedAt = &now

		uow.EventBus().Publish(events.TradeSessionCompleteEvent{
			SessionID:   session.ID,
			RequesterID: session.RequesterID,
			OwnerID:     session.OwnerID,
			CardID:      session.CardID,
			ConfirmedBy: actorID,
		})

		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// executeTransfer moves one unit of the card from owner to requester and
// writes both sides of the audit trail. Runs inside the confirm
// transaction: if any step fails, the session stays open and no quantity
// moves.
func (s *tradeSessionService) executeTransfer(ctx context.Context, uow UnitOfWork, session *models.TradeSession, confirmedBy string) error {
	ownerBefore, ownerAfter, err := uow.InventoryRepository().ApplyDelta(ctx, session.OwnerID, session.CardID, -1)
	if err != nil {
		// The owner parted with their last copy since the request was
		// accepted. Nothing has moved; surface it as a conflict.
		if errors.Is(err, ErrInvalidQuantity) {
			return ErrInsufficientQuantity
		}
		return fmt.Errorf("failed to deduct card from owner: %w", err)
	}

	requesterBefore, requesterAfter, err := uow.InventoryRepository().ApplyDelta(ctx, session.RequesterID, session.CardID, 1)
	if err != nil {
		return fmt.Errorf("failed to add card to requester: %w", err)
	}

	metadata := map[string]any{
		"counterparty": session.RequesterID,
		"confirmed_by": confirmedBy,
	}
	relatedType := models.RelatedTypeTradeSession
	outHistory := &models.InventoryHistory{
		UserID:         session.OwnerID,
		CardID:         session.CardID,
		QuantityBefore: ownerBefore,
		QuantityAfter:  ownerAfter,
		ChangeAmount:   -1,
		ChangeType:     models.ChangeTypeTradeOut,
		ChangeMetadata: metadata,
		RelatedID:      &session.ID,
		RelatedType:    &relatedType,
	}
	if err := RecordInventoryChange(ctx, uow, outHistory); err != nil {
		return err
	}

	inHistory := &models.InventoryHistory{
		UserID:         session.RequesterID,
		CardID:         session.CardID,
		QuantityBefore: requesterBefore,
		QuantityAfter:  requesterAfter,
		ChangeAmount:   1,
		ChangeType:     models.ChangeTypeTradeIn,
		ChangeMetadata: map[string]any{
			"counterparty": session.OwnerID,
			"confirmed_by": confirmedBy,
		},
		RelatedID:   &session.ID,
		RelatedType: &relatedType,
	}
	if err := RecordInventoryChange(ctx, uow, inHistory); err != nil {
		return err
	}

	return nil
}

// GetSession retrieves a session by ID
func (s *tradeSessionService) GetSession(ctx context.Context, sessionID int64) (*models.TradeSession, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	session, err := uow.TradeSessionRepository().GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trade session: %w", err)
	}
	if session == nil {
		return nil, ErrNotFound
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return session, nil
}

// ListSessionsByUser returns all sessions a user participates in
func (s *tradeSessionService) ListSessionsByUser(ctx context.Context, userID string) ([]*models.TradeSession, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	sessions, err := uow.TradeSessionRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trade sessions: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return sessions, nil
}
