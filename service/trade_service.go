package service

import (
	"context"
	"fmt"
	"time"

	"cardex/events"
	"cardex/models"
)

// tradeRequestService implements the TradeRequestService interface
type tradeRequestService struct {
	uowFactory UnitOfWorkFactory
}

// NewTradeRequestService creates a new trade request service
func NewTradeRequestService(uowFactory UnitOfWorkFactory) TradeRequestService {
	return &tradeRequestService{
		uowFactory: uowFactory,
	}
}

// CreateRequest records a pending ask for one unit of a card. Duplicate
// detection is left entirely to the storage layer's pending-triple
// constraint, so two concurrent identical asks can never both land.
func (s *tradeRequestService) CreateRequest(ctx context.Context, fromUserID, toUserID string, cardID int64) (*models.TradeRequest, error) {
	if fromUserID == toUserID {
		return nil, ErrSelfTrade
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	owner, err := uow.UserRepository().GetByID(ctx, toUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get card owner: %w", err)
	}
	if owner == nil {
		return nil, ErrNotFound
	}

	request := &models.TradeRequest{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		CardID:     cardID,
	}
	if err := uow.TradeRequestRepository().Create(ctx, request); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.TradeRequestCreatedEvent{
		RequestID:  request.ID,
		FromUserID: request.FromUserID,
		ToUserID:   request.ToUserID,
		CardID:     request.CardID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return request, nil
}

// WithdrawRequest removes a still-pending request. Requests that were
// already decided stay in the ledger.
func (s *tradeRequestService) WithdrawRequest(ctx context.Context, fromUserID, toUserID string, cardID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	deleted, err := uow.TradeRequestRepository().DeletePending(ctx, fromUserID, toUserID, cardID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Decide accepts or refuses a pending request on behalf of the card
// owner. Accepting creates the trade session in the same transaction, so
// a decided request and its session can never disagree.
func (s *tradeRequestService) Decide(ctx context.Context, requestID int64, actorID string, decision models.TradeDecision) (*models.TradeRequest, *models.TradeSession, error) {
	if !decision.Valid() {
		return nil, nil, fmt.Errorf("unknown decision %q: %w", decision, ErrInvalidInput)
	}

	var request *models.TradeRequest
	var session *models.TradeSession
	err := withTxRetry(func() error {
		request, session = nil, nil

		uow := s.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer uow.Rollback() // No-op if already committed

		var err error
		request, err = uow.TradeRequestRepository().GetByID(ctx, requestID)
		if err != nil {
			return fmt.Errorf("failed to get trade request: %w", err)
		}
		if request == nil {
			return ErrNotFound
		}
		if !request.CanBeDecidedBy(actorID) {
			return ErrForbidden
		}

		status := models.TradeRequestStatusRefused
		if decision == models.TradeDecisionAccept {
			status = models.TradeRequestStatusAccepted
		}

		now := time.Now()
		decided, err := uow.TradeRequestRepository().MarkDecided(ctx, requestID, status, now)
		if err != nil {
			return err
		}
		if !decided {
			return ErrAlreadyDecided
		}
		request.Status = status
		request.DecidedAt = &now

		event := events.TradeRequestDecidedEvent{
			RequestID: requestID,
			Decision:  decision,
		}

		if decision == models.TradeDecisionAccept {
			session = &models.TradeSession{
				RequestID:   request.ID,
				RequesterID: request.FromUserID,
				OwnerID:     request.ToUserID,
				CardID:      request.CardID,
			}
			if err := uow.TradeSessionRepository().Create(ctx, session); err != nil {
				return err
			}
			event.SessionID = &session.ID
		}

		uow.EventBus().Publish(event)

		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return request, session, nil
}

// ListIncoming returns pending requests addressed to a user
func (s *tradeRequestService) ListIncoming(ctx context.Context, userID string) ([]*models.TradeRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	requests, err := uow.TradeRequestRepository().GetPendingForOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming requests: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return requests, nil
}

// ListOutgoing returns pending requests sent by a user
func (s *tradeRequestService) ListOutgoing(ctx context.Context, userID string) ([]*models.TradeRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	requests, err := uow.TradeRequestRepository().GetPendingFromRequester(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outgoing requests: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return requests, nil
}
