package service

import (
	"context"
	"testing"

	"cardex/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestTradeRequestService_CreateRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("self trade is rejected before any transaction", func(t *testing.T) {
		mockFactory := new(MockUnitOfWorkFactory)
		service := NewTradeRequestService(mockFactory)

		_, err := service.CreateRequest(ctx, "alice", "alice", 1)
		assert.ErrorIs(t, err, ErrSelfTrade)
		mockFactory.AssertNotCalled(t, "Create")
	})

	t.Run("unknown owner is rejected", func(t *testing.T) {
		mockUoW := new(MockUnitOfWork)
		mockFactory := new(MockUnitOfWorkFactory)
		mockUserRepo := new(MockUserRepository)
		mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil, nil, nil, nil)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByID", ctx, "ghost").Return(nil, nil)

		service := NewTradeRequestService(mockFactory)
		_, err := service.CreateRequest(ctx, "alice", "ghost", 1)
		assert.ErrorIs(t, err, ErrNotFound)

		mockUoW.AssertNotCalled(t, "Commit")
		mockUserRepo.AssertExpectations(t)
	})

	t.Run("creates pending request", func(t *testing.T) {
		mockUoW := new(MockUnitOfWork)
		mockFactory := new(MockUnitOfWorkFactory)
		mockUserRepo := new(MockUserRepository)
		mockRequestRepo := new(MockTradeRequestRepository)
		mockPublisher := new(MockEventPublisher)
		mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, mockRequestRepo, nil, nil, nil)
		mockUoW.SetEventBus(mockPublisher)

		owner := &models.User{ID: "bob", DisplayName: "Bob"}

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByID", ctx, "bob").Return(owner, nil)
		mockRequestRepo.On("Create", ctx, mock.MatchedBy(func(r *models.TradeRequest) bool {
			return r.FromUserID == "alice" && r.ToUserID == "bob" && r.CardID == 7
		})).Return(nil).Run(func(args mock.Arguments) {
			request := args.Get(1).(*models.TradeRequest)
			request.ID = 11
			request.Status = models.TradeRequestStatusPending
		})
		mockPublisher.On("Publish", mock.Anything).Return()

		service := NewTradeRequestService(mockFactory)
		request, err := service.CreateRequest(ctx, "alice", "bob", 7)

		assert.NoError(t, err)
		assert.Equal(t, int64(11), request.ID)
		assert.Equal(t, models.TradeRequestStatusPending, request.Status)

		mockRequestRepo.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("duplicate surfaces unchanged", func(t *testing.T) {
		mockUoW := new(MockUnitOfWork)
		mockFactory := new(MockUnitOfWorkFactory)
		mockUserRepo := new(MockUserRepository)
		mockRequestRepo := new(MockTradeRequestRepository)
		mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, mockRequestRepo, nil, nil, nil)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByID", ctx, "bob").Return(&models.User{ID: "bob"}, nil)
		mockRequestRepo.On("Create", ctx, mock.Anything).Return(ErrDuplicateRequest)

		service := NewTradeRequestService(mockFactory)
		_, err := service.CreateRequest(ctx, "alice", "bob", 7)
		assert.ErrorIs(t, err, ErrDuplicateRequest)
		mockUoW.AssertNotCalled(t, "Commit")
	})
}

func TestTradeRequestService_Decide(t *testing.T) {
	ctx := context.Background()

	pendingRequest := func() *models.TradeRequest {
		return &models.TradeRequest{
			ID:         11,
			FromUserID: "alice",
			ToUserID:   "bob",
			CardID:     7,
			Status:     models.TradeRequestStatusPending,
		}
	}

	t.Run("only the owner can decide", func(t *testing.T) {
		mockUoW := new(MockUnitOfWork)
		mockFactory := new(MockUnitOfWorkFactory)
		mockRequestRepo := new(MockTradeRequestRepository)
		mockUoW.SetRepositories(nil, nil, nil, nil, mockRequestRepo, nil, nil, nil)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockRequestRepo.On("GetByID", ctx, int64(11)).Return(pendingRequest(), nil)

		service := NewTradeRequestService(mockFactory)
		_, _, err := service.Decide(ctx, 11, "alice", models.TradeDecisionAccept)
		assert.ErrorIs(t, err, ErrForbidden)
		mockUoW.AssertNotCalled(t, "Commit")
	})

	t.Run("accept creates session in same transaction", func(t *testing.T) {
		mockUoW := new(MockUnitOfWork)
		mockFactory := new(MockUnitOfWorkFactory)
		mockRequestRepo := new(MockTradeRequestRepository)
		mockSessionRepo := new(MockTradeSessionRepository)
		mockUoW.SetRepositories(nil, nil, nil, nil, mockRequestRepo, mockSessionRepo, nil, nil)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockRequestRepo.On("GetByID", ctx, int64(11)).Return(pendingRequest(), nil)
		mockRequestRepo.On("MarkDecided", ctx, int64(11), models.TradeRequestStatusAccepted, mock.AnythingOfType("time.Time")).Return(true, nil)
		mockSessionRepo.On("Create", ctx, mock.MatchedBy(func(s *models.TradeSession) bool {
			return s.RequestID == 11 && s.RequesterID == "alice" && s.OwnerID == "bob" && s.CardID == 7
		})).Return(nil).Run(func(args mock.Arguments) {
			session := args.Get(1).(*models.TradeSession)
			session.ID = 21
			session.Status = models.TradeSessionStatusWaitingRealLife
		})

		service := NewTradeRequestService(mockFactory)
		request, session, err := service.Decide(ctx, 11, "bob", models.TradeDecisionAccept)

		assert.NoError(t, err)
		assert.Equal(t, models.TradeRequestStatusAccepted, request.Status)
		assert.NotNil(t, request.DecidedAt)
		assert.Equal(t, int64(21), session.ID)
		assert.Equal(t, models.TradeSessionStatusWaitingRealLife, session.Status)

		mockRequestRepo.AssertExpectations(t)
		mockSessionRepo.AssertExpectations(t)
	})

	t.Run("refuse leaves no session", func(t *testing.T) {
		mockUoW := new(MockUnitOfWork)
		mockFactory := new(MockUnitOfWorkFactory)
		mockRequestRepo := new(MockTradeRequestRepository)
		mockSessionRepo := new(MockTradeSessionRepository)
		mockUoW.SetRepositories(nil, nil, nil, nil, mockRequestRepo, mockSessionRepo, nil, nil)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockRequestRepo.On("GetByID", ctx, int64(11)).Return(pendingRequest(), nil)
		mockRequestRepo.On("MarkDecided", ctx, int64(11), models.TradeRequestStatusRefused, mock.AnythingOfType("time.Time")).Return(true, nil)

		service := NewTradeRequestService(mockFactory)
		request, session, err := service.Decide(ctx, 11, "bob", models.TradeDecisionRefuse)

		assert.NoError(t, err)
		assert.Equal(t, models.TradeRequestStatusRefused, request.Status)
		assert.Nil(t, session)
		mockSessionRepo.AssertNotCalled(t, "Create")
	})

	t.Run("stale decision reports already decided", func(t *testing.T) {
		mockUoW := new(MockUnitOfWork)
		mockFactory := new(MockUnitOfWorkFactory)
		mockRequestRepo := new(MockTradeRequestRepository)
		mockUoW.SetRepositories(nil, nil, nil, nil, mockRequestRepo, nil, nil, nil)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockRequestRepo.On("GetByID", ctx, int64(11)).Return(pendingRequest(), nil)
		mockRequestRepo.On("MarkDecided", ctx, int64(11), models.TradeRequestStatusAccepted, mock.AnythingOfType("time.Time")).Return(false, nil)

		service := NewTradeRequestService(mockFactory)
		_, _, err := service.Decide(ctx, 11, "bob", models.TradeDecisionAccept)
		assert.ErrorIs(t, err, ErrAlreadyDecided)
		mockUoW.AssertNotCalled(t, "Commit")
	})

	t.Run("unknown decision is rejected", func(t *testing.T) {
		mockFactory := new(MockUnitOfWorkFactory)
		service := NewTradeRequestService(mockFactory)

		_, _, err := service.Decide(ctx, 11, "bob", models.TradeDecision("maybe"))
		assert.ErrorIs(t, err, ErrInvalidInput)
		mockFactory.AssertNotCalled(t, "Create")
	})
}

func TestTradeRequestService_WithdrawRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("withdraws pending request", func(t *testing.T) {
		mockUoW := new(MockUnitOfWork)
		mockFactory := new(MockUnitOfWorkFactory)
		mockRequestRepo := new(MockTradeRequestRepository)
		mockUoW.SetRepositories(nil, nil, nil, nil, mockRequestRepo, nil, nil, nil)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockRequestRepo.On("DeletePending", ctx, "alice", "bob", int64(7)).Return(true, nil)

		service := NewTradeRequestService(mockFactory)
		err := service.WithdrawRequest(ctx, "alice", "bob", 7)
		assert.NoError(t, err)
		mockRequestRepo.AssertExpectations(t)
	})

	t.Run("nothing pending reports not found", func(t *testing.T) {
		mockUoW := new(MockUnitOfWork)
		mockFactory := new(MockUnitOfWorkFactory)
		mockRequestRepo := new(MockTradeRequestRepository)
		mockUoW.SetRepositories(nil, nil, nil, nil, mockRequestRepo, nil, nil, nil)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockRequestRepo.On("DeletePending", ctx, "alice", "bob", int64(7)).Return(false, nil)

		service := NewTradeRequestService(mockFactory)
		err := service.WithdrawRequest(ctx, "alice", "bob", 7)
		assert.ErrorIs(t, err, ErrNotFound)
		mockUoW.AssertNotCalled(t, "Commit")
	})
}
