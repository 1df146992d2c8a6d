package service

import (
	"context"
	"testing"

	"cardex/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestInventoryService_Adjust(t *testing.T) {
	ctx := context.Background()

	t.Run("zero delta is rejected before any transaction", func(t *testing.T) {
		mockFactory := new(MockUnitOfWorkFactory)
		service := NewInventoryService(mockFactory)

		_, err := service.Adjust(ctx, "alice", 7, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		mockFactory.AssertNotCalled(t, "Create")
	})

	t.Run("positive delta records catalog add", func(t *testing.T) {
		mockUoW := new(MockUnitOfWork)
		mockFactory := new(MockUnitOfWorkFactory)
		mockInventoryRepo := new(MockInventoryRepository)
		mockHistoryRepo := new(MockInventoryHistoryRepository)
		mockPublisher := new(MockEventPublisher)
		mockUoW.SetRepositories(nil, nil, mockInventoryRepo, mockHistoryRepo, nil, nil, nil, nil)
		mockUoW.SetEventBus(mockPublisher)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockInventoryRepo.On("ApplyDelta", ctx, "alice", int64(7), int64(2)).Return(int64(1), int64(3), nil)
		mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.InventoryHistory) bool {
			return h.UserID == "alice" &&
				h.ChangeType == models.ChangeTypeCatalogAdd &&
				h.QuantityBefore == 1 && h.QuantityAfter == 3 && h.ChangeAmount == 2
		})).Return(nil)
		mockPublisher.On("Publish", mock.AnythingOfType("events.InventoryChangeEvent")).Return()

		service := NewInventoryService(mockFactory)
		newQuantity, err := service.Adjust(ctx, "alice", 7, 2)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), newQuantity)
		mockHistoryRepo.AssertExpectations(t)
		mockPublisher.AssertExpectations(t)
	})

	t.Run("negative delta records catalog remove", func(t *testing.T) {
		mockUoW := new(MockUnitOfWork)
		mockFactory := new(MockUnitOfWorkFactory)
		mockInventoryRepo := new(MockInventoryRepository)
		mockHistoryRepo := new(MockInventoryHistoryRepository)
		mockUoW.SetRepositories(nil, nil, mockInventoryRepo, mockHistoryRepo, nil, nil, nil, nil)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockInventoryRepo.On("ApplyDelta", ctx, "alice", int64(7), int64(-1)).Return(int64(1), int64(0), nil)
		mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.InventoryHistory) bool {
			return h.ChangeType == models.ChangeTypeCatalogRemove && h.QuantityAfter == 0
		})).Return(nil)

		service := NewInventoryService(mockFactory)
		newQuantity, err := service.Adjust(ctx, "alice", 7, -1)

		assert.NoError(t, err)
		assert.Equal(t, int64(0), newQuantity)
	})

	t.Run("underflow surfaces without history", func(t *testing.T) {
		mockUoW := new(MockUnitOfWork)
		mockFactory := new(MockUnitOfWorkFactory)
		mockInventoryRepo := new(MockInventoryRepository)
		mockHistoryRepo := new(MockInventoryHistoryRepository)
		mockUoW.SetRepositories(nil, nil, mockInventoryRepo, mockHistoryRepo, nil, nil, nil, nil)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockInventoryRepo.On("ApplyDelta", ctx, "alice", int64(7), int64(-5)).Return(int64(0), int64(0), ErrInvalidQuantity)

		service := NewInventoryService(mockFactory)
		_, err := service.Adjust(ctx, "alice", 7, -5)

		assert.ErrorIs(t, err, ErrInvalidQuantity)
		mockHistoryRepo.AssertNotCalled(t, "Record")
		mockUoW.AssertNotCalled(t, "Commit")
	})
}

func TestMatchingService_ComputeTradePotential(t *testing.T) {
	ctx := context.Background()

	t.Run("self comparison is rejected", func(t *testing.T) {
		mockFactory := new(MockUnitOfWorkFactory)
		service := NewMatchingService(mockFactory)

		_, err := service.ComputeTradePotential(ctx, "alice", "alice")
		assert.ErrorIs(t, err, ErrSelfTrade)
	})

	t.Run("requestable is the offer-filtered want list", func(t *testing.T) {
		mockUoW := new(MockUnitOfWork)
		mockFactory := new(MockUnitOfWorkFactory)
		mockUserRepo := new(MockUserRepository)
		mockInventoryRepo := new(MockInventoryRepository)
		mockOfferRepo := new(MockTradeOfferRepository)
		mockUoW.SetRepositories(mockUserRepo, nil, mockInventoryRepo, nil, nil, nil, mockOfferRepo, nil)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByID", ctx, "bob").Return(&models.User{ID: "bob"}, nil)
		mockInventoryRepo.On("GetHoldings", ctx, "alice").Return(models.Holdings{1: 2}, nil)
		mockInventoryRepo.On("GetHoldings", ctx, "bob").Return(models.Holdings{2: 3, 3: 2}, nil)
		mockOfferRepo.On("GetCardIDsByUser", ctx, "bob").Return(map[int64]bool{3: true}, nil)

		service := NewMatchingService(mockFactory)
		detail, err := service.ComputeTradePotential(ctx, "alice", "bob")

		assert.NoError(t, err)
		assert.Equal(t, []int64{2, 3}, detail.WantFromThem)
		assert.Equal(t, []int64{1}, detail.CanOffer)
		assert.Equal(t, []int64{3}, detail.Requestable)
	})

	t.Run("unknown counterpart reports not found", func(t *testing.T) {
		mockUoW := new(MockUnitOfWork)
		mockFactory := new(MockUnitOfWorkFactory)
		mockUserRepo := new(MockUserRepository)
		mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil, nil, nil, nil)

		mockFactory.On("Create").Return(mockUoW)
		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockUserRepo.On("GetByID", ctx, "ghost").Return(nil, nil)

		service := NewMatchingService(mockFactory)
		_, err := service.ComputeTradePotential(ctx, "alice", "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
