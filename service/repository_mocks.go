package service

import (
	"context"
	"time"

	"cardex/events"
	"cardex/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, id, displayName string) (*models.User, error) {
	args := m.Called(ctx, id, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockCardRepository is a mock implementation of CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) Create(ctx context.Context, card *models.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardRepository) GetByID(ctx context.Context, id int64) (*models.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardRepository) GetBySet(ctx context.Context, setName string) ([]*models.Card, error) {
	args := m.Called(ctx, setName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Card), args.Error(1)
}

func (m *MockCardRepository) GetAll(ctx context.Context) ([]*models.Card, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Card), args.Error(1)
}

func (m *MockCardRepository) GetSetCompletion(ctx context.Context, userID string) ([]*models.SetCompletion, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SetCompletion), args.Error(1)
}

// MockInventoryRepository is a mock implementation of InventoryRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) GetHoldings(ctx context.Context, userID string) (models.Holdings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Holdings), args.Error(1)
}

func (m *MockInventoryRepository) GetQuantity(ctx context.Context, userID string, cardID int64) (int64, error) {
	args := m.Called(ctx, userID, cardID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInventoryRepository) ApplyDelta(ctx context.Context, userID string, cardID int64, delta int64) (int64, int64, error) {
	args := m.Called(ctx, userID, cardID, delta)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockInventoryRepository) GetHoldingDetails(ctx context.Context, userID string) ([]*models.HoldingDetail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.HoldingDetail), args.Error(1)
}

// MockInventoryHistoryRepository is a mock implementation of InventoryHistoryRepository
type MockInventoryHistoryRepository struct {
	mock.Mock
}

func (m *MockInventoryHistoryRepository) Record(ctx context.Context, history *models.InventoryHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockInventoryHistoryRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*models.InventoryHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryHistory), args.Error(1)
}

// MockTradeRequestRepository is a mock implementation of TradeRequestRepository
type MockTradeRequestRepository struct {
	mock.Mock
}

func (m *MockTradeRequestRepository) Create(ctx context.Context, request *models.TradeRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockTradeRequestRepository) GetByID(ctx context.Context, id int64) (*models.TradeRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TradeRequest), args.Error(1)
}

func (m *MockTradeRequestRepository) DeletePending(ctx context.Context, fromUserID, toUserID string, cardID int64) (bool, error) {
	args := m.Called(ctx, fromUserID, toUserID, cardID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTradeRequestRepository) MarkDecided(ctx context.Context, id int64, status models.TradeRequestStatus, decidedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, status, decidedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockTradeRequestRepository) GetPendingForOwner(ctx context.Context, userID string) ([]*models.TradeRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TradeRequest), args.Error(1)
}

func (m *MockTradeRequestRepository) GetPendingFromRequester(ctx context.Context, userID string) ([]*models.TradeRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TradeRequest), args.Error(1)
}

// MockTradeSessionRepository is a mock implementation of TradeSessionRepository
type MockTradeSessionRepository struct {
	mock.Mock
}

func (m *MockTradeSessionRepository) Create(ctx context.Context, session *models.TradeSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockTradeSessionRepository) GetByID(ctx context.Context, id int64) (*models.TradeSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TradeSession), args.Error(1)
}

func (m *MockTradeSessionRepository) MarkCompleted(ctx context.Context, id int64, byRequester, byOwner bool, completedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, byRequester, byOwner, completedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockTradeSessionRepository) GetByUser(ctx context.Context, userID string) ([]*models.TradeSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TradeSession), args.Error(1)
}

// MockTradeOfferRepository is a mock implementation of TradeOfferRepository
type MockTradeOfferRepository struct {
	mock.Mock
}

func (m *MockTradeOfferRepository) Add(ctx context.Context, userID string, cardID int64) error {
	args := m.Called(ctx, userID, cardID)
	return args.Error(0)
}

func (m *MockTradeOfferRepository) Remove(ctx context.Context, userID string, cardID int64) error {
	args := m.Called(ctx, userID, cardID)
	return args.Error(0)
}

func (m *MockTradeOfferRepository) GetCardIDsByUser(ctx context.Context, userID string) (map[int64]bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]bool), args.Error(1)
}

// MockPinnedCardRepository is a mock implementation of PinnedCardRepository
type MockPinnedCardRepository struct {
	mock.Mock
}

func (m *MockPinnedCardRepository) Pin(ctx context.Context, userID string, cardID int64) (*models.PinnedCard, error) {
	args := m.Called(ctx, userID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PinnedCard), args.Error(1)
}

func (m *MockPinnedCardRepository) Unpin(ctx context.Context, userID string, cardID int64) error {
	args := m.Called(ctx, userID, cardID)
	return args.Error(0)
}

func (m *MockPinnedCardRepository) GetByUser(ctx context.Context, userID string) ([]*models.PinnedCard, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PinnedCard), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// noopPublisher swallows events for tests that do not assert on them
type noopPublisher struct{}

func (noopPublisher) Publish(event events.Event) {}

// MockUnitOfWork is a mock implementation of UnitOfWork. Begin, Commit and
// Rollback go through the mock expectations; repository getters hand back
// whatever SetRepositories installed.
type MockUnitOfWork struct {
	mock.Mock

	userRepo         UserRepository
	cardRepo         CardRepository
	inventoryRepo    InventoryRepository
	historyRepo      InventoryHistoryRepository
	tradeRequestRepo TradeRequestRepository
	tradeSessionRepo TradeSessionRepository
	tradeOfferRepo   TradeOfferRepository
	pinnedCardRepo   PinnedCardRepository
	eventBus         EventPublisher
}

// SetRepositories installs the repositories the test cares about; nil is
// fine for repositories the code under test never touches.
func (m *MockUnitOfWork) SetRepositories(
	userRepo UserRepository,
	cardRepo CardRepository,
	inventoryRepo InventoryRepository,
	historyRepo InventoryHistoryRepository,
	tradeRequestRepo TradeRequestRepository,
	tradeSessionRepo TradeSessionRepository,
	tradeOfferRepo TradeOfferRepository,
	pinnedCardRepo PinnedCardRepository,
) {
	m.userRepo = userRepo
	m.cardRepo = cardRepo
	m.inventoryRepo = inventoryRepo
	m.historyRepo = historyRepo
	m.tradeRequestRepo = tradeRequestRepo
	m.tradeSessionRepo = tradeSessionRepo
	m.tradeOfferRepo = tradeOfferRepo
	m.pinnedCardRepo = pinnedCardRepo
}

// SetEventBus installs an event publisher; tests that skip this get a
// no-op publisher.
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) CardRepository() CardRepository {
	return m.cardRepo
}

func (m *MockUnitOfWork) InventoryRepository() InventoryRepository {
	return m.inventoryRepo
}

func (m *MockUnitOfWork) InventoryHistoryRepository() InventoryHistoryRepository {
	return m.historyRepo
}

func (m *MockUnitOfWork) TradeRequestRepository() TradeRequestRepository {
	return m.tradeRequestRepo
}

func (m *MockUnitOfWork) TradeSessionRepository() TradeSessionRepository {
	return m.tradeSessionRepo
}

func (m *MockUnitOfWork) TradeOfferRepository() TradeOfferRepository {
	return m.tradeOfferRepo
}

func (m *MockUnitOfWork) PinnedCardRepository() PinnedCardRepository {
	return m.pinnedCardRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		return noopPublisher{}
	}
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
