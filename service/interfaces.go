package service

import (
	"context"
	"time"

	"cardex/events"
	"cardex/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by their identity-provider ID
	GetByID(ctx context.Context, id string) (*models.User, error)

	// Create inserts a new user row
	Create(ctx context.Context, id, displayName string) (*models.User, error)

	// GetAll returns all users with their total card counts
	GetAll(ctx context.Context) ([]*models.User, error)
}

// CardRepository defines the interface for catalog data access
type CardRepository interface {
	// Create inserts a new catalog card
	Create(ctx context.Context, card *models.Card) error

	// GetByID retrieves a card by its ID
	GetByID(ctx context.Context, id int64) (*models.Card, error)

	// GetBySet returns all cards of one set, ordered by collector code
	GetBySet(ctx context.Context, setName string) ([]*models.Card, error)

	// GetAll returns the whole catalog
	GetAll(ctx context.Context) ([]*models.Card, error)

	// GetSetCompletion returns per-set owned-unique counts for a user
	GetSetCompletion(ctx context.Context, userID string) ([]*models.SetCompletion, error)
}

// InventoryRepository defines the interface for holdings data access
type InventoryRepository interface {
	// GetHoldings returns a user's card_id -> quantity map (quantity >= 1 only)
	GetHoldings(ctx context.Context, userID string) (models.Holdings, error)

	// GetQuantity returns the owned quantity for one card (0 when absent)
	GetQuantity(ctx context.Context, userID string, cardID int64) (int64, error)

	// ApplyDelta atomically applies quantity += delta for one (user, card)
	// key and returns the quantities before and after. A delta that would
	// drive the quantity negative fails with ErrInvalidQuantity and leaves
	// the row untouched; a row reaching zero is removed.
	ApplyDelta(ctx context.Context, userID string, cardID int64, delta int64) (before, after int64, err error)

	// GetHoldingDetails returns a user's holdings joined with catalog cards
	GetHoldingDetails(ctx context.Context, userID string) ([]*models.HoldingDetail, error)
}

// InventoryHistoryRepository defines the interface for the audit trail
type InventoryHistoryRepository interface {
	// Record creates a new inventory history entry
	Record(ctx context.Context, history *models.InventoryHistory) error

	// GetByUser returns recent history for a specific user
	GetByUser(ctx context.Context, userID string, limit int) ([]*models.InventoryHistory, error)
}

// TradeRequestRepository defines the interface for trade request data access
type TradeRequestRepository interface {
	// Create inserts a pending request. A concurrent pending row for the
	// same (from, to, card) triple fails with ErrDuplicateRequest.
	Create(ctx context.Context, request *models.TradeRequest) error

	// GetByID retrieves a request by its ID
	GetByID(ctx context.Context, id int64) (*models.TradeRequest, error)

	// DeletePending removes a still-pending request matching the triple.
	// Returns false if no pending row matched.
	DeletePending(ctx context.Context, fromUserID, toUserID string, cardID int64) (bool, error)

	// MarkDecided flips a pending request to accepted or refused. Returns
	// false when the row was no longer pending, without modifying it.
	MarkDecided(ctx context.Context, id int64, status models.TradeRequestStatus, decidedAt time.Time) (bool, error)

	// GetPendingForOwner returns pending requests addressed to a user
	GetPendingForOwner(ctx context.Context, userID string) ([]*models.TradeRequest, error)

	// GetPendingFromRequester returns pending requests sent by a user
	GetPendingFromRequester(ctx context.Context, userID string) ([]*models.TradeRequest, error)
}

// TradeSessionRepository defines the interface for trade session data access
type TradeSessionRepository interface {
	// Create inserts a session for an accepted request. A second session
	// for the same request fails on the request_id unique constraint.
	Create(ctx context.Context, session *models.TradeSession) error

	// GetByID retrieves a session by its ID
	GetByID(ctx context.Context, id int64) (*models.TradeSession, error)

	// MarkCompleted flips a waiting session to completed and records the
	// confirmation flags. Returns false when the session was already
	// completed, without modifying it.
	MarkCompleted(ctx context.Context, id int64, byRequester, byOwner bool, completedAt time.Time) (bool, error)

	// GetByUser returns all sessions a user participates in
	GetByUser(ctx context.Context, userID string) ([]*models.TradeSession, error)
}

// TradeOfferRepository defines the interface for the opt-in offer list
type TradeOfferRepository interface {
	// Add lists a card as available for trade (idempotent)
	Add(ctx context.Context, userID string, cardID int64) error

	// Remove delists a card
	Remove(ctx context.Context, userID string, cardID int64) error

	// GetCardIDsByUser returns the set of card IDs a user has listed
	GetCardIDsByUser(ctx context.Context, userID string) (map[int64]bool, error)
}

// PinnedCardRepository defines the interface for display favorites
type PinnedCardRepository interface {
	// Pin appends a card at the end of the user's pinned list (idempotent)
	Pin(ctx context.Context, userID string, cardID int64) (*models.PinnedCard, error)

	// Unpin removes a card from the pinned list
	Unpin(ctx context.Context, userID string, cardID int64) error

	// GetByUser returns a user's pinned cards ordered by position
	GetByUser(ctx context.Context, userID string) ([]*models.PinnedCard, error)
}

// UserService defines the interface for user operations
type UserService interface {
	// GetOrCreateUser retrieves an existing user or creates a new one
	GetOrCreateUser(ctx context.Context, id, displayName string) (*models.User, error)

	// ListUsers returns all users with their card counts
	ListUsers(ctx context.Context) ([]*models.User, error)

	// GetSetCompletion returns a user's per-set completion progress
	GetSetCompletion(ctx context.Context, userID string) ([]*models.SetCompletion, error)
}

// CardService defines the interface for catalog operations
type CardService interface {
	// CreateCard adds a card to the catalog
	CreateCard(ctx context.Context, card *models.Card) error

	// GetCard retrieves a card by ID
	GetCard(ctx context.Context, id int64) (*models.Card, error)

	// ListCards returns the catalog, optionally filtered by set
	ListCards(ctx context.Context, setName string) ([]*models.Card, error)
}

// InventoryService defines the interface for holdings operations
type InventoryService interface {
	// GetHoldings returns a user's holdings map
	GetHoldings(ctx context.Context, userID string) (models.Holdings, error)

	// GetHoldingDetails returns holdings joined with catalog cards
	GetHoldingDetails(ctx context.Context, userID string) ([]*models.HoldingDetail, error)

	// Adjust applies a direct catalog add/remove and returns the new
	// quantity (0 when the holding was removed)
	Adjust(ctx context.Context, userID string, cardID int64, delta int64) (int64, error)

	// GetHistory returns recent quantity changes for a user
	GetHistory(ctx context.Context, userID string, limit int) ([]*models.InventoryHistory, error)
}

// MatchingService defines the interface for collection comparison
type MatchingService interface {
	// ComputeTradePotential compares two users' holdings and returns the
	// raw potential plus the offer-filtered requestable subset
	ComputeTradePotential(ctx context.Context, userID, otherUserID string) (*models.TradePotentialDetail, error)
}

// TradeRequestService defines the interface for the request ledger
type TradeRequestService interface {
	// CreateRequest records a pending ask for one unit of a card
	CreateRequest(ctx context.Context, fromUserID, toUserID string, cardID int64) (*models.TradeRequest, error)

	// WithdrawRequest removes a still-pending request
	WithdrawRequest(ctx context.Context, fromUserID, toUserID string, cardID int64) error

	// Decide accepts or refuses a pending request. Accepting atomically
	// creates the trade session and returns it.
	Decide(ctx context.Context, requestID int64, actorID string, decision models.TradeDecision) (*models.TradeRequest, *models.TradeSession, error)

	// ListIncoming returns pending requests addressed to a user
	ListIncoming(ctx context.Context, userID string) ([]*models.TradeRequest, error)

	// ListOutgoing returns pending requests sent by a user
	ListOutgoing(ctx context.Context, userID string) ([]*models.TradeRequest, error)
}

// TradeSessionService defines the interface for hand-off coordination
type TradeSessionService interface {
	// Confirm finalizes a session on behalf of a participant and executes
	// the card transfer in the same transaction
	Confirm(ctx context.Context, sessionID int64, actorID string) (*models.TradeSession, error)

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, sessionID int64) (*models.TradeSession, error)

	// ListSessionsByUser returns all sessions a user participates in
	ListSessionsByUser(ctx context.Context, userID string) ([]*models.TradeSession, error)
}

// CollectionService defines the interface for offer lists and pins
type CollectionService interface {
	// SetOffered lists or delists one of the user's cards for trade
	SetOffered(ctx context.Context, userID string, cardID int64, offered bool) error

	// GetOfferedCards returns the card IDs a user has listed for trade
	GetOfferedCards(ctx context.Context, userID string) ([]int64, error)

	// Pin marks a card as a display favorite
	Pin(ctx context.Context, userID string, cardID int64) (*models.PinnedCard, error)

	// Unpin removes a display favorite
	Unpin(ctx context.Context, userID string, cardID int64) error

	// ListPinned returns a user's pinned cards in display order
	ListPinned(ctx context.Context, userID string) ([]*models.PinnedCard, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	CardRepository() CardRepository
	InventoryRepository() InventoryRepository
	InventoryHistoryRepository() InventoryHistoryRepository
	TradeRequestRepository() TradeRequestRepository
	TradeSessionRepository() TradeSessionRepository
	TradeOfferRepository() TradeOfferRepository
	PinnedCardRepository() PinnedCardRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create returns a new, unstarted UnitOfWork
	Create() UnitOfWork
}
