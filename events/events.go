package events

import (
	"context"
	"sync"

	"cardex/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeInventoryChange      EventType = "inventory_change"
	EventTypeUserCreated          EventType = "user_created"
	EventTypeTradeRequestCreated  EventType = "trade_request_created"
	EventTypeTradeRequestDecided  EventType = "trade_request_decided"
	EventTypeTradeSessionComplete EventType = "trade_session_complete"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// InventoryChangeEvent represents a holding quantity change that occurred
type InventoryChangeEvent struct {
	UserID      string
	CardID      int64
	OldQuantity int64
	NewQuantity int64
	ChangeType  models.ChangeType
}

func (e InventoryChangeEvent) Type() EventType {
	return EventTypeInventoryChange
}

// UserCreatedEvent represents a new user's first appearance
type UserCreatedEvent struct {
	UserID      string
	DisplayName string
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// TradeRequestCreatedEvent represents a new pending trade request
type TradeRequestCreatedEvent struct {
	RequestID  int64
	FromUserID string
	ToUserID   string
	CardID     int64
}

func (e TradeRequestCreatedEvent) Type() EventType {
	return EventTypeTradeRequestCreated
}

// TradeRequestDecidedEvent represents an accept or refuse decision
type TradeRequestDecidedEvent struct {
	RequestID int64
	Decision  models.TradeDecision
	SessionID *int64 // set when the decision was accept
}

func (e TradeRequestDecidedEvent) Type() EventType {
	return EventTypeTradeRequestDecided
}

// TradeSessionCompleteEvent represents a finalized hand-off and transfer
type TradeSessionCompleteEvent struct {
	SessionID   int64
	RequesterID string
	OwnerID     string
	CardID      int64
	ConfirmedBy string
}

func (e TradeSessionCompleteEvent) Type() EventType {
	return EventTypeTradeSessionComplete
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Handlers run asynchronously so emitters never block on them
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus stashes events published during a unit of work and
// forwards them to the real bus only after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all stashed events; called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Events outlive the request that produced them, so they are emitted
	// on a fresh context rather than the (possibly expired) request one.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops stashed events; called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
