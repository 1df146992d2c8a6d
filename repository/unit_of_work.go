package repository

import (
	"context"
	"errors"
	"fmt"

	"cardex/database"
	"cardex/events"
	"cardex/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	userRepo         service.UserRepository
	cardRepo         service.CardRepository
	inventoryRepo    service.InventoryRepository
	historyRepo      service.InventoryHistoryRepository
	tradeRequestRepo service.TradeRequestRepository
	tradeSessionRepo service.TradeSessionRepository
	tradeOfferRepo   service.TradeOfferRepository
	pinnedCardRepo   service.PinnedCardRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.userRepo = newUserRepositoryWithTx(tx)
	u.cardRepo = newCardRepositoryWithTx(tx)
	u.inventoryRepo = newInventoryRepositoryWithTx(tx)
	u.historyRepo = newInventoryHistoryRepositoryWithTx(tx)
	u.tradeRequestRepo = newTradeRequestRepositoryWithTx(tx)
	u.tradeSessionRepo = newTradeSessionRepositoryWithTx(tx)
	u.tradeOfferRepo = newTradeOfferRepositoryWithTx(tx)
	u.pinnedCardRepo = newPinnedCardRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction. Serialization and deadlock failures map
// to ErrTxConflict so callers can retry the whole unit.
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
			return service.ErrTxConflict
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// UserRepository returns the user repository for this unit of work
func (u *unitOfWork) UserRepository() service.UserRepository {
	if u.userRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userRepo
}

// CardRepository returns the card repository for this unit of work
func (u *unitOfWork) CardRepository() service.CardRepository {
	if u.cardRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.cardRepo
}

// InventoryRepository returns the inventory repository for this unit of work
func (u *unitOfWork) InventoryRepository() service.InventoryRepository {
	if u.inventoryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.inventoryRepo
}

// InventoryHistoryRepository returns the inventory history repository for this unit of work
func (u *unitOfWork) InventoryHistoryRepository() service.InventoryHistoryRepository {
	if u.historyRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.historyRepo
}

// TradeRequestRepository returns the trade request repository for this unit of work
func (u *unitOfWork) TradeRequestRepository() service.TradeRequestRepository {
	if u.tradeRequestRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.tradeRequestRepo
}

// TradeSessionRepository returns the trade session repository for this unit of work
func (u *unitOfWork) TradeSessionRepository() service.TradeSessionRepository {
	if u.tradeSessionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.tradeSessionRepo
}

// TradeOfferRepository returns the trade offer repository for this unit of work
func (u *unitOfWork) TradeOfferRepository() service.TradeOfferRepository {
	if u.tradeOfferRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.tradeOfferRepo
}

// PinnedCardRepository returns the pinned card repository for this unit of work
func (u *unitOfWork) PinnedCardRepository() service.PinnedCardRepository {
	if u.pinnedCardRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.pinnedCardRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
