package repository

import (
	"context"
	"errors"
	"fmt"

	"cardex/database"
	"cardex/service"
	"github.com/jackc/pgx/v5/pgconn"
)

// TradeOfferRepository implements the TradeOfferRepository interface
type TradeOfferRepository struct {
	q queryable
}

// NewTradeOfferRepository creates a new trade offer repository
func NewTradeOfferRepository(db *database.DB) *TradeOfferRepository {
	return &TradeOfferRepository{q: db.Pool}
}

// newTradeOfferRepositoryWithTx creates a new trade offer repository with a transaction
func newTradeOfferRepositoryWithTx(tx queryable) *TradeOfferRepository {
	return &TradeOfferRepository{q: tx}
}

// Add marks a card as offered by a user. Already-offered is a no-op.
func (r *TradeOfferRepository) Add(ctx context.Context, userID string, cardID int64) error {
	query := `
		INSERT INTO trade_offers (user_id, card_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, card_id) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, userID, cardID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("user %s or card %d: %w", userID, cardID, service.ErrNotFound)
		}
		return fmt.Errorf("failed to add trade offer for user %s card %d: %w", userID, cardID, err)
	}

	return nil
}

// Remove unmarks a card as offered. Not-offered is a no-op.
func (r *TradeOfferRepository) Remove(ctx context.Context, userID string, cardID int64) error {
	query := `DELETE FROM trade_offers WHERE user_id = $1 AND card_id = $2`

	if _, err := r.q.Exec(ctx, query, userID, cardID); err != nil {
		return fmt.Errorf("failed to remove trade offer for user %s card %d: %w", userID, cardID, err)
	}

	return nil
}

// GetCardIDsByUser returns the set of card IDs a user has marked as offered
func (r *TradeOfferRepository) GetCardIDsByUser(ctx context.Context, userID string) (map[int64]bool, error) {
	query := `SELECT card_id FROM trade_offers WHERE user_id = $1`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trade offers for user %s: %w", userID, err)
	}
	defer rows.Close()

	offered := make(map[int64]bool)
	for rows.Next() {
		var cardID int64
		if err := rows.Scan(&cardID); err != nil {
			return nil, fmt.Errorf("failed to scan trade offer: %w", err)
		}
		offered[cardID] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trade offers: %w", err)
	}

	return offered, nil
}
