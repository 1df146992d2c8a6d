package repository

import (
	"context"
	"errors"
	"fmt"

	"cardex/database"
	"cardex/models"
	"cardex/service"
	"github.com/jackc/pgx/v5/pgconn"
)

// PinnedCardRepository implements the PinnedCardRepository interface
type PinnedCardRepository struct {
	q queryable
}

// NewPinnedCardRepository creates a new pinned card repository
func NewPinnedCardRepository(db *database.DB) *PinnedCardRepository {
	return &PinnedCardRepository{q: db.Pool}
}

// newPinnedCardRepositoryWithTx creates a new pinned card repository with a transaction
func newPinnedCardRepositoryWithTx(tx queryable) *PinnedCardRepository {
	return &PinnedCardRepository{q: tx}
}

// Pin appends a card to the end of a user's pin list. Re-pinning an
// already-pinned card keeps its existing position.
func (r *PinnedCardRepository) Pin(ctx context.Context, userID string, cardID int64) (*models.PinnedCard, error) {
	query := `
		INSERT INTO user_pinned_cards (user_id, card_id, position)
		VALUES (
			$1, $2,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM user_pinned_cards WHERE user_id = $1)
		)
		ON CONFLICT (user_id, card_id) DO UPDATE SET position = user_pinned_cards.position
		RETURNING user_id, card_id, position, created_at
	`

	var pin models.PinnedCard
	err := r.q.QueryRow(ctx, query, userID, cardID).Scan(
		&pin.UserID,
		&pin.CardID,
		&pin.Position,
		&pin.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, fmt.Errorf("user %s or card %d: %w", userID, cardID, service.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to pin card %d for user %s: %w", cardID, userID, err)
	}

	return &pin, nil
}

// Unpin removes a card from a user's pin list. Not-pinned is a no-op.
func (r *PinnedCardRepository) Unpin(ctx context.Context, userID string, cardID int64) error {
	query := `DELETE FROM user_pinned_cards WHERE user_id = $1 AND card_id = $2`

	if _, err := r.q.Exec(ctx, query, userID, cardID); err != nil {
		return fmt.Errorf("failed to unpin card %d for user %s: %w", cardID, userID, err)
	}

	return nil
}

// GetByUser returns a user's pinned cards in pin order
func (r *PinnedCardRepository) GetByUser(ctx context.Context, userID string) ([]*models.PinnedCard, error) {
	query := `
		SELECT user_id, card_id, position, created_at
		FROM user_pinned_cards
		WHERE user_id = $1
		ORDER BY position
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pinned cards for user %s: %w", userID, err)
	}
	defer rows.Close()

	var pins []*models.PinnedCard
	for rows.Next() {
		var pin models.PinnedCard
		if err := rows.Scan(&pin.UserID, &pin.CardID, &pin.Position, &pin.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pinned card: %w", err)
		}
		pins = append(pins, &pin)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pinned cards: %w", err)
	}

	return pins, nil
}
