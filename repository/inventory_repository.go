package repository

import (
	"context"
	"errors"
	"fmt"

	"cardex/database"
	"cardex/models"
	"cardex/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// InventoryRepository implements the InventoryRepository interface
type InventoryRepository struct {
	q queryable
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *database.DB) *InventoryRepository {
	return &InventoryRepository{q: db.Pool}
}

// newInventoryRepositoryWithTx creates a new inventory repository with a transaction
func newInventoryRepositoryWithTx(tx queryable) *InventoryRepository {
	return &InventoryRepository{q: tx}
}

// GetHoldings returns a user's card_id -> quantity map. Only owned cards
// appear; absent cards are implicitly zero.
func (r *InventoryRepository) GetHoldings(ctx context.Context, userID string) (models.Holdings, error) {
	query := `
		SELECT card_id, quantity
		FROM user_cards
		WHERE user_id = $1 AND quantity > 0
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get holdings for user %s: %w", userID, err)
	}
	defer rows.Close()

	holdings := make(models.Holdings)
	for rows.Next() {
		var cardID, quantity int64
		if err := rows.Scan(&cardID, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings[cardID] = quantity
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	return holdings, nil
}

// GetQuantity returns the owned quantity for one card (0 when absent)
func (r *InventoryRepository) GetQuantity(ctx context.Context, userID string, cardID int64) (int64, error) {
	query := `
		SELECT quantity
		FROM user_cards
		WHERE user_id = $1 AND card_id = $2 AND quantity > 0
	`

	var quantity int64
	err := r.q.QueryRow(ctx, query, userID, cardID).Scan(&quantity)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get quantity for user %s card %d: %w", userID, cardID, err)
	}

	return quantity, nil
}

// ApplyDelta atomically applies quantity += delta for one (user, card) key.
// Concurrent deltas compose: the change is a single guarded
// read-modify-write statement, never a read followed by an overwrite.
func (r *InventoryRepository) ApplyDelta(ctx context.Context, userID string, cardID int64, delta int64) (int64, int64, error) {
	if delta == 0 {
		return 0, 0, service.ErrInvalidQuantity
	}

	var after int64
	if delta > 0 {
		query := `
			INSERT INTO user_cards (user_id, card_id, quantity)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, card_id)
			DO UPDATE SET quantity = user_cards.quantity + EXCLUDED.quantity, updated_at = NOW()
			RETURNING quantity
		`
		err := r.q.QueryRow(ctx, query, userID, cardID, delta).Scan(&after)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return 0, 0, fmt.Errorf("user %s or card %d: %w", userID, cardID, service.ErrNotFound)
			}
			return 0, 0, fmt.Errorf("failed to add to holding for user %s card %d: %w", userID, cardID, err)
		}
		return after - delta, after, nil
	}

	// The WHERE guard rejects any decrement that would go negative,
	// covering the missing-row case as well (no row, nothing matches).
	query := `
		UPDATE user_cards
		SET quantity = quantity + $3, updated_at = NOW()
		WHERE user_id = $1 AND card_id = $2 AND quantity + $3 >= 0
		RETURNING quantity
	`
	err := r.q.QueryRow(ctx, query, userID, cardID, delta).Scan(&after)
	if err == pgx.ErrNoRows {
		return 0, 0, service.ErrInvalidQuantity
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to deduct from holding for user %s card %d: %w", userID, cardID, err)
	}

	// A holding at zero is "not owned", not "owns zero".
	if after == 0 {
		cleanup := `DELETE FROM user_cards WHERE user_id = $1 AND card_id = $2 AND quantity = 0`
		if _, err := r.q.Exec(ctx, cleanup, userID, cardID); err != nil {
			return 0, 0, fmt.Errorf("failed to remove empty holding for user %s card %d: %w", userID, cardID, err)
		}
	}

	return after - delta, after, nil
}

// GetHoldingDetails returns a user's holdings joined with catalog cards,
// ordered by set and collector code
func (r *InventoryRepository) GetHoldingDetails(ctx context.Context, userID string) ([]*models.HoldingDetail, error) {
	query := `
		SELECT
			c.id, c.code, c.name, c.set_name, c.rarity, c.color, c.image_url, c.created_at,
			uc.quantity
		FROM user_cards uc
		JOIN cards c ON c.id = uc.card_id
		WHERE uc.user_id = $1 AND uc.quantity > 0
		ORDER BY c.set_name, c.code
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get holding details for user %s: %w", userID, err)
	}
	defer rows.Close()

	var details []*models.HoldingDetail
	for rows.Next() {
		var d models.HoldingDetail
		err := rows.Scan(
			&d.Card.ID,
			&d.Card.Code,
			&d.Card.Name,
			&d.Card.SetName,
			&d.Card.Rarity,
			&d.Card.Color,
			&d.Card.ImageURL,
			&d.Card.CreatedAt,
			&d.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding detail: %w", err)
		}
		details = append(details, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holding details: %w", err)
	}

	return details, nil
}
