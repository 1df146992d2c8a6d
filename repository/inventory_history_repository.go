package repository

import (
	"context"
	"fmt"

	"cardex/database"
	"cardex/models"
)

// InventoryHistoryRepository implements the InventoryHistoryRepository interface
type InventoryHistoryRepository struct {
	q queryable
}

// NewInventoryHistoryRepository creates a new inventory history repository
func NewInventoryHistoryRepository(db *database.DB) *InventoryHistoryRepository {
	return &InventoryHistoryRepository{q: db.Pool}
}

// newInventoryHistoryRepositoryWithTx creates a new inventory history repository with a transaction
func newInventoryHistoryRepositoryWithTx(tx queryable) *InventoryHistoryRepository {
	return &InventoryHistoryRepository{q: tx}
}

// Record creates a new inventory history entry
func (r *InventoryHistoryRepository) Record(ctx context.Context, history *models.InventoryHistory) error {
	query := `
		INSERT INTO inventory_history (
			user_id, card_id, quantity_before, quantity_after, change_amount,
			change_type, change_metadata, related_id, related_type
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		history.UserID,
		history.CardID,
		history.QuantityBefore,
		history.QuantityAfter,
		history.ChangeAmount,
		history.ChangeType,
		history.ChangeMetadata,
		history.RelatedID,
		history.RelatedType,
	).Scan(&history.ID, &history.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record inventory history: %w", err)
	}

	return nil
}

// GetByUser returns the most recent history entries for a user
func (r *InventoryHistoryRepository) GetByUser(ctx context.Context, userID string, limit int) ([]*models.InventoryHistory, error) {
	query := `
		SELECT id, user_id, card_id, quantity_before, quantity_after, change_amount,
		       change_type, change_metadata, related_id, related_type, created_at
		FROM inventory_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory history for user %s: %w", userID, err)
	}
	defer rows.Close()

	var entries []*models.InventoryHistory
	for rows.Next() {
		var entry models.InventoryHistory
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.CardID,
			&entry.QuantityBefore,
			&entry.QuantityAfter,
			&entry.ChangeAmount,
			&entry.ChangeType,
			&entry.ChangeMetadata,
			&entry.RelatedID,
			&entry.RelatedType,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory history entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inventory history: %w", err)
	}

	return entries, nil
}
