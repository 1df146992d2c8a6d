package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cardex/database"
	"cardex/models"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(id, displayName string) *models.User {
	now := time.Now()
	return &models.User{
		ID:          id,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CreateTestCard creates a catalog card with default values
func CreateTestCard(setName, code, name string) *models.Card {
	return &models.Card{
		Code:      code,
		Name:      name,
		SetName:   setName,
		CreatedAt: time.Now(),
	}
}

// CreateTestHistory creates an inventory history entry with default values
func CreateTestHistory(userID string, cardID int64, changeType models.ChangeType) *models.InventoryHistory {
	return &models.InventoryHistory{
		UserID:         userID,
		CardID:         cardID,
		QuantityBefore: 0,
		QuantityAfter:  1,
		ChangeAmount:   1,
		ChangeType:     changeType,
		ChangeMetadata: map[string]any{
			"test": true,
		},
		CreatedAt: time.Now(),
	}
}

// SeedUser inserts a user row directly, bypassing the repositories
func SeedUser(t *testing.T, db *database.DB, id, displayName string) {
	t.Helper()
	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		_, err := tx.Exec(context.Background(),
			`INSERT INTO users (id, display_name) VALUES ($1, $2)`, id, displayName)
		return err
	})
	require.NoError(t, err)
}

// SeedCard inserts a catalog card directly and returns its generated ID
func SeedCard(t *testing.T, db *database.DB, setName, code, name string) int64 {
	t.Helper()
	var id int64
	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		return tx.QueryRow(context.Background(),
			`INSERT INTO cards (code, name, set_name) VALUES ($1, $2, $3) RETURNING id`,
			code, name, setName).Scan(&id)
	})
	require.NoError(t, err)
	return id
}

// SeedHolding sets a user's quantity for a card directly
func SeedHolding(t *testing.T, db *database.DB, userID string, cardID, quantity int64) {
	t.Helper()
	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		_, err := tx.Exec(context.Background(),
			`INSERT INTO user_cards (user_id, card_id, quantity) VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, card_id) DO UPDATE SET quantity = EXCLUDED.quantity`,
			userID, cardID, quantity)
		return err
	})
	require.NoError(t, err)
}

// SeedCollection seeds a user and n distinct cards at the given quantity,
// returning the card IDs
func SeedCollection(t *testing.T, db *database.DB, userID string, n int, quantity int64) []int64 {
	t.Helper()
	SeedUser(t, db, userID, userID)
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		cardID := SeedCard(t, db, "test-set", fmt.Sprintf("%s-%03d", userID, i+1), fmt.Sprintf("Card %d", i+1))
		SeedHolding(t, db, userID, cardID, quantity)
		ids = append(ids, cardID)
	}
	return ids
}
