package models

import (
	"time"
)

// InventoryEntry is one (user, card) holding. Quantity is always >= 1:
// a row that would reach zero is deleted, so absence means "not owned".
type InventoryEntry struct {
	UserID    string    `db:"user_id"`
	CardID    int64     `db:"card_id"`
	Quantity  int64     `db:"quantity"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Holdings maps card ID to owned quantity for one user. Cards absent from
// the map are owned with quantity zero.
type Holdings map[int64]int64

// HoldingDetail is a holding joined with its catalog card, as surfaced to
// collection views.
type HoldingDetail struct {
	Card     Card  `db:"-"`
	Quantity int64 `db:"quantity"`
}
