package models

import (
	"time"
)

// ChangeType represents the kind of quantity change
type ChangeType string

const (
	ChangeTypeCatalogAdd    ChangeType = "catalog_add"
	ChangeTypeCatalogRemove ChangeType = "catalog_remove"
	ChangeTypeTradeIn       ChangeType = "trade_in"
	ChangeTypeTradeOut      ChangeType = "trade_out"
)

// RelatedType represents what type of entity the related_id refers to
type RelatedType string

const (
	RelatedTypeTradeSession RelatedType = "trade_session"
)

// InventoryHistory is an audit row for one quantity change of one
// (user, card) holding. Every successful adjustment and both legs of
// every trade transfer append a row in the same transaction.
type InventoryHistory struct {
	ID             int64          `db:"id"`
	UserID         string         `db:"user_id"`
	CardID         int64          `db:"card_id"`
	QuantityBefore int64          `db:"quantity_before"`
	QuantityAfter  int64          `db:"quantity_after"`
	ChangeAmount   int64          `db:"change_amount"`
	ChangeType     ChangeType     `db:"change_type"`
	ChangeMetadata map[string]any `db:"change_metadata"`
	RelatedID      *int64         `db:"related_id"`
	RelatedType    *RelatedType   `db:"related_type"`
	CreatedAt      time.Time      `db:"created_at"`
}
