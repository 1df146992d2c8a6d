package models

import (
	"time"
)

// TradeOffer marks a card a user has explicitly listed as available for
// trade. Holding a duplicate does not imply listing it; only listed
// duplicates are surfaced as requestable.
type TradeOffer struct {
	UserID    string    `db:"user_id"`
	CardID    int64     `db:"card_id"`
	CreatedAt time.Time `db:"created_at"`
}
