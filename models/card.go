package models

import (
	"time"
)

// Card is catalog reference data. Rows are seeded from the card sets and
// never mutated by trading.
type Card struct {
	ID        int64     `db:"id"`
	Code      string    `db:"code"`
	Name      string    `db:"name"`
	SetName   string    `db:"set_name"`
	Rarity    *string   `db:"rarity"`
	Color     *string   `db:"color"`
	ImageURL  *string   `db:"image_url"`
	CreatedAt time.Time `db:"created_at"`
}

// SetCompletion is a user's progress within one card set.
type SetCompletion struct {
	SetName     string `db:"set_name"`
	TotalCards  int64  `db:"total_cards"`
	OwnedUnique int64  `db:"owned_unique"`
}

// Percent returns the completion percentage, rounded down.
func (c *SetCompletion) Percent() int64 {
	if c.TotalCards == 0 {
		return 0
	}
	return c.OwnedUnique * 100 / c.TotalCards
}
