package models

import (
	"time"
)

// PinnedCard is a display favorite. Position orders the pinned cards
// ahead of the rest of the collection; new pins append at the end.
type PinnedCard struct {
	UserID    string    `db:"user_id"`
	CardID    int64     `db:"card_id"`
	Position  int       `db:"position"`
	CreatedAt time.Time `db:"created_at"`
}
