package models

import (
	"time"
)

// User mirrors an identity-provider account that owns a collection.
// The ID is the authenticated subject supplied by the provider; this
// core never mints identities of its own.
type User struct {
	ID          string    `db:"id"`
	DisplayName string    `db:"display_name"`
	CardCount   int64     `db:"-"` // Calculated field: total quantity across holdings
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
