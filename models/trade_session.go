package models

import (
	"time"
)

// TradeSessionStatus represents the status of a trade session
type TradeSessionStatus string

const (
	TradeSessionStatusWaitingRealLife TradeSessionStatus = "waiting_real_life"
	TradeSessionStatusCompleted       TradeSessionStatus = "completed"
)

// TradeSession coordinates the in-person hand-off created by an accepted
// trade request. Completion moves exactly one unit of CardID from owner
// to requester; there is no path back from completed.
type TradeSession struct {
	ID                   int64              `db:"id"`
	RequestID            int64              `db:"request_id"`
	RequesterID          string             `db:"requester_id"`
	OwnerID              string             `db:"owner_id"`
	CardID               int64              `db:"card_id"`
	Status               TradeSessionStatus `db:"status"`
	ConfirmedByRequester bool               `db:"confirmed_by_requester"`
	ConfirmedByOwner     bool               `db:"confirmed_by_owner"`
	CreatedAt            time.Time          `db:"created_at"`
	CompletedAt          *time.Time         `db:"completed_at"`
}

// IsParticipant checks whether a user is a party to the session.
func (s *TradeSession) IsParticipant(userID string) bool {
	return s.RequesterID == userID || s.OwnerID == userID
}

// IsCompleted reports whether the hand-off has already been finalized.
func (s *TradeSession) IsCompleted() bool {
	return s.Status == TradeSessionStatusCompleted
}
