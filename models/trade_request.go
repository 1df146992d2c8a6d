package models

import (
	"time"
)

// TradeRequestStatus represents the status of a trade request
type TradeRequestStatus string

const (
	TradeRequestStatusPending  TradeRequestStatus = "pending"
	TradeRequestStatusAccepted TradeRequestStatus = "accepted"
	TradeRequestStatusRefused  TradeRequestStatus = "refused"
)

// TradeRequest is a one-directional ask: FromUserID wants one unit of
// CardID that ToUserID owns. At most one pending row may exist per
// (from, to, card) triple; refused rows stay as history.
type TradeRequest struct {
	ID         int64              `db:"id"`
	FromUserID string             `db:"from_user_id"`
	ToUserID   string             `db:"to_user_id"`
	CardID     int64              `db:"card_id"`
	Status     TradeRequestStatus `db:"status"`
	CreatedAt  time.Time          `db:"created_at"`
	DecidedAt  *time.Time         `db:"decided_at"`
}

// IsPending reports whether the request can still be withdrawn or decided.
func (r *TradeRequest) IsPending() bool {
	return r.Status == TradeRequestStatusPending
}

// CanBeDecidedBy reports whether the given user is the owner the request
// is addressed to.
func (r *TradeRequest) CanBeDecidedBy(userID string) bool {
	return r.ToUserID == userID
}

// TradeDecision is the owner's answer to a pending request.
type TradeDecision string

const (
	TradeDecisionAccept TradeDecision = "accept"
	TradeDecisionRefuse TradeDecision = "refuse"
)

// Valid reports whether the decision is one of the two allowed verbs.
func (d TradeDecision) Valid() bool {
	return d == TradeDecisionAccept || d == TradeDecisionRefuse
}
