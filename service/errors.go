package service

import (
	"errors"
)

// Terminal, caller-visible outcomes. None of these are retried by the
// core: they mean the caller acted on stale state, asked for something
// invalid, or is not a party to the trade.
var (
	// ErrInvalidQuantity is returned when an adjustment would drive a
	// holding negative, or the delta itself is malformed.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidInput is returned for malformed non-quantity input, such
	// as a catalog card with blank fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateRequest is returned when a pending request already
	// exists for the same (requester, owner, card) triple.
	ErrDuplicateRequest = errors.New("duplicate trade request")

	// ErrSelfTrade is returned when a user requests a card from themselves.
	ErrSelfTrade = errors.New("cannot trade with yourself")

	// ErrAlreadyDecided is returned when deciding a request that is no
	// longer pending.
	ErrAlreadyDecided = errors.New("trade request already decided")

	// ErrForbidden is returned when the acting user is not a party to the
	// request or session.
	ErrForbidden = errors.New("not a party to this trade")

	// ErrAlreadyCompleted is returned when confirming a session that has
	// already been finalized.
	ErrAlreadyCompleted = errors.New("trade session already completed")

	// ErrInsufficientQuantity is returned when the transfer-time re-check
	// finds the owner no longer holds the card.
	ErrInsufficientQuantity = errors.New("owner no longer holds this card")

	// ErrNotFound is returned when a referenced user, card, request or
	// session does not exist.
	ErrNotFound = errors.New("not found")
)

// ErrTxConflict wraps transient storage contention (serialization
// failures, deadlocks). It is the only condition the services retry, by
// re-running the whole unit of work.
var ErrTxConflict = errors.New("transaction conflict")

// maxTxRetries bounds re-runs of a conflicted unit of work.
const maxTxRetries = 3

// withTxRetry re-runs fn while it reports storage contention. Domain
// errors pass through untouched on the first occurrence.
func withTxRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, ErrTxConflict) {
			return err
		}
	}
	return err
}
