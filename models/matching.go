package models

// TradePotential is the raw result of comparing two users' holdings.
// WantFromThem lists cards the other party holds in duplicate that the
// caller lacks entirely; CanOffer is the symmetric set. Both are computed
// from snapshots and carry no transactional guarantee.
type TradePotential struct {
	WantFromThem []int64
	CanOffer     []int64
}

// TradePotentialDetail is the potential plus the requestable subset:
// WantFromThem restricted to cards the other party has listed for trade.
type TradePotentialDetail struct {
	TradePotential
	Requestable []int64
}
