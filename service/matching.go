package service

import (
	"sort"

	"cardex/models"
)

// ComputeTradePotential compares two holdings snapshots and returns the
// viable trade directions between them. A card is only suggested when the
// giving side holds a duplicate (quantity > 1), so a suggestion never
// asks anyone to part with their only copy:
//
//	WantFromThem: they hold a duplicate, the caller owns none.
//	CanOffer:     the caller holds a duplicate, they own none.
//
// Pure function of the two snapshots; safe to call with stale data. The
// transfer re-validates quantities at commit time.
func ComputeTradePotential(mine, theirs models.Holdings) models.TradePotential {
	var potential models.TradePotential

	for cardID, qty := range theirs {
		if qty > 1 && mine[cardID] == 0 {
			potential.WantFromThem = append(potential.WantFromThem, cardID)
		}
	}
	for cardID, qty := range mine {
		if qty > 1 && theirs[cardID] == 0 {
			potential.CanOffer = append(potential.CanOffer, cardID)
		}
	}

	sortCardIDs(potential.WantFromThem)
	sortCardIDs(potential.CanOffer)

	return potential
}

// FilterByOffers restricts a card list to those present in the offer
// list, preserving order.
func FilterByOffers(cardIDs []int64, offered map[int64]bool) []int64 {
	filtered := make([]int64, 0, len(cardIDs))
	for _, id := range cardIDs {
		if offered[id] {
			filtered = append(filtered, id)
		}
	}
	return filtered
}

// sortCardIDs makes the potential sets deterministic for callers and tests.
func sortCardIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
