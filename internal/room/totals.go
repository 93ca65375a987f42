package room

import (
	"math"

	"splitroom/internal/domain"
)

// Totals converts a claim ledger into the amount each participant owes.
//
// Each participant's base is the sum of unit price times claimed quantity
// over all lines. The gap between printed total and subtotal is prorated in
// proportion to base contributions; while nobody has claimed anything the
// gap is split evenly across everyone in the room. Amounts are rounded to 3
// decimals, so the grand total reconciles with the receipt's printed total
// within participantCount * 0.001.
func Totals(receipt domain.Receipt, ledger []map[string]float64, participants []string) map[string]float64 {
	base := make(map[string]float64, len(participants))
	for _, p := range participants {
		base[p] = 0
	}

	var baseSum float64
	for i, slot := range ledger {
		if i >= len(receipt.Items) {
			break
		}
		unit := receipt.Items[i].UnitPrice
		for p, qty := range slot {
			base[p] += unit * qty
			baseSum += unit * qty
		}
	}

	fees := receipt.Fees()
	due := make(map[string]float64, len(base))
	for p, b := range base {
		share := 0.0
		if baseSum > 0 {
			share = fees * (b / baseSum)
		} else if len(base) > 0 {
			share = fees / float64(len(base))
		}
		due[p] = round3(b + share)
	}
	return due
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
