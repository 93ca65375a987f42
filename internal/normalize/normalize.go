// Package normalize reconciles ambiguous parsed receipt fields into the
// canonical Receipt value the rest of the service works with. OCR output is
// messy: the "price" column may hold unit prices on one receipt and line
// totals on the next, and any of subtotal/tax/total may be missing.
// Normalization is best-effort and never fails; when the heuristics cannot
// decide, the literal parsed values are kept unscaled.
package normalize

import (
	"math"
	"strings"

	"splitroom/internal/domain"
)

// ParsedItem mirrors one line of the parsing service's output. UnitPrice,
// when present, is authoritative; otherwise Price may be a unit price or a
// line total.
type ParsedItem struct {
	Name      string   `json:"name"`
	Price     *float64 `json:"price"`
	Quantity  *float64 `json:"quantity"`
	UnitPrice *float64 `json:"unit_price"`
}

// ParsedReceipt is the raw result of the parsing service.
type ParsedReceipt struct {
	Items    []ParsedItem `json:"items"`
	Subtotal *float64     `json:"subtotal"`
	Tax      *float64     `json:"tax"`
	Total    *float64     `json:"total"`
}

// subtotalDriftTolerance is how far the recomputed subtotal may deviate from
// the printed one before every unit price gets uniformly rescaled to match.
const subtotalDriftTolerance = 0.02

// Receipt converts raw parsed fields into a canonical domain.Receipt.
//
// Interpretation of the price column: an explicit unit_price always wins.
// Otherwise both readings of "price" are summed across the receipt and the
// one closer to the printed subtotal is chosen; with no printed subtotal the
// smaller total wins, which guards against double-counting quantities. An
// exact tie resolves to line totals for multi-quantity lines.
func Receipt(parsed ParsedReceipt) domain.Receipt {
	type line struct {
		name  string
		qty   float64
		price float64
		fixed bool // explicit unit_price
		unit  float64
	}

	lines := make([]line, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		l := line{name: strings.TrimSpace(it.Name), qty: 1}
		if q := finiteOrZero(it.Quantity); q > 1 {
			l.qty = q
		}
		l.price = finiteOrZero(it.Price)
		if it.UnitPrice != nil && !math.IsInf(*it.UnitPrice, 0) && !math.IsNaN(*it.UnitPrice) {
			l.fixed = true
			l.unit = *it.UnitPrice
		}
		lines = append(lines, l)
	}

	printedSubtotal := finitePtr(parsed.Subtotal)
	printedTax := finitePtr(parsed.Tax)
	printedTotal := finitePtr(parsed.Total)

	var sumAsUnit, sumAsLine float64
	for _, l := range lines {
		if l.fixed {
			sumAsUnit += l.unit * l.qty
			sumAsLine += l.unit * l.qty
			continue
		}
		sumAsUnit += l.price * l.qty
		sumAsLine += l.price
	}

	priceIsLineTotal := false
	if printedSubtotal != nil {
		dUnit := math.Abs(sumAsUnit - *printedSubtotal)
		dLine := math.Abs(sumAsLine - *printedSubtotal)
		priceIsLineTotal = dLine <= dUnit
	} else {
		priceIsLineTotal = sumAsLine < sumAsUnit
	}

	var recomputed float64
	for i := range lines {
		l := &lines[i]
		if !l.fixed {
			l.unit = l.price
			if priceIsLineTotal && l.qty > 0 {
				l.unit = l.price / l.qty
			}
		}
		recomputed += l.unit * l.qty
	}

	// A printed subtotal is ground truth. If the chosen interpretation still
	// drifts past the tolerance, scale every unit price to close the gap.
	if printedSubtotal != nil && *printedSubtotal > 0 && recomputed > 0 {
		drift := math.Abs(recomputed-*printedSubtotal) / *printedSubtotal
		if drift > subtotalDriftTolerance {
			scale := *printedSubtotal / recomputed
			if !math.IsInf(scale, 0) && !math.IsNaN(scale) {
				for i := range lines {
					lines[i].unit *= scale
				}
			}
		}
	}

	items := make([]domain.Item, len(lines))
	var roundedSum float64
	for i, l := range lines {
		items[i] = domain.Item{Name: l.name, UnitPrice: round3(l.unit), Quantity: l.qty}
		roundedSum += items[i].UnitPrice * items[i].Quantity
	}

	subtotal := round3(roundedSum)
	if printedSubtotal != nil {
		subtotal = *printedSubtotal
	}

	tax := printedTax
	var total float64
	switch {
	case printedTotal != nil:
		total = *printedTotal
		if tax == nil {
			if derived := round3(total - subtotal); derived >= 0 {
				tax = &derived
			}
		}
	case tax != nil:
		total = round3(subtotal + *tax)
	default:
		total = subtotal
	}

	return domain.Receipt{Items: items, Subtotal: subtotal, Tax: tax, Total: total}
}

func finiteOrZero(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}

func finitePtr(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	out := *v
	return &out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
