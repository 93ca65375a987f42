package domain

// Item is a single line of a parsed receipt. UnitPrice is the canonical
// per-unit price after normalization; the JSON name stays "price" to match
// the payload the parsing collaborator and clients already speak.
type Item struct {
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	Quantity  float64 `json:"quantity"`
}

// Receipt is the immutable parsed receipt one room is bound to. Tax is nil
// when the printed receipt had no tax line and none could be derived.
type Receipt struct {
	Items    []Item   `json:"items"`
	Subtotal float64  `json:"subtotal"`
	Tax      *float64 `json:"tax"`
	Total    float64  `json:"total"`
}

// Fees is the gap between printed total and subtotal that gets prorated
// across participants. Negative gaps (total below subtotal) are clamped.
func (r Receipt) Fees() float64 {
	if d := r.Total - r.Subtotal; d > 0 {
		return d
	}
	return 0
}
