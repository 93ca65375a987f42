package room

import (
	"fmt"
	"math"

	"splitroom/internal/domain"
)

// capacityEpsilon absorbs float drift when comparing claimed sums against an
// item's available quantity.
const capacityEpsilon = 1e-9

// CapacityError rejects a claim that would overdraw an item and reports how
// much quantity is still unclaimed.
type CapacityError struct {
	Remaining float64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded: %.3f remaining", e.Remaining)
}

func (e *CapacityError) Unwrap() error { return domain.ErrCapacityExceeded }

// Ledger tracks, per receipt line, how much quantity each participant has
// claimed. It is not safe for concurrent use on its own; the owning Room
// serializes all access through its mailbox.
type Ledger struct {
	items []domain.Item
	slots []map[string]float64
}

func NewLedger(items []domain.Item) *Ledger {
	slots := make([]map[string]float64, len(items))
	for i := range slots {
		slots[i] = make(map[string]float64)
	}
	return &Ledger{items: items, slots: slots}
}

// Claim adds qty to the participant's claim on a line. Items with quantity
// at most 1 are exclusive: only one participant may hold them at a time.
// Any rejection leaves the ledger untouched.
func (l *Ledger) Claim(itemIndex int, participant string, qty float64) error {
	if err := l.validate(itemIndex, participant, qty); err != nil {
		return err
	}
	item := l.items[itemIndex]
	slot := l.slots[itemIndex]

	if item.Quantity <= 1 {
		for p, held := range slot {
			if p != participant && held > 0 {
				return fmt.Errorf("item %d held by another participant: %w", itemIndex, domain.ErrExclusiveConflict)
			}
		}
	}

	var claimed float64
	for _, held := range slot {
		claimed += held
	}
	if claimed+qty > item.Quantity+capacityEpsilon {
		remaining := item.Quantity - claimed
		if remaining < 0 {
			remaining = 0
		}
		return &CapacityError{Remaining: remaining}
	}

	slot[participant] += qty
	return nil
}

// Unclaim releases qty of the participant's claim, clamped at zero.
// Releasing more than is held, or releasing with no claim at all, is a
// successful no-op rather than an error.
func (l *Ledger) Unclaim(itemIndex int, participant string, qty float64) error {
	if err := l.validate(itemIndex, participant, qty); err != nil {
		return err
	}
	slot := l.slots[itemIndex]
	held := slot[participant] - qty
	if held > 0 {
		slot[participant] = held
	} else {
		delete(slot, participant)
	}
	return nil
}

func (l *Ledger) validate(itemIndex int, participant string, qty float64) error {
	if itemIndex < 0 || itemIndex >= len(l.items) {
		return fmt.Errorf("item index %d out of range: %w", itemIndex, domain.ErrValidation)
	}
	if participant == "" {
		return fmt.Errorf("empty participant id: %w", domain.ErrValidation)
	}
	if qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return fmt.Errorf("quantity %v must be positive: %w", qty, domain.ErrValidation)
	}
	return nil
}

// Held returns the participant's current claim on a line, zero if none.
func (l *Ledger) Held(itemIndex int, participant string) float64 {
	if itemIndex < 0 || itemIndex >= len(l.slots) {
		return 0
	}
	return l.slots[itemIndex][participant]
}

// Snapshot deep-copies the slots so the result can leave the room goroutine.
func (l *Ledger) Snapshot() []map[string]float64 {
	out := make([]map[string]float64, len(l.slots))
	for i, slot := range l.slots {
		copied := make(map[string]float64, len(slot))
		for p, q := range slot {
			copied[p] = q
		}
		out[i] = copied
	}
	return out
}
